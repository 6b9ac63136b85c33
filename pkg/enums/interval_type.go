package enums

import "fmt"

// IntervalType is the cadence at which a renewal recurs.
type IntervalType string

const (
	IntervalAnnual    IntervalType = "annual"
	IntervalBiAnnual  IntervalType = "bi-annual"
	IntervalTwoYear   IntervalType = "2-year"
	IntervalThreeYear IntervalType = "3-year"
	IntervalFiveYear  IntervalType = "5-year"
	IntervalCustom    IntervalType = "custom"
)

var validIntervalTypes = []IntervalType{
	IntervalAnnual,
	IntervalBiAnnual,
	IntervalTwoYear,
	IntervalThreeYear,
	IntervalFiveYear,
	IntervalCustom,
}

var monthsByInterval = map[IntervalType]int{
	IntervalAnnual:    12,
	IntervalBiAnnual:  6,
	IntervalTwoYear:   24,
	IntervalThreeYear: 36,
	IntervalFiveYear:  60,
}

// IsValid checks whether the given type matches the canonical enum.
func (i IntervalType) IsValid() bool {
	for _, candidate := range validIntervalTypes {
		if candidate == i {
			return true
		}
	}
	return false
}

// Months returns the fixed month count for the interval. The second
// return is false for IntervalCustom, whose month count is caller-supplied.
func (i IntervalType) Months() (int, bool) {
	months, ok := monthsByInterval[i]
	return months, ok
}

// ParseIntervalType converts raw strings into IntervalType.
func ParseIntervalType(value string) (IntervalType, error) {
	for _, candidate := range validIntervalTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid interval type %q", value)
}
