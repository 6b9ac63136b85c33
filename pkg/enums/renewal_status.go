package enums

import "fmt"

// RenewalStatus tracks where a renewal sits in the follow-up pipeline.
type RenewalStatus string

const (
	RenewalStatusPending   RenewalStatus = "pending"
	RenewalStatusContacted RenewalStatus = "contacted"
	RenewalStatusCompleted RenewalStatus = "completed"
	RenewalStatusRenewed   RenewalStatus = "renewed"
	RenewalStatusOverdue   RenewalStatus = "overdue"
)

var validRenewalStatuses = []RenewalStatus{
	RenewalStatusPending,
	RenewalStatusContacted,
	RenewalStatusCompleted,
	RenewalStatusRenewed,
	RenewalStatusOverdue,
}

// IsValid checks whether the given status matches the canonical enum.
func (s RenewalStatus) IsValid() bool {
	for _, candidate := range validRenewalStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRenewalStatus converts raw strings into RenewalStatus.
func ParseRenewalStatus(value string) (RenewalStatus, error) {
	for _, candidate := range validRenewalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid renewal status %q", value)
}
