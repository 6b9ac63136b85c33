package enums

import "fmt"

// ServiceType enumerates the fixed service offerings a renewal covers.
type ServiceType string

const (
	ServiceInfraredThermography ServiceType = "Infrared Thermography Analysis"
	ServiceArcFlashAssessment   ServiceType = "Arc Flash Hazard Assessment"
	ServiceVUMO                 ServiceType = "VUMO"
	ServiceTraining             ServiceType = "Training"
	ServiceSwitchgearEPM        ServiceType = "Switchgear Maintenance (EPM)"
)

var validServiceTypes = []ServiceType{
	ServiceInfraredThermography,
	ServiceArcFlashAssessment,
	ServiceVUMO,
	ServiceTraining,
	ServiceSwitchgearEPM,
}

// IsValid checks whether the given type matches the canonical enum.
func (s ServiceType) IsValid() bool {
	for _, candidate := range validServiceTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServiceType converts raw strings into ServiceType.
func ParseServiceType(value string) (ServiceType, error) {
	for _, candidate := range validServiceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service type %q", value)
}
