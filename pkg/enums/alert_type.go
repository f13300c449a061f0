package enums

import "fmt"

// AlertType labels the condition an alert reports.
type AlertType string

const (
	AlertTypePriceIncrease   AlertType = "price_increase"
	AlertTypeDuplicate       AlertType = "duplicate"
	AlertTypeUpcomingRenewal AlertType = "upcoming_renewal"
	AlertTypeTrialEnding     AlertType = "trial_ending"
	AlertTypeUnused          AlertType = "unused"
)

var validAlertTypes = []AlertType{
	AlertTypePriceIncrease,
	AlertTypeDuplicate,
	AlertTypeUpcomingRenewal,
	AlertTypeTrialEnding,
	AlertTypeUnused,
}

// String implements fmt.Stringer.
func (a AlertType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AlertType.
func (a AlertType) IsValid() bool {
	for _, candidate := range validAlertTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAlertType converts raw input into an AlertType.
func ParseAlertType(value string) (AlertType, error) {
	for _, candidate := range validAlertTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert type %q", value)
}
