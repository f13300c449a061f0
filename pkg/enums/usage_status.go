package enums

// UsageStatus classifies how recently a subscription was used. It is derived
// on read and never persisted.
type UsageStatus string

const (
	UsageStatusNeverUsed UsageStatus = "never_used"
	UsageStatusUnused    UsageStatus = "unused"
	UsageStatusWarning   UsageStatus = "warning"
	UsageStatusFresh     UsageStatus = "fresh"
)

// String implements fmt.Stringer.
func (u UsageStatus) String() string {
	return string(u)
}
