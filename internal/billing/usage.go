package billing

import (
	"time"

	"github.com/renewalhq/subtrackr-backend/pkg/enums"
)

// Staleness thresholds in whole days. Fixed, not user-configurable.
const (
	WarningAfterDays = 30
	UnusedAfterDays  = 60
)

// RenewalWindowDays bounds the read-time upcoming-renewal and trial-ending
// alerts. Separate from the user's renewalReminderDays setting, which only
// schedules client-side notifications.
const RenewalWindowDays = 7

// DaysSince returns whole days elapsed between last and now, floored.
func DaysSince(last, now time.Time) int {
	return int(now.Sub(last) / (24 * time.Hour))
}

// DaysUntil returns whole days from now until target, floored. Negative when
// the target has passed by a full day.
func DaysUntil(target, now time.Time) int {
	diff := target.Sub(now)
	days := diff / (24 * time.Hour)
	if diff < 0 && diff%(24*time.Hour) != 0 {
		days--
	}
	return int(days)
}

// ClassifyUsage derives the staleness bucket from the most recent usage
// timestamp. A subscription that has never been used is its own bucket,
// distinct from the day-based classification.
func ClassifyUsage(lastUsed *time.Time, now time.Time) enums.UsageStatus {
	if lastUsed == nil {
		return enums.UsageStatusNeverUsed
	}
	days := DaysSince(*lastUsed, now)
	switch {
	case days >= UnusedAfterDays:
		return enums.UsageStatusUnused
	case days >= WarningAfterDays:
		return enums.UsageStatusWarning
	default:
		return enums.UsageStatusFresh
	}
}

// ThirtyDayMonthsSince counts elapsed 30-day months, floored. Used by the
// cancellation-savings estimate.
func ThirtyDayMonthsSince(from, now time.Time) int {
	return int(now.Sub(from) / (30 * 24 * time.Hour))
}
