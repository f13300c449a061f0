package billing

import (
	"time"

	"github.com/renewalhq/subtrackr-backend/pkg/enums"
)

// maxChargeEvents caps the synthesized history length.
const maxChargeEvents = 12

// ChargeEvent is one reconstructed past charge. Charge history is synthetic:
// nothing is persisted, it is recomputed on every read.
type ChargeEvent struct {
	Date        time.Time `json:"date"`
	AmountCents int64     `json:"amount"`
}

// fixedCycleDays maps cycles onto flat day counts. Unlike the next-billing
// calculation this walk is deliberately not calendar-aware; changing it would
// change observable history output.
func fixedCycleDays(cycle enums.BillingCycle) int {
	switch cycle {
	case enums.BillingCycleWeekly:
		return 7
	case enums.BillingCycleQuarterly:
		return 90
	case enums.BillingCycleYearly:
		return 365
	default:
		return 30
	}
}

// ChargeHistory walks forward from start in fixed-day steps, recording a
// charge at each stop up to now, capped at maxChargeEvents. The result is
// ordered most recent first.
func ChargeHistory(start time.Time, cycle enums.BillingCycle, costCents int64, now time.Time) []ChargeEvent {
	interval := fixedCycleDays(cycle)

	var events []ChargeEvent
	for current := start; !current.After(now) && len(events) < maxChargeEvents; current = current.AddDate(0, 0, interval) {
		events = append(events, ChargeEvent{Date: current, AmountCents: costCents})
	}

	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events
}
