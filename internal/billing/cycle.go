package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/renewalhq/subtrackr-backend/pkg/enums"
)

// weeksPerMonth is the average-weeks approximation used when normalizing
// weekly costs to a monthly rate. Aggregate totals depend on this exact
// constant; do not replace it with a calendar-derived value.
var weeksPerMonth = decimal.NewFromFloat(4.33)

var (
	three  = decimal.NewFromInt(3)
	four   = decimal.NewFromInt(4)
	twelve = decimal.NewFromInt(12)
	fifty2 = decimal.NewFromInt(52)
)

// NextOccurrenceOnOrAfter walks forward from start one cycle at a time until
// the result lands strictly after ref. Month and year steps use calendar
// arithmetic, so a subscription started on Jan 31 rolls with Go's AddDate
// month-end normalization.
func NextOccurrenceOnOrAfter(start time.Time, cycle enums.BillingCycle, ref time.Time) time.Time {
	next := start
	for !next.After(ref) {
		next = advance(next, cycle)
	}
	return next
}

func advance(t time.Time, cycle enums.BillingCycle) time.Time {
	switch cycle {
	case enums.BillingCycleWeekly:
		return t.AddDate(0, 0, 7)
	case enums.BillingCycleMonthly:
		return t.AddDate(0, 1, 0)
	case enums.BillingCycleQuarterly:
		return t.AddDate(0, 3, 0)
	case enums.BillingCycleYearly:
		return t.AddDate(1, 0, 0)
	default:
		// unknown cycles are rejected at parse time
		return t.AddDate(0, 1, 0)
	}
}

// MonthlyEquivalent normalizes a cost in cents to a per-month rate.
func MonthlyEquivalent(costCents int64, cycle enums.BillingCycle) decimal.Decimal {
	cost := decimal.NewFromInt(costCents)
	switch cycle {
	case enums.BillingCycleWeekly:
		return cost.Mul(weeksPerMonth)
	case enums.BillingCycleQuarterly:
		return cost.Div(three)
	case enums.BillingCycleYearly:
		return cost.Div(twelve)
	default:
		return cost
	}
}

// YearlyEquivalent normalizes a cost in cents to a per-year rate.
func YearlyEquivalent(costCents int64, cycle enums.BillingCycle) decimal.Decimal {
	cost := decimal.NewFromInt(costCents)
	switch cycle {
	case enums.BillingCycleWeekly:
		return cost.Mul(fifty2)
	case enums.BillingCycleMonthly:
		return cost.Mul(twelve)
	case enums.BillingCycleQuarterly:
		return cost.Mul(four)
	default:
		return cost
	}
}

// MajorUnits converts cents into major currency units with two decimals.
func MajorUnits(costCents int64) decimal.Decimal {
	return decimal.New(costCents, -2)
}
