package savings

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/renewalhq/subtrackr-backend/internal/billing"
	"github.com/renewalhq/subtrackr-backend/internal/subscriptions"
	"github.com/renewalhq/subtrackr-backend/pkg/enums"
)

// Item is the savings line for one cancelled subscription. Money fields are
// major currency units rounded to two decimals.
type Item struct {
	SubscriptionID    uuid.UUID       `json:"subscriptionId"`
	Name              string          `json:"name"`
	CancelledDate     time.Time       `json:"cancelledDate"`
	MonthsCredited    int             `json:"monthsCredited"`
	MonthlyEquivalent decimal.Decimal `json:"monthlyEquivalent"`
	SavedAmount       decimal.Decimal `json:"savedAmount"`
}

// Summary totals the estimated avoided spend across cancelled subscriptions.
type Summary struct {
	Items      []Item          `json:"items"`
	TotalSaved decimal.Decimal `json:"totalSaved"`
}

// CategorySpend is one category's share of the monthly-equivalent spend.
type CategorySpend struct {
	Category          enums.Category  `json:"category"`
	MonthlyEquivalent decimal.Decimal `json:"monthlyEquivalent"`
}

// SpendingSummary aggregates non-cancelled subscriptions.
type SpendingSummary struct {
	ActiveCount  int             `json:"activeCount"`
	MonthlyTotal decimal.Decimal `json:"monthlyTotal"`
	YearlyTotal  decimal.Decimal `json:"yearlyTotal"`
	Categories   []CategorySpend `json:"categories"`
}

type subscriptionLister interface {
	List(ctx context.Context, userID uuid.UUID) ([]subscriptions.View, error)
}

// Service derives the money aggregates. Nothing here is persisted; both
// summaries are recomputed per request.
type Service interface {
	Savings(ctx context.Context, userID uuid.UUID) (*Summary, error)
	Spending(ctx context.Context, userID uuid.UUID) (*SpendingSummary, error)
}

type service struct {
	subs subscriptionLister
	now  func() time.Time
}

// NewService builds the savings service with its required dependencies.
func NewService(subs subscriptionLister) (Service, error) {
	if subs == nil {
		return nil, fmt.Errorf("savings service requires a subscription lister")
	}
	return &service{subs: subs, now: time.Now}, nil
}

func (s *service) Savings(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	views, err := s.subs.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summary := &Summary{Items: []Item{}, TotalSaved: decimal.Zero}
	for _, sub := range views {
		if sub.Status != enums.SubscriptionStatusCancelled || sub.CancelledDate == nil {
			continue
		}

		// At least one month is credited even when cancelled today.
		months := billing.ThirtyDayMonthsSince(*sub.CancelledDate, now)
		if months < 1 {
			months = 1
		}

		monthly := billing.MonthlyEquivalent(sub.CostCents, sub.BillingCycle)
		saved := monthly.Mul(decimal.NewFromInt(int64(months)))

		summary.Items = append(summary.Items, Item{
			SubscriptionID:    sub.ID,
			Name:              sub.Name,
			CancelledDate:     *sub.CancelledDate,
			MonthsCredited:    months,
			MonthlyEquivalent: toMajor(monthly),
			SavedAmount:       toMajor(saved),
		})
		summary.TotalSaved = summary.TotalSaved.Add(saved)
	}

	summary.TotalSaved = toMajor(summary.TotalSaved)
	return summary, nil
}

func (s *service) Spending(ctx context.Context, userID uuid.UUID) (*SpendingSummary, error) {
	views, err := s.subs.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	monthlyTotal := decimal.Zero
	yearlyTotal := decimal.Zero
	byCategory := map[enums.Category]decimal.Decimal{}
	active := 0

	for _, sub := range views {
		if sub.Status == enums.SubscriptionStatusCancelled {
			continue
		}
		active++
		monthly := billing.MonthlyEquivalent(sub.CostCents, sub.BillingCycle)
		monthlyTotal = monthlyTotal.Add(monthly)
		yearlyTotal = yearlyTotal.Add(billing.YearlyEquivalent(sub.CostCents, sub.BillingCycle))
		byCategory[sub.Category] = byCategory[sub.Category].Add(monthly)
	}

	categories := make([]CategorySpend, 0, len(byCategory))
	for category, amount := range byCategory {
		categories = append(categories, CategorySpend{
			Category:          category,
			MonthlyEquivalent: toMajor(amount),
		})
	}
	sort.Slice(categories, func(i, j int) bool {
		if !categories[i].MonthlyEquivalent.Equal(categories[j].MonthlyEquivalent) {
			return categories[i].MonthlyEquivalent.GreaterThan(categories[j].MonthlyEquivalent)
		}
		return categories[i].Category < categories[j].Category
	})

	return &SpendingSummary{
		ActiveCount:  active,
		MonthlyTotal: toMajor(monthlyTotal),
		YearlyTotal:  toMajor(yearlyTotal),
		Categories:   categories,
	}, nil
}

// toMajor converts a cents-denominated decimal into major units, two places.
func toMajor(cents decimal.Decimal) decimal.Decimal {
	return cents.Shift(-2).Round(2)
}
