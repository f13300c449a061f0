package subscriptions

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renewalhq/subtrackr-backend/internal/billing"
	"github.com/renewalhq/subtrackr-backend/pkg/db/models"
	"github.com/renewalhq/subtrackr-backend/pkg/enums"
	pkgerrors "github.com/renewalhq/subtrackr-backend/pkg/errors"
	"github.com/renewalhq/subtrackr-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type settingsReader interface {
	DefaultCurrency(ctx context.Context, userID uuid.UUID) (enums.Currency, error)
}

// Service owns the subscription lifecycle and the read-time decorations.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]View, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*View, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*View, error)
	Update(ctx context.Context, userID, id uuid.UUID, input UpdateInput) (*View, error)
	Cancel(ctx context.Context, userID, id uuid.UUID) (*View, error)
	ToggleCancellation(ctx context.Context, userID, id uuid.UUID) (*View, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	AddUsage(ctx context.Context, userID, id uuid.UUID, input AddUsageInput) (*models.UsageRecord, error)
	ListUsage(ctx context.Context, userID, id uuid.UUID, page pagination.Params) (*UsagePage, error)
	PriceHistory(ctx context.Context, userID, id uuid.UUID) ([]models.PriceHistory, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	settings settingsReader
	now      func() time.Time
}

// NewService builds the subscription service with its required dependencies.
func NewService(repo Repository, tx txRunner, settings settingsReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("subscriptions service requires a repository")
	}
	if tx == nil {
		return nil, fmt.Errorf("subscriptions service requires a tx runner")
	}
	if settings == nil {
		return nil, fmt.Errorf("subscriptions service requires a settings reader")
	}
	return &service{repo: repo, tx: tx, settings: settings, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]View, error) {
	subs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing subscriptions")
	}

	ids := make([]uuid.UUID, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.ID)
	}
	stats, err := s.repo.UsageStatsBySubscription(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading usage stats")
	}

	now := s.now()
	views := make([]View, 0, len(subs))
	for _, sub := range subs {
		views = append(views, decorate(sub, stats[sub.ID], now))
	}

	// Marked-for-cancellation first, then stale, then most expensive.
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if a.MarkedForCancellation != b.MarkedForCancellation {
			return a.MarkedForCancellation
		}
		if a.IsUnused() != b.IsUnused() {
			return a.IsUnused()
		}
		return a.CostCents > b.CostCents
	})

	return views, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*View, error) {
	sub, err := s.fetch(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.viewOf(ctx, sub)
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*View, error) {
	cycle, err := enums.ParseBillingCycle(input.BillingCycle)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid billing cycle")
	}
	category, err := enums.ParseCategory(input.Category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}

	currency, err := s.resolveCurrency(ctx, userID, input.Currency)
	if err != nil {
		return nil, err
	}

	now := s.now()
	status := enums.SubscriptionStatusActive
	if input.TrialEndDate != nil {
		status = enums.SubscriptionStatusTrial
	}
	nextBilling := billing.NextOccurrenceOnOrAfter(input.StartDate, cycle, now)

	sub := &models.Subscription{
		UserID:             userID,
		Name:               input.Name,
		CostCents:          input.CostCents,
		Currency:           currency,
		BillingCycle:       cycle,
		Category:           category,
		Status:             status,
		StartDate:          input.StartDate,
		NextBillingDate:    &nextBilling,
		TrialEndDate:       input.TrialEndDate,
		CancelInstructions: input.CancelInstructions,
		Notes:              input.Notes,
	}

	if _, err := s.repo.Create(ctx, sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating subscription")
	}
	return s.viewOf(ctx, sub)
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, input UpdateInput) (*View, error) {
	sub, err := s.fetch(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	cancelled := sub.Status == enums.SubscriptionStatusCancelled
	if cancelled && input.Status != nil && *input.Status != enums.SubscriptionStatusCancelled.String() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled subscriptions cannot be reactivated")
	}
	if cancelled && input.MarkedForCancellation != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled subscriptions cannot change the cancellation flag")
	}

	previousCost := sub.CostCents
	scheduleChanged := false

	if input.Name != nil {
		sub.Name = *input.Name
	}
	if input.CostCents != nil {
		sub.CostCents = *input.CostCents
	}
	if input.Currency != nil {
		currency, err := enums.ParseCurrency(*input.Currency)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
		}
		sub.Currency = currency
	}
	if input.BillingCycle != nil {
		cycle, err := enums.ParseBillingCycle(*input.BillingCycle)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid billing cycle")
		}
		if cycle != sub.BillingCycle {
			sub.BillingCycle = cycle
			scheduleChanged = true
		}
	}
	if input.Category != nil {
		category, err := enums.ParseCategory(*input.Category)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		sub.Category = category
	}
	if input.StartDate != nil && !input.StartDate.Equal(sub.StartDate) {
		sub.StartDate = *input.StartDate
		scheduleChanged = true
	}
	if input.TrialEndDate != nil {
		sub.TrialEndDate = input.TrialEndDate
	}
	if input.MarkedForCancellation != nil {
		sub.MarkedForCancellation = *input.MarkedForCancellation
	}
	if input.CancelInstructions != nil {
		sub.CancelInstructions = input.CancelInstructions
	}
	if input.Notes != nil {
		sub.Notes = input.Notes
	}

	now := s.now()
	if input.Status != nil {
		status, err := enums.ParseSubscriptionStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		if status == enums.SubscriptionStatusCancelled && !cancelled {
			sub.CancelledDate = &now
			sub.MarkedForCancellation = false
		}
		sub.Status = status
	}

	if scheduleChanged && sub.Status != enums.SubscriptionStatusCancelled {
		next := billing.NextOccurrenceOnOrAfter(sub.StartDate, sub.BillingCycle, now)
		sub.NextBillingDate = &next
	}

	costChanged := sub.CostCents != previousCost
	if costChanged {
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if err := repo.Update(ctx, sub); err != nil {
				return err
			}
			if err := repo.CreatePriceHistory(ctx, &models.PriceHistory{
				SubscriptionID:    sub.ID,
				PreviousCostCents: previousCost,
				NewCostCents:      sub.CostCents,
				ChangedAt:         now,
			}); err != nil {
				return err
			}
			return repo.CreateAlert(ctx, &models.Alert{
				SubscriptionID: sub.ID,
				Type:           enums.AlertTypePriceIncrease,
				Message:        priceChangeMessage(sub.Name, previousCost, sub.CostCents),
			})
		})
	} else {
		err = s.repo.Update(ctx, sub)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating subscription")
	}

	return s.viewOf(ctx, sub)
}

func (s *service) Cancel(ctx context.Context, userID, id uuid.UUID) (*View, error) {
	sub, err := s.fetch(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == enums.SubscriptionStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "subscription is already cancelled")
	}

	now := s.now()
	sub.Status = enums.SubscriptionStatusCancelled
	sub.CancelledDate = &now
	sub.MarkedForCancellation = false

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancelling subscription")
	}
	return s.viewOf(ctx, sub)
}

func (s *service) ToggleCancellation(ctx context.Context, userID, id uuid.UUID) (*View, error) {
	sub, err := s.fetch(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == enums.SubscriptionStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "subscription is already cancelled")
	}

	sub.MarkedForCancellation = !sub.MarkedForCancellation
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "toggling cancellation flag")
	}
	return s.viewOf(ctx, sub)
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	sub, err := s.fetch(ctx, userID, id)
	if err != nil {
		return err
	}

	// Usage records and alerts go with the subscription. Price history rows
	// are deliberately left behind.
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteUsageBySubscription(ctx, sub.ID); err != nil {
			return err
		}
		if err := repo.DeleteAlertsBySubscription(ctx, sub.ID); err != nil {
			return err
		}
		return repo.Delete(ctx, userID, sub.ID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting subscription")
	}
	return nil
}

func (s *service) AddUsage(ctx context.Context, userID, id uuid.UUID, input AddUsageInput) (*models.UsageRecord, error) {
	sub, err := s.fetch(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	usedAt := s.now()
	if input.UsedAt != nil {
		usedAt = *input.UsedAt
	}

	record, err := s.repo.CreateUsage(ctx, &models.UsageRecord{
		SubscriptionID: sub.ID,
		UsedAt:         usedAt,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording usage")
	}
	return record, nil
}

func (s *service) ListUsage(ctx context.Context, userID, id uuid.UUID, page pagination.Params) (*UsagePage, error) {
	sub, err := s.fetch(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(page.Limit)
	records, err := s.repo.ListUsage(ctx, sub.ID, pagination.LimitWithBuffer(page.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing usage")
	}

	result := &UsagePage{Records: records}
	if len(records) > limit {
		result.Records = records[:limit]
		last := result.Records[limit-1]
		next := pagination.EncodeCursor(pagination.Cursor{Timestamp: last.UsedAt, ID: last.ID})
		result.NextCursor = &next
	}
	return result, nil
}

func (s *service) PriceHistory(ctx context.Context, userID, id uuid.UUID) ([]models.PriceHistory, error) {
	sub, err := s.fetch(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListPriceHistory(ctx, sub.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing price history")
	}
	return entries, nil
}

// fetch loads a subscription scoped by owner. A cross-user id reads the same
// as a missing one.
func (s *service) fetch(ctx context.Context, userID, id uuid.UUID) (*models.Subscription, error) {
	sub, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading subscription")
	}
	return sub, nil
}

func (s *service) viewOf(ctx context.Context, sub *models.Subscription) (*View, error) {
	stats, err := s.repo.UsageStatsBySubscription(ctx, []uuid.UUID{sub.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading usage stats")
	}
	view := decorate(*sub, stats[sub.ID], s.now())
	return &view, nil
}

func (s *service) resolveCurrency(ctx context.Context, userID uuid.UUID, raw *string) (enums.Currency, error) {
	if raw != nil {
		currency, err := enums.ParseCurrency(*raw)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
		}
		return currency, nil
	}
	currency, err := s.settings.DefaultCurrency(ctx, userID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving default currency")
	}
	return currency, nil
}

func decorate(sub models.Subscription, stats UsageStats, now time.Time) View {
	view := View{
		Subscription: sub,
		LastUsed:     stats.LastUsed,
		UsageCount:   stats.Count,
		UsageStatus:  billing.ClassifyUsage(stats.LastUsed, now),
	}
	if stats.LastUsed != nil {
		days := billing.DaysSince(*stats.LastUsed, now)
		view.DaysSinceLastUse = &days
	}
	if sub.Status != enums.SubscriptionStatusCancelled {
		next := billing.NextOccurrenceOnOrAfter(sub.StartDate, sub.BillingCycle, now)
		view.NextBillingDate = &next
	}
	view.ChargeHistory = billing.ChargeHistory(sub.StartDate, sub.BillingCycle, sub.CostCents, now)
	return view
}

func priceChangeMessage(name string, previous, next int64) string {
	direction := "increased"
	if next < previous {
		direction = "decreased"
	}
	return fmt.Sprintf(
		"%s price %s from $%s to $%s",
		name,
		direction,
		billing.MajorUnits(previous).StringFixed(2),
		billing.MajorUnits(next).StringFixed(2),
	)
}
