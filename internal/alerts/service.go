package alerts

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renewalhq/subtrackr-backend/internal/subscriptions"
	"github.com/renewalhq/subtrackr-backend/pkg/enums"
	pkgerrors "github.com/renewalhq/subtrackr-backend/pkg/errors"
)

// View is one alert on the wire. Persisted alerts carry an id; computed
// alerts leave it nil and are regenerated on every read.
type View struct {
	ID               *uuid.UUID      `json:"id"`
	SubscriptionID   uuid.UUID       `json:"subscriptionId"`
	SubscriptionName string          `json:"subscriptionName"`
	Type             enums.AlertType `json:"type"`
	Message          string          `json:"message"`
	Dismissed        bool            `json:"dismissed"`
	CreatedAt        *time.Time      `json:"createdAt"`
}

type subscriptionLister interface {
	List(ctx context.Context, userID uuid.UUID) ([]subscriptions.View, error)
}

// Service merges persisted alerts with the read-time rule output.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]View, error)
	Dismiss(ctx context.Context, userID, alertID uuid.UUID) (*View, error)
}

type service struct {
	repo Repository
	subs subscriptionLister
	now  func() time.Time
}

// NewService builds the alerts service with its required dependencies.
func NewService(repo Repository, subs subscriptionLister) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("alerts service requires a repository")
	}
	if subs == nil {
		return nil, fmt.Errorf("alerts service requires a subscription lister")
	}
	return &service{repo: repo, subs: subs, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]View, error) {
	persisted, err := s.repo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing alerts")
	}

	views := make([]View, 0, len(persisted))
	for _, row := range persisted {
		views = append(views, persistedView(row))
	}

	subs, err := s.subs.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views = append(views, upcomingRenewals(subs, now)...)
	views = append(views, trialsEnding(subs, now)...)
	views = append(views, unusedSubscriptions(subs)...)
	views = append(views, duplicates(subs)...)
	return views, nil
}

func (s *service) Dismiss(ctx context.Context, userID, alertID uuid.UUID) (*View, error) {
	row, err := s.repo.FindByID(ctx, userID, alertID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "alert not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading alert")
	}

	if !row.Dismissed {
		if err := s.repo.Dismiss(ctx, userID, alertID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "dismissing alert")
		}
		row.Dismissed = true
	}

	view := persistedView(*row)
	return &view, nil
}

func persistedView(row PersistedAlert) View {
	id := row.ID
	createdAt := row.CreatedAt
	return View{
		ID:               &id,
		SubscriptionID:   row.SubscriptionID,
		SubscriptionName: row.SubscriptionName,
		Type:             row.Type,
		Message:          row.Message,
		Dismissed:        row.Dismissed,
		CreatedAt:        &createdAt,
	}
}
