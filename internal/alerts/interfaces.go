package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/renewalhq/subtrackr-backend/pkg/enums"
)

// PersistedAlert is a stored alert row joined with its subscription's name.
type PersistedAlert struct {
	ID               uuid.UUID       `gorm:"column:id"`
	SubscriptionID   uuid.UUID       `gorm:"column:subscription_id"`
	Type             enums.AlertType `gorm:"column:type"`
	Message          string          `gorm:"column:message"`
	Dismissed        bool            `gorm:"column:dismissed"`
	CreatedAt        time.Time       `gorm:"column:created_at"`
	SubscriptionName string          `gorm:"column:subscription_name"`
}

// Repository reads and dismisses persisted alerts. Ownership always goes
// through the subscription join; alerts carry no user id of their own.
type Repository interface {
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]PersistedAlert, error)
	FindByID(ctx context.Context, userID, alertID uuid.UUID) (*PersistedAlert, error)
	Dismiss(ctx context.Context, userID, alertID uuid.UUID) error
}
