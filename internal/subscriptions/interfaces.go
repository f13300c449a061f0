package subscriptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renewalhq/subtrackr-backend/pkg/db/models"
	"github.com/renewalhq/subtrackr-backend/pkg/pagination"
)

// UsageStats aggregates the usage records of one subscription.
type UsageStats struct {
	Count    int64
	LastUsed *time.Time
}

// Repository is the persistence surface for subscriptions and their
// dependent rows. Every read and write is scoped by the owning user, either
// directly or through the owning subscription.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, sub *models.Subscription) (*models.Subscription, error)
	FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Subscription, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error)
	Update(ctx context.Context, sub *models.Subscription) error
	Delete(ctx context.Context, userID, id uuid.UUID) error

	CreateUsage(ctx context.Context, record *models.UsageRecord) (*models.UsageRecord, error)
	ListUsage(ctx context.Context, subscriptionID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.UsageRecord, error)
	UsageStatsBySubscription(ctx context.Context, subscriptionIDs []uuid.UUID) (map[uuid.UUID]UsageStats, error)
	DeleteUsageBySubscription(ctx context.Context, subscriptionID uuid.UUID) error

	CreatePriceHistory(ctx context.Context, entry *models.PriceHistory) error
	ListPriceHistory(ctx context.Context, subscriptionID uuid.UUID) ([]models.PriceHistory, error)

	CreateAlert(ctx context.Context, alert *models.Alert) error
	DeleteAlertsBySubscription(ctx context.Context, subscriptionID uuid.UUID) error
}
