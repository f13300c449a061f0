package alerts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renewalhq/subtrackr-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an alerts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]PersistedAlert, error) {
	var rows []PersistedAlert
	err := r.db.WithContext(ctx).
		Table("alerts").
		Select("alerts.id, alerts.subscription_id, alerts.type, alerts.message, alerts.dismissed, alerts.created_at, subscriptions.name AS subscription_name").
		Joins("JOIN subscriptions ON subscriptions.id = alerts.subscription_id").
		Where("subscriptions.user_id = ? AND alerts.dismissed = ?", userID, false).
		Order("alerts.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByID(ctx context.Context, userID, alertID uuid.UUID) (*PersistedAlert, error) {
	var rows []PersistedAlert
	err := r.db.WithContext(ctx).
		Table("alerts").
		Select("alerts.id, alerts.subscription_id, alerts.type, alerts.message, alerts.dismissed, alerts.created_at, subscriptions.name AS subscription_name").
		Joins("JOIN subscriptions ON subscriptions.id = alerts.subscription_id").
		Where("alerts.id = ? AND subscriptions.user_id = ?", alertID, userID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *repository) Dismiss(ctx context.Context, userID, alertID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where(
			"id = ? AND subscription_id IN (?)",
			alertID,
			r.db.Model(&models.Subscription{}).Select("id").Where("user_id = ?", userID),
		).
		Update("dismissed", true).Error
}
