package subscriptions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renewalhq/subtrackr-backend/pkg/db/models"
	"github.com/renewalhq/subtrackr-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a subscriptions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *repository) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repository) Update(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ? AND user_id = ?", sub.ID, sub.UserID).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(sub).Error
}

func (r *repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateUsage(ctx context.Context, record *models.UsageRecord) (*models.UsageRecord, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *repository) ListUsage(ctx context.Context, subscriptionID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.UsageRecord, error) {
	query := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("used_at DESC, id DESC").
		Limit(limit)

	if cursor != nil {
		query = query.Where(
			"used_at < ? OR (used_at = ? AND id < ?)",
			cursor.Timestamp, cursor.Timestamp, cursor.ID,
		)
	}

	var records []models.UsageRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

type usageCountRow struct {
	SubscriptionID uuid.UUID `gorm:"column:subscription_id"`
	Count          int64     `gorm:"column:count"`
}

func (r *repository) UsageStatsBySubscription(ctx context.Context, subscriptionIDs []uuid.UUID) (map[uuid.UUID]UsageStats, error) {
	stats := make(map[uuid.UUID]UsageStats, len(subscriptionIDs))
	if len(subscriptionIDs) == 0 {
		return stats, nil
	}

	var counts []usageCountRow
	err := r.db.WithContext(ctx).
		Model(&models.UsageRecord{}).
		Select("subscription_id, COUNT(*) AS count").
		Where("subscription_id IN ?", subscriptionIDs).
		Group("subscription_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, row := range counts {
		stats[row.SubscriptionID] = UsageStats{Count: row.Count}
	}

	// The newest timestamp is read off full model rows instead of a bare
	// MAX(used_at): aggregate columns lose their declared type on sqlite and
	// come back as strings.
	newestPerSub := r.db.
		Table("usage_records AS latest").
		Select("MAX(latest.used_at)").
		Where("latest.subscription_id = usage_records.subscription_id")

	var newest []models.UsageRecord
	err = r.db.WithContext(ctx).
		Where("subscription_id IN ?", subscriptionIDs).
		Where("used_at = (?)", newestPerSub).
		Find(&newest).Error
	if err != nil {
		return nil, err
	}
	for _, record := range newest {
		entry := stats[record.SubscriptionID]
		if entry.LastUsed == nil || record.UsedAt.After(*entry.LastUsed) {
			usedAt := record.UsedAt
			entry.LastUsed = &usedAt
		}
		stats[record.SubscriptionID] = entry
	}
	return stats, nil
}

func (r *repository) DeleteUsageBySubscription(ctx context.Context, subscriptionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Delete(&models.UsageRecord{}).Error
}

func (r *repository) CreatePriceHistory(ctx context.Context, entry *models.PriceHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListPriceHistory(ctx context.Context, subscriptionID uuid.UUID) ([]models.PriceHistory, error) {
	var entries []models.PriceHistory
	err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("changed_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) CreateAlert(ctx context.Context, alert *models.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *repository) DeleteAlertsBySubscription(ctx context.Context, subscriptionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Delete(&models.Alert{}).Error
}
