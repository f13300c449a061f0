package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UsageRecord marks a moment the user actually used a subscription.
// Records are immutable once written.
type UsageRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubscriptionID uuid.UUID `gorm:"column:subscription_id;type:uuid;not null;index" json:"subscriptionId"`
	UsedAt         time.Time `gorm:"column:used_at;not null" json:"usedAt"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (u *UsageRecord) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
