package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renewalhq/subtrackr-backend/pkg/enums"
)

// Alert is a persisted notification row. Only price_increase alerts are
// written by mutations; the other types are derived on read and never stored.
type Alert struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SubscriptionID uuid.UUID       `gorm:"column:subscription_id;type:uuid;not null;index" json:"subscriptionId"`
	Type           enums.AlertType `gorm:"type:text;not null" json:"type"`
	Message        string          `gorm:"type:text;not null" json:"message"`
	Dismissed      bool            `gorm:"not null;default:false" json:"dismissed"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"createdAt"`
}

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
