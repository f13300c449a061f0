package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PriceHistory records a cost change on a subscription. Written automatically
// whenever an update modifies the cost.
type PriceHistory struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubscriptionID    uuid.UUID `gorm:"column:subscription_id;type:uuid;not null;index" json:"subscriptionId"`
	PreviousCostCents int64     `gorm:"column:previous_cost_cents;not null" json:"previousCost"`
	NewCostCents      int64     `gorm:"column:new_cost_cents;not null" json:"newCost"`
	ChangedAt         time.Time `gorm:"column:changed_at;not null" json:"changedAt"`
}

func (p *PriceHistory) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
