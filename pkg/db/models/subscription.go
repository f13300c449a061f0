package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renewalhq/subtrackr-backend/pkg/enums"
)

// Subscription is a recurring service tracked for a single user. Costs are
// stored in minor currency units (cents).
type Subscription struct {
	ID                    uuid.UUID                `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                uuid.UUID                `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	Name                  string                   `gorm:"type:text;not null" json:"name"`
	CostCents             int64                    `gorm:"column:cost_cents;not null" json:"cost"`
	Currency              enums.Currency           `gorm:"type:text;not null;default:'USD'" json:"currency"`
	BillingCycle          enums.BillingCycle       `gorm:"column:billing_cycle;type:text;not null" json:"billingCycle"`
	Category              enums.Category           `gorm:"type:text;not null" json:"category"`
	Status                enums.SubscriptionStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	StartDate             time.Time                `gorm:"column:start_date;not null" json:"startDate"`
	NextBillingDate       *time.Time               `gorm:"column:next_billing_date" json:"nextBillingDate"`
	TrialEndDate          *time.Time               `gorm:"column:trial_end_date" json:"trialEndDate"`
	CancelledDate         *time.Time               `gorm:"column:cancelled_date" json:"cancelledDate"`
	MarkedForCancellation bool                     `gorm:"column:marked_for_cancellation;not null;default:false" json:"markedForCancellation"`
	CancelInstructions    *string                  `gorm:"column:cancel_instructions;type:text" json:"cancelInstructions"`
	Notes                 *string                  `gorm:"type:text" json:"notes"`
	CreatedAt             time.Time                `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt             time.Time                `gorm:"autoUpdateTime" json:"updatedAt"`
}

// BeforeCreate assigns the id in application code so sqlite and postgres
// behave identically.
func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
