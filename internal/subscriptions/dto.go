package subscriptions

import (
	"time"

	"github.com/renewalhq/subtrackr-backend/internal/billing"
	"github.com/renewalhq/subtrackr-backend/pkg/db/models"
	"github.com/renewalhq/subtrackr-backend/pkg/enums"
)

// CreateInput carries the fields a new subscription accepts. Cost crosses the
// API in minor units (cents).
type CreateInput struct {
	Name               string     `json:"name" validate:"required,min=1,max=200"`
	CostCents          int64      `json:"cost" validate:"required,gt=0"`
	Currency           *string    `json:"currency" validate:"omitempty"`
	BillingCycle       string     `json:"billingCycle" validate:"required"`
	Category           string     `json:"category" validate:"required"`
	StartDate          time.Time  `json:"startDate" validate:"required"`
	TrialEndDate       *time.Time `json:"trialEndDate"`
	CancelInstructions *string    `json:"cancelInstructions" validate:"omitempty,max=2000"`
	Notes              *string    `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateInput is a partial merge; nil fields are left untouched.
type UpdateInput struct {
	Name                  *string    `json:"name" validate:"omitempty,min=1,max=200"`
	CostCents             *int64     `json:"cost" validate:"omitempty,gt=0"`
	Currency              *string    `json:"currency"`
	BillingCycle          *string    `json:"billingCycle"`
	Category              *string    `json:"category"`
	Status                *string    `json:"status"`
	StartDate             *time.Time `json:"startDate"`
	TrialEndDate          *time.Time `json:"trialEndDate"`
	MarkedForCancellation *bool      `json:"markedForCancellation"`
	CancelInstructions    *string    `json:"cancelInstructions" validate:"omitempty,max=2000"`
	Notes                 *string    `json:"notes" validate:"omitempty,max=2000"`
}

// AddUsageInput optionally backdates the usage event.
type AddUsageInput struct {
	UsedAt *time.Time `json:"usedAt"`
}

// View is a subscription decorated with the read-time derivations. None of
// the extra fields are persisted; they are recomputed on every read.
type View struct {
	models.Subscription
	LastUsed         *time.Time            `json:"lastUsed"`
	DaysSinceLastUse *int                  `json:"daysSinceLastUse"`
	UsageStatus      enums.UsageStatus     `json:"usageStatus"`
	UsageCount       int64                 `json:"usageCount"`
	ChargeHistory    []billing.ChargeEvent `json:"chargeHistory"`
}

// IsUnused reports whether the subscription crossed the staleness threshold.
// Never-used subscriptions are a separate bucket and do not count here.
func (v View) IsUnused() bool {
	return v.UsageStatus == enums.UsageStatusUnused
}

// UsagePage is one page of usage records plus the cursor for the next page.
type UsagePage struct {
	Records    []models.UsageRecord `json:"records"`
	NextCursor *string              `json:"nextCursor"`
}
