package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/renewalhq/subtrackr-backend/pkg/enums"
)

// UserSettings holds the per-user preferences. One row per user, upserted.
// RenewalReminderDays only drives client-side notification scheduling; the
// read-time alert window is fixed and independent of it.
type UserSettings struct {
	UserID              uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey" json:"-"`
	DefaultCurrency     enums.Currency `gorm:"column:default_currency;type:text;not null;default:'USD'" json:"defaultCurrency"`
	EmailNotifications  bool           `gorm:"column:email_notifications;not null;default:false" json:"emailNotifications"`
	PushNotifications   bool           `gorm:"column:push_notifications;not null;default:false" json:"pushNotifications"`
	RenewalReminderDays int            `gorm:"column:renewal_reminder_days;not null;default:7" json:"renewalReminderDays"`
	OnboardingComplete  bool           `gorm:"column:onboarding_complete;not null;default:false" json:"-"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"-"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"-"`
}

// TableName pins the table name across gorm naming strategies.
func (UserSettings) TableName() string {
	return "user_settings"
}

// DefaultUserSettings returns the settings used before a user saves any.
func DefaultUserSettings(userID uuid.UUID) UserSettings {
	return UserSettings{
		UserID:              userID,
		DefaultCurrency:     enums.CurrencyUSD,
		EmailNotifications:  false,
		PushNotifications:   false,
		RenewalReminderDays: 7,
	}
}
