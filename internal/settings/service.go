package settings

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renewalhq/subtrackr-backend/pkg/db/models"
	"github.com/renewalhq/subtrackr-backend/pkg/enums"
	pkgerrors "github.com/renewalhq/subtrackr-backend/pkg/errors"
)

// Reminder lead-day bounds for the client-side notification knob.
const (
	MinReminderDays = 1
	MaxReminderDays = 30
)

// UpdateInput is a partial settings patch; nil fields are left untouched.
type UpdateInput struct {
	DefaultCurrency     *string `json:"defaultCurrency"`
	EmailNotifications  *bool   `json:"emailNotifications"`
	PushNotifications   *bool   `json:"pushNotifications"`
	RenewalReminderDays *int    `json:"renewalReminderDays"`
}

// AppState is the composite the client bootstraps from.
type AppState struct {
	OnboardingComplete bool                `json:"onboardingComplete"`
	Settings           models.UserSettings `json:"settings"`
}

// Service owns per-user preferences and the onboarding flag. Users who never
// saved settings read the defaults; the row is only written on first change.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)
	Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*models.UserSettings, error)
	AppState(ctx context.Context, userID uuid.UUID) (*AppState, error)
	CompleteOnboarding(ctx context.Context, userID uuid.UUID) (*AppState, error)
	DefaultCurrency(ctx context.Context, userID uuid.UUID) (enums.Currency, error)
}

type service struct {
	repo Repository
}

// NewService builds the settings service with its required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings service requires a repository")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	return s.load(ctx, userID)
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*models.UserSettings, error) {
	settings, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DefaultCurrency != nil {
		currency, err := enums.ParseCurrency(*input.DefaultCurrency)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
		}
		settings.DefaultCurrency = currency
	}
	if input.EmailNotifications != nil {
		settings.EmailNotifications = *input.EmailNotifications
	}
	if input.PushNotifications != nil {
		settings.PushNotifications = *input.PushNotifications
	}
	if input.RenewalReminderDays != nil {
		days := *input.RenewalReminderDays
		if days < MinReminderDays || days > MaxReminderDays {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("renewal reminder days must be between %d and %d", MinReminderDays, MaxReminderDays))
		}
		settings.RenewalReminderDays = days
	}

	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving settings")
	}
	return settings, nil
}

func (s *service) AppState(ctx context.Context, userID uuid.UUID) (*AppState, error) {
	settings, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &AppState{OnboardingComplete: settings.OnboardingComplete, Settings: *settings}, nil
}

func (s *service) CompleteOnboarding(ctx context.Context, userID uuid.UUID) (*AppState, error) {
	settings, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings.OnboardingComplete = true
	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving onboarding state")
	}
	return &AppState{OnboardingComplete: true, Settings: *settings}, nil
}

func (s *service) DefaultCurrency(ctx context.Context, userID uuid.UUID) (enums.Currency, error) {
	settings, err := s.load(ctx, userID)
	if err != nil {
		return "", err
	}
	return settings.DefaultCurrency, nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	settings, err := s.repo.Find(ctx, userID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			defaults := models.DefaultUserSettings(userID)
			return &defaults, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading settings")
	}
	return settings, nil
}
