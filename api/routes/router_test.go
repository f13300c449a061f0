package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/renewalhq/subtrackr-backend/internal/settings"
	pkgauth "github.com/renewalhq/subtrackr-backend/pkg/auth"
	"github.com/renewalhq/subtrackr-backend/pkg/config"
	"github.com/renewalhq/subtrackr-backend/pkg/db/models"
	"github.com/renewalhq/subtrackr-backend/pkg/enums"
	"github.com/renewalhq/subtrackr-backend/pkg/logger"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubSettingsService struct{}

func (stubSettingsService) Get(_ context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	s := models.DefaultUserSettings(userID)
	return &s, nil
}

func (stubSettingsService) Update(_ context.Context, userID uuid.UUID, _ settings.UpdateInput) (*models.UserSettings, error) {
	s := models.DefaultUserSettings(userID)
	return &s, nil
}

func (stubSettingsService) AppState(context.Context, uuid.UUID) (*settings.AppState, error) {
	return &settings.AppState{}, nil
}

func (stubSettingsService) CompleteOnboarding(context.Context, uuid.UUID) (*settings.AppState, error) {
	return &settings.AppState{OnboardingComplete: true}, nil
}

func (stubSettingsService) DefaultCurrency(context.Context, uuid.UUID) (enums.Currency, error) {
	return enums.CurrencyUSD, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT = config.JWTConfig{Secret: "router-test-secret", Issuer: "subtrackr-test", ExpirationMinutes: 15}
	return NewRouter(Deps{
		Config:   cfg,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:       stubPinger{},
		Settings: stubSettingsService{},
	})
}

func TestHealthLiveIsPublic(t *testing.T) {
	resp := httptest.NewRecorder()
	testRouter(t).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestMetricsEndpointIsPublic(t *testing.T) {
	resp := httptest.NewRecorder()
	testRouter(t).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAPIRoutesRequireAuth(t *testing.T) {
	paths := []string{"/api/subscriptions", "/api/alerts", "/api/savings", "/api/settings", "/api/app-state"}
	router := testRouter(t)
	for _, path := range paths {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, resp.Code)
		}
	}
}

func TestAuthedRequestReachesHandler(t *testing.T) {
	cfg := config.JWTConfig{Secret: "router-test-secret", Issuer: "subtrackr-test", ExpirationMinutes: 15}
	token, err := pkgauth.MintAccessToken(cfg, time.Now(), pkgauth.AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/app-state", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	testRouter(t).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data settings.AppState `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
}
