package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/renewalhq/subtrackr-backend/api/middleware"
	"github.com/renewalhq/subtrackr-backend/internal/subscriptions"
	"github.com/renewalhq/subtrackr-backend/pkg/db/models"
	pkgerrors "github.com/renewalhq/subtrackr-backend/pkg/errors"
	"github.com/renewalhq/subtrackr-backend/pkg/logger"
	"github.com/renewalhq/subtrackr-backend/pkg/pagination"
)

type testSubscriptionsService struct {
	listFn         func(ctx context.Context, userID uuid.UUID) ([]subscriptions.View, error)
	getFn          func(ctx context.Context, userID, id uuid.UUID) (*subscriptions.View, error)
	createFn       func(ctx context.Context, userID uuid.UUID, input subscriptions.CreateInput) (*subscriptions.View, error)
	updateFn       func(ctx context.Context, userID, id uuid.UUID, input subscriptions.UpdateInput) (*subscriptions.View, error)
	cancelFn       func(ctx context.Context, userID, id uuid.UUID) (*subscriptions.View, error)
	toggleFn       func(ctx context.Context, userID, id uuid.UUID) (*subscriptions.View, error)
	deleteFn       func(ctx context.Context, userID, id uuid.UUID) error
	addUsageFn     func(ctx context.Context, userID, id uuid.UUID, input subscriptions.AddUsageInput) (*models.UsageRecord, error)
	listUsageFn    func(ctx context.Context, userID, id uuid.UUID, page pagination.Params) (*subscriptions.UsagePage, error)
	priceHistoryFn func(ctx context.Context, userID, id uuid.UUID) ([]models.PriceHistory, error)
}

func (s *testSubscriptionsService) List(ctx context.Context, userID uuid.UUID) ([]subscriptions.View, error) {
	if s.listFn != nil {
		return s.listFn(ctx, userID)
	}
	return nil, nil
}

func (s *testSubscriptionsService) Get(ctx context.Context, userID, id uuid.UUID) (*subscriptions.View, error) {
	if s.getFn != nil {
		return s.getFn(ctx, userID, id)
	}
	return nil, nil
}

func (s *testSubscriptionsService) Create(ctx context.Context, userID uuid.UUID, input subscriptions.CreateInput) (*subscriptions.View, error) {
	if s.createFn != nil {
		return s.createFn(ctx, userID, input)
	}
	return nil, nil
}

func (s *testSubscriptionsService) Update(ctx context.Context, userID, id uuid.UUID, input subscriptions.UpdateInput) (*subscriptions.View, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, userID, id, input)
	}
	return nil, nil
}

func (s *testSubscriptionsService) Cancel(ctx context.Context, userID, id uuid.UUID) (*subscriptions.View, error) {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, userID, id)
	}
	return nil, nil
}

func (s *testSubscriptionsService) ToggleCancellation(ctx context.Context, userID, id uuid.UUID) (*subscriptions.View, error) {
	if s.toggleFn != nil {
		return s.toggleFn(ctx, userID, id)
	}
	return nil, nil
}

func (s *testSubscriptionsService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, userID, id)
	}
	return nil
}

func (s *testSubscriptionsService) AddUsage(ctx context.Context, userID, id uuid.UUID, input subscriptions.AddUsageInput) (*models.UsageRecord, error) {
	if s.addUsageFn != nil {
		return s.addUsageFn(ctx, userID, id, input)
	}
	return nil, nil
}

func (s *testSubscriptionsService) ListUsage(ctx context.Context, userID, id uuid.UUID, page pagination.Params) (*subscriptions.UsagePage, error) {
	if s.listUsageFn != nil {
		return s.listUsageFn(ctx, userID, id, page)
	}
	return nil, nil
}

func (s *testSubscriptionsService) PriceHistory(ctx context.Context, userID, id uuid.UUID) ([]models.PriceHistory, error) {
	if s.priceHistoryFn != nil {
		return s.priceHistoryFn(ctx, userID, id)
	}
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func authedRequest(method, target string, userID uuid.UUID, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestSubscriptionsCreateSuccess(t *testing.T) {
	userID := uuid.New()
	var gotInput subscriptions.CreateInput
	svc := &testSubscriptionsService{
		createFn: func(ctx context.Context, uid uuid.UUID, input subscriptions.CreateInput) (*subscriptions.View, error) {
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			gotInput = input
			view := &subscriptions.View{}
			view.Name = input.Name
			view.CostCents = input.CostCents
			return view, nil
		},
	}

	body := strings.NewReader(`{"name":"Netflix","cost":1549,"billingCycle":"monthly","category":"streaming","startDate":"2024-01-15T00:00:00Z"}`)
	req := authedRequest(http.MethodPost, "/api/subscriptions", userID, body)
	resp := httptest.NewRecorder()
	SubscriptionsCreate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotInput.Name != "Netflix" || gotInput.CostCents != 1549 {
		t.Fatalf("input not forwarded: %+v", gotInput)
	}
	var envelope struct {
		Data struct {
			Name string `json:"name"`
			Cost int64  `json:"cost"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Name != "Netflix" || envelope.Data.Cost != 1549 {
		t.Fatalf("unexpected envelope %+v", envelope.Data)
	}
}

func TestSubscriptionsCreateRejectsUnknownFields(t *testing.T) {
	svc := &testSubscriptionsService{
		createFn: func(context.Context, uuid.UUID, subscriptions.CreateInput) (*subscriptions.View, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	body := strings.NewReader(`{"name":"Netflix","cost":1549,"billingCycle":"monthly","category":"streaming","startDate":"2024-01-15T00:00:00Z","bogus":true}`)
	req := authedRequest(http.MethodPost, "/api/subscriptions", uuid.New(), body)
	resp := httptest.NewRecorder()
	SubscriptionsCreate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSubscriptionsCreateRequiresAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/subscriptions", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	SubscriptionsCreate(&testSubscriptionsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestSubscriptionsGetRejectsMalformedID(t *testing.T) {
	req := authedRequest(http.MethodGet, "/api/subscriptions/not-a-uuid", uuid.New(), nil)
	req = addRouteParam(req, "id", "not-a-uuid")
	resp := httptest.NewRecorder()
	SubscriptionsGet(&testSubscriptionsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSubscriptionsCancelMapsStateConflict(t *testing.T) {
	svc := &testSubscriptionsService{
		cancelFn: func(context.Context, uuid.UUID, uuid.UUID) (*subscriptions.View, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "subscription is already cancelled")
		},
	}

	id := uuid.New()
	req := authedRequest(http.MethodPost, "/api/subscriptions/"+id.String()+"/cancel", uuid.New(), nil)
	req = addRouteParam(req, "id", id.String())
	resp := httptest.NewRecorder()
	SubscriptionsCancel(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
}

func TestSubscriptionsAddUsageAllowsEmptyBody(t *testing.T) {
	called := false
	svc := &testSubscriptionsService{
		addUsageFn: func(_ context.Context, _, _ uuid.UUID, input subscriptions.AddUsageInput) (*models.UsageRecord, error) {
			called = true
			if input.UsedAt != nil {
				t.Fatalf("expected empty input, got %+v", input)
			}
			return &models.UsageRecord{}, nil
		},
	}

	id := uuid.New()
	req := authedRequest(http.MethodPost, "/api/subscriptions/"+id.String()+"/usage", uuid.New(), nil)
	req = addRouteParam(req, "id", id.String())
	resp := httptest.NewRecorder()
	SubscriptionsAddUsage(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestSubscriptionsListUsageParsesPagination(t *testing.T) {
	var gotPage pagination.Params
	svc := &testSubscriptionsService{
		listUsageFn: func(_ context.Context, _, _ uuid.UUID, page pagination.Params) (*subscriptions.UsagePage, error) {
			gotPage = page
			return &subscriptions.UsagePage{Records: []models.UsageRecord{}}, nil
		},
	}

	id := uuid.New()
	req := authedRequest(http.MethodGet, "/api/subscriptions/"+id.String()+"/usage?limit=10&cursor=abc", uuid.New(), nil)
	req = addRouteParam(req, "id", id.String())
	resp := httptest.NewRecorder()
	SubscriptionsListUsage(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotPage.Limit != 10 || gotPage.Cursor != "abc" {
		t.Fatalf("pagination not forwarded: %+v", gotPage)
	}
}

func TestSubscriptionsListUsageRejectsBadLimit(t *testing.T) {
	id := uuid.New()
	req := authedRequest(http.MethodGet, "/api/subscriptions/"+id.String()+"/usage?limit=zero", uuid.New(), nil)
	req = addRouteParam(req, "id", id.String())
	resp := httptest.NewRecorder()
	SubscriptionsListUsage(&testSubscriptionsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
