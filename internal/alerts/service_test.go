package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/renewalhq/subtrackr-backend/internal/subscriptions"
	"github.com/renewalhq/subtrackr-backend/pkg/db/models"
	"github.com/renewalhq/subtrackr-backend/pkg/enums"
	pkgerrors "github.com/renewalhq/subtrackr-backend/pkg/errors"
)

var testNow = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

type fakeAlertRepo struct {
	rows map[uuid.UUID]*PersistedAlert
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{rows: map[uuid.UUID]*PersistedAlert{}}
}

func (f *fakeAlertRepo) add(row PersistedAlert) {
	f.rows[row.ID] = &row
}

func (f *fakeAlertRepo) ListActiveByUser(context.Context, uuid.UUID) ([]PersistedAlert, error) {
	var out []PersistedAlert
	for _, row := range f.rows {
		if !row.Dismissed {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeAlertRepo) FindByID(_ context.Context, _ uuid.UUID, alertID uuid.UUID) (*PersistedAlert, error) {
	row, ok := f.rows[alertID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeAlertRepo) Dismiss(_ context.Context, _ uuid.UUID, alertID uuid.UUID) error {
	if row, ok := f.rows[alertID]; ok {
		row.Dismissed = true
	}
	return nil
}

type fakeLister struct {
	views []subscriptions.View
}

func (f fakeLister) List(context.Context, uuid.UUID) ([]subscriptions.View, error) {
	return f.views, nil
}

func view(name string, status enums.SubscriptionStatus) subscriptions.View {
	return subscriptions.View{
		Subscription: models.Subscription{
			ID:     uuid.New(),
			Name:   name,
			Status: status,
		},
		UsageStatus: enums.UsageStatusFresh,
	}
}

func newTestService(t *testing.T, repo Repository, lister subscriptionLister) *service {
	t.Helper()
	svc, err := NewService(repo, lister)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	impl := svc.(*service)
	impl.now = func() time.Time { return testNow }
	return impl
}

func TestListMergesPersistedAndComputed(t *testing.T) {
	repo := newFakeAlertRepo()
	repo.add(PersistedAlert{
		ID:               uuid.New(),
		SubscriptionID:   uuid.New(),
		Type:             enums.AlertTypePriceIncrease,
		Message:          "Spotify price increased from $9.99 to $12.99",
		CreatedAt:        testNow.AddDate(0, 0, -1),
		SubscriptionName: "Spotify",
	})

	renewing := view("Netflix", enums.SubscriptionStatusActive)
	next := testNow.AddDate(0, 0, 3)
	renewing.NextBillingDate = &next

	trial := view("Apple TV+", enums.SubscriptionStatusTrial)
	trialEnd := testNow.AddDate(0, 0, 5)
	trial.TrialEndDate = &trialEnd

	stale := view("Gym", enums.SubscriptionStatusActive)
	stale.UsageStatus = enums.UsageStatusUnused
	days := 90
	stale.DaysSinceLastUse = &days

	svc := newTestService(t, repo, fakeLister{views: []subscriptions.View{renewing, trial, stale}})

	views, err := svc.List(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	counts := map[enums.AlertType]int{}
	for _, v := range views {
		counts[v.Type]++
	}
	want := map[enums.AlertType]int{
		enums.AlertTypePriceIncrease:   1,
		enums.AlertTypeUpcomingRenewal: 1,
		enums.AlertTypeTrialEnding:     1,
		enums.AlertTypeUnused:          1,
	}
	for alertType, n := range want {
		if counts[alertType] != n {
			t.Fatalf("expected %d %s alerts, got %d (all: %v)", n, alertType, counts[alertType], counts)
		}
	}

	for _, v := range views {
		if v.Type == enums.AlertTypePriceIncrease && v.ID == nil {
			t.Fatal("persisted alert should carry an id")
		}
		if v.Type != enums.AlertTypePriceIncrease && v.ID != nil {
			t.Fatalf("computed %s alert should not carry an id", v.Type)
		}
	}
}

func TestComputedWindowEdges(t *testing.T) {
	tests := []struct {
		name    string
		daysOut int
		want    bool
	}{
		{"renewal today qualifies", 0, true},
		{"renewal in 7 days qualifies", 7, true},
		{"renewal in 8 days does not", 8, false},
		{"renewal passed does not", -1, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sub := view("Netflix", enums.SubscriptionStatusActive)
			next := testNow.AddDate(0, 0, tc.daysOut)
			sub.NextBillingDate = &next

			out := upcomingRenewals([]subscriptions.View{sub}, testNow)
			if got := len(out) == 1; got != tc.want {
				t.Fatalf("expected qualification %v, got %d alerts", tc.want, len(out))
			}
		})
	}
}

func TestDuplicateDetectionFoldsCase(t *testing.T) {
	a := view("Netflix", enums.SubscriptionStatusActive)
	b := view("netflix premium", enums.SubscriptionStatusActive)
	c := view("Spotify", enums.SubscriptionStatusActive)
	cancelled := view("NETFLIX", enums.SubscriptionStatusCancelled)

	out := duplicates([]subscriptions.View{a, b, c, cancelled})
	if len(out) != 1 {
		t.Fatalf("expected 1 duplicate alert, got %d", len(out))
	}
	if out[0].Type != enums.AlertTypeDuplicate {
		t.Fatalf("expected duplicate type, got %s", out[0].Type)
	}
}

func TestDismissIsIdempotentAndTerminal(t *testing.T) {
	repo := newFakeAlertRepo()
	alertID := uuid.New()
	repo.add(PersistedAlert{
		ID:               alertID,
		SubscriptionID:   uuid.New(),
		Type:             enums.AlertTypePriceIncrease,
		Message:          "Hulu price increased from $7.99 to $9.99",
		CreatedAt:        testNow,
		SubscriptionName: "Hulu",
	})
	svc := newTestService(t, repo, fakeLister{})

	dismissed, err := svc.Dismiss(context.Background(), uuid.New(), alertID)
	if err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	if !dismissed.Dismissed {
		t.Fatal("expected dismissed flag set")
	}

	again, err := svc.Dismiss(context.Background(), uuid.New(), alertID)
	if err != nil {
		t.Fatalf("second dismiss: %v", err)
	}
	if !again.Dismissed {
		t.Fatal("expected dismissal to stick")
	}
}

func TestDismissUnknownAlertIsNotFound(t *testing.T) {
	svc := newTestService(t, newFakeAlertRepo(), fakeLister{})

	_, err := svc.Dismiss(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
