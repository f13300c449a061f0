package db

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/renewalhq/subtrackr-backend/pkg/config"
	"github.com/renewalhq/subtrackr-backend/pkg/db/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(context.Background(), config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    "file::memory:",
	}, nil)
	if err != nil {
		t.Fatalf("failed to open sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewSQLiteClientPings(t *testing.T) {
	client := newTestClient(t)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestAutoMigrateCreatesTables(t *testing.T) {
	client := newTestClient(t)
	if err := AutoMigrate(client.DB()); err != nil {
		t.Fatalf("unexpected migrate error: %v", err)
	}
	for _, model := range AllModels() {
		if !client.DB().Migrator().HasTable(model) {
			t.Fatalf("expected table for %T", model)
		}
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	client := newTestClient(t)
	if err := AutoMigrate(client.DB()); err != nil {
		t.Fatalf("unexpected migrate error: %v", err)
	}

	boom := errors.New("boom")
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&models.Alert{Message: "tx row", Type: "price_increase"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got %v", err)
	}

	var count int64
	if err := client.DB().Model(&models.Alert{}).Count(&count).Error; err != nil {
		t.Fatalf("count error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback, found %d rows", count)
	}
}
