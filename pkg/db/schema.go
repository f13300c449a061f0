package db

import (
	"gorm.io/gorm"

	"github.com/renewalhq/subtrackr-backend/pkg/db/models"
)

// AllModels lists every persisted model for schema sync.
func AllModels() []any {
	return []any{
		&models.Subscription{},
		&models.UsageRecord{},
		&models.PriceHistory{},
		&models.Alert{},
		&models.UserSettings{},
	}
}

// AutoMigrate syncs the schema through gorm. Used for the sqlite backend and
// in tests; postgres deployments run goose migrations instead.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(AllModels()...)
}
