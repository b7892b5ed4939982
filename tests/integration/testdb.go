// Package integration provides full-stack tests that run the application
// services against a real database. SQLite keeps the suite self-contained;
// the schema is driven from the same persistence models the server uses.
package integration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/subflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB creates a fresh SQLite database for one test. Each test gets its
// own file under t.TempDir(), so tests are fully isolated and the file is
// removed automatically.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "subflow_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "Failed to open test database")

	err = db.AutoMigrate(
		&models.SubscriptionContractModel{},
		&models.ProductLineModel{},
		&models.SubscriptionActionModel{},
		&models.BillingEventModel{},
		&models.InvoiceModel{},
		&models.InvoiceLineModel{},
		&models.InvoiceAdjustmentModel{},
	)
	require.NoError(t, err, "Failed to migrate test database")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}
