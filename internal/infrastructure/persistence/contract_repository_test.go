package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subflow/backend/internal/domain/contract"
	"github.com/subflow/backend/internal/domain/shared"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func newMockContractRepository(t *testing.T) (*GormSubscriptionContractRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormSubscriptionContractRepository(gormDB), mock, mockDB
}

func contractRows(id uuid.UUID, number string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "version", "contract_number", "customer_id",
		"start_date", "end_date", "status", "total_tcv", "total_mrr", "currency",
		"billing_frequency", "renewal_type",
	}).AddRow(
		id, now, now, 1, number, uuid.New(),
		now, now.AddDate(1, 0, 0), "ACTIVE", decimal.NewFromInt(12000), decimal.NewFromInt(1000), "USD",
		"MONTHLY", "AUTO",
	)
}

func TestGormSubscriptionContractRepository_FindByID(t *testing.T) {
	t.Run("finds existing contract", func(t *testing.T) {
		repo, mock, mockDB := newMockContractRepository(t)
		defer mockDB.Close()

		contractID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "subscription_contracts" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(contractID, 1).
			WillReturnRows(contractRows(contractID, "SUB-001"))

		sc, err := repo.FindByID(context.Background(), contractID)

		assert.NoError(t, err)
		require.NotNil(t, sc)
		assert.Equal(t, contractID, sc.ID)
		assert.Equal(t, "SUB-001", sc.ContractNumber)
		assert.Equal(t, contract.ContractStatusActive, sc.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for non-existent contract", func(t *testing.T) {
		repo, mock, mockDB := newMockContractRepository(t)
		defer mockDB.Close()

		contractID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "subscription_contracts" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(contractID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		sc, err := repo.FindByID(context.Background(), contractID)

		assert.NoError(t, err)
		assert.Nil(t, sc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSubscriptionContractRepository_ExistsByContractNumber(t *testing.T) {
	t.Run("reports taken number", func(t *testing.T) {
		repo, mock, mockDB := newMockContractRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "subscription_contracts" WHERE contract_number = \$1`).
			WithArgs("SUB-001").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByContractNumber(context.Background(), "SUB-001")

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports free number", func(t *testing.T) {
		repo, mock, mockDB := newMockContractRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "subscription_contracts" WHERE contract_number = \$1`).
			WithArgs("SUB-002").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByContractNumber(context.Background(), "SUB-002")

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSubscriptionContractRepository_SaveWithLock(t *testing.T) {
	t.Run("returns concurrency conflict when version is stale", func(t *testing.T) {
		repo, mock, mockDB := newMockContractRepository(t)
		defer mockDB.Close()

		sc := &contract.SubscriptionContract{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
				Version:    3,
			},
			ContractNumber: "SUB-001",
			CustomerID:     uuid.New(),
			Status:         contract.ContractStatusActive,
			Currency:       "USD",
		}

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "subscription_contracts" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), sc)

		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSubscriptionActionRepository_FindByContract(t *testing.T) {
	t.Run("returns actions most recent first", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormSubscriptionActionRepository(gormDB)

		contractID := uuid.New()
		newer := time.Now()
		older := newer.Add(-time.Hour)
		rows := sqlmock.NewRows([]string{"id", "contract_id", "action_type", "reason", "changes", "performed_by", "action_date"}).
			AddRow(uuid.New(), contractID, "AMEND", "upsell", []byte(`{"amended":{"mrr_delta":"100","recomputed_mrr":"1100","lines":[]}}`), "ops", newer).
			AddRow(uuid.New(), contractID, "NEW", "", []byte(`{}`), "ops", older)

		mock.ExpectQuery(`SELECT \* FROM "subscription_actions" WHERE contract_id = \$1 ORDER BY action_date DESC`).
			WithArgs(contractID).
			WillReturnRows(rows)

		actions, err := repo.FindByContract(context.Background(), contractID)

		assert.NoError(t, err)
		require.Len(t, actions, 2)
		assert.Equal(t, contract.ActionTypeAmend, actions[0].ActionType)
		require.NotNil(t, actions[0].Changes.Amended)
		assert.True(t, actions[0].Changes.Amended.MRRDelta.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, contract.ActionTypeNew, actions[1].ActionType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
