package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subflow/backend/internal/domain/finance"
	"github.com/subflow/backend/internal/domain/shared"
	"gorm.io/gorm"
)

func invoiceRows(id uuid.UUID, number, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "version", "invoice_number", "customer_id",
		"amount", "total_amount", "balance_due", "currency", "status",
		"transaction_class", "source_transaction_id", "issued_at",
	}).AddRow(
		id, now, now, 1, number, uuid.New(),
		decimal.NewFromInt(5000), decimal.NewFromInt(5000), decimal.NewFromInt(5000), "USD", status,
		"INVOICE", nil, nil,
	)
}

func TestGormInvoiceRepository_FindByID(t *testing.T) {
	t.Run("finds invoice with lines and adjustments", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoiceID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(invoiceID, 1).
			WillReturnRows(invoiceRows(invoiceID, "INV-100", "DRAFT"))
		mock.ExpectQuery(`SELECT \* FROM "invoice_lines" WHERE "invoice_lines"\."invoice_id" = \$1`).
			WithArgs(invoiceID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "invoice_id", "description", "quantity", "unit_price", "amount", "created_at"}).
				AddRow(uuid.New(), invoiceID, "Platform fee", decimal.NewFromInt(1), decimal.NewFromInt(5000), decimal.NewFromInt(5000), time.Now()))
		mock.ExpectQuery(`SELECT \* FROM "invoice_adjustments" WHERE "invoice_adjustments"\."invoice_id" = \$1`).
			WithArgs(invoiceID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "invoice_id", "source_id", "amount", "reason", "posted_at"}))

		inv, err := repo.FindByID(context.Background(), invoiceID)

		assert.NoError(t, err)
		require.NotNil(t, inv)
		assert.Equal(t, "INV-100", inv.InvoiceNumber)
		assert.Equal(t, finance.InvoiceStatusDraft, inv.Status)
		require.Len(t, inv.Lines, 1)
		assert.Equal(t, "Platform fee", inv.Lines[0].Description)
		assert.Empty(t, inv.Adjustments)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for non-existent invoice", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoiceID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(invoiceID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		inv, err := repo.FindByID(context.Background(), invoiceID)

		assert.NoError(t, err)
		assert.Nil(t, inv)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_SaveWithLock(t *testing.T) {
	t.Run("returns concurrency conflict when version is stale", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		inv := &finance.Invoice{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
				Version:    2,
			},
			InvoiceNumber:    "INV-100",
			CustomerID:       uuid.New(),
			Amount:           decimal.NewFromInt(5000),
			TotalAmount:      decimal.NewFromInt(5000),
			BalanceDue:       decimal.NewFromInt(5000),
			Currency:         "USD",
			Status:           finance.InvoiceStatusIssued,
			TransactionClass: finance.TransactionClassInvoice,
		}

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "invoices" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), inv)

		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
