package persistence

import (
	"context"

	appfinance "github.com/subflow/backend/internal/application/finance"
	"github.com/subflow/backend/internal/domain/finance"
	"gorm.io/gorm"
)

// FinanceTransactionScope implements the finance TransactionScope using GORM
// transactions. Credit memo creation writes the memo and the adjustment to
// the original invoice atomically.
type FinanceTransactionScope struct {
	db *gorm.DB
}

// NewFinanceTransactionScope creates a new FinanceTransactionScope
func NewFinanceTransactionScope(db *gorm.DB) *FinanceTransactionScope {
	return &FinanceTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *FinanceTransactionScope) Execute(ctx context.Context, fn func(repos appfinance.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&financeTransactionalRepositories{tx: tx})
	})
}

// financeTransactionalRepositories provides finance repositories scoped to
// the current transaction
type financeTransactionalRepositories struct {
	tx *gorm.DB
}

// InvoiceRepo returns the invoice repository scoped to the transaction
func (r *financeTransactionalRepositories) InvoiceRepo() finance.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

var _ appfinance.TransactionScope = (*FinanceTransactionScope)(nil)
var _ appfinance.TransactionalRepositories = (*financeTransactionalRepositories)(nil)
