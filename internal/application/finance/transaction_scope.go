package finance

import (
	"context"

	"github.com/subflow/backend/internal/domain/finance"
)

// TransactionScope provides transactional access to finance repositories.
// Credit memo creation writes the memo and the adjustment to the original
// invoice in one transaction; a failure rolls both back.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to finance repositories scoped
// to the current transaction.
type TransactionalRepositories interface {
	// InvoiceRepo returns the invoice repository scoped to the transaction
	InvoiceRepo() finance.InvoiceRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful in tests.
type NoOpTransactionScope struct {
	invoiceRepo finance.InvoiceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repository
func NewNoOpTransactionScope(invoiceRepo finance.InvoiceRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{invoiceRepo: invoiceRepo}
}

// Execute runs the function without transactional guarantees
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository
func (s *NoOpTransactionScope) InvoiceRepo() finance.InvoiceRepository {
	return s.invoiceRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
