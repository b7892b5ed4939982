package billing

import (
	"context"

	"github.com/subflow/backend/internal/domain/billing"
)

// TransactionScope provides transactional access to billing repositories.
// One contract's events for a run are inserted atomically, so the existence
// check and the insert see the same transaction.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to billing repositories scoped
// to the current transaction.
type TransactionalRepositories interface {
	// EventRepo returns the billing event repository scoped to the transaction
	EventRepo() billing.BillingEventRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful in tests.
type NoOpTransactionScope struct {
	eventRepo billing.BillingEventRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repository
func NewNoOpTransactionScope(eventRepo billing.BillingEventRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{eventRepo: eventRepo}
}

// Execute runs the function without transactional guarantees
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// EventRepo returns the billing event repository
func (s *NoOpTransactionScope) EventRepo() billing.BillingEventRepository {
	return s.eventRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
