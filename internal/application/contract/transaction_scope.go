package contract

import (
	"context"

	"github.com/subflow/backend/internal/domain/contract"
)

// TransactionScope provides transactional access to contract repositories.
// Everything executed within one scope commits or rolls back atomically, so a
// lifecycle mutation persists the contract row, its lines and the appended
// audit action together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to contract repositories scoped
// to the current transaction.
type TransactionalRepositories interface {
	// ContractRepo returns the contract repository scoped to the transaction
	ContractRepo() contract.SubscriptionContractRepository
	// ActionRepo returns the action repository scoped to the transaction
	ActionRepo() contract.SubscriptionActionRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful in tests.
type NoOpTransactionScope struct {
	contractRepo contract.SubscriptionContractRepository
	actionRepo   contract.SubscriptionActionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	contractRepo contract.SubscriptionContractRepository,
	actionRepo contract.SubscriptionActionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		contractRepo: contractRepo,
		actionRepo:   actionRepo,
	}
}

// Execute runs the function without transactional guarantees
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ContractRepo returns the contract repository
func (s *NoOpTransactionScope) ContractRepo() contract.SubscriptionContractRepository {
	return s.contractRepo
}

// ActionRepo returns the action repository
func (s *NoOpTransactionScope) ActionRepo() contract.SubscriptionActionRepository {
	return s.actionRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
