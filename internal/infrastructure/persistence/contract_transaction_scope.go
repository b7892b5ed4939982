package persistence

import (
	"context"

	appcontract "github.com/subflow/backend/internal/application/contract"
	"github.com/subflow/backend/internal/domain/contract"
	"gorm.io/gorm"
)

// ContractTransactionScope implements the contract TransactionScope using
// GORM transactions. A lifecycle mutation persists the contract row, its
// lines and the audit action atomically.
type ContractTransactionScope struct {
	db *gorm.DB
}

// NewContractTransactionScope creates a new ContractTransactionScope
func NewContractTransactionScope(db *gorm.DB) *ContractTransactionScope {
	return &ContractTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *ContractTransactionScope) Execute(ctx context.Context, fn func(repos appcontract.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&contractTransactionalRepositories{tx: tx})
	})
}

// contractTransactionalRepositories provides contract repositories scoped to
// the current transaction
type contractTransactionalRepositories struct {
	tx *gorm.DB
}

// ContractRepo returns the contract repository scoped to the transaction
func (r *contractTransactionalRepositories) ContractRepo() contract.SubscriptionContractRepository {
	return NewGormSubscriptionContractRepository(r.tx)
}

// ActionRepo returns the action repository scoped to the transaction
func (r *contractTransactionalRepositories) ActionRepo() contract.SubscriptionActionRepository {
	return NewGormSubscriptionActionRepository(r.tx)
}

var _ appcontract.TransactionScope = (*ContractTransactionScope)(nil)
var _ appcontract.TransactionalRepositories = (*contractTransactionalRepositories)(nil)
