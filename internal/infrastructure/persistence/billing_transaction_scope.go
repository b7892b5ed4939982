package persistence

import (
	"context"

	appbilling "github.com/subflow/backend/internal/application/billing"
	"github.com/subflow/backend/internal/domain/billing"
	"gorm.io/gorm"
)

// BillingTransactionScope implements the billing TransactionScope using GORM
// transactions. The existence check and the event insert for one contract run
// in the same transaction.
type BillingTransactionScope struct {
	db *gorm.DB
}

// NewBillingTransactionScope creates a new BillingTransactionScope
func NewBillingTransactionScope(db *gorm.DB) *BillingTransactionScope {
	return &BillingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *BillingTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&billingTransactionalRepositories{tx: tx})
	})
}

// billingTransactionalRepositories provides billing repositories scoped to
// the current transaction
type billingTransactionalRepositories struct {
	tx *gorm.DB
}

// EventRepo returns the billing event repository scoped to the transaction
func (r *billingTransactionalRepositories) EventRepo() billing.BillingEventRepository {
	return NewGormBillingEventRepository(r.tx)
}

var _ appbilling.TransactionScope = (*BillingTransactionScope)(nil)
var _ appbilling.TransactionalRepositories = (*billingTransactionalRepositories)(nil)
