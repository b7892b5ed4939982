package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/subflow/backend/internal/domain/shared"
)

// ContractFilter defines filtering options for contract list queries
type ContractFilter struct {
	shared.Filter
	CustomerID *uuid.UUID      // Filter by customer
	Status     *ContractStatus // Filter by status
	EndsBefore *time.Time      // Filter by end date upper bound
}

// SubscriptionContractRepository defines the persistence interface for the
// contract aggregate. FindAggregateByID performs the composed fetch (contract
// plus lines plus actions ordered most-recent-first) so the join stays at the
// storage boundary.
type SubscriptionContractRepository interface {
	// FindByID finds a contract header without children
	FindByID(ctx context.Context, id uuid.UUID) (*SubscriptionContract, error)

	// FindAggregateByID finds a contract with its full line list and its
	// action history ordered descending by action date
	FindAggregateByID(ctx context.Context, id uuid.UUID) (*SubscriptionContract, error)

	// FindByContractNumber finds a contract by its caller-unique number
	FindByContractNumber(ctx context.Context, contractNumber string) (*SubscriptionContract, error)

	// FindActiveWithLines returns all active contracts with their lines
	// preloaded, for the billing sweep
	FindActiveWithLines(ctx context.Context) ([]SubscriptionContract, error)

	// FindAll lists contracts matching the filter
	FindAll(ctx context.Context, filter ContractFilter) ([]SubscriptionContract, error)

	// Count counts contracts matching the filter
	Count(ctx context.Context, filter ContractFilter) (int64, error)

	// Save creates or updates a contract together with its lines and any
	// newly appended actions
	Save(ctx context.Context, sc *SubscriptionContract) error

	// SaveWithLock saves with an optimistic version check
	SaveWithLock(ctx context.Context, sc *SubscriptionContract) error

	// ExistsByContractNumber checks whether a contract number is taken
	ExistsByContractNumber(ctx context.Context, contractNumber string) (bool, error)
}

// SubscriptionActionRepository gives read access to the append-only audit log
type SubscriptionActionRepository interface {
	// FindByContract returns a contract's actions ordered descending by
	// action date
	FindByContract(ctx context.Context, contractID uuid.UUID) ([]SubscriptionAction, error)

	// Append writes one audit action record
	Append(ctx context.Context, action *SubscriptionAction) error
}
