package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/subflow/backend/internal/domain/shared"
)

// EventFilter defines filtering options for billing event queries
type EventFilter struct {
	shared.Filter
	ContractID *uuid.UUID   // Filter by contract
	PeriodKey  *string      // Filter by billing period
	Status     *EventStatus // Filter by status
}

// BillingEventRepository defines the persistence interface for billing events.
// The (source_transaction_id, period_key) pair is unique; ExistsForLinePeriod
// backs the generator's idempotency check inside the insert transaction.
type BillingEventRepository interface {
	// FindByID finds a billing event by ID
	FindByID(ctx context.Context, id uuid.UUID) (*BillingEvent, error)

	// FindAll lists billing events matching the filter
	FindAll(ctx context.Context, filter EventFilter) ([]BillingEvent, error)

	// Count counts billing events matching the filter
	Count(ctx context.Context, filter EventFilter) (int64, error)

	// ExistsForLinePeriod checks whether an event already exists for the
	// given product line and billing period
	ExistsForLinePeriod(ctx context.Context, lineID uuid.UUID, periodKey string) (bool, error)

	// Save persists a billing event
	Save(ctx context.Context, event *BillingEvent) error
}
