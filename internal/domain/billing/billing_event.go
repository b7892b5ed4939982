package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/subflow/backend/internal/domain/contract"
	"github.com/subflow/backend/internal/domain/shared"
	"github.com/subflow/backend/internal/domain/shared/valueobject"
)

// SourceSystemContracts is the fixed source system for events emitted by this engine
const SourceSystemContracts = "Contracts"

// EventStatus represents the downstream processing status of a billing event
type EventStatus string

const (
	EventStatusPending   EventStatus = "PENDING" // Awaiting AutoInvoice pickup
	EventStatusProcessed EventStatus = "PROCESSED"
	EventStatusFailed    EventStatus = "FAILED"
)

// IsValid checks if the status is a valid EventStatus
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusPending, EventStatusProcessed, EventStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of EventStatus
func (s EventStatus) String() string {
	return string(s)
}

// PeriodKeyFor derives the billing period key for a target date.
// One event is allowed per (product line, period key).
func PeriodKeyFor(targetDate time.Time) string {
	return targetDate.Format("2006-01")
}

// DedupKey derives the uniqueness key for a (line, period) pair
func DedupKey(lineID uuid.UUID, periodKey string) string {
	return fmt.Sprintf("billing:%s:%s", lineID, periodKey)
}

// BillingEvent is one period's recurring charge for one active contract line,
// awaiting invoicing by the downstream AutoInvoice process.
type BillingEvent struct {
	shared.BaseEntity
	SourceSystem        string               `json:"source_system"`
	SourceTransactionID uuid.UUID            `json:"source_transaction_id"` // Product line that generated it
	ContractID          uuid.UUID            `json:"contract_id"`
	CustomerID          uuid.UUID            `json:"customer_id"`
	EventDate           time.Time            `json:"event_date"`
	PeriodKey           string               `json:"period_key"`
	Amount              decimal.Decimal      `json:"amount"`
	Currency            valueobject.Currency `json:"currency"`
	Quantity            decimal.Decimal      `json:"quantity"`
	UnitPrice           decimal.Decimal      `json:"unit_price"`
	Description         string               `json:"description"`
	Status              EventStatus          `json:"status"`
}

// NewBillingEvent creates a pending billing event for one active line of an
// active contract, dated at the target date.
func NewBillingEvent(sc *contract.SubscriptionContract, line *contract.ProductLine, targetDate time.Time) (*BillingEvent, error) {
	if sc == nil || line == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Contract and line are required")
	}
	if !sc.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot bill contract in %s status", sc.Status))
	}
	if !line.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot bill cancelled line %s", line.ID))
	}

	return &BillingEvent{
		BaseEntity:          shared.NewBaseEntity(),
		SourceSystem:        SourceSystemContracts,
		SourceTransactionID: line.ID,
		ContractID:          sc.ID,
		CustomerID:          sc.CustomerID,
		EventDate:           targetDate,
		PeriodKey:           PeriodKeyFor(targetDate),
		Amount:              line.Amount,
		Currency:            sc.Currency,
		Quantity:            line.Quantity,
		UnitPrice:           line.UnitPrice,
		Description:         fmt.Sprintf("Recurring charge for %s (%s)", line.ItemName, sc.ContractNumber),
		Status:              EventStatusPending,
	}, nil
}

// IsPending returns true while the event awaits downstream processing
func (e *BillingEvent) IsPending() bool {
	return e.Status == EventStatusPending
}
