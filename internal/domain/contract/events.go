package contract

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/subflow/backend/internal/domain/shared"
)

const aggregateType = "SubscriptionContract"

// Event type constants
const (
	EventTypeContractCreated    = "contract.created"
	EventTypeContractAmended    = "contract.amended"
	EventTypeContractRenewed    = "contract.renewed"
	EventTypeContractTerminated = "contract.terminated"
)

// ContractCreatedEvent is published when a new contract is created
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractNumber string          `json:"contract_number"`
	TotalTCV       decimal.Decimal `json:"total_tcv"`
	TotalMRR       decimal.Decimal `json:"total_mrr"`
	LineCount      int             `json:"line_count"`
}

// NewContractCreatedEvent creates a ContractCreatedEvent
func NewContractCreatedEvent(sc *SubscriptionContract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractCreated, sc.ID, aggregateType),
		ContractNumber:  sc.ContractNumber,
		TotalTCV:        sc.TotalTCV,
		TotalMRR:        sc.TotalMRR,
		LineCount:       len(sc.Lines),
	}
}

// ContractAmendedEvent is published when a contract is amended
type ContractAmendedEvent struct {
	shared.BaseDomainEvent
	ContractNumber string          `json:"contract_number"`
	MRRDelta       decimal.Decimal `json:"mrr_delta"`
	TotalMRR       decimal.Decimal `json:"total_mrr"`
}

// NewContractAmendedEvent creates a ContractAmendedEvent
func NewContractAmendedEvent(sc *SubscriptionContract, mrrDelta decimal.Decimal) *ContractAmendedEvent {
	return &ContractAmendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractAmended, sc.ID, aggregateType),
		ContractNumber:  sc.ContractNumber,
		MRRDelta:        mrrDelta,
		TotalMRR:        sc.TotalMRR,
	}
}

// ContractRenewedEvent is published when a contract is renewed
type ContractRenewedEvent struct {
	shared.BaseDomainEvent
	ContractNumber  string    `json:"contract_number"`
	PreviousEndDate time.Time `json:"previous_end_date"`
	NewEndDate      time.Time `json:"new_end_date"`
}

// NewContractRenewedEvent creates a ContractRenewedEvent
func NewContractRenewedEvent(sc *SubscriptionContract, previousEnd time.Time) *ContractRenewedEvent {
	return &ContractRenewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractRenewed, sc.ID, aggregateType),
		ContractNumber:  sc.ContractNumber,
		PreviousEndDate: previousEnd,
		NewEndDate:      sc.EndDate,
	}
}

// ContractTerminatedEvent is published when a contract is terminated
type ContractTerminatedEvent struct {
	shared.BaseDomainEvent
	ContractNumber string `json:"contract_number"`
	Reason         string `json:"reason"`
}

// NewContractTerminatedEvent creates a ContractTerminatedEvent
func NewContractTerminatedEvent(sc *SubscriptionContract, reason string) *ContractTerminatedEvent {
	return &ContractTerminatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractTerminated, sc.ID, aggregateType),
		ContractNumber:  sc.ContractNumber,
		Reason:          reason,
	}
}
