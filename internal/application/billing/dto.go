package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/subflow/backend/internal/domain/billing"
)

// GenerateBillingRequest is the payload for a billing run. TargetDate
// defaults to the current time when absent.
type GenerateBillingRequest struct {
	TargetDate *time.Time `json:"target_date"`
}

// BillingRunSummary reports the outcome of one billing run, including the
// events the run created. Skipped lines contribute nothing to Events.
type BillingRunSummary struct {
	TargetDate         time.Time              `json:"target_date"`
	PeriodKey          string                 `json:"period_key"`
	ContractsProcessed int                    `json:"contracts_processed"`
	ContractsFailed    int                    `json:"contracts_failed"`
	EventsCreated      int                    `json:"events_created"`
	LinesSkipped       int                    `json:"lines_skipped"`
	Events             []BillingEventResponse `json:"events"`
	Errors             []string               `json:"errors,omitempty"`
}

// BillingEventListFilter represents filter options for billing event queries
type BillingEventListFilter struct {
	ContractID *uuid.UUID `form:"contract_id"`
	PeriodKey  string     `form:"period_key" binding:"omitempty,period_key"`
	Status     string     `form:"status" binding:"omitempty,oneof=PENDING PROCESSED FAILED"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// BillingEventResponse represents a billing event in API responses
type BillingEventResponse struct {
	ID                  uuid.UUID       `json:"id"`
	SourceSystem        string          `json:"source_system"`
	SourceTransactionID uuid.UUID       `json:"source_transaction_id"`
	ContractID          uuid.UUID       `json:"contract_id"`
	CustomerID          uuid.UUID       `json:"customer_id"`
	EventDate           time.Time       `json:"event_date"`
	PeriodKey           string          `json:"period_key"`
	Amount              decimal.Decimal `json:"amount"`
	Currency            string          `json:"currency"`
	Quantity            decimal.Decimal `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	Description         string          `json:"description"`
	Status              string          `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
}

// ToBillingEventResponse converts a domain billing event to a response DTO
func ToBillingEventResponse(event *billing.BillingEvent) BillingEventResponse {
	return BillingEventResponse{
		ID:                  event.ID,
		SourceSystem:        event.SourceSystem,
		SourceTransactionID: event.SourceTransactionID,
		ContractID:          event.ContractID,
		CustomerID:          event.CustomerID,
		EventDate:           event.EventDate,
		PeriodKey:           event.PeriodKey,
		Amount:              event.Amount,
		Currency:            event.Currency.String(),
		Quantity:            event.Quantity,
		UnitPrice:           event.UnitPrice,
		Description:         event.Description,
		Status:              event.Status.String(),
		CreatedAt:           event.CreatedAt,
	}
}
