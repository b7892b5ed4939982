package finance

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/subflow/backend/internal/domain/shared"
)

const aggregateType = "Invoice"

// Event type constants
const (
	EventTypeInvoiceApprovalAdvanced = "invoice.approval_advanced"
	EventTypeInvoiceAdjusted         = "invoice.adjusted"
	EventTypeCreditMemoCreated       = "invoice.credit_memo_created"
)

// InvoiceApprovalAdvancedEvent is published when an invoice moves one step
// through the approval flow
type InvoiceApprovalAdvancedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        InvoiceStatus   `json:"status"`
}

// NewInvoiceApprovalAdvancedEvent creates an InvoiceApprovalAdvancedEvent
func NewInvoiceApprovalAdvancedEvent(inv *Invoice) *InvoiceApprovalAdvancedEvent {
	return &InvoiceApprovalAdvancedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceApprovalAdvanced, inv.ID, aggregateType),
		InvoiceNumber:   inv.InvoiceNumber,
		TotalAmount:     inv.TotalAmount,
		Status:          inv.Status,
	}
}

// InvoiceAdjustedEvent is published when an adjustment is posted against an
// issued invoice
type InvoiceAdjustedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	SourceID      uuid.UUID       `json:"source_id"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
}

// NewInvoiceAdjustedEvent creates an InvoiceAdjustedEvent
func NewInvoiceAdjustedEvent(inv *Invoice, adjustment *InvoiceAdjustment) *InvoiceAdjustedEvent {
	return &InvoiceAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceAdjusted, inv.ID, aggregateType),
		InvoiceNumber:   inv.InvoiceNumber,
		SourceID:        adjustment.SourceID,
		Amount:          adjustment.Amount,
		BalanceDue:      inv.BalanceDue,
	}
}

// CreditMemoCreatedEvent is published when a credit memo is created against
// an invoice
type CreditMemoCreatedEvent struct {
	shared.BaseDomainEvent
	MemoNumber        string          `json:"memo_number"`
	OriginalInvoiceID uuid.UUID       `json:"original_invoice_id"`
	Amount            decimal.Decimal `json:"amount"`
}

// NewCreditMemoCreatedEvent creates a CreditMemoCreatedEvent
func NewCreditMemoCreatedEvent(memo *Invoice, originalInvoiceID uuid.UUID) *CreditMemoCreatedEvent {
	return &CreditMemoCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeCreditMemoCreated, memo.ID, aggregateType),
		MemoNumber:        memo.InvoiceNumber,
		OriginalInvoiceID: originalInvoiceID,
		Amount:            memo.Amount,
	}
}
