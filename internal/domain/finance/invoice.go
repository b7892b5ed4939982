package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/subflow/backend/internal/domain/shared"
	"github.com/subflow/backend/internal/domain/shared/valueobject"
)

// TransactionClass distinguishes regular invoices from credit memos
type TransactionClass string

const (
	TransactionClassInvoice    TransactionClass = "INVOICE"
	TransactionClassCreditMemo TransactionClass = "CM"
)

// IsValid checks if the class is a valid TransactionClass
func (c TransactionClass) IsValid() bool {
	return c == TransactionClassInvoice || c == TransactionClassCreditMemo
}

// String returns the string representation of TransactionClass
func (c TransactionClass) String() string {
	return string(c)
}

// InvoiceStatus represents the approval state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft             InvoiceStatus = "DRAFT"
	InvoiceStatusPendingVPApproval InvoiceStatus = "PENDING_VP_APPROVAL"
	InvoiceStatusIssued            InvoiceStatus = "ISSUED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusPendingVPApproval, InvoiceStatusIssued:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// InvoiceLine is one charge line on an invoice or credit memo
type InvoiceLine struct {
	ID          uuid.UUID       `json:"id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// InvoiceAdjustment is a balance-reducing posting against an issued invoice.
// Amount is always negative; SourceID references the document (credit memo)
// that produced it.
type InvoiceAdjustment struct {
	ID        uuid.UUID       `json:"id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	SourceID  uuid.UUID       `json:"source_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
	PostedAt  time.Time       `json:"posted_at"`
}

// Invoice is the aggregate root for invoices and credit memos (class CM).
// Credit memos carry negative amounts and reference their original invoice
// through SourceTransactionID.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber       string               `json:"invoice_number"`
	CustomerID          uuid.UUID            `json:"customer_id"`
	Amount              decimal.Decimal      `json:"amount"`
	TotalAmount         decimal.Decimal      `json:"total_amount"`
	BalanceDue          decimal.Decimal      `json:"balance_due"`
	Currency            valueobject.Currency `json:"currency"`
	Status              InvoiceStatus        `json:"status"`
	TransactionClass    TransactionClass     `json:"transaction_class"`
	SourceTransactionID *uuid.UUID           `json:"source_transaction_id,omitempty"`
	Lines               []InvoiceLine        `json:"lines"`
	Adjustments         []InvoiceAdjustment  `json:"adjustments"`
	IssuedAt            *time.Time           `json:"issued_at,omitempty"`
}

// NewInvoice creates a draft invoice of class INVOICE
func NewInvoice(
	invoiceNumber string,
	customerID uuid.UUID,
	amount decimal.Decimal,
	currency valueobject.Currency,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount must be positive")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		CustomerID:        customerID,
		Amount:            amount,
		TotalAmount:       amount,
		BalanceDue:        amount,
		Currency:          currency,
		Status:            InvoiceStatusDraft,
		TransactionClass:  TransactionClassInvoice,
		Lines:             make([]InvoiceLine, 0),
		Adjustments:       make([]InvoiceAdjustment, 0),
	}

	return inv, nil
}

// AddLine adds a charge line to a draft invoice
func (inv *Invoice) AddLine(description string, quantity, unitPrice, amount decimal.Decimal) (*InvoiceLine, error) {
	if inv.Status != InvoiceStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-draft invoice")
	}

	line := &InvoiceLine{
		ID:          uuid.New(),
		InvoiceID:   inv.ID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      amount,
		CreatedAt:   time.Now(),
	}
	inv.Lines = append(inv.Lines, *line)
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return line, nil
}

// Approve runs one step of the two-tier amount-gated approval flow.
// A pending invoice moves to issued; otherwise an invoice over the limit
// moves to pending VP approval and one at or under the limit is issued
// directly. No above-limit invoice reaches issued without a prior pass
// through pending, and an issued invoice accepts no further approvals.
func (inv *Invoice) Approve(limit decimal.Decimal) error {
	if inv.TransactionClass == TransactionClassCreditMemo {
		return shared.NewDomainError("INVALID_STATE", "Credit memos are not subject to approval")
	}
	if inv.Status == InvoiceStatusIssued {
		return shared.NewDomainError("INVALID_STATE", "Invoice has already been issued")
	}

	switch {
	case inv.Status == InvoiceStatusPendingVPApproval:
		inv.markIssued()
	case inv.TotalAmount.GreaterThan(limit):
		inv.Status = InvoiceStatusPendingVPApproval
	default:
		inv.markIssued()
	}

	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceApprovalAdvancedEvent(inv))

	return nil
}

// markIssued transitions to issued and stamps the issue time once
func (inv *Invoice) markIssued() {
	if inv.Status == InvoiceStatusIssued {
		return
	}
	now := time.Now()
	inv.Status = InvoiceStatusIssued
	inv.IssuedAt = &now
}

// ApplyAdjustment posts a negative adjustment against an issued invoice,
// reducing its outstanding balance by exactly the adjustment magnitude.
func (inv *Invoice) ApplyAdjustment(sourceID uuid.UUID, amount decimal.Decimal, reason string) (*InvoiceAdjustment, error) {
	if inv.Status != InvoiceStatusIssued {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot adjust invoice in %s status", inv.Status))
	}
	if !amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Adjustment amount must be negative")
	}

	adjustment := &InvoiceAdjustment{
		ID:        uuid.New(),
		InvoiceID: inv.ID,
		SourceID:  sourceID,
		Amount:    amount,
		Reason:    reason,
		PostedAt:  time.Now(),
	}
	inv.Adjustments = append(inv.Adjustments, *adjustment)
	inv.BalanceDue = inv.BalanceDue.Add(amount)
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceAdjustedEvent(inv, adjustment))

	return adjustment, nil
}

// IsIssued returns true once the invoice has been issued
func (inv *Invoice) IsIssued() bool {
	return inv.Status == InvoiceStatusIssued
}

// IsCreditMemo returns true for documents of class CM
func (inv *Invoice) IsCreditMemo() bool {
	return inv.TransactionClass == TransactionClassCreditMemo
}
