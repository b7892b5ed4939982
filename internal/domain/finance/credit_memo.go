package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/subflow/backend/internal/domain/shared"
)

// NewCreditMemo creates a credit memo against an issued invoice. The memo is
// a document of class CM carrying the negated absolute value of the requested
// amount, so the stored amount is negative regardless of the sign the caller
// passed. Currency and customer are copied from the original invoice and the
// memo references it through SourceTransactionID.
func NewCreditMemo(original *Invoice, requestedAmount decimal.Decimal, reason string) (*Invoice, error) {
	if original == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Original invoice is required")
	}
	if original.IsCreditMemo() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot issue a credit memo against a credit memo")
	}
	if !original.IsIssued() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot credit invoice in %s status", original.Status))
	}
	if requestedAmount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit memo amount cannot be zero")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Credit memo reason cannot be empty")
	}

	magnitude := requestedAmount.Abs()
	if magnitude.GreaterThan(original.BalanceDue) {
		return nil, shared.NewDomainError("AMOUNT_EXCEEDS_BALANCE", fmt.Sprintf("Credit amount %s exceeds outstanding balance %s", magnitude, original.BalanceDue))
	}
	creditAmount := magnitude.Neg()

	now := time.Now()
	originalID := original.ID
	memo := &Invoice{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		InvoiceNumber:       creditMemoNumber(original.InvoiceNumber, now),
		CustomerID:          original.CustomerID,
		Amount:              creditAmount,
		TotalAmount:         creditAmount,
		BalanceDue:          decimal.Zero,
		Currency:            original.Currency,
		Status:              InvoiceStatusIssued,
		TransactionClass:    TransactionClassCreditMemo,
		SourceTransactionID: &originalID,
		Lines:               make([]InvoiceLine, 0),
		Adjustments:         make([]InvoiceAdjustment, 0),
		IssuedAt:            &now,
	}

	memo.Lines = append(memo.Lines, InvoiceLine{
		ID:          uuid.New(),
		InvoiceID:   memo.ID,
		Description: fmt.Sprintf("Credit against %s: %s", original.InvoiceNumber, reason),
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   creditAmount,
		Amount:      creditAmount,
		CreatedAt:   now,
	})

	memo.AddDomainEvent(NewCreditMemoCreatedEvent(memo, original.ID))

	return memo, nil
}

// creditMemoNumber derives the memo number from the original invoice number
// with a time-based suffix so repeated credits stay distinct
func creditMemoNumber(invoiceNumber string, at time.Time) string {
	return fmt.Sprintf("%s-CM-%d", invoiceNumber, at.UnixNano())
}
