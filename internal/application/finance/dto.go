package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/subflow/backend/internal/domain/finance"
)

// InvoiceLineRequest describes one charge line of a new invoice
type InvoiceLineRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// CreateInvoiceRequest is the payload for creating a draft invoice
type CreateInvoiceRequest struct {
	InvoiceNumber string               `json:"invoice_number" binding:"required,max=50"`
	CustomerID    uuid.UUID            `json:"customer_id" binding:"required"`
	Amount        decimal.Decimal      `json:"amount" binding:"required"`
	Currency      string               `json:"currency" binding:"omitempty,oneof=USD EUR GBP JPY CAD AUD"`
	Lines         []InvoiceLineRequest `json:"lines" binding:"omitempty,dive"`
}

// CreateCreditMemoRequest is the payload for issuing a credit memo against
// an invoice. The amount may be passed with either sign; the stored memo
// amount is always negative.
type CreateCreditMemoRequest struct {
	InvoiceID uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reason    string          `json:"reason" binding:"required"`
}

// InvoiceListFilter represents filter options for invoice list queries
type InvoiceListFilter struct {
	CustomerID       *uuid.UUID `form:"customer_id"`
	Status           string     `form:"status" binding:"omitempty,oneof=DRAFT PENDING_VP_APPROVAL ISSUED"`
	TransactionClass string     `form:"transaction_class" binding:"omitempty,oneof=INVOICE CM"`
	Page             int        `form:"page" binding:"omitempty,min=1"`
	PageSize         int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// InvoiceLineResponse represents an invoice line in API responses
type InvoiceLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceAdjustmentResponse represents an adjustment in API responses
type InvoiceAdjustmentResponse struct {
	ID       uuid.UUID       `json:"id"`
	SourceID uuid.UUID       `json:"source_id"`
	Amount   decimal.Decimal `json:"amount"`
	Reason   string          `json:"reason"`
	PostedAt time.Time       `json:"posted_at"`
}

// InvoiceResponse represents an invoice or credit memo in API responses
type InvoiceResponse struct {
	ID                  uuid.UUID                   `json:"id"`
	InvoiceNumber       string                      `json:"invoice_number"`
	CustomerID          uuid.UUID                   `json:"customer_id"`
	Amount              decimal.Decimal             `json:"amount"`
	TotalAmount         decimal.Decimal             `json:"total_amount"`
	BalanceDue          decimal.Decimal             `json:"balance_due"`
	Currency            string                      `json:"currency"`
	Status              string                      `json:"status"`
	TransactionClass    string                      `json:"transaction_class"`
	SourceTransactionID *uuid.UUID                  `json:"source_transaction_id,omitempty"`
	Lines               []InvoiceLineResponse       `json:"lines"`
	Adjustments         []InvoiceAdjustmentResponse `json:"adjustments,omitempty"`
	IssuedAt            *time.Time                  `json:"issued_at,omitempty"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
	Version             int                         `json:"version"`
}

// CreditMemoResponse pairs the created memo with the adjusted original invoice
type CreditMemoResponse struct {
	CreditMemo *InvoiceResponse `json:"credit_memo"`
	Invoice    *InvoiceResponse `json:"invoice"`
}

// ToInvoiceResponse converts a domain invoice to a response DTO
func ToInvoiceResponse(inv *finance.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:                  inv.ID,
		InvoiceNumber:       inv.InvoiceNumber,
		CustomerID:          inv.CustomerID,
		Amount:              inv.Amount,
		TotalAmount:         inv.TotalAmount,
		BalanceDue:          inv.BalanceDue,
		Currency:            inv.Currency.String(),
		Status:              inv.Status.String(),
		TransactionClass:    inv.TransactionClass.String(),
		SourceTransactionID: inv.SourceTransactionID,
		Lines:               make([]InvoiceLineResponse, 0, len(inv.Lines)),
		IssuedAt:            inv.IssuedAt,
		CreatedAt:           inv.CreatedAt,
		UpdatedAt:           inv.UpdatedAt,
		Version:             inv.Version,
	}
	for _, line := range inv.Lines {
		resp.Lines = append(resp.Lines, InvoiceLineResponse{
			ID:          line.ID,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Amount:      line.Amount,
		})
	}
	for _, adjustment := range inv.Adjustments {
		resp.Adjustments = append(resp.Adjustments, InvoiceAdjustmentResponse{
			ID:       adjustment.ID,
			SourceID: adjustment.SourceID,
			Amount:   adjustment.Amount,
			Reason:   adjustment.Reason,
			PostedAt: adjustment.PostedAt,
		})
	}
	return resp
}
