package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/subflow/backend/internal/domain/finance"
	"github.com/subflow/backend/internal/domain/shared/valueobject"
)

// InvoiceModel is the persistence model for the invoice aggregate root.
// Credit memos live in the same table with transaction class CM.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber       string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	CustomerID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount              decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalAmount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BalanceDue          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency            string          `gorm:"type:varchar(3);not null"`
	Status              string          `gorm:"type:varchar(30);not null;index"`
	TransactionClass    string          `gorm:"type:varchar(10);not null;index"`
	SourceTransactionID *uuid.UUID      `gorm:"type:uuid;index"`
	IssuedAt            *time.Time
	// Associations
	Lines       []InvoiceLineModel       `gorm:"foreignKey:InvoiceID;references:ID"`
	Adjustments []InvoiceAdjustmentModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice aggregate.
func (m *InvoiceModel) ToDomain() *finance.Invoice {
	inv := &finance.Invoice{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		InvoiceNumber:       m.InvoiceNumber,
		CustomerID:          m.CustomerID,
		Amount:              m.Amount,
		TotalAmount:         m.TotalAmount,
		BalanceDue:          m.BalanceDue,
		Currency:            valueobject.Currency(m.Currency),
		Status:              finance.InvoiceStatus(m.Status),
		TransactionClass:    finance.TransactionClass(m.TransactionClass),
		SourceTransactionID: m.SourceTransactionID,
		IssuedAt:            m.IssuedAt,
		Lines:               make([]finance.InvoiceLine, len(m.Lines)),
		Adjustments:         make([]finance.InvoiceAdjustment, len(m.Adjustments)),
	}
	for i, line := range m.Lines {
		inv.Lines[i] = *line.ToDomain()
	}
	for i, adj := range m.Adjustments {
		inv.Adjustments[i] = *adj.ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice.
func (m *InvoiceModel) FromDomain(inv *finance.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerID = inv.CustomerID
	m.Amount = inv.Amount
	m.TotalAmount = inv.TotalAmount
	m.BalanceDue = inv.BalanceDue
	m.Currency = inv.Currency.String()
	m.Status = inv.Status.String()
	m.TransactionClass = inv.TransactionClass.String()
	m.SourceTransactionID = inv.SourceTransactionID
	m.IssuedAt = inv.IssuedAt
	m.Lines = make([]InvoiceLineModel, len(inv.Lines))
	for i := range inv.Lines {
		m.Lines[i] = *InvoiceLineModelFromDomain(&inv.Lines[i])
	}
	m.Adjustments = make([]InvoiceAdjustmentModel, len(inv.Adjustments))
	for i := range inv.Adjustments {
		m.Adjustments[i] = *InvoiceAdjustmentModelFromDomain(&inv.Adjustments[i])
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *finance.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceLineModel is the persistence model for an invoice charge line.
type InvoiceLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:text;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

// ToDomain converts the persistence model to a domain InvoiceLine.
func (m *InvoiceLineModel) ToDomain() *finance.InvoiceLine {
	return &finance.InvoiceLine{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Amount:      m.Amount,
		CreatedAt:   m.CreatedAt,
	}
}

// InvoiceLineModelFromDomain creates a new persistence model from a domain line.
func InvoiceLineModelFromDomain(l *finance.InvoiceLine) *InvoiceLineModel {
	return &InvoiceLineModel{
		ID:          l.ID,
		InvoiceID:   l.InvoiceID,
		Description: l.Description,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		Amount:      l.Amount,
		CreatedAt:   l.CreatedAt,
	}
}

// InvoiceAdjustmentModel is the persistence model for a balance adjustment.
type InvoiceAdjustmentModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SourceID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Reason    string          `gorm:"type:text"`
	PostedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceAdjustmentModel) TableName() string {
	return "invoice_adjustments"
}

// ToDomain converts the persistence model to a domain InvoiceAdjustment.
func (m *InvoiceAdjustmentModel) ToDomain() *finance.InvoiceAdjustment {
	return &finance.InvoiceAdjustment{
		ID:        m.ID,
		InvoiceID: m.InvoiceID,
		SourceID:  m.SourceID,
		Amount:    m.Amount,
		Reason:    m.Reason,
		PostedAt:  m.PostedAt,
	}
}

// InvoiceAdjustmentModelFromDomain creates a new persistence model from a domain adjustment.
func InvoiceAdjustmentModelFromDomain(a *finance.InvoiceAdjustment) *InvoiceAdjustmentModel {
	return &InvoiceAdjustmentModel{
		ID:        a.ID,
		InvoiceID: a.InvoiceID,
		SourceID:  a.SourceID,
		Amount:    a.Amount,
		Reason:    a.Reason,
		PostedAt:  a.PostedAt,
	}
}
