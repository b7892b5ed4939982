package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/subflow/backend/internal/domain/billing"
	"github.com/subflow/backend/internal/domain/shared/valueobject"
)

// BillingEventModel is the persistence model for a billing event.
// The unique index on (source_transaction_id, period_key) is the final
// idempotency guard; a second insert for the same line and period fails
// at the database regardless of what the generator checked.
type BillingEventModel struct {
	BaseModel
	SourceSystem        string          `gorm:"type:varchar(50);not null"`
	SourceTransactionID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_billing_events_line_period,priority:1"`
	ContractID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	EventDate           time.Time       `gorm:"type:date;not null"`
	PeriodKey           string          `gorm:"type:varchar(7);not null;uniqueIndex:idx_billing_events_line_period,priority:2"`
	Amount              decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency            string          `gorm:"type:varchar(3);not null"`
	Quantity            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Description         string          `gorm:"type:text"`
	Status              string          `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (BillingEventModel) TableName() string {
	return "billing_events"
}

// ToDomain converts the persistence model to a domain BillingEvent.
func (m *BillingEventModel) ToDomain() *billing.BillingEvent {
	return &billing.BillingEvent{
		BaseEntity:          m.BaseModel.ToDomain(),
		SourceSystem:        m.SourceSystem,
		SourceTransactionID: m.SourceTransactionID,
		ContractID:          m.ContractID,
		CustomerID:          m.CustomerID,
		EventDate:           m.EventDate,
		PeriodKey:           m.PeriodKey,
		Amount:              m.Amount,
		Currency:            valueobject.Currency(m.Currency),
		Quantity:            m.Quantity,
		UnitPrice:           m.UnitPrice,
		Description:         m.Description,
		Status:              billing.EventStatus(m.Status),
	}
}

// FromDomain populates the persistence model from a domain BillingEvent.
func (m *BillingEventModel) FromDomain(e *billing.BillingEvent) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.SourceSystem = e.SourceSystem
	m.SourceTransactionID = e.SourceTransactionID
	m.ContractID = e.ContractID
	m.CustomerID = e.CustomerID
	m.EventDate = e.EventDate
	m.PeriodKey = e.PeriodKey
	m.Amount = e.Amount
	m.Currency = e.Currency.String()
	m.Quantity = e.Quantity
	m.UnitPrice = e.UnitPrice
	m.Description = e.Description
	m.Status = e.Status.String()
}

// BillingEventModelFromDomain creates a new persistence model from a domain event.
func BillingEventModelFromDomain(e *billing.BillingEvent) *BillingEventModel {
	m := &BillingEventModel{}
	m.FromDomain(e)
	return m
}
