package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/subflow/backend/internal/domain/contract"
	"github.com/subflow/backend/internal/domain/shared/valueobject"
)

// SubscriptionContractModel is the persistence model for the contract aggregate root.
type SubscriptionContractModel struct {
	AggregateModel
	ContractNumber   string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	StartDate        time.Time       `gorm:"type:date;not null"`
	EndDate          time.Time       `gorm:"type:date;not null;index"`
	Status           string          `gorm:"type:varchar(20);not null;index"`
	TotalTCV         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalMRR         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Currency         string          `gorm:"type:varchar(3);not null"`
	BillingFrequency string          `gorm:"type:varchar(20);not null"`
	RenewalType      string          `gorm:"type:varchar(20);not null"`
	// Associations
	Lines   []ProductLineModel        `gorm:"foreignKey:ContractID;references:ID"`
	Actions []SubscriptionActionModel `gorm:"foreignKey:ContractID;references:ID"`
}

// TableName returns the table name for GORM
func (SubscriptionContractModel) TableName() string {
	return "subscription_contracts"
}

// ToDomain converts the persistence model to a domain SubscriptionContract aggregate.
func (m *SubscriptionContractModel) ToDomain() *contract.SubscriptionContract {
	sc := &contract.SubscriptionContract{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ContractNumber:    m.ContractNumber,
		CustomerID:        m.CustomerID,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		Status:            contract.ContractStatus(m.Status),
		TotalTCV:          m.TotalTCV,
		TotalMRR:          m.TotalMRR,
		Currency:          valueobject.Currency(m.Currency),
		BillingFrequency:  contract.BillingFrequency(m.BillingFrequency),
		RenewalType:       contract.RenewalType(m.RenewalType),
		Lines:             make([]contract.ProductLine, len(m.Lines)),
		Actions:           make([]contract.SubscriptionAction, len(m.Actions)),
	}
	for i, line := range m.Lines {
		sc.Lines[i] = *line.ToDomain()
	}
	for i, action := range m.Actions {
		sc.Actions[i] = *action.ToDomain()
	}
	return sc
}

// FromDomain populates the persistence model from a domain SubscriptionContract.
func (m *SubscriptionContractModel) FromDomain(sc *contract.SubscriptionContract) {
	m.FromDomainAggregateRoot(sc.BaseAggregateRoot)
	m.ContractNumber = sc.ContractNumber
	m.CustomerID = sc.CustomerID
	m.StartDate = sc.StartDate
	m.EndDate = sc.EndDate
	m.Status = sc.Status.String()
	m.TotalTCV = sc.TotalTCV
	m.TotalMRR = sc.TotalMRR
	m.Currency = sc.Currency.String()
	m.BillingFrequency = string(sc.BillingFrequency)
	m.RenewalType = string(sc.RenewalType)
	m.Lines = make([]ProductLineModel, len(sc.Lines))
	for i := range sc.Lines {
		m.Lines[i] = *ProductLineModelFromDomain(&sc.Lines[i])
	}
	m.Actions = make([]SubscriptionActionModel, len(sc.Actions))
	for i := range sc.Actions {
		m.Actions[i] = *SubscriptionActionModelFromDomain(&sc.Actions[i])
	}
}

// SubscriptionContractModelFromDomain creates a new persistence model from a domain contract.
func SubscriptionContractModelFromDomain(sc *contract.SubscriptionContract) *SubscriptionContractModel {
	m := &SubscriptionContractModel{}
	m.FromDomain(sc)
	return m
}

// ProductLineModel is the persistence model for a contract product line.
type ProductLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	ContractID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID      string          `gorm:"type:varchar(100);not null"`
	ItemName    string          `gorm:"type:varchar(255);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	BillingType string          `gorm:"type:varchar(20);not null"`
	Status      string          `gorm:"type:varchar(20);not null;index"`
	EndDate     *time.Time      `gorm:"type:date"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductLineModel) TableName() string {
	return "product_lines"
}

// ToDomain converts the persistence model to a domain ProductLine.
func (m *ProductLineModel) ToDomain() *contract.ProductLine {
	return &contract.ProductLine{
		ID:          m.ID,
		ContractID:  m.ContractID,
		ItemID:      m.ItemID,
		ItemName:    m.ItemName,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Amount:      m.Amount,
		BillingType: contract.BillingType(m.BillingType),
		Status:      contract.LineStatus(m.Status),
		EndDate:     m.EndDate,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ProductLineModelFromDomain creates a new persistence model from a domain ProductLine.
func ProductLineModelFromDomain(l *contract.ProductLine) *ProductLineModel {
	return &ProductLineModel{
		ID:          l.ID,
		ContractID:  l.ContractID,
		ItemID:      l.ItemID,
		ItemName:    l.ItemName,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		Amount:      l.Amount,
		BillingType: string(l.BillingType),
		Status:      l.Status.String(),
		EndDate:     l.EndDate,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// SubscriptionActionModel is the persistence model for one immutable audit action.
// The changes payload is stored as a JSON column through the domain type's
// Valuer and Scanner implementations.
type SubscriptionActionModel struct {
	ID          uuid.UUID              `gorm:"type:uuid;primary_key"`
	ContractID  uuid.UUID              `gorm:"type:uuid;not null;index:idx_subscription_actions_contract_date,priority:1"`
	ActionType  string                 `gorm:"type:varchar(20);not null"`
	Reason      string                 `gorm:"type:text"`
	Changes     contract.ActionChanges `gorm:"type:jsonb"`
	PerformedBy string                 `gorm:"type:varchar(100);not null"`
	ActionDate  time.Time              `gorm:"not null;index:idx_subscription_actions_contract_date,priority:2,sort:desc"`
}

// TableName returns the table name for GORM
func (SubscriptionActionModel) TableName() string {
	return "subscription_actions"
}

// ToDomain converts the persistence model to a domain SubscriptionAction.
func (m *SubscriptionActionModel) ToDomain() *contract.SubscriptionAction {
	return &contract.SubscriptionAction{
		ID:          m.ID,
		ContractID:  m.ContractID,
		ActionType:  contract.ActionType(m.ActionType),
		Reason:      m.Reason,
		Changes:     m.Changes,
		PerformedBy: m.PerformedBy,
		ActionDate:  m.ActionDate,
	}
}

// SubscriptionActionModelFromDomain creates a new persistence model from a domain action.
func SubscriptionActionModelFromDomain(a *contract.SubscriptionAction) *SubscriptionActionModel {
	return &SubscriptionActionModel{
		ID:          a.ID,
		ContractID:  a.ContractID,
		ActionType:  a.ActionType.String(),
		Reason:      a.Reason,
		Changes:     a.Changes,
		PerformedBy: a.PerformedBy,
		ActionDate:  a.ActionDate,
	}
}
