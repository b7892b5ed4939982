package contract

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/subflow/backend/internal/domain/shared"
	"github.com/subflow/backend/internal/domain/shared/valueobject"
)

// ContractStatus represents the lifecycle status of a subscription contract
type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "ACTIVE"
	ContractStatusCancelled ContractStatus = "CANCELLED" // Terminal; no reactivation
)

// IsValid checks if the status is a valid ContractStatus
func (s ContractStatus) IsValid() bool {
	return s == ContractStatusActive || s == ContractStatusCancelled
}

// String returns the string representation of ContractStatus
func (s ContractStatus) String() string {
	return string(s)
}

// LineStatus represents the status of a product line
type LineStatus string

const (
	LineStatusActive    LineStatus = "ACTIVE"
	LineStatusCancelled LineStatus = "CANCELLED"
)

// String returns the string representation of LineStatus
func (s LineStatus) String() string {
	return string(s)
}

// BillingFrequency represents how often a contract is billed
type BillingFrequency string

const (
	BillingFrequencyMonthly   BillingFrequency = "MONTHLY"
	BillingFrequencyQuarterly BillingFrequency = "QUARTERLY"
	BillingFrequencyAnnual    BillingFrequency = "ANNUAL"
)

// IsValid checks if the frequency is supported
func (f BillingFrequency) IsValid() bool {
	switch f {
	case BillingFrequencyMonthly, BillingFrequencyQuarterly, BillingFrequencyAnnual:
		return true
	}
	return false
}

// RenewalType indicates how the contract gets renewed
type RenewalType string

const (
	RenewalTypeAuto   RenewalType = "AUTO"
	RenewalTypeManual RenewalType = "MANUAL"
)

// BillingType represents the charge model of a product line
type BillingType string

const (
	BillingTypeRecurring BillingType = "RECURRING"
	BillingTypeOneTime   BillingType = "ONE_TIME"
)

// ProductLine represents a product entitlement belonging to one contract.
// Lines are cancelled, never deleted.
type ProductLine struct {
	ID          uuid.UUID       `json:"id"`
	ContractID  uuid.UUID       `json:"contract_id"`
	ItemID      string          `json:"item_id"`
	ItemName    string          `json:"item_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	BillingType BillingType     `json:"billing_type"`
	Status      LineStatus      `json:"status"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsActive returns true if the line is active
func (l *ProductLine) IsActive() bool {
	return l.Status == LineStatusActive
}

// IsRecurring returns true for recurring-charge lines
func (l *ProductLine) IsRecurring() bool {
	return l.BillingType == BillingTypeRecurring
}

// LineSpec describes a product line supplied at creation or amendment
type LineSpec struct {
	ItemID      string
	ItemName    string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	BillingType BillingType
}

// LineChange describes one line mutation within an amendment.
// A nil LineID appends a new active line; a set LineID overwrites
// quantity and amount of the referenced line in place.
type LineChange struct {
	LineID *uuid.UUID
	Spec   LineSpec
}

// SubscriptionContract is the aggregate root for the subscription lifecycle.
// Created once, mutated by amend/renew/terminate, never physically deleted.
type SubscriptionContract struct {
	shared.BaseAggregateRoot
	ContractNumber   string               `json:"contract_number"`
	CustomerID       uuid.UUID            `json:"customer_id"`
	StartDate        time.Time            `json:"start_date"`
	EndDate          time.Time            `json:"end_date"`
	Status           ContractStatus       `json:"status"`
	TotalTCV         decimal.Decimal      `json:"total_tcv"`
	TotalMRR         decimal.Decimal      `json:"total_mrr"`
	Currency         valueobject.Currency `json:"currency"`
	BillingFrequency BillingFrequency     `json:"billing_frequency"`
	RenewalType      RenewalType          `json:"renewal_type"`
	Lines            []ProductLine        `json:"lines"`
	Actions          []SubscriptionAction `json:"actions"`
}

// NewSubscriptionContract creates a new active contract with its product lines.
// End date defaults to start date plus one year when absent. TCV/MRR are
// caller-trusted at creation; no arithmetic consistency check against the lines.
func NewSubscriptionContract(
	contractNumber string,
	customerID uuid.UUID,
	startDate time.Time,
	endDate *time.Time,
	totalTCV decimal.Decimal,
	totalMRR decimal.Decimal,
	currency valueobject.Currency,
	billingFrequency BillingFrequency,
	lines []LineSpec,
	performedBy string,
) (*SubscriptionContract, error) {
	if contractNumber == "" {
		return nil, shared.NewDomainError("INVALID_CONTRACT_NUMBER", "Contract number cannot be empty")
	}
	if len(contractNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_CONTRACT_NUMBER", "Contract number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if startDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_START_DATE", "Start date cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_LINES", "At least one product line is required")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if billingFrequency == "" {
		billingFrequency = BillingFrequencyMonthly
	}
	if !billingFrequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_FREQUENCY", fmt.Sprintf("Unsupported billing frequency %q", billingFrequency))
	}

	effectiveEnd := startDate.AddDate(1, 0, 0)
	if endDate != nil {
		if endDate.Before(startDate) {
			return nil, shared.NewDomainError("INVALID_END_DATE", "End date cannot precede start date")
		}
		effectiveEnd = *endDate
	}

	sc := &SubscriptionContract{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ContractNumber:    contractNumber,
		CustomerID:        customerID,
		StartDate:         startDate,
		EndDate:           effectiveEnd,
		Status:            ContractStatusActive,
		TotalTCV:          totalTCV,
		TotalMRR:          totalMRR,
		Currency:          currency,
		BillingFrequency:  billingFrequency,
		RenewalType:       RenewalTypeAuto,
		Lines:             make([]ProductLine, 0, len(lines)),
		Actions:           make([]SubscriptionAction, 0, 1),
	}

	created := CreatedPayload{
		ContractNumber:   contractNumber,
		StartDate:        startDate,
		EndDate:          effectiveEnd,
		TotalTCV:         totalTCV,
		TotalMRR:         totalMRR,
		BillingFrequency: string(billingFrequency),
	}
	for _, spec := range lines {
		line, err := sc.newLine(spec)
		if err != nil {
			return nil, err
		}
		sc.Lines = append(sc.Lines, *line)
		created.Lines = append(created.Lines, CreatedLine{
			LineID:      line.ID,
			ItemID:      line.ItemID,
			ItemName:    line.ItemName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Amount:      line.Amount,
			BillingType: string(line.BillingType),
		})
	}

	sc.appendAction(ActionTypeNew, "", ActionChanges{Created: &created}, performedBy)
	sc.AddDomainEvent(NewContractCreatedEvent(sc))

	return sc, nil
}

// newLine builds a ProductLine owned by this contract from a spec
func (sc *SubscriptionContract) newLine(spec LineSpec) (*ProductLine, error) {
	if spec.ItemID == "" {
		return nil, shared.NewDomainError("INVALID_LINE", "Line item ID cannot be empty")
	}
	billingType := spec.BillingType
	if billingType == "" {
		billingType = BillingTypeRecurring
	}
	now := time.Now()
	return &ProductLine{
		ID:          uuid.New(),
		ContractID:  sc.ID,
		ItemID:      spec.ItemID,
		ItemName:    spec.ItemName,
		Quantity:    spec.Quantity,
		UnitPrice:   spec.UnitPrice,
		Amount:      spec.Amount,
		BillingType: billingType,
		Status:      LineStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Amend applies line changes and recomputes the contract MRR from the
// resulting active recurring lines. The supplied mrrDelta is recorded in the
// audit payload as an annotation only; it never drives the stored total.
func (sc *SubscriptionContract) Amend(changes []LineChange, mrrDelta decimal.Decimal, reason, performedBy string) error {
	if sc.Status != ContractStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot amend contract in %s status", sc.Status))
	}
	if len(changes) == 0 {
		return shared.NewDomainError("INVALID_AMENDMENT", "Amendment requires at least one line change")
	}

	amended := AmendedPayload{MRRDelta: mrrDelta}
	for _, change := range changes {
		if change.LineID != nil {
			line := sc.findLine(*change.LineID)
			if line == nil {
				return shared.NewDomainError("LINE_NOT_FOUND", fmt.Sprintf("Product line %s does not belong to this contract", change.LineID))
			}
			if line.Status != LineStatusActive {
				return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot amend cancelled line %s", line.ID))
			}
			// Quantity and amount are overwritten as supplied; the amount is
			// deliberately not recomputed from the unit price.
			line.Quantity = change.Spec.Quantity
			line.Amount = change.Spec.Amount
			line.UpdatedAt = time.Now()
			amended.Lines = append(amended.Lines, AmendedLine{
				LineID:   line.ID,
				Quantity: line.Quantity,
				Amount:   line.Amount,
			})
			continue
		}

		line, err := sc.newLine(change.Spec)
		if err != nil {
			return err
		}
		sc.Lines = append(sc.Lines, *line)
		amended.Lines = append(amended.Lines, AmendedLine{
			LineID:   line.ID,
			ItemName: line.ItemName,
			Quantity: line.Quantity,
			Amount:   line.Amount,
			Added:    true,
		})
	}

	sc.RecomputeMRR()
	amended.RecomputedMRR = sc.TotalMRR

	sc.appendAction(ActionTypeAmend, reason, ActionChanges{Amended: &amended}, performedBy)
	sc.UpdatedAt = time.Now()
	sc.IncrementVersion()
	sc.AddDomainEvent(NewContractAmendedEvent(sc, mrrDelta))

	return nil
}

// Renew extends the contract by one year from its current recorded end date,
// not from "now". A lapsed contract therefore renews from the stale end date;
// this is the documented rule.
func (sc *SubscriptionContract) Renew(performedBy string) error {
	if sc.Status != ContractStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot renew contract in %s status", sc.Status))
	}

	previousEnd := sc.EndDate
	sc.EndDate = previousEnd.AddDate(1, 0, 0)
	sc.RenewalType = RenewalTypeManual

	sc.appendAction(ActionTypeRenew, "", ActionChanges{Renewed: &RenewedPayload{
		PreviousEndDate: previousEnd,
		NewEndDate:      sc.EndDate,
	}}, performedBy)
	sc.UpdatedAt = time.Now()
	sc.IncrementVersion()
	sc.AddDomainEvent(NewContractRenewedEvent(sc, previousEnd))

	return nil
}

// Terminate cancels the contract and cascades to every product line,
// regardless of prior per-line end dates. Terminal.
func (sc *SubscriptionContract) Terminate(reason, performedBy string) error {
	if sc.Status != ContractStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot terminate contract in %s status", sc.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Termination reason is required")
	}

	now := time.Now()
	sc.Status = ContractStatusCancelled
	sc.EndDate = now

	terminated := TerminatedPayload{Reason: reason}
	for i := range sc.Lines {
		line := &sc.Lines[i]
		line.Status = LineStatusCancelled
		lineEnd := now
		line.EndDate = &lineEnd
		line.UpdatedAt = now
		terminated.CancelledLineIDs = append(terminated.CancelledLineIDs, line.ID)
	}

	sc.appendAction(ActionTypeTerminate, reason, ActionChanges{Terminated: &terminated}, performedBy)
	sc.UpdatedAt = now
	sc.IncrementVersion()
	sc.AddDomainEvent(NewContractTerminatedEvent(sc, reason))

	return nil
}

// RecomputeMRR sets TotalMRR to the sum of active recurring line amounts.
// Invariant: the contract MRR always equals that sum after any mutation.
func (sc *SubscriptionContract) RecomputeMRR() {
	total := decimal.Zero
	for i := range sc.Lines {
		line := &sc.Lines[i]
		if line.IsActive() && line.IsRecurring() {
			total = total.Add(line.Amount)
		}
	}
	sc.TotalMRR = total
}

// ActiveLines returns the active product lines
func (sc *SubscriptionContract) ActiveLines() []ProductLine {
	active := make([]ProductLine, 0, len(sc.Lines))
	for _, line := range sc.Lines {
		if line.IsActive() {
			active = append(active, line)
		}
	}
	return active
}

// IsActive returns true if the contract is active
func (sc *SubscriptionContract) IsActive() bool {
	return sc.Status == ContractStatusActive
}

// LineCount returns the number of product lines
func (sc *SubscriptionContract) LineCount() int {
	return len(sc.Lines)
}

// findLine returns a pointer into the contract's line slice, or nil
func (sc *SubscriptionContract) findLine(id uuid.UUID) *ProductLine {
	for i := range sc.Lines {
		if sc.Lines[i].ID == id {
			return &sc.Lines[i]
		}
	}
	return nil
}

// appendAction records one immutable audit action for a lifecycle mutation.
// Every state-changing operation appends exactly one.
func (sc *SubscriptionContract) appendAction(actionType ActionType, reason string, changes ActionChanges, performedBy string) {
	sc.Actions = append(sc.Actions, SubscriptionAction{
		ID:          uuid.New(),
		ContractID:  sc.ID,
		ActionType:  actionType,
		Reason:      reason,
		Changes:     changes,
		PerformedBy: performedBy,
		ActionDate:  time.Now(),
	})
}
