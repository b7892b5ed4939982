package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/subflow/backend/internal/domain/contract"
)

// LineSpecRequest describes one product line in a create or amend request
type LineSpecRequest struct {
	ItemID      string          `json:"item_id" binding:"required"`
	ItemName    string          `json:"item_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	BillingType string          `json:"billing_type" binding:"omitempty,oneof=RECURRING ONE_TIME"`
}

// CreateContractRequest is the payload for creating a subscription contract
type CreateContractRequest struct {
	ContractNumber   string            `json:"contract_number" binding:"required,max=50"`
	CustomerID       uuid.UUID         `json:"customer_id" binding:"required"`
	StartDate        time.Time         `json:"start_date" binding:"required"`
	EndDate          *time.Time        `json:"end_date"`
	TotalTCV         decimal.Decimal   `json:"total_tcv"`
	TotalMRR         decimal.Decimal   `json:"total_mrr"`
	Currency         string            `json:"currency" binding:"omitempty,oneof=USD EUR GBP JPY CAD AUD"`
	BillingFrequency string            `json:"billing_frequency" binding:"omitempty,oneof=MONTHLY QUARTERLY ANNUAL"`
	Lines            []LineSpecRequest `json:"lines" binding:"required,min=1,dive"`
	PerformedBy      string            `json:"performed_by" binding:"required"`
}

// LineChangeRequest is one line mutation within an amendment. A nil line_id
// adds a new line; a set line_id overwrites quantity and amount of that line.
type LineChangeRequest struct {
	LineID    *uuid.UUID      `json:"line_id"`
	ItemID    string          `json:"item_id"`
	ItemName  string          `json:"item_name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// AmendContractRequest is the payload for amending a contract
type AmendContractRequest struct {
	Changes     []LineChangeRequest `json:"changes" binding:"required,min=1"`
	MRRDelta    decimal.Decimal     `json:"mrr_delta"`
	Reason      string              `json:"reason"`
	PerformedBy string              `json:"performed_by" binding:"required"`
}

// RenewContractRequest is the payload for renewing a contract
type RenewContractRequest struct {
	PerformedBy string `json:"performed_by" binding:"required"`
}

// TerminateContractRequest is the payload for terminating a contract
type TerminateContractRequest struct {
	Reason      string `json:"reason" binding:"required"`
	PerformedBy string `json:"performed_by" binding:"required"`
}

// ContractListFilter represents filter options for contract list queries
type ContractListFilter struct {
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status" binding:"omitempty,oneof=ACTIVE CANCELLED"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ProductLineResponse represents a product line in API responses
type ProductLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ItemID      string          `json:"item_id"`
	ItemName    string          `json:"item_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	BillingType string          `json:"billing_type"`
	Status      string          `json:"status"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
}

// ActionResponse represents one audit action in API responses
type ActionResponse struct {
	ID          uuid.UUID              `json:"id"`
	ActionType  string                 `json:"action_type"`
	Reason      string                 `json:"reason,omitempty"`
	Changes     contract.ActionChanges `json:"changes"`
	PerformedBy string                 `json:"performed_by"`
	ActionDate  time.Time              `json:"action_date"`
}

// ContractResponse represents a subscription contract in API responses
type ContractResponse struct {
	ID               uuid.UUID             `json:"id"`
	ContractNumber   string                `json:"contract_number"`
	CustomerID       uuid.UUID             `json:"customer_id"`
	StartDate        time.Time             `json:"start_date"`
	EndDate          time.Time             `json:"end_date"`
	Status           string                `json:"status"`
	TotalTCV         decimal.Decimal       `json:"total_tcv"`
	TotalMRR         decimal.Decimal       `json:"total_mrr"`
	Currency         string                `json:"currency"`
	BillingFrequency string                `json:"billing_frequency"`
	RenewalType      string                `json:"renewal_type"`
	Lines            []ProductLineResponse `json:"lines"`
	Actions          []ActionResponse      `json:"actions,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	Version          int                   `json:"version"`
}

// ContractListItemResponse represents a contract in list responses
type ContractListItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	ContractNumber string          `json:"contract_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	Status         string          `json:"status"`
	TotalMRR       decimal.Decimal `json:"total_mrr"`
	LineCount      int             `json:"line_count"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToContractResponse converts a domain contract to a response DTO
func ToContractResponse(sc *contract.SubscriptionContract) *ContractResponse {
	resp := &ContractResponse{
		ID:               sc.ID,
		ContractNumber:   sc.ContractNumber,
		CustomerID:       sc.CustomerID,
		StartDate:        sc.StartDate,
		EndDate:          sc.EndDate,
		Status:           sc.Status.String(),
		TotalTCV:         sc.TotalTCV,
		TotalMRR:         sc.TotalMRR,
		Currency:         sc.Currency.String(),
		BillingFrequency: string(sc.BillingFrequency),
		RenewalType:      string(sc.RenewalType),
		Lines:            make([]ProductLineResponse, 0, len(sc.Lines)),
		CreatedAt:        sc.CreatedAt,
		UpdatedAt:        sc.UpdatedAt,
		Version:          sc.Version,
	}
	for _, line := range sc.Lines {
		resp.Lines = append(resp.Lines, ProductLineResponse{
			ID:          line.ID,
			ItemID:      line.ItemID,
			ItemName:    line.ItemName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Amount:      line.Amount,
			BillingType: string(line.BillingType),
			Status:      line.Status.String(),
			EndDate:     line.EndDate,
		})
	}
	for _, action := range sc.Actions {
		resp.Actions = append(resp.Actions, ToActionResponse(&action))
	}
	return resp
}

// ToActionResponse converts a domain action to a response DTO
func ToActionResponse(action *contract.SubscriptionAction) ActionResponse {
	return ActionResponse{
		ID:          action.ID,
		ActionType:  action.ActionType.String(),
		Reason:      action.Reason,
		Changes:     action.Changes,
		PerformedBy: action.PerformedBy,
		ActionDate:  action.ActionDate,
	}
}

// ToContractListItemResponse converts a domain contract to a list item DTO
func ToContractListItemResponse(sc *contract.SubscriptionContract) ContractListItemResponse {
	return ContractListItemResponse{
		ID:             sc.ID,
		ContractNumber: sc.ContractNumber,
		CustomerID:     sc.CustomerID,
		StartDate:      sc.StartDate,
		EndDate:        sc.EndDate,
		Status:         sc.Status.String(),
		TotalMRR:       sc.TotalMRR,
		LineCount:      sc.LineCount(),
		UpdatedAt:      sc.UpdatedAt,
	}
}

// toLineSpecs converts request lines to domain specs
func toLineSpecs(lines []LineSpecRequest) []contract.LineSpec {
	specs := make([]contract.LineSpec, 0, len(lines))
	for _, line := range lines {
		specs = append(specs, contract.LineSpec{
			ItemID:      line.ItemID,
			ItemName:    line.ItemName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Amount:      line.Amount,
			BillingType: contract.BillingType(line.BillingType),
		})
	}
	return specs
}

// toLineChanges converts request changes to domain changes
func toLineChanges(changes []LineChangeRequest) []contract.LineChange {
	out := make([]contract.LineChange, 0, len(changes))
	for _, change := range changes {
		out = append(out, contract.LineChange{
			LineID: change.LineID,
			Spec: contract.LineSpec{
				ItemID:    change.ItemID,
				ItemName:  change.ItemName,
				Quantity:  change.Quantity,
				UnitPrice: change.UnitPrice,
				Amount:    change.Amount,
			},
		})
	}
	return out
}
