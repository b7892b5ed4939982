package contract

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActionType classifies a lifecycle audit action
type ActionType string

const (
	ActionTypeNew       ActionType = "NEW"
	ActionTypeAmend     ActionType = "AMEND"
	ActionTypeRenew     ActionType = "RENEW"
	ActionTypeTerminate ActionType = "TERMINATE"
)

// IsValid checks if the action type is known
func (t ActionType) IsValid() bool {
	switch t {
	case ActionTypeNew, ActionTypeAmend, ActionTypeRenew, ActionTypeTerminate:
		return true
	}
	return false
}

// String returns the string representation of ActionType
func (t ActionType) String() string {
	return string(t)
}

// SubscriptionAction is one immutable audit record for a contract mutation.
// The action set for a contract forms a complete history of every mutation,
// read most-recent-first.
type SubscriptionAction struct {
	ID          uuid.UUID     `json:"id"`
	ContractID  uuid.UUID     `json:"contract_id"`
	ActionType  ActionType    `json:"action_type"`
	Reason      string        `json:"reason,omitempty"`
	Changes     ActionChanges `json:"changes"`
	PerformedBy string        `json:"performed_by"`
	ActionDate  time.Time     `json:"action_date"`
}

// CreatedLine captures one line of the creation payload
type CreatedLine struct {
	LineID      uuid.UUID       `json:"line_id"`
	ItemID      string          `json:"item_id"`
	ItemName    string          `json:"item_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	BillingType string          `json:"billing_type"`
}

// CreatedPayload captures the full creation payload of a NEW action
type CreatedPayload struct {
	ContractNumber   string          `json:"contract_number"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	TotalTCV         decimal.Decimal `json:"total_tcv"`
	TotalMRR         decimal.Decimal `json:"total_mrr"`
	BillingFrequency string          `json:"billing_frequency"`
	Lines            []CreatedLine   `json:"lines"`
}

// AmendedLine records the result of one line change within an amendment.
// ItemName is set only for newly added lines.
type AmendedLine struct {
	LineID   uuid.UUID       `json:"line_id"`
	ItemName string          `json:"item_name,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
	Added    bool            `json:"added,omitempty"`
}

// AmendedPayload captures an AMEND action. MRRDelta is the caller-supplied
// annotation; RecomputedMRR is the stored total derived from the line set.
type AmendedPayload struct {
	MRRDelta      decimal.Decimal `json:"mrr_delta"`
	RecomputedMRR decimal.Decimal `json:"recomputed_mrr"`
	Lines         []AmendedLine   `json:"lines"`
}

// RenewedPayload captures old and new end dates of a RENEW action
type RenewedPayload struct {
	PreviousEndDate time.Time `json:"previous_end_date"`
	NewEndDate      time.Time `json:"new_end_date"`
}

// TerminatedPayload captures a TERMINATE action
type TerminatedPayload struct {
	Reason           string      `json:"reason"`
	CancelledLineIDs []uuid.UUID `json:"cancelled_line_ids"`
}

// ActionChanges is the tagged union of per-action-type payloads. Exactly one
// member is set, matching the action type, so audit consumers get a checked
// shape instead of an open map.
type ActionChanges struct {
	Created    *CreatedPayload    `json:"created,omitempty"`
	Amended    *AmendedPayload    `json:"amended,omitempty"`
	Renewed    *RenewedPayload    `json:"renewed,omitempty"`
	Terminated *TerminatedPayload `json:"terminated,omitempty"`
}

// Value implements driver.Valuer so the union persists as a JSON column
func (c ActionChanges) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for reading the JSON column back
func (c *ActionChanges) Scan(value interface{}) error {
	if value == nil {
		*c = ActionChanges{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("unsupported type %T for ActionChanges", value)
	}
}
