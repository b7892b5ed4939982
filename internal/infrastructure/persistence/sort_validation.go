package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is empty or not whitelisted.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// contractSortFields contains allowed sort fields for subscription contracts
var contractSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"contract_number": true,
	"start_date":      true,
	"end_date":        true,
	"status":          true,
	"total_mrr":       true,
	"total_tcv":       true,
}

// billingEventSortFields contains allowed sort fields for billing events
var billingEventSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"event_date": true,
	"period_key": true,
	"amount":     true,
	"status":     true,
}

// invoiceSortFields contains allowed sort fields for invoices
var invoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"total_amount":   true,
	"balance_due":    true,
	"status":         true,
	"issued_at":      true,
}
