package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/subflow/backend/internal/domain/shared"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	CustomerID       *uuid.UUID        // Filter by customer
	Status           *InvoiceStatus    // Filter by status
	TransactionClass *TransactionClass // Filter by document class
}

// InvoiceRepository defines the persistence interface for invoices and
// credit memos
type InvoiceRepository interface {
	// FindByID finds an invoice with its lines and adjustments
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByInvoiceNumber finds an invoice by its unique number
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)

	// FindAll lists invoices matching the filter
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)

	// Save creates or updates an invoice together with its lines and
	// adjustments
	Save(ctx context.Context, inv *Invoice) error

	// SaveWithLock saves with an optimistic version check
	SaveWithLock(ctx context.Context, inv *Invoice) error

	// ExistsByInvoiceNumber checks whether an invoice number is taken
	ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error)
}
