package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/subflow/backend/internal/domain/finance"
	"github.com/subflow/backend/internal/domain/shared"
	"github.com/subflow/backend/internal/domain/shared/valueobject"
)

// InvoiceService handles invoice creation and queries
type InvoiceService struct {
	invoiceRepo finance.InvoiceRepository
	txScope     TransactionScope
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo finance.InvoiceRepository, txScope TransactionScope) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		txScope:     txScope,
	}
}

// CreateInvoice creates a draft invoice
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	var inv *finance.Invoice

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.InvoiceRepo().ExistsByInvoiceNumber(ctx, req.InvoiceNumber)
		if err != nil {
			return fmt.Errorf("failed to check invoice number: %w", err)
		}
		if exists {
			return shared.NewDomainError("DUPLICATE_INVOICE_NUMBER", fmt.Sprintf("Invoice number %s already exists", req.InvoiceNumber))
		}

		inv, err = finance.NewInvoice(req.InvoiceNumber, req.CustomerID, req.Amount, valueobject.Currency(req.Currency))
		if err != nil {
			return err
		}
		for _, line := range req.Lines {
			if _, err := inv.AddLine(line.Description, line.Quantity, line.UnitPrice, line.Amount); err != nil {
				return err
			}
		}

		return repos.InvoiceRepo().Save(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	return ToInvoiceResponse(inv), nil
}

// GetInvoice returns an invoice with its lines and adjustments
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice: %w", err)
	}
	if inv == nil {
		return nil, shared.ErrNotFound
	}
	return ToInvoiceResponse(inv), nil
}

// ListInvoices returns a page of invoices matching the filter
func (s *InvoiceService) ListInvoices(ctx context.Context, filter InvoiceListFilter) (*shared.Paginated[InvoiceResponse], error) {
	domainFilter := finance.InvoiceFilter{
		Filter:     shared.DefaultFilter(),
		CustomerID: filter.CustomerID,
	}
	if filter.Status != "" {
		status := finance.InvoiceStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.TransactionClass != "" {
		class := finance.TransactionClass(filter.TransactionClass)
		domainFilter.TransactionClass = &class
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	items := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		items = append(items, *ToInvoiceResponse(&invoices[i]))
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}
