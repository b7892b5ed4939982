package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/subflow/backend/internal/domain/shared"
)

// ApprovalService advances invoices through the two-tier amount-gated
// approval flow. The limit comes from configuration; invoices over it need a
// second approval before they issue.
type ApprovalService struct {
	txScope        TransactionScope
	approvalLimit  decimal.Decimal
	eventPublisher shared.EventPublisher
}

// NewApprovalService creates a new ApprovalService with the given limit
func NewApprovalService(txScope TransactionScope, approvalLimit decimal.Decimal) *ApprovalService {
	return &ApprovalService{
		txScope:       txScope,
		approvalLimit: approvalLimit,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ApprovalService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ApproveInvoice runs one approval step against an invoice
func (s *ApprovalService) ApproveInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	var resp *InvoiceResponse
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to find invoice: %w", err)
		}
		if inv == nil {
			return shared.ErrNotFound
		}

		if err := inv.Approve(s.approvalLimit); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveWithLock(ctx, inv); err != nil {
			return err
		}

		events = inv.GetDomainEvents()
		inv.ClearDomainEvents()
		resp = ToInvoiceResponse(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil && len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	return resp, nil
}
