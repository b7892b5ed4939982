package finance

import (
	"context"
	"fmt"

	"github.com/subflow/backend/internal/domain/finance"
	"github.com/subflow/backend/internal/domain/shared"
)

// CreditMemoService issues credit memos against issued invoices. The memo
// insert and the balance adjustment on the original invoice happen in one
// transaction; neither can land without the other.
type CreditMemoService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
}

// NewCreditMemoService creates a new CreditMemoService
func NewCreditMemoService(txScope TransactionScope) *CreditMemoService {
	return &CreditMemoService{txScope: txScope}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CreditMemoService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateCreditMemo creates a credit memo against an issued invoice and
// reduces the invoice balance by the credited amount
func (s *CreditMemoService) CreateCreditMemo(ctx context.Context, req CreateCreditMemoRequest) (*CreditMemoResponse, error) {
	var resp *CreditMemoResponse
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		original, err := repos.InvoiceRepo().FindByID(ctx, req.InvoiceID)
		if err != nil {
			return fmt.Errorf("failed to find invoice: %w", err)
		}
		if original == nil {
			return shared.ErrNotFound
		}

		memo, err := finance.NewCreditMemo(original, req.Amount, req.Reason)
		if err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Save(ctx, memo); err != nil {
			return fmt.Errorf("failed to save credit memo: %w", err)
		}

		if _, err := original.ApplyAdjustment(memo.ID, memo.Amount, req.Reason); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveWithLock(ctx, original); err != nil {
			return err
		}

		events = append(memo.GetDomainEvents(), original.GetDomainEvents()...)
		memo.ClearDomainEvents()
		original.ClearDomainEvents()
		resp = &CreditMemoResponse{
			CreditMemo: ToInvoiceResponse(memo),
			Invoice:    ToInvoiceResponse(original),
		}
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
