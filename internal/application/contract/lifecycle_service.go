package contract

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/subflow/backend/internal/domain/contract"
	"github.com/subflow/backend/internal/domain/shared"
	"github.com/subflow/backend/internal/domain/shared/valueobject"
)

// LifecycleService handles the subscription contract lifecycle: create,
// amend, renew and terminate. Every mutation runs inside one transaction
// scope and is serialized per contract, so the contract row, its lines and
// the audit action always land together.
type LifecycleService struct {
	contractRepo   contract.SubscriptionContractRepository
	actionRepo     contract.SubscriptionActionRepository
	txScope        TransactionScope
	locks          *contractLocks
	eventPublisher shared.EventPublisher
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(
	contractRepo contract.SubscriptionContractRepository,
	actionRepo contract.SubscriptionActionRepository,
	txScope TransactionScope,
) *LifecycleService {
	return &LifecycleService{
		contractRepo: contractRepo,
		actionRepo:   actionRepo,
		txScope:      txScope,
		locks:        newContractLocks(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LifecycleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateContract creates a new active subscription contract with its product
// lines and the initial NEW audit action
func (s *LifecycleService) CreateContract(ctx context.Context, req CreateContractRequest) (*ContractResponse, error) {
	var sc *contract.SubscriptionContract

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.ContractRepo().ExistsByContractNumber(ctx, req.ContractNumber)
		if err != nil {
			return fmt.Errorf("failed to check contract number: %w", err)
		}
		if exists {
			return shared.NewDomainError("DUPLICATE_CONTRACT_NUMBER", fmt.Sprintf("Contract number %s already exists", req.ContractNumber))
		}

		sc, err = contract.NewSubscriptionContract(
			req.ContractNumber,
			req.CustomerID,
			req.StartDate,
			req.EndDate,
			req.TotalTCV,
			req.TotalMRR,
			valueobject.Currency(req.Currency),
			contract.BillingFrequency(req.BillingFrequency),
			toLineSpecs(req.Lines),
			req.PerformedBy,
		)
		if err != nil {
			return err
		}

		return repos.ContractRepo().Save(ctx, sc)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sc)
	return ToContractResponse(sc), nil
}

// GetContract returns a contract with its lines and its action history
// ordered most-recent-first
func (s *LifecycleService) GetContract(ctx context.Context, id uuid.UUID) (*ContractResponse, error) {
	sc, err := s.contractRepo.FindAggregateByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find contract: %w", err)
	}
	if sc == nil {
		return nil, shared.ErrNotFound
	}
	return ToContractResponse(sc), nil
}

// ListContracts returns a page of contracts matching the filter
func (s *LifecycleService) ListContracts(ctx context.Context, filter ContractListFilter) (*shared.Paginated[ContractListItemResponse], error) {
	domainFilter := contract.ContractFilter{
		Filter:     shared.DefaultFilter(),
		CustomerID: filter.CustomerID,
	}
	if filter.Status != "" {
		status := contract.ContractStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	contracts, err := s.contractRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	total, err := s.contractRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to count contracts: %w", err)
	}

	items := make([]ContractListItemResponse, 0, len(contracts))
	for i := range contracts {
		items = append(items, ToContractListItemResponse(&contracts[i]))
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// GetContractActions returns the audit history of a contract, most recent first
func (s *LifecycleService) GetContractActions(ctx context.Context, id uuid.UUID) ([]ActionResponse, error) {
	sc, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find contract: %w", err)
	}
	if sc == nil {
		return nil, shared.ErrNotFound
	}

	actions, err := s.actionRepo.FindByContract(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load actions: %w", err)
	}
	out := make([]ActionResponse, 0, len(actions))
	for i := range actions {
		out = append(out, ToActionResponse(&actions[i]))
	}
	return out, nil
}

// AmendContract applies line changes to an active contract and recomputes
// its MRR from the resulting line set
func (s *LifecycleService) AmendContract(ctx context.Context, id uuid.UUID, req AmendContractRequest) (*ContractResponse, error) {
	return s.mutate(ctx, id, func(sc *contract.SubscriptionContract) error {
		return sc.Amend(toLineChanges(req.Changes), req.MRRDelta, req.Reason, req.PerformedBy)
	})
}

// RenewContract extends an active contract by one year from its recorded end
// date and flips it to manual renewal
func (s *LifecycleService) RenewContract(ctx context.Context, id uuid.UUID, req RenewContractRequest) (*ContractResponse, error) {
	return s.mutate(ctx, id, func(sc *contract.SubscriptionContract) error {
		return sc.Renew(req.PerformedBy)
	})
}

// TerminateContract cancels an active contract and all of its product lines
func (s *LifecycleService) TerminateContract(ctx context.Context, id uuid.UUID, req TerminateContractRequest) (*ContractResponse, error) {
	return s.mutate(ctx, id, func(sc *contract.SubscriptionContract) error {
		return sc.Terminate(req.Reason, req.PerformedBy)
	})
}

// mutate loads the aggregate, applies the mutation and saves it with an
// optimistic version check, all within one transaction and serialized per
// contract
func (s *LifecycleService) mutate(ctx context.Context, id uuid.UUID, apply func(sc *contract.SubscriptionContract) error) (*ContractResponse, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	var sc *contract.SubscriptionContract

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sc, err = repos.ContractRepo().FindAggregateByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to find contract: %w", err)
		}
		if sc == nil {
			return shared.ErrNotFound
		}

		if err := apply(sc); err != nil {
			return err
		}

		return repos.ContractRepo().SaveWithLock(ctx, sc)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sc)
	return ToContractResponse(sc), nil
}

// publishEvents publishes pending domain events best-effort after commit
func (s *LifecycleService) publishEvents(ctx context.Context, sc *contract.SubscriptionContract) {
	if s.eventPublisher == nil || sc == nil {
		return
	}
	events := sc.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	sc.ClearDomainEvents()
}
