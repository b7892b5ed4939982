package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/subflow/backend/internal/domain/billing"
	"github.com/subflow/backend/internal/domain/contract"
	"github.com/subflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RunService generates billing events for a target billing period. A run
// sweeps every active contract and emits at most one event per active
// recurring line and period: re-running for the same period creates nothing
// new. One contract failing does not abort the rest of the run.
type RunService struct {
	contractRepo     contract.SubscriptionContractRepository
	eventRepo        billing.BillingEventRepository
	txScope          TransactionScope
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
	logger           *zap.Logger
}

// NewRunService creates a new RunService
func NewRunService(
	contractRepo contract.SubscriptionContractRepository,
	eventRepo billing.BillingEventRepository,
	txScope TransactionScope,
	idempotencyStore shared.IdempotencyStore,
	logger *zap.Logger,
) *RunService {
	return &RunService{
		contractRepo:     contractRepo,
		eventRepo:        eventRepo,
		txScope:          txScope,
		idempotencyStore: idempotencyStore,
		idempotencyCfg:   shared.DefaultIdempotencyConfig(),
		logger:           logger,
	}
}

// SetIdempotencyTTL overrides how long processed (line, period) keys stay in
// the fast-path store. Zero or negative values keep the default.
func (s *RunService) SetIdempotencyTTL(ttl time.Duration) {
	if ttl > 0 {
		s.idempotencyCfg.TTL = ttl
	}
}

// GenerateBillingEvents runs one billing sweep for the period containing the
// target date
func (s *RunService) GenerateBillingEvents(ctx context.Context, req GenerateBillingRequest) (*BillingRunSummary, error) {
	targetDate := time.Now()
	if req.TargetDate != nil && !req.TargetDate.IsZero() {
		targetDate = *req.TargetDate
	}
	periodKey := billing.PeriodKeyFor(targetDate)

	contracts, err := s.contractRepo.FindActiveWithLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active contracts: %w", err)
	}

	summary := &BillingRunSummary{
		TargetDate: targetDate,
		PeriodKey:  periodKey,
		Events:     make([]BillingEventResponse, 0),
	}

	for i := range contracts {
		sc := &contracts[i]
		created, skipped, err := s.processContract(ctx, sc, targetDate, periodKey)
		if err != nil {
			summary.ContractsFailed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("contract %s: %v", sc.ContractNumber, err))
			s.logger.Error("billing run failed for contract",
				zap.String("contract_number", sc.ContractNumber),
				zap.String("period_key", periodKey),
				zap.Error(err),
			)
			continue
		}
		summary.ContractsProcessed++
		summary.EventsCreated += len(created)
		summary.LinesSkipped += skipped
		for j := range created {
			summary.Events = append(summary.Events, ToBillingEventResponse(created[j]))
		}
	}

	s.logger.Info("billing run completed",
		zap.String("period_key", periodKey),
		zap.Int("contracts_processed", summary.ContractsProcessed),
		zap.Int("contracts_failed", summary.ContractsFailed),
		zap.Int("events_created", summary.EventsCreated),
		zap.Int("lines_skipped", summary.LinesSkipped),
	)

	return summary, nil
}

// processContract emits events for one contract's billable lines inside one
// transaction and returns the events it created. Lines already billed for the
// period are skipped, checked first against the idempotency store and then
// against the event table inside the transaction.
func (s *RunService) processContract(ctx context.Context, sc *contract.SubscriptionContract, targetDate time.Time, periodKey string) (created []*billing.BillingEvent, skipped int, err error) {
	type pendingLine struct {
		line     *contract.ProductLine
		dedupKey string
	}

	billable := make([]pendingLine, 0, len(sc.Lines))
	for i := range sc.Lines {
		line := &sc.Lines[i]
		if !line.IsActive() || !line.IsRecurring() {
			continue
		}

		dedupKey := billing.DedupKey(line.ID, periodKey)
		if s.idempotencyCfg.Enabled && s.idempotencyStore != nil {
			processed, err := s.idempotencyStore.IsProcessed(ctx, dedupKey)
			if err == nil && processed {
				skipped++
				continue
			}
		}
		billable = append(billable, pendingLine{line: line, dedupKey: dedupKey})
	}

	if len(billable) == 0 {
		return nil, skipped, nil
	}

	var createdKeys []string
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, pending := range billable {
			exists, err := repos.EventRepo().ExistsForLinePeriod(ctx, pending.line.ID, periodKey)
			if err != nil {
				return fmt.Errorf("failed to check line %s: %w", pending.line.ID, err)
			}
			if exists {
				skipped++
				continue
			}

			event, err := billing.NewBillingEvent(sc, pending.line, targetDate)
			if err != nil {
				return err
			}
			if err := repos.EventRepo().Save(ctx, event); err != nil {
				return fmt.Errorf("failed to save event for line %s: %w", pending.line.ID, err)
			}
			created = append(created, event)
			createdKeys = append(createdKeys, pending.dedupKey)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	// Mark after commit; a lost mark only costs one redundant existence
	// check on the next run.
	if s.idempotencyCfg.Enabled && s.idempotencyStore != nil {
		for _, key := range createdKeys {
			if _, markErr := s.idempotencyStore.MarkProcessed(ctx, key, s.idempotencyCfg.TTL); markErr != nil {
				s.logger.Warn("failed to mark billing key processed",
					zap.String("key", key),
					zap.Error(markErr),
				)
			}
		}
	}

	return created, skipped, nil
}

// ListBillingEvents returns a page of billing events matching the filter
func (s *RunService) ListBillingEvents(ctx context.Context, filter BillingEventListFilter) (*shared.Paginated[BillingEventResponse], error) {
	domainFilter := billing.EventFilter{
		Filter:     shared.DefaultFilter(),
		ContractID: filter.ContractID,
	}
	if filter.PeriodKey != "" {
		domainFilter.PeriodKey = &filter.PeriodKey
	}
	if filter.Status != "" {
		status := billing.EventStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	events, err := s.eventRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list billing events: %w", err)
	}
	total, err := s.eventRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to count billing events: %w", err)
	}

	items := make([]BillingEventResponse, 0, len(events))
	for i := range events {
		items = append(items, ToBillingEventResponse(&events[i]))
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}
