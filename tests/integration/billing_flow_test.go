package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	billingapp "github.com/subflow/backend/internal/application/billing"
	contractapp "github.com/subflow/backend/internal/application/contract"
	"github.com/subflow/backend/internal/infrastructure/cache"
	"github.com/subflow/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newBillingServices(db *gorm.DB) (*contractapp.LifecycleService, *billingapp.RunService) {
	contractRepo := persistence.NewGormSubscriptionContractRepository(db)
	actionRepo := persistence.NewGormSubscriptionActionRepository(db)
	eventRepo := persistence.NewGormBillingEventRepository(db)

	lifecycle := contractapp.NewLifecycleService(contractRepo, actionRepo,
		persistence.NewContractTransactionScope(db))
	run := billingapp.NewRunService(contractRepo, eventRepo,
		persistence.NewBillingTransactionScope(db),
		cache.NewInMemoryIdempotencyStore(), zap.NewNop())
	return lifecycle, run
}

func TestBillingRunFlow(t *testing.T) {
	ctx := context.Background()
	targetDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("sweep bills each active recurring line exactly once", func(t *testing.T) {
		db := NewTestDB(t)
		lifecycle, run := newBillingServices(db)

		_, err := lifecycle.CreateContract(ctx, createRequest("SUB-2026-001"))
		require.NoError(t, err)

		summary, err := run.GenerateBillingEvents(ctx, billingapp.GenerateBillingRequest{TargetDate: &targetDate})
		require.NoError(t, err)
		assert.Equal(t, "2026-03", summary.PeriodKey)
		assert.Equal(t, 1, summary.ContractsProcessed)
		// The one-time onboarding line is not billed
		assert.Equal(t, 1, summary.EventsCreated)
		require.Len(t, summary.Events, 1)
		assert.Equal(t, "Contracts", summary.Events[0].SourceSystem)
		assert.Equal(t, "2026-03", summary.Events[0].PeriodKey)

		var count int64
		require.NoError(t, db.Table("billing_events").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("re-running the same period creates no duplicate rows", func(t *testing.T) {
		db := NewTestDB(t)
		lifecycle, run := newBillingServices(db)

		_, err := lifecycle.CreateContract(ctx, createRequest("SUB-2026-001"))
		require.NoError(t, err)

		first, err := run.GenerateBillingEvents(ctx, billingapp.GenerateBillingRequest{TargetDate: &targetDate})
		require.NoError(t, err)
		require.Equal(t, 1, first.EventsCreated)

		second, err := run.GenerateBillingEvents(ctx, billingapp.GenerateBillingRequest{TargetDate: &targetDate})
		require.NoError(t, err)
		assert.Equal(t, 0, second.EventsCreated)
		assert.Equal(t, 1, second.LinesSkipped)

		var count int64
		require.NoError(t, db.Table("billing_events").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("store check catches duplicates when the cache is rebuilt", func(t *testing.T) {
		db := NewTestDB(t)
		lifecycle, _ := newBillingServices(db)

		_, err := lifecycle.CreateContract(ctx, createRequest("SUB-2026-001"))
		require.NoError(t, err)

		// Two runs with independent caches share only the event table.
		_, runA := newBillingServices(db)
		_, runB := newBillingServices(db)

		first, err := runA.GenerateBillingEvents(ctx, billingapp.GenerateBillingRequest{TargetDate: &targetDate})
		require.NoError(t, err)
		require.Equal(t, 1, first.EventsCreated)

		second, err := runB.GenerateBillingEvents(ctx, billingapp.GenerateBillingRequest{TargetDate: &targetDate})
		require.NoError(t, err)
		assert.Equal(t, 0, second.EventsCreated)
		assert.Equal(t, 1, second.LinesSkipped)
	})

	t.Run("next period bills again and terminated contracts drop out", func(t *testing.T) {
		db := NewTestDB(t)
		lifecycle, run := newBillingServices(db)

		created, err := lifecycle.CreateContract(ctx, createRequest("SUB-2026-001"))
		require.NoError(t, err)

		_, err = run.GenerateBillingEvents(ctx, billingapp.GenerateBillingRequest{TargetDate: &targetDate})
		require.NoError(t, err)

		nextMonth := targetDate.AddDate(0, 1, 0)
		second, err := run.GenerateBillingEvents(ctx, billingapp.GenerateBillingRequest{TargetDate: &nextMonth})
		require.NoError(t, err)
		assert.Equal(t, 1, second.EventsCreated)

		_, err = lifecycle.TerminateContract(ctx, created.ID, contractapp.TerminateContractRequest{
			Reason:      "Churn",
			PerformedBy: "alice@example.com",
		})
		require.NoError(t, err)

		monthAfter := targetDate.AddDate(0, 2, 0)
		third, err := run.GenerateBillingEvents(ctx, billingapp.GenerateBillingRequest{TargetDate: &monthAfter})
		require.NoError(t, err)
		assert.Equal(t, 0, third.ContractsProcessed)
		assert.Equal(t, 0, third.EventsCreated)
	})

	t.Run("listing filters events by period", func(t *testing.T) {
		db := NewTestDB(t)
		lifecycle, run := newBillingServices(db)

		_, err := lifecycle.CreateContract(ctx, createRequest("SUB-2026-001"))
		require.NoError(t, err)

		_, err = run.GenerateBillingEvents(ctx, billingapp.GenerateBillingRequest{TargetDate: &targetDate})
		require.NoError(t, err)
		nextMonth := targetDate.AddDate(0, 1, 0)
		_, err = run.GenerateBillingEvents(ctx, billingapp.GenerateBillingRequest{TargetDate: &nextMonth})
		require.NoError(t, err)

		page, err := run.ListBillingEvents(ctx, billingapp.BillingEventListFilter{PeriodKey: "2026-04"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "2026-04", page.Items[0].PeriodKey)
		assert.Equal(t, "PENDING", page.Items[0].Status)
	})
}
