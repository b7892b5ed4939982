package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subflow/backend/internal/domain/contract"
	"github.com/subflow/backend/internal/domain/shared"
	"github.com/subflow/backend/internal/domain/shared/valueobject"
)

func newBillableContract(t *testing.T) *contract.SubscriptionContract {
	t.Helper()
	sc, err := contract.NewSubscriptionContract(
		"SUB-2026-042",
		uuid.New(),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		nil,
		decimal.NewFromInt(12000),
		decimal.NewFromInt(1000),
		valueobject.USD,
		contract.BillingFrequencyMonthly,
		[]contract.LineSpec{
			{
				ItemID:      "ITEM-PRO",
				ItemName:    "Pro Plan",
				Quantity:    decimal.NewFromInt(10),
				UnitPrice:   decimal.NewFromInt(100),
				Amount:      decimal.NewFromInt(1000),
				BillingType: contract.BillingTypeRecurring,
			},
		},
		"alice@example.com",
	)
	require.NoError(t, err)
	return sc
}

func TestPeriodKeyFor(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"mid month", time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC), "2026-03"},
		{"first of month", time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), "2026-12"},
		{"single digit month padded", time.Date(2027, 1, 31, 23, 59, 59, 0, time.UTC), "2027-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodKeyFor(tt.date))
		})
	}
}

func TestDedupKey(t *testing.T) {
	lineID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	assert.Equal(t, "billing:11111111-2222-3333-4444-555555555555:2026-03", DedupKey(lineID, "2026-03"))
}

func TestNewBillingEvent(t *testing.T) {
	targetDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("should snapshot line amounts at generation time", func(t *testing.T) {
		sc := newBillableContract(t)
		line := &sc.Lines[0]

		event, err := NewBillingEvent(sc, line, targetDate)

		require.NoError(t, err)
		assert.Equal(t, SourceSystemContracts, event.SourceSystem)
		assert.Equal(t, line.ID, event.SourceTransactionID)
		assert.Equal(t, sc.ID, event.ContractID)
		assert.Equal(t, sc.CustomerID, event.CustomerID)
		assert.Equal(t, "2026-03", event.PeriodKey)
		assert.True(t, event.Amount.Equal(line.Amount))
		assert.True(t, event.Quantity.Equal(line.Quantity))
		assert.True(t, event.UnitPrice.Equal(line.UnitPrice))
		assert.Equal(t, valueobject.USD, event.Currency)
		assert.Equal(t, EventStatusPending, event.Status)
		assert.Contains(t, event.Description, "Pro Plan")
		assert.Contains(t, event.Description, "SUB-2026-042")
	})

	t.Run("should reject cancelled contract", func(t *testing.T) {
		sc := newBillableContract(t)
		require.NoError(t, sc.Terminate("churn", "bob@example.com"))

		_, err := NewBillingEvent(sc, &sc.Lines[0], targetDate)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("should reject cancelled line", func(t *testing.T) {
		sc := newBillableContract(t)
		line := sc.Lines[0]
		line.Status = contract.LineStatusCancelled

		_, err := NewBillingEvent(sc, &line, targetDate)

		require.Error(t, err)
	})

	t.Run("should reject nil inputs", func(t *testing.T) {
		sc := newBillableContract(t)

		_, err := NewBillingEvent(nil, &sc.Lines[0], targetDate)
		assert.Error(t, err)

		_, err = NewBillingEvent(sc, nil, targetDate)
		assert.Error(t, err)
	})
}
