package finance

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subflow/backend/internal/domain/shared"
	"github.com/subflow/backend/internal/domain/shared/valueobject"
)

func newTestInvoice(t *testing.T, amount int64) *Invoice {
	t.Helper()
	inv, err := NewInvoice("INV-2026-100", uuid.New(), decimal.NewFromInt(amount), valueobject.USD)
	require.NoError(t, err)
	return inv
}

func newIssuedInvoice(t *testing.T, amount int64) *Invoice {
	t.Helper()
	inv := newTestInvoice(t, amount)
	require.NoError(t, inv.Approve(decimal.NewFromInt(10000)))
	if inv.Status == InvoiceStatusPendingVPApproval {
		require.NoError(t, inv.Approve(decimal.NewFromInt(10000)))
	}
	require.Equal(t, InvoiceStatusIssued, inv.Status)
	return inv
}

func TestNewInvoice(t *testing.T) {
	t.Run("should create draft invoice", func(t *testing.T) {
		inv := newTestInvoice(t, 5000)

		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.Equal(t, TransactionClassInvoice, inv.TransactionClass)
		assert.True(t, inv.BalanceDue.Equal(decimal.NewFromInt(5000)))
		assert.Nil(t, inv.IssuedAt)
		assert.Nil(t, inv.SourceTransactionID)
	})

	t.Run("should reject non-positive amount", func(t *testing.T) {
		_, err := NewInvoice("INV-1", uuid.New(), decimal.Zero, valueobject.USD)
		assert.Error(t, err)

		_, err = NewInvoice("INV-1", uuid.New(), decimal.NewFromInt(-100), valueobject.USD)
		assert.Error(t, err)
	})
}

func TestInvoice_Approve(t *testing.T) {
	limit := decimal.NewFromInt(10000)

	t.Run("should issue invoice at or under the limit directly", func(t *testing.T) {
		inv := newTestInvoice(t, 10000)

		require.NoError(t, inv.Approve(limit))

		assert.Equal(t, InvoiceStatusIssued, inv.Status)
		require.NotNil(t, inv.IssuedAt)
	})

	t.Run("should route invoice over the limit through VP approval", func(t *testing.T) {
		inv := newTestInvoice(t, 10001)

		require.NoError(t, inv.Approve(limit))
		assert.Equal(t, InvoiceStatusPendingVPApproval, inv.Status)
		assert.Nil(t, inv.IssuedAt)

		require.NoError(t, inv.Approve(limit))
		assert.Equal(t, InvoiceStatusIssued, inv.Status)
		require.NotNil(t, inv.IssuedAt)
	})

	t.Run("should issue pending invoice even if limit dropped below its amount", func(t *testing.T) {
		inv := newTestInvoice(t, 50000)
		require.NoError(t, inv.Approve(limit))
		require.Equal(t, InvoiceStatusPendingVPApproval, inv.Status)

		// The second approval is the VP tier; the amount check applies only
		// on the first pass.
		require.NoError(t, inv.Approve(decimal.NewFromInt(1)))
		assert.Equal(t, InvoiceStatusIssued, inv.Status)
	})

	t.Run("should reject approval once issued", func(t *testing.T) {
		inv := newTestInvoice(t, 50000)
		require.NoError(t, inv.Approve(limit))
		require.NoError(t, inv.Approve(limit))
		require.Equal(t, InvoiceStatusIssued, inv.Status)
		issuedAt := inv.IssuedAt

		// An issued over-limit invoice must not fall back into the amount
		// gate and regress to pending.
		err := inv.Approve(limit)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		assert.Equal(t, InvoiceStatusIssued, inv.Status)
		assert.Equal(t, issuedAt, inv.IssuedAt)
	})

	t.Run("should publish approval event", func(t *testing.T) {
		inv := newTestInvoice(t, 100)

		require.NoError(t, inv.Approve(limit))

		events := inv.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInvoiceApprovalAdvanced, events[0].EventType())
	})

	t.Run("should reject approval of credit memo", func(t *testing.T) {
		original := newIssuedInvoice(t, 5000)
		memo, err := NewCreditMemo(original, decimal.NewFromInt(1000), "billing error")
		require.NoError(t, err)

		err = memo.Approve(limit)

		require.Error(t, err)
	})
}

func TestNewCreditMemo(t *testing.T) {
	t.Run("should negate the absolute value of the requested amount", func(t *testing.T) {
		original := newIssuedInvoice(t, 5000)

		memo, err := NewCreditMemo(original, decimal.NewFromInt(1000), "billing error")

		require.NoError(t, err)
		assert.True(t, memo.Amount.Equal(decimal.NewFromInt(-1000)))
		assert.True(t, memo.TotalAmount.Equal(decimal.NewFromInt(-1000)))

		// A negative request must produce the same stored amount.
		memo2, err := NewCreditMemo(original, decimal.NewFromInt(-1000), "billing error")
		require.NoError(t, err)
		assert.True(t, memo2.Amount.Equal(decimal.NewFromInt(-1000)))
	})

	t.Run("should copy customer and currency and reference the original", func(t *testing.T) {
		original := newIssuedInvoice(t, 5000)

		memo, err := NewCreditMemo(original, decimal.NewFromInt(1000), "billing error")

		require.NoError(t, err)
		assert.Equal(t, TransactionClassCreditMemo, memo.TransactionClass)
		assert.Equal(t, original.CustomerID, memo.CustomerID)
		assert.Equal(t, original.Currency, memo.Currency)
		require.NotNil(t, memo.SourceTransactionID)
		assert.Equal(t, original.ID, *memo.SourceTransactionID)
		assert.True(t, strings.HasPrefix(memo.InvoiceNumber, original.InvoiceNumber+"-CM-"))
		assert.Equal(t, InvoiceStatusIssued, memo.Status)
		require.Len(t, memo.Lines, 1)
		assert.True(t, memo.Lines[0].Amount.Equal(decimal.NewFromInt(-1000)))
	})

	t.Run("should reject credit exceeding outstanding balance", func(t *testing.T) {
		original := newIssuedInvoice(t, 5000)

		_, err := NewCreditMemo(original, decimal.NewFromInt(5001), "too much")

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "AMOUNT_EXCEEDS_BALANCE", domainErr.Code)
	})

	t.Run("should reject non-issued original", func(t *testing.T) {
		original := newTestInvoice(t, 5000)

		_, err := NewCreditMemo(original, decimal.NewFromInt(100), "too early")

		require.Error(t, err)
	})

	t.Run("should reject crediting a credit memo", func(t *testing.T) {
		original := newIssuedInvoice(t, 5000)
		memo, err := NewCreditMemo(original, decimal.NewFromInt(1000), "billing error")
		require.NoError(t, err)

		_, err = NewCreditMemo(memo, decimal.NewFromInt(100), "nested")

		require.Error(t, err)
	})

	t.Run("should reject zero amount and empty reason", func(t *testing.T) {
		original := newIssuedInvoice(t, 5000)

		_, err := NewCreditMemo(original, decimal.Zero, "reason")
		assert.Error(t, err)

		_, err = NewCreditMemo(original, decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestInvoice_ApplyAdjustment(t *testing.T) {
	t.Run("should reduce the balance by the adjustment magnitude", func(t *testing.T) {
		inv := newIssuedInvoice(t, 5000)

		adjustment, err := inv.ApplyAdjustment(uuid.New(), decimal.NewFromInt(-1200), "credit memo")

		require.NoError(t, err)
		assert.True(t, inv.BalanceDue.Equal(decimal.NewFromInt(3800)))
		assert.True(t, adjustment.Amount.Equal(decimal.NewFromInt(-1200)))
		require.Len(t, inv.Adjustments, 1)
	})

	t.Run("should reject positive adjustment", func(t *testing.T) {
		inv := newIssuedInvoice(t, 5000)

		_, err := inv.ApplyAdjustment(uuid.New(), decimal.NewFromInt(100), "wrong sign")

		require.Error(t, err)
	})

	t.Run("should reject adjustment on non-issued invoice", func(t *testing.T) {
		inv := newTestInvoice(t, 5000)

		_, err := inv.ApplyAdjustment(uuid.New(), decimal.NewFromInt(-100), "too early")

		require.Error(t, err)
	})
}
