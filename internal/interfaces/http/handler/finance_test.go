package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	financeapp "github.com/subflow/backend/internal/application/finance"
	"github.com/subflow/backend/internal/domain/finance"
	"github.com/subflow/backend/internal/domain/shared"
)

// In-memory invoice repository backing handler tests

type memInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*finance.Invoice
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: make(map[uuid.UUID]*finance.Invoice)}
}

func (r *memInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*finance.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	copied := *inv
	return &copied, nil
}

func (r *memInvoiceRepo) FindByInvoiceNumber(_ context.Context, invoiceNumber string) (*finance.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.InvoiceNumber == invoiceNumber {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memInvoiceRepo) FindAll(_ context.Context, filter finance.InvoiceFilter) ([]finance.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]finance.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		if filter.TransactionClass != nil && inv.TransactionClass != *filter.TransactionClass {
			continue
		}
		if filter.Status != nil && inv.Status != *filter.Status {
			continue
		}
		out = append(out, *inv)
	}
	return out, nil
}

func (r *memInvoiceRepo) Count(ctx context.Context, filter finance.InvoiceFilter) (int64, error) {
	all, _ := r.FindAll(ctx, filter)
	return int64(len(all)), nil
}

func (r *memInvoiceRepo) Save(_ context.Context, inv *finance.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *inv
	r.invoices[inv.ID] = &copied
	return nil
}

func (r *memInvoiceRepo) SaveWithLock(_ context.Context, inv *finance.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.invoices[inv.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if inv.Version <= existing.Version {
		return shared.ErrConcurrencyConflict
	}
	copied := *inv
	r.invoices[inv.ID] = &copied
	return nil
}

func (r *memInvoiceRepo) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	inv, _ := r.FindByInvoiceNumber(ctx, invoiceNumber)
	return inv != nil, nil
}

func newFinanceTestServer(t *testing.T) (*gin.Engine, *memInvoiceRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemInvoiceRepo()
	scope := financeapp.NewNoOpTransactionScope(repo)
	handler := NewFinanceHandler(
		financeapp.NewInvoiceService(repo, scope),
		financeapp.NewApprovalService(scope, decimal.NewFromInt(10000)),
		financeapp.NewCreditMemoService(scope),
	)

	engine := gin.New()
	api := engine.Group("/api/v1")
	handler.RegisterRoutes(api)
	return engine, repo
}

func createInvoicePayload(number string, amount int64) map[string]any {
	return map[string]any{
		"invoice_number": number,
		"customer_id":    uuid.New().String(),
		"amount":         fmt.Sprintf("%d", amount),
		"lines": []map[string]any{
			{
				"description": "Monthly subscription",
				"quantity":    "1",
				"unit_price":  fmt.Sprintf("%d", amount),
				"amount":      fmt.Sprintf("%d", amount),
			},
		},
	}
}

func decodeInvoice(t *testing.T, body []byte) financeapp.InvoiceResponse {
	t.Helper()
	var resp struct {
		Data financeapp.InvoiceResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Data
}

// issueInvoice creates and approves an invoice below the approval limit so it
// lands in ISSUED state
func issueInvoice(t *testing.T, engine *gin.Engine, number string, amount int64) financeapp.InvoiceResponse {
	t.Helper()
	w := postJSON(t, engine, "/api/v1/invoices", createInvoicePayload(number, amount))
	require.Equal(t, http.StatusCreated, w.Code)
	inv := decodeInvoice(t, w.Body.Bytes())

	w = postJSON(t, engine, fmt.Sprintf("/api/v1/invoices/%s/approve", inv.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	return decodeInvoice(t, w.Body.Bytes())
}

func TestFinanceHandler_CreateInvoice(t *testing.T) {
	t.Run("creates draft invoice and returns 201", func(t *testing.T) {
		engine, repo := newFinanceTestServer(t)

		w := postJSON(t, engine, "/api/v1/invoices", createInvoicePayload("INV-2026-001", 5000))

		assert.Equal(t, http.StatusCreated, w.Code)
		inv := decodeInvoice(t, w.Body.Bytes())
		assert.Equal(t, "INV-2026-001", inv.InvoiceNumber)
		assert.Equal(t, "DRAFT", inv.Status)
		assert.Equal(t, "INVOICE", inv.TransactionClass)
		assert.Len(t, repo.invoices, 1)
	})

	t.Run("rejects duplicate invoice number with 409", func(t *testing.T) {
		engine, _ := newFinanceTestServer(t)

		w := postJSON(t, engine, "/api/v1/invoices", createInvoicePayload("INV-2026-001", 5000))
		require.Equal(t, http.StatusCreated, w.Code)

		w = postJSON(t, engine, "/api/v1/invoices", createInvoicePayload("INV-2026-001", 5000))
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestFinanceHandler_ApproveInvoice(t *testing.T) {
	t.Run("issues invoice at or below the approval limit", func(t *testing.T) {
		engine, _ := newFinanceTestServer(t)

		inv := issueInvoice(t, engine, "INV-2026-001", 5000)

		assert.Equal(t, "ISSUED", inv.Status)
		require.NotNil(t, inv.IssuedAt)
	})

	t.Run("routes large invoices through VP approval", func(t *testing.T) {
		engine, _ := newFinanceTestServer(t)

		w := postJSON(t, engine, "/api/v1/invoices", createInvoicePayload("INV-2026-001", 50000))
		require.Equal(t, http.StatusCreated, w.Code)
		inv := decodeInvoice(t, w.Body.Bytes())

		w = postJSON(t, engine, fmt.Sprintf("/api/v1/invoices/%s/approve", inv.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "PENDING_VP_APPROVAL", decodeInvoice(t, w.Body.Bytes()).Status)

		w = postJSON(t, engine, fmt.Sprintf("/api/v1/invoices/%s/approve", inv.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ISSUED", decodeInvoice(t, w.Body.Bytes()).Status)
	})

	t.Run("rejects approving an already issued invoice with 422", func(t *testing.T) {
		engine, _ := newFinanceTestServer(t)

		inv := issueInvoice(t, engine, "INV-2026-001", 5000)

		w := postJSON(t, engine, fmt.Sprintf("/api/v1/invoices/%s/approve", inv.ID), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("returns 404 for unknown invoice", func(t *testing.T) {
		engine, _ := newFinanceTestServer(t)

		w := postJSON(t, engine, fmt.Sprintf("/api/v1/invoices/%s/approve", uuid.New()), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFinanceHandler_CreateCreditMemo(t *testing.T) {
	t.Run("issues memo and reduces invoice balance", func(t *testing.T) {
		engine, _ := newFinanceTestServer(t)
		inv := issueInvoice(t, engine, "INV-2026-001", 5000)

		w := postJSON(t, engine, "/api/v1/credit-memo", map[string]any{
			"invoice_id": inv.ID.String(),
			"amount":     "1200",
			"reason":     "Service outage credit",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp struct {
			Data financeapp.CreditMemoResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Data.CreditMemo)
		require.NotNil(t, resp.Data.Invoice)
		assert.Equal(t, "CM", resp.Data.CreditMemo.TransactionClass)
		assert.True(t, resp.Data.CreditMemo.Amount.Equal(decimal.NewFromInt(-1200)))
		assert.True(t, resp.Data.Invoice.BalanceDue.Equal(decimal.NewFromInt(3800)))
	})

	t.Run("rejects memo exceeding the outstanding balance with 422", func(t *testing.T) {
		engine, _ := newFinanceTestServer(t)
		inv := issueInvoice(t, engine, "INV-2026-001", 5000)

		w := postJSON(t, engine, "/api/v1/credit-memo", map[string]any{
			"invoice_id": inv.ID.String(),
			"amount":     "9000",
			"reason":     "Over-credit",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("rejects memo against a draft invoice with 422", func(t *testing.T) {
		engine, _ := newFinanceTestServer(t)

		w := postJSON(t, engine, "/api/v1/invoices", createInvoicePayload("INV-2026-001", 5000))
		require.Equal(t, http.StatusCreated, w.Code)
		inv := decodeInvoice(t, w.Body.Bytes())

		w = postJSON(t, engine, "/api/v1/credit-memo", map[string]any{
			"invoice_id": inv.ID.String(),
			"amount":     "1000",
			"reason":     "Premature credit",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("returns 404 for unknown invoice", func(t *testing.T) {
		engine, _ := newFinanceTestServer(t)

		w := postJSON(t, engine, "/api/v1/credit-memo", map[string]any{
			"invoice_id": uuid.New().String(),
			"amount":     "1000",
			"reason":     "No such invoice",
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFinanceHandler_ListInvoices(t *testing.T) {
	t.Run("filters by transaction class", func(t *testing.T) {
		engine, _ := newFinanceTestServer(t)
		inv := issueInvoice(t, engine, "INV-2026-001", 5000)

		w := postJSON(t, engine, "/api/v1/credit-memo", map[string]any{
			"invoice_id": inv.ID.String(),
			"amount":     "500",
			"reason":     "Goodwill credit",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices?transaction_class=CM", nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Data []financeapp.InvoiceResponse `json:"data"`
			Meta struct {
				Total int64 `json:"total"`
			} `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, int64(1), resp.Meta.Total)
		assert.Equal(t, "CM", resp.Data[0].TransactionClass)
	})
}
