package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	contractapp "github.com/subflow/backend/internal/application/contract"
	"github.com/subflow/backend/internal/domain/contract"
)

// In-memory contract repository backing handler tests

type memContractRepo struct {
	contracts map[uuid.UUID]*contract.SubscriptionContract
}

func newMemContractRepo() *memContractRepo {
	return &memContractRepo{contracts: make(map[uuid.UUID]*contract.SubscriptionContract)}
}

func (m *memContractRepo) FindByID(_ context.Context, id uuid.UUID) (*contract.SubscriptionContract, error) {
	return m.contracts[id], nil
}

func (m *memContractRepo) FindAggregateByID(_ context.Context, id uuid.UUID) (*contract.SubscriptionContract, error) {
	return m.contracts[id], nil
}

func (m *memContractRepo) FindByContractNumber(_ context.Context, number string) (*contract.SubscriptionContract, error) {
	for _, sc := range m.contracts {
		if sc.ContractNumber == number {
			return sc, nil
		}
	}
	return nil, nil
}

func (m *memContractRepo) FindActiveWithLines(_ context.Context) ([]contract.SubscriptionContract, error) {
	var out []contract.SubscriptionContract
	for _, sc := range m.contracts {
		if sc.IsActive() {
			out = append(out, *sc)
		}
	}
	return out, nil
}

func (m *memContractRepo) FindAll(_ context.Context, filter contract.ContractFilter) ([]contract.SubscriptionContract, error) {
	var out []contract.SubscriptionContract
	for _, sc := range m.contracts {
		if filter.Status != nil && sc.Status != *filter.Status {
			continue
		}
		out = append(out, *sc)
	}
	return out, nil
}

func (m *memContractRepo) Count(ctx context.Context, filter contract.ContractFilter) (int64, error) {
	out, _ := m.FindAll(ctx, filter)
	return int64(len(out)), nil
}

func (m *memContractRepo) Save(_ context.Context, sc *contract.SubscriptionContract) error {
	m.contracts[sc.ID] = sc
	return nil
}

func (m *memContractRepo) SaveWithLock(_ context.Context, sc *contract.SubscriptionContract) error {
	m.contracts[sc.ID] = sc
	return nil
}

func (m *memContractRepo) ExistsByContractNumber(ctx context.Context, number string) (bool, error) {
	sc, _ := m.FindByContractNumber(ctx, number)
	return sc != nil, nil
}

type memActionRepo struct{}

func (m *memActionRepo) FindByContract(_ context.Context, _ uuid.UUID) ([]contract.SubscriptionAction, error) {
	return nil, nil
}

func (m *memActionRepo) Append(_ context.Context, _ *contract.SubscriptionAction) error {
	return nil
}

func newContractTestServer(t *testing.T) (*gin.Engine, *memContractRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemContractRepo()
	actionRepo := &memActionRepo{}
	service := contractapp.NewLifecycleService(repo, actionRepo,
		contractapp.NewNoOpTransactionScope(repo, actionRepo))

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewContractHandler(service).RegisterRoutes(api)
	return engine, repo
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func newHandlerTestContract(t *testing.T, number string) *contract.SubscriptionContract {
	t.Helper()
	sc, err := contract.NewSubscriptionContract(
		number,
		uuid.New(),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		nil,
		decimal.NewFromInt(12000),
		decimal.NewFromInt(1000),
		"",
		"",
		[]contract.LineSpec{
			{
				ItemID:      "SKU-SEATS",
				ItemName:    "Seats",
				Quantity:    decimal.NewFromInt(10),
				UnitPrice:   decimal.NewFromInt(100),
				Amount:      decimal.NewFromInt(1000),
				BillingType: contract.BillingTypeRecurring,
			},
		},
		"ops",
	)
	require.NoError(t, err)
	return sc
}

func createContractPayload(number string) map[string]any {
	return map[string]any{
		"contract_number": number,
		"customer_id":     uuid.New().String(),
		"start_date":      time.Now().Format(time.RFC3339),
		"total_tcv":       "12000",
		"total_mrr":       "1000",
		"lines": []map[string]any{
			{
				"item_id":      "SKU-SEATS",
				"item_name":    "Seats",
				"quantity":     "10",
				"unit_price":   "100",
				"amount":       "1000",
				"billing_type": "RECURRING",
			},
		},
		"performed_by": "ops",
	}
}

func TestContractHandler_Create(t *testing.T) {
	t.Run("creates contract and returns 201", func(t *testing.T) {
		engine, repo := newContractTestServer(t)

		w := postJSON(t, engine, "/api/v1/subscriptions", createContractPayload("SUB-001"))

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp struct {
			Success bool                         `json:"success"`
			Data    contractapp.ContractResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "SUB-001", resp.Data.ContractNumber)
		assert.Equal(t, "ACTIVE", resp.Data.Status)
		assert.Len(t, repo.contracts, 1)
	})

	t.Run("rejects duplicate contract number with 409", func(t *testing.T) {
		engine, _ := newContractTestServer(t)

		w := postJSON(t, engine, "/api/v1/subscriptions", createContractPayload("SUB-001"))
		require.Equal(t, http.StatusCreated, w.Code)

		w = postJSON(t, engine, "/api/v1/subscriptions", createContractPayload("SUB-001"))
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("rejects missing lines with 400", func(t *testing.T) {
		engine, _ := newContractTestServer(t)

		payload := createContractPayload("SUB-002")
		delete(payload, "lines")

		w := postJSON(t, engine, "/api/v1/subscriptions", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestContractHandler_Get(t *testing.T) {
	t.Run("returns contract with audit history", func(t *testing.T) {
		engine, repo := newContractTestServer(t)

		w := postJSON(t, engine, "/api/v1/subscriptions", createContractPayload("SUB-001"))
		require.Equal(t, http.StatusCreated, w.Code)

		var id uuid.UUID
		for k := range repo.contracts {
			id = k
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/"+id.String(), nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Data contractapp.ContractResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data.Actions, 1)
		assert.Equal(t, "NEW", resp.Data.Actions[0].ActionType)
	})

	t.Run("returns 404 for unknown contract", func(t *testing.T) {
		engine, _ := newContractTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/"+uuid.New().String(), nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("returns 400 for malformed ID", func(t *testing.T) {
		engine, _ := newContractTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestContractHandler_Lifecycle(t *testing.T) {
	t.Run("amend recomputes MRR from line set", func(t *testing.T) {
		engine, repo := newContractTestServer(t)

		w := postJSON(t, engine, "/api/v1/subscriptions", createContractPayload("SUB-001"))
		require.Equal(t, http.StatusCreated, w.Code)

		var id uuid.UUID
		var lineID uuid.UUID
		for k, sc := range repo.contracts {
			id = k
			lineID = sc.Lines[0].ID
		}

		w = postJSON(t, engine, fmt.Sprintf("/api/v1/subscriptions/%s/amend", id), map[string]any{
			"changes": []map[string]any{
				{"line_id": lineID.String(), "quantity": "20", "amount": "2000"},
			},
			"mrr_delta":    "1000",
			"performed_by": "ops",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data contractapp.ContractResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Data.TotalMRR.Equal(decimal.NewFromInt(2000)))
	})

	t.Run("terminate is terminal", func(t *testing.T) {
		engine, repo := newContractTestServer(t)

		w := postJSON(t, engine, "/api/v1/subscriptions", createContractPayload("SUB-001"))
		require.Equal(t, http.StatusCreated, w.Code)

		var id uuid.UUID
		for k := range repo.contracts {
			id = k
		}

		body := map[string]any{"reason": "churn", "performed_by": "ops"}
		w = postJSON(t, engine, fmt.Sprintf("/api/v1/subscriptions/%s/terminate", id), body)
		require.Equal(t, http.StatusOK, w.Code)

		w = postJSON(t, engine, fmt.Sprintf("/api/v1/subscriptions/%s/terminate", id), body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("renew extends end date by one year", func(t *testing.T) {
		engine, repo := newContractTestServer(t)

		w := postJSON(t, engine, "/api/v1/subscriptions", createContractPayload("SUB-001"))
		require.Equal(t, http.StatusCreated, w.Code)

		var id uuid.UUID
		var endBefore time.Time
		for k, sc := range repo.contracts {
			id = k
			endBefore = sc.EndDate
		}

		w = postJSON(t, engine, fmt.Sprintf("/api/v1/subscriptions/%s/renew", id), map[string]any{
			"performed_by": "ops",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, endBefore.AddDate(1, 0, 0), repo.contracts[id].EndDate)
	})
}
