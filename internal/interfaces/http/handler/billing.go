package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	billingapp "github.com/subflow/backend/internal/application/billing"
	"github.com/subflow/backend/internal/interfaces/http/middleware"
)

// BillingHandler handles billing run and billing event endpoints
type BillingHandler struct {
	BaseHandler
	runService *billingapp.RunService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(runService *billingapp.RunService) *BillingHandler {
	return &BillingHandler{runService: runService}
}

// RegisterRoutes registers the billing routes
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/subscriptions/process-billing", h.ProcessBilling)
	rg.GET("/billing-events", h.ListEvents)
}

// ProcessBilling runs billing event generation across all active contracts.
// The run is idempotent per (line, period); re-running for the same period
// creates nothing new and still returns a summary.
func (h *BillingHandler) ProcessBilling(c *gin.Context) {
	// An absent body means "bill for now"
	var req billingapp.GenerateBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BadRequest(c, middleware.ValidationErrorMessage(err))
		return
	}

	summary, err := h.runService.GenerateBillingEvents(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ListEvents returns a page of billing events matching the query filters
func (h *BillingHandler) ListEvents(c *gin.Context) {
	var filter billingapp.BillingEventListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, middleware.ValidationErrorMessage(err))
		return
	}

	page, err := h.runService.ListBillingEvents(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
