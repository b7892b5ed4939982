package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	financeapp "github.com/subflow/backend/internal/application/finance"
	"github.com/subflow/backend/internal/interfaces/http/middleware"
)

// FinanceHandler handles invoice, approval and credit memo endpoints
type FinanceHandler struct {
	BaseHandler
	invoiceService    *financeapp.InvoiceService
	approvalService   *financeapp.ApprovalService
	creditMemoService *financeapp.CreditMemoService
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(
	invoiceService *financeapp.InvoiceService,
	approvalService *financeapp.ApprovalService,
	creditMemoService *financeapp.CreditMemoService,
) *FinanceHandler {
	return &FinanceHandler{
		invoiceService:    invoiceService,
		approvalService:   approvalService,
		creditMemoService: creditMemoService,
	}
}

// RegisterRoutes registers the finance routes
func (h *FinanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.CreateInvoice)
		invoices.GET("", h.ListInvoices)
		invoices.GET("/:id", h.GetInvoice)
		invoices.POST("/:id/approve", h.ApproveInvoice)
	}
	rg.POST("/credit-memo", h.CreateCreditMemo)
}

// CreateInvoice creates a draft invoice
func (h *FinanceHandler) CreateInvoice(c *gin.Context) {
	var req financeapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.ValidationErrorMessage(err))
		return
	}

	resp, err := h.invoiceService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetInvoice returns an invoice with its lines and adjustments
func (h *FinanceHandler) GetInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	resp, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListInvoices returns a page of invoices matching the query filters
func (h *FinanceHandler) ListInvoices(c *gin.Context) {
	var filter financeapp.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, middleware.ValidationErrorMessage(err))
		return
	}

	page, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ApproveInvoice runs one step of the amount-gated approval flow
func (h *FinanceHandler) ApproveInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	resp, err := h.approvalService.ApproveInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateCreditMemo issues a credit memo against an issued invoice and
// reduces its outstanding balance atomically
func (h *FinanceHandler) CreateCreditMemo(c *gin.Context) {
	var req financeapp.CreateCreditMemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.ValidationErrorMessage(err))
		return
	}

	resp, err := h.creditMemoService.CreateCreditMemo(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
