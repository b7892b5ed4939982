package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	contractapp "github.com/subflow/backend/internal/application/contract"
	"github.com/subflow/backend/internal/interfaces/http/middleware"
)

// ContractHandler handles subscription contract lifecycle endpoints
type ContractHandler struct {
	BaseHandler
	lifecycleService *contractapp.LifecycleService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(lifecycleService *contractapp.LifecycleService) *ContractHandler {
	return &ContractHandler{lifecycleService: lifecycleService}
}

// RegisterRoutes registers the contract routes
func (h *ContractHandler) RegisterRoutes(rg *gin.RouterGroup) {
	subscriptions := rg.Group("/subscriptions")
	{
		subscriptions.POST("", h.Create)
		subscriptions.GET("", h.List)
		subscriptions.GET("/:id", h.Get)
		subscriptions.GET("/:id/actions", h.GetActions)
		subscriptions.POST("/:id/amend", h.Amend)
		subscriptions.POST("/:id/renew", h.Renew)
		subscriptions.POST("/:id/terminate", h.Terminate)
	}
}

// Create creates a new subscription contract with its product lines
func (h *ContractHandler) Create(c *gin.Context) {
	var req contractapp.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.ValidationErrorMessage(err))
		return
	}

	resp, err := h.lifecycleService.CreateContract(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a contract with its lines and action history
func (h *ContractHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	resp, err := h.lifecycleService.GetContract(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns a page of contracts matching the query filters
func (h *ContractHandler) List(c *gin.Context) {
	var filter contractapp.ContractListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, middleware.ValidationErrorMessage(err))
		return
	}

	page, err := h.lifecycleService.ListContracts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetActions returns a contract's audit history, most recent first
func (h *ContractHandler) GetActions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	actions, err := h.lifecycleService.GetContractActions(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, actions)
}

// Amend applies line changes to an active contract
func (h *ContractHandler) Amend(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	var req contractapp.AmendContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.ValidationErrorMessage(err))
		return
	}

	resp, err := h.lifecycleService.AmendContract(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Renew extends an active contract by one year from its recorded end date
func (h *ContractHandler) Renew(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	var req contractapp.RenewContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.ValidationErrorMessage(err))
		return
	}

	resp, err := h.lifecycleService.RenewContract(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Terminate cancels an active contract and all of its product lines
func (h *ContractHandler) Terminate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	var req contractapp.TerminateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.ValidationErrorMessage(err))
		return
	}

	resp, err := h.lifecycleService.TerminateContract(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
