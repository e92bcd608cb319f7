package handler

import (
	"github.com/gin-gonic/gin"
	appRates "github.com/recordvault/backend/internal/application/rates"
	"github.com/recordvault/backend/internal/interfaces/http/middleware"
)

// RateHandler handles rate catalog and customer override endpoints
type RateHandler struct {
	BaseHandler
	rateService *appRates.RateService
}

// NewRateHandler creates a new RateHandler
func NewRateHandler(rateService *appRates.RateService) *RateHandler {
	return &RateHandler{rateService: rateService}
}

// CreateCatalogEntry handles POST /api/v1/rates
func (h *RateHandler) CreateCatalogEntry(c *gin.Context) {
	var req appRates.CreateCatalogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.rateService.CreateCatalogEntry(c.Request.Context(), requestContext(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ActivateCatalogEntry handles POST /api/v1/rates/:id/activate
func (h *RateHandler) ActivateCatalogEntry(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid rate catalog entry ID")
		return
	}

	resp, err := h.rateService.ActivateCatalogEntry(c.Request.Context(), requestContext(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ExpireCatalogEntry handles POST /api/v1/rates/:id/expire
func (h *RateHandler) ExpireCatalogEntry(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid rate catalog entry ID")
		return
	}

	resp, err := h.rateService.ExpireCatalogEntry(c.Request.Context(), requestContext(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetActiveRate handles GET /api/v1/rates/active?category=&type=
func (h *RateHandler) GetActiveRate(c *gin.Context) {
	category := c.Query("category")
	serviceType := c.Query("type")
	if category == "" || serviceType == "" {
		h.BadRequest(c, "category and type query parameters are required")
		return
	}

	resp, err := h.rateService.GetActiveRate(c.Request.Context(), requestContext(c), category, serviceType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateOverride handles POST /api/v1/rate-overrides
func (h *RateHandler) CreateOverride(c *gin.Context) {
	var req appRates.CreateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.rateService.CreateOverride(c.Request.Context(), requestContext(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ApproveOverride handles POST /api/v1/rate-overrides/:id/approve
func (h *RateHandler) ApproveOverride(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid rate override ID")
		return
	}

	resp, err := h.rateService.ApproveOverride(c.Request.Context(), requestContext(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ActivateOverride handles POST /api/v1/rate-overrides/:id/activate
func (h *RateHandler) ActivateOverride(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid rate override ID")
		return
	}

	resp, err := h.rateService.ActivateOverride(c.Request.Context(), requestContext(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetCustomerRate handles GET /api/v1/customers/:id/rate?category=&type=
func (h *RateHandler) GetCustomerRate(c *gin.Context) {
	customerID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	category := c.Query("category")
	serviceType := c.Query("type")
	if category == "" || serviceType == "" {
		h.BadRequest(c, "category and type query parameters are required")
		return
	}

	resp, err := h.rateService.GetCustomerRate(c.Request.Context(), requestContext(c), customerID, category, serviceType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
