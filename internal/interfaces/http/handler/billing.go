package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	appBilling "github.com/recordvault/backend/internal/application/billing"
	appInvoicing "github.com/recordvault/backend/internal/application/invoicing"
	"github.com/recordvault/backend/internal/domain/billing"
	"github.com/recordvault/backend/internal/interfaces/http/dto"
	"github.com/recordvault/backend/internal/interfaces/http/middleware"
)

// BillingHandler handles billing period lifecycle and invoicing endpoints
type BillingHandler struct {
	BaseHandler
	billingService *appBilling.BillingService
	invoiceService *appInvoicing.InvoiceService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(billingService *appBilling.BillingService, invoiceService *appInvoicing.InvoiceService) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		invoiceService: invoiceService,
	}
}

// CreatePeriod handles POST /api/v1/billing-periods
func (h *BillingHandler) CreatePeriod(c *gin.Context) {
	var req appBilling.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.billingService.CreatePeriod(c.Request.Context(), requestContext(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetPeriod handles GET /api/v1/billing-periods/:id
func (h *BillingHandler) GetPeriod(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid billing period ID")
		return
	}

	resp, err := h.billingService.GetPeriod(c.Request.Context(), requestContext(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListPeriods handles GET /api/v1/billing-periods
func (h *BillingHandler) ListPeriods(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := billing.PeriodFilter{Filter: listReq.ToFilter()}
	if raw := c.Query("state"); raw != "" {
		state := billing.PeriodState(raw)
		filter.State = &state
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		filter.FromDate = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		filter.ToDate = &to
	}

	resp, err := h.billingService.ListPeriods(c.Request.Context(), requestContext(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CalculateBilling handles POST /api/v1/billing-periods/:id/calculate
func (h *BillingHandler) CalculateBilling(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid billing period ID")
		return
	}

	resp, err := h.billingService.CalculateBilling(c.Request.Context(), requestContext(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ApprovePeriod handles POST /api/v1/billing-periods/:id/approve
func (h *BillingHandler) ApprovePeriod(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid billing period ID")
		return
	}

	resp, err := h.billingService.ApprovePeriod(c.Request.Context(), requestContext(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ClosePeriod handles POST /api/v1/billing-periods/:id/close
func (h *BillingHandler) ClosePeriod(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid billing period ID")
		return
	}

	resp, err := h.billingService.ClosePeriod(c.Request.Context(), requestContext(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ResetPeriod handles POST /api/v1/billing-periods/:id/reset
func (h *BillingHandler) ResetPeriod(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid billing period ID")
		return
	}

	resp, err := h.billingService.ResetPeriod(c.Request.Context(), requestContext(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PreviewInvoices handles GET /api/v1/billing-periods/:id/invoices/preview
func (h *BillingHandler) PreviewInvoices(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid billing period ID")
		return
	}

	resp, err := h.invoiceService.PreviewInvoices(c.Request.Context(), requestContext(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GenerateInvoices handles POST /api/v1/billing-periods/:id/invoices
func (h *BillingHandler) GenerateInvoices(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid billing period ID")
		return
	}

	resp, err := h.invoiceService.GenerateInvoices(c.Request.Context(), requestContext(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
