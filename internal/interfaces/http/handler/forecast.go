package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	appForecast "github.com/recordvault/backend/internal/application/forecast"
	"github.com/recordvault/backend/internal/interfaces/http/middleware"
)

// ForecastHandler handles revenue forecast scenario endpoints
type ForecastHandler struct {
	BaseHandler
	forecastService *appForecast.ForecastService
}

// NewForecastHandler creates a new ForecastHandler
func NewForecastHandler(forecastService *appForecast.ForecastService) *ForecastHandler {
	return &ForecastHandler{forecastService: forecastService}
}

// RunScenario handles POST /api/v1/forecasts
func (h *ForecastHandler) RunScenario(c *gin.Context) {
	var req appForecast.RunScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.forecastService.RunScenario(c.Request.Context(), requestContext(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetScenario handles GET /api/v1/forecasts/:id
func (h *ForecastHandler) GetScenario(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid forecast scenario ID")
		return
	}

	resp, err := h.forecastService.GetScenario(c.Request.Context(), requestContext(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListScenarios handles GET /api/v1/forecasts
func (h *ForecastHandler) ListScenarios(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	resp, err := h.forecastService.ListScenarios(c.Request.Context(), requestContext(c), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeleteScenario handles DELETE /api/v1/forecasts/:id
func (h *ForecastHandler) DeleteScenario(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid forecast scenario ID")
		return
	}

	if err := h.forecastService.DeleteScenario(c.Request.Context(), requestContext(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
