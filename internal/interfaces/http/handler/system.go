package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recordvault/backend/internal/infrastructure/persistence"
)

// SystemHandler handles health and readiness endpoints
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database) *SystemHandler {
	return &SystemHandler{
		db:        db,
		startTime: time.Now(),
	}
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	status := "ok"
	dbStatus := "ok"
	code := http.StatusOK

	if err := h.db.Ping(); err != nil {
		status = "degraded"
		dbStatus = "unreachable"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":   status,
		"database": dbStatus,
		"uptime":   time.Since(h.startTime).String(),
	})
}
