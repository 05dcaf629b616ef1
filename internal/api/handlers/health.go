package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/metacatalog/catalog/internal/core/health"
)

type HealthHandler struct {
	healthService *health.Service
}

func NewHealthHandler(healthService *health.Service) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, h.healthService.Check())
}

// Deep answers 503 when a dependency is unreachable so probes can act on it.
func (h *HealthHandler) Deep(c *gin.Context) {
	status := h.healthService.Deep(c.Request.Context())
	code := http.StatusOK
	if !status.Health {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
