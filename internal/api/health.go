package api

import (
	"net/http"
	"time"

	"waifuhub/backend/pkg/health"

	"github.com/gin-gonic/gin"
)

// HealthController reports liveness and dependency status
type HealthController struct {
	checker *health.Checker
}

// NewHealthController creates a new HealthController
func NewHealthController(checker *health.Checker) *HealthController {
	return &HealthController{checker: checker}
}

// Health returns the component snapshot. 503 when the database is down.
func (hc *HealthController) Health(c *gin.Context) {
	status := http.StatusOK
	overall := "ok"
	if !hc.checker.IsSystemHealthy() {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":     overall,
		"timestamp":  time.Now().UTC(),
		"components": hc.checker.GetStatus(),
	})
}
