package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	badger "github.com/dgraph-io/badger/v4"

	"github.com/khaledelhady44/The-boy-who-lived/internal/infrastructure/database"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	db *badger.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *badger.DB) *HealthHandler {
	return &HealthHandler{
		db: db,
	}
}

// Ping answers a basic health check
// GET /ping
func (h *HealthHandler) Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(200, utils.H{
		"status":  "ok",
		"message": "pong",
	})
}

// Readiness checks the service and its storage dependency
// GET /health/ready
func (h *HealthHandler) Readiness(ctx context.Context, c *app.RequestContext) {
	if err := database.Health(h.db); err != nil {
		c.JSON(503, utils.H{
			"status":   "not_ready",
			"database": "unhealthy",
			"error":    err.Error(),
		})
		return
	}

	c.JSON(200, utils.H{
		"status":   "ready",
		"database": "healthy",
	})
}

// Liveness reports whether the process is alive
// GET /health/live
func (h *HealthHandler) Liveness(ctx context.Context, c *app.RequestContext) {
	c.JSON(200, utils.H{
		"status": "alive",
	})
}
