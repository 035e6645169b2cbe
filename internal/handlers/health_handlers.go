package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"patronhub/internal/caching"

	"github.com/labstack/echo/v4"
)

// Pinger is the database connectivity probe; *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check endpoints.
type HealthHandlers struct {
	db       Pinger
	cacheSvc caching.CacheService
}

func NewHealthHandlers(db Pinger, cacheSvc caching.CacheService) *HealthHandlers {
	return &HealthHandlers{
		db:       db,
		cacheSvc: cacheSvc,
	}
}

// HealthStatus is the overall health report.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthCheck handles GET /health
// @Summary Report database and cache connectivity
// @Tags health
// @Produce json
// @Success 200 {object} HealthStatus
// @Router /health [get]
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
	}

	if err := h.db.Ping(ctx); err != nil {
		health.Services["database"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["database"] = "healthy"
	}

	if _, err := h.cacheSvc.GetString(ctx, "healthcheck"); err != nil && !errors.Is(err, caching.ErrCacheMiss) {
		health.Services["redis"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["redis"] = "healthy"
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, health)
}
