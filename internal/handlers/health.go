package handlers

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/database"
)

// Pinger reports reachability of a backing service
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker handles health check endpoints
type HealthChecker struct {
	db        database.DB
	redis     Pinger
	consumer  interface{ Health() bool }
	version   string
	startTime time.Time
	ready     atomic.Bool
}

// NewHealthChecker creates a new health checker. Redis and consumer are
// optional; nil dependencies are skipped.
func NewHealthChecker(db database.DB, redis Pinger, consumer interface{ Health() bool }, version string) *HealthChecker {
	return &HealthChecker{
		db:        db,
		redis:     redis,
		consumer:  consumer,
		version:   version,
		startTime: time.Now(),
	}
}

// SetReady sets the readiness state
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// RegisterRoutes registers health check endpoints
func (h *HealthChecker) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/health/live", h.Live)
	e.GET("/health/ready", h.Ready)
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status     string                  `json:"status"`
	Version    string                  `json:"version"`
	Uptime     string                  `json:"uptime"`
	Checks     map[string]*CheckResult `json:"checks"`
	ReportedAt time.Time               `json:"reported_at"`
}

// CheckResult represents an individual check result
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Health returns the overall health status
func (h *HealthChecker) Health(c echo.Context) error {
	ctx := c.Request().Context()

	status := &HealthStatus{
		Status:     "healthy",
		Version:    h.version,
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Checks:     make(map[string]*CheckResult),
		ReportedAt: time.Now(),
	}

	if h.db != nil {
		status.Checks["database"] = h.runCheck(status, func() error {
			return h.db.PingContext(ctx)
		})
	} else {
		status.Status = "unhealthy"
		status.Checks["database"] = &CheckResult{
			Status:  "unhealthy",
			Message: "database not configured",
		}
	}

	if h.redis != nil {
		status.Checks["redis"] = h.runCheck(status, func() error {
			return h.redis.Ping(ctx)
		})
	}

	if h.consumer != nil {
		if h.consumer.Health() {
			status.Checks["kafka_consumer"] = &CheckResult{Status: "healthy"}
		} else {
			status.Status = "unhealthy"
			status.Checks["kafka_consumer"] = &CheckResult{
				Status:  "unhealthy",
				Message: "consumer not running",
			}
		}
	}

	httpStatus := http.StatusOK
	if status.Status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, status)
}

func (h *HealthChecker) runCheck(status *HealthStatus, check func() error) *CheckResult {
	start := time.Now()
	err := check()
	latency := time.Since(start)

	if err != nil {
		status.Status = "unhealthy"
		return &CheckResult{
			Status:  "unhealthy",
			Message: err.Error(),
		}
	}
	return &CheckResult{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

// Live returns the liveness status (is the service running)
func (h *HealthChecker) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "alive"})
}

// Ready returns the readiness status (is the service ready to accept traffic)
func (h *HealthChecker) Ready(c echo.Context) error {
	if h.ready.Load() {
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	}
	return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
}
