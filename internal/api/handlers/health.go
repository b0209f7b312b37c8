package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MacJediWizard/licenze/internal/models"
	"github.com/MacJediWizard/licenze/internal/sysinfo"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HealthStatus represents the health status of a component.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResult represents the result of a health check.
type HealthCheckResult struct {
	Status   HealthStatus   `json:"status"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// StoreHealthChecker is the part of the document store the health check uses.
type StoreHealthChecker interface {
	Name() string
	Ping(ctx context.Context) error
}

// SystemCollector samples host metrics.
type SystemCollector interface {
	Collect(ctx context.Context) (*sysinfo.Metrics, error)
}

// HealthHandler handles health-related HTTP endpoints.
type HealthHandler struct {
	store  StoreHealthChecker
	system SystemCollector
	logger zerolog.Logger
	now    func() time.Time
}

// NewHealthHandler creates a new HealthHandler. system may be nil.
func NewHealthHandler(store StoreHealthChecker, system SystemCollector, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		system: system,
		logger: logger.With().Str("component", "health_handler").Logger(),
		now:    time.Now,
	}
}

// RegisterPublicRoutes registers health check routes.
func (h *HealthHandler) RegisterPublicRoutes(r *gin.Engine) {
	health := r.Group("/health")
	{
		health.GET("", h.Liveness)
		health.GET("/store", h.Store)
		if h.system != nil {
			health.GET("/system", h.System)
		}
	}
}

// Liveness reports that the process is serving requests.
// @Summary Liveness probe
// @Tags Monitoring
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(models.HeartbeatTimeFormat),
	})
}

// Store pings the document store.
// @Summary Store health
// @Tags Monitoring
// @Produce json
// @Success 200 {object} HealthCheckResult
// @Failure 503 {object} HealthCheckResult
// @Router /health/store [get]
func (h *HealthHandler) Store(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	start := time.Now()
	result := &HealthCheckResult{
		Status:  HealthStatusHealthy,
		Details: map[string]any{"backend": h.store.Name()},
	}

	err := h.store.Ping(ctx)
	result.Duration = time.Since(start).String()
	if err != nil {
		result.Status = HealthStatusUnhealthy
		result.Error = "store ping failed"
		h.logger.Warn().Err(err).Str("backend", h.store.Name()).Msg("store health check failed")
		c.JSON(http.StatusServiceUnavailable, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// System returns host resource usage.
// @Summary System resources
// @Tags Monitoring
// @Produce json
// @Success 200 {object} sysinfo.Metrics
// @Router /health/system [get]
func (h *HealthHandler) System(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	m, err := h.system.Collect(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to collect system metrics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to collect system metrics"})
		return
	}
	c.JSON(http.StatusOK, m)
}
