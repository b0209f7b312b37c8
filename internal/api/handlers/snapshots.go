package handlers

import (
	"context"
	"net/http"

	"github.com/MacJediWizard/licenze/internal/maintenance"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SnapshotService defines the snapshot operations used by SnapshotHandler.
type SnapshotService interface {
	Snapshot(ctx context.Context) (*maintenance.SnapshotResult, error)
	Status() maintenance.SnapshotStatus
}

// SnapshotHandler exposes snapshot status and manual triggering.
type SnapshotHandler struct {
	service SnapshotService
	logger  zerolog.Logger
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(service SnapshotService, logger zerolog.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		service: service,
		logger:  logger.With().Str("component", "snapshot_handler").Logger(),
	}
}

// RegisterPublicRoutes registers snapshot routes.
func (h *SnapshotHandler) RegisterPublicRoutes(r *gin.Engine) {
	snaps := r.Group("/snapshots")
	{
		snaps.GET("", h.Status)
		snaps.POST("", h.Trigger)
	}
}

// Status returns the scheduler state and the last snapshot.
// @Summary Snapshot status
// @Tags Snapshots
// @Produce json
// @Success 200 {object} maintenance.SnapshotStatus
// @Router /snapshots [get]
func (h *SnapshotHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Status())
}

// Trigger takes a snapshot now.
// @Summary Take a snapshot
// @Tags Snapshots
// @Produce json
// @Success 200 {object} maintenance.SnapshotResult
// @Failure 500 {object} map[string]string
// @Router /snapshots [post]
func (h *SnapshotHandler) Trigger(c *gin.Context) {
	result, err := h.service.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("manual snapshot failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "snapshot failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}
