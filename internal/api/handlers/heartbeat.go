package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/MacJediWizard/licenze/internal/licensing"
	"github.com/MacJediWizard/licenze/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HeartbeatService defines the heartbeat operations used by HeartbeatHandler.
type HeartbeatService interface {
	RecordHeartbeat(ctx context.Context, name string, version *string) (models.HeartbeatEvent, error)
	History(ctx context.Context) []models.HeartbeatEvent
}

// HeartbeatStreamer serves live heartbeat subscriptions.
type HeartbeatStreamer interface {
	HandleWebSocket(w http.ResponseWriter, r *http.Request)
}

// HeartbeatHandler handles heartbeat endpoints.
type HeartbeatHandler struct {
	service  HeartbeatService
	streamer HeartbeatStreamer
	logger   zerolog.Logger
}

// NewHeartbeatHandler creates a new HeartbeatHandler. streamer may be nil,
// in which case the stream endpoint is not registered.
func NewHeartbeatHandler(service HeartbeatService, streamer HeartbeatStreamer, logger zerolog.Logger) *HeartbeatHandler {
	return &HeartbeatHandler{
		service:  service,
		streamer: streamer,
		logger:   logger.With().Str("component", "heartbeat_handler").Logger(),
	}
}

// RegisterPublicRoutes registers heartbeat routes.
func (h *HeartbeatHandler) RegisterPublicRoutes(r *gin.Engine) {
	hb := r.Group("/heartbeat")
	{
		hb.POST("", h.Record)
		hb.GET("/history", h.History)
		if h.streamer != nil {
			hb.GET("/stream", h.Stream)
		}
	}
}

// Record stores an "active" ping. The body may be JSON or a form.
// @Summary Record a heartbeat
// @Tags Heartbeats
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body models.HeartbeatRequest true "Heartbeat"
// @Success 200 {object} models.HeartbeatAck
// @Failure 400 {object} map[string]string
// @Router /heartbeat [post]
func (h *HeartbeatHandler) Record(c *gin.Context) {
	var req models.HeartbeatRequest
	if !bindBody(c, &req) {
		return
	}

	if _, err := h.service.RecordHeartbeat(c.Request.Context(), req.Name, req.Version); err != nil {
		if errors.Is(err, licensing.ErrMissingParameter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing name parameter"})
			return
		}
		h.logger.Error().Err(err).Msg("failed to record heartbeat")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, models.HeartbeatAck{
		Status:  "ok",
		Name:    req.Name,
		Version: req.Version,
	})
}

// History returns the most recent heartbeats, oldest first.
// @Summary Heartbeat history
// @Tags Heartbeats
// @Produce json
// @Success 200 {array} models.HeartbeatEvent
// @Router /heartbeat/history [get]
func (h *HeartbeatHandler) History(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.History(c.Request.Context()))
}

// Stream upgrades to a WebSocket that receives each new heartbeat as JSON.
// Repeat ?user= to restrict the stream to specific clients.
// @Summary Live heartbeat stream
// @Tags Heartbeats
// @Param user query []string false "Only stream these usernames"
// @Router /heartbeat/stream [get]
func (h *HeartbeatHandler) Stream(c *gin.Context) {
	h.streamer.HandleWebSocket(c.Writer, c.Request)
}
