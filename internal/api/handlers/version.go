package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// VersionInfo contains server version information.
type VersionInfo struct {
	Version       string `json:"version"`
	Commit        string `json:"commit,omitempty"`
	BuildDate     string `json:"build_date,omitempty"`
	GoVersion     string `json:"go_version"`
	StoreBackend  string `json:"store_backend"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// VersionHandler serves build information.
type VersionHandler struct {
	info      VersionInfo
	startedAt time.Time
}

// NewVersionHandler creates a new VersionHandler.
func NewVersionHandler(version, commit, buildDate, storeBackend string) *VersionHandler {
	return &VersionHandler{
		info: VersionInfo{
			Version:      version,
			Commit:       commit,
			BuildDate:    buildDate,
			GoVersion:    runtime.Version(),
			StoreBackend: storeBackend,
		},
		startedAt: time.Now(),
	}
}

// RegisterPublicRoutes registers the /version route.
func (h *VersionHandler) RegisterPublicRoutes(r *gin.Engine) {
	r.GET("/version", h.Get)
}

// Get returns the server version information.
// @Summary Server version
// @Tags Monitoring
// @Produce json
// @Success 200 {object} VersionInfo
// @Router /version [get]
func (h *VersionHandler) Get(c *gin.Context) {
	info := h.info
	info.UptimeSeconds = int64(time.Since(h.startedAt).Seconds())
	c.JSON(http.StatusOK, info)
}
