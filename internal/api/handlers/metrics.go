package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves Prometheus metrics.
type MetricsHandler struct {
	gatherer prometheus.Gatherer
}

// NewMetricsHandler creates a MetricsHandler for the given registry.
func NewMetricsHandler(gatherer prometheus.Gatherer) *MetricsHandler {
	return &MetricsHandler{gatherer: gatherer}
}

// RegisterPublicRoutes registers the /metrics route.
func (h *MetricsHandler) RegisterPublicRoutes(r *gin.Engine) {
	r.GET("/metrics", h.Metrics)
}

// Metrics returns metrics in Prometheus exposition format.
// @Summary Prometheus metrics endpoint
// @Description Returns metrics in Prometheus exposition format for scraping
// @Tags Monitoring
// @Produce text/plain
// @Success 200 {string} string "Prometheus metrics"
// @Router /metrics [get]
func (h *MetricsHandler) Metrics(c *gin.Context) {
	promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}).ServeHTTP(c.Writer, c.Request)
}
