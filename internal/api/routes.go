// Package api provides the HTTP API for the licenze server.
package api

import (
	"errors"

	"github.com/MacJediWizard/licenze/internal/api/handlers"
	"github.com/MacJediWizard/licenze/internal/api/middleware"
	"github.com/MacJediWizard/licenze/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MacJediWizard/licenze/docs/api"
)

// Config holds configuration for the API router.
type Config struct {
	Environment config.Environment
	// AllowedOrigins for CORS. Empty means all origins allowed.
	AllowedOrigins []string
	// RateLimitRequests is the number of requests allowed per period.
	RateLimitRequests int64
	// RateLimitPeriod is the duration string for rate limiting (e.g. "1m", "1h").
	RateLimitPeriod string
	// RateLimitRedis shares rate limit counters between processes (optional).
	RateLimitRedis *redis.Client
	MaxBodyBytes   int64
	// Version information for the version endpoint.
	Version   string
	Commit    string
	BuildDate string
}

// DefaultConfig returns a Config with sensible defaults for development.
func DefaultConfig() Config {
	return Config{
		Environment:       config.EnvDevelopment,
		AllowedOrigins:    []string{},
		RateLimitRequests: 600,
		RateLimitPeriod:   "1m",
		MaxBodyBytes:      1 << 20,
		Version:           "dev",
		Commit:            "unknown",
		BuildDate:         "unknown",
	}
}

// Dependencies are the services the router exposes over HTTP.
type Dependencies struct {
	Licenses   handlers.LicenseService
	Heartbeats handlers.HeartbeatService
	Store      handlers.StoreHealthChecker
	Gatherer   prometheus.Gatherer
	// Optional.
	Streamer  handlers.HeartbeatStreamer
	System    handlers.SystemCollector
	Snapshots handlers.SnapshotService
}

func (d Dependencies) validate() error {
	switch {
	case d.Licenses == nil:
		return errors.New("license service is required")
	case d.Heartbeats == nil:
		return errors.New("heartbeat service is required")
	case d.Store == nil:
		return errors.New("store is required")
	case d.Gatherer == nil:
		return errors.New("metrics gatherer is required")
	}
	return nil
}

// Router wraps a Gin engine with configured middleware and routes.
type Router struct {
	Engine *gin.Engine
	logger zerolog.Logger
}

// NewRouter creates a new Router with the given dependencies.
func NewRouter(cfg Config, deps Dependencies, logger zerolog.Logger) (*Router, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	r := &Router{
		Engine: gin.New(),
		logger: logger.With().Str("component", "router").Logger(),
	}

	// Global middleware
	r.Engine.Use(gin.Recovery())
	r.Engine.Use(middleware.RequestID())
	r.Engine.Use(middleware.RequestLogger(logger))
	r.Engine.Use(middleware.SecurityHeaders())
	r.Engine.Use(middleware.CORS(cfg.AllowedOrigins, cfg.Environment, logger))

	// Rate limiting
	var (
		rateLimiter gin.HandlerFunc
		err         error
	)
	if cfg.RateLimitRedis != nil {
		rateLimiter, err = middleware.NewRedisRateLimiter(cfg.RateLimitRequests, cfg.RateLimitPeriod, cfg.RateLimitRedis)
	} else {
		rateLimiter, err = middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitPeriod)
	}
	if err != nil {
		return nil, err
	}
	r.Engine.Use(rateLimiter)

	if cfg.MaxBodyBytes > 0 {
		r.Engine.Use(middleware.BodyLimitMiddleware(cfg.MaxBodyBytes))
	}

	handlers.NewHealthHandler(deps.Store, deps.System, logger).RegisterPublicRoutes(r.Engine)
	handlers.NewMetricsHandler(deps.Gatherer).RegisterPublicRoutes(r.Engine)
	handlers.NewVersionHandler(cfg.Version, cfg.Commit, cfg.BuildDate, deps.Store.Name()).RegisterPublicRoutes(r.Engine)

	// Swagger API documentation
	r.Engine.GET("/api/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL("/api/docs/doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	handlers.NewLicenseHandler(deps.Licenses, logger).RegisterPublicRoutes(r.Engine)
	handlers.NewHeartbeatHandler(deps.Heartbeats, deps.Streamer, logger).RegisterPublicRoutes(r.Engine)

	if deps.Snapshots != nil {
		handlers.NewSnapshotHandler(deps.Snapshots, logger).RegisterPublicRoutes(r.Engine)
	}

	r.logger.Info().
		Int("routes", len(r.Engine.Routes())).
		Bool("shared_rate_limit", cfg.RateLimitRedis != nil).
		Msg("API router initialized")

	return r, nil
}
