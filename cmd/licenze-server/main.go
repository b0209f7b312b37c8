// Package main is the entrypoint for the licenze server.
//
// @title           licenze API
// @version         1.0
// @description     License validation and client heartbeat service.
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @host      localhost:3000
// @BasePath  /
//
// @tag.name Licenses
// @tag.description License checks and administration
// @tag.name Heartbeats
// @tag.description Client liveness pings and live stream
// @tag.name Snapshots
// @tag.description Scheduled copies of the license document
// @tag.name Monitoring
// @tag.description Health, metrics and version
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MacJediWizard/licenze/internal/api"
	"github.com/MacJediWizard/licenze/internal/config"
	"github.com/MacJediWizard/licenze/internal/feed"
	"github.com/MacJediWizard/licenze/internal/licensing"
	"github.com/MacJediWizard/licenze/internal/maintenance"
	"github.com/MacJediWizard/licenze/internal/metrics"
	"github.com/MacJediWizard/licenze/internal/store"
	"github.com/MacJediWizard/licenze/internal/sysinfo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("version", Version).Logger()
	if os.Getenv("ENV") != string(config.EnvProduction) {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	logger.Info().
		Str("version", Version).
		Str("commit", Commit).
		Str("build_date", BuildDate).
		Msg("Starting licenze server")

	cfg := config.LoadServerConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("Invalid configuration")
		return 1
	}

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Str("backend", string(cfg.StoreBackend)).Msg("Failed to open license store")
		return 1
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMetrics, err := metrics.NewPrometheusMetrics(reg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to register metrics")
		return 1
	}

	feedCfg := feed.DefaultConfig()
	feedCfg.AllowedOrigins = cfg.AllowedOrigins
	heartbeatFeed := feed.New(feedCfg, logger)
	heartbeatFeed.Start()
	defer heartbeatFeed.Stop()

	service := licensing.NewService(licensing.Config{
		Store:     st,
		Metrics:   promMetrics,
		Publisher: heartbeatFeed,
		Logger:    logger,
	})
	if err := service.Initialize(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to initialize license document")
		return 1
	}

	deps := api.Dependencies{
		Licenses:   service,
		Heartbeats: service,
		Store:      st,
		Gatherer:   reg,
		Streamer:   heartbeatFeed,
		System:     sysinfo.NewCollector(systemDiskPath(cfg)),
	}

	snapshots, err := newSnapshotService(ctx, cfg, st, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to configure snapshots")
		return 1
	}
	if snapshots != nil {
		deps.Snapshots = snapshots
		if err := snapshots.Start(); err != nil {
			logger.Error().Err(err).Msg("Failed to start snapshot scheduler")
		} else {
			defer snapshots.Stop()
		}
		if cfg.Snapshot.OnStart {
			go snapshots.RunNow()
		}
	}

	routerCfg := api.Config{
		Environment:       cfg.Environment,
		AllowedOrigins:    cfg.AllowedOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitPeriod:   cfg.RateLimitPeriod,
		MaxBodyBytes:      cfg.MaxBodyBytes,
		Version:           Version,
		Commit:            Commit,
		BuildDate:         BuildDate,
	}
	if cfg.RedisURL != "" {
		client, owned, err := rateLimitClient(st, cfg.RedisURL)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to connect rate limiter to Redis")
			return 1
		}
		if owned {
			defer client.Close()
		}
		routerCfg.RateLimitRedis = client
	}

	router, err := api.NewRouter(routerCfg, deps, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize router")
		return 1
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	printBanner(cfg, snapshots != nil)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down server")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("HTTP server error")
		return 1
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown error")
		return 1
	}

	logger.Info().Msg("Server stopped gracefully")
	return 0
}

func newSnapshotService(ctx context.Context, cfg config.ServerConfig, source maintenance.DocumentSource, logger zerolog.Logger) (*maintenance.SnapshotService, error) {
	if !cfg.Snapshot.Enabled() {
		return nil, nil
	}

	sinks := []maintenance.Sink{maintenance.NewDirSink(cfg.Snapshot.Dir, cfg.Snapshot.Keep, logger)}
	if cfg.Snapshot.S3Bucket != "" {
		s3Sink, err := maintenance.NewS3Sink(ctx, maintenance.S3Config{
			Bucket:          cfg.Snapshot.S3Bucket,
			Prefix:          cfg.Snapshot.S3Prefix,
			Region:          cfg.Snapshot.S3Region,
			Endpoint:        cfg.Snapshot.S3Endpoint,
			AccessKeyID:     cfg.Snapshot.S3AccessKeyID,
			SecretAccessKey: cfg.Snapshot.S3SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 snapshot sink: %w", err)
		}
		sinks = append(sinks, s3Sink)
	}

	return maintenance.NewSnapshotService(source, cfg.Snapshot.Schedule, sinks, logger), nil
}

// rateLimitClient reuses the store's Redis connection when the store is
// Redis-backed. owned reports whether the caller must close the client.
func rateLimitClient(st store.Store, url string) (client *redis.Client, owned bool, err error) {
	if rs, ok := st.(*store.RedisStore); ok {
		return rs.Client(), false, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, false, fmt.Errorf("parse redis URL: %w", err)
	}
	return redis.NewClient(opts), true, nil
}

// systemDiskPath picks the directory whose disk /health/system reports.
func systemDiskPath(cfg config.ServerConfig) string {
	if cfg.Snapshot.Enabled() && cfg.Snapshot.Dir != "" {
		return cfg.Snapshot.Dir
	}
	switch cfg.StoreBackend {
	case config.BackendFile, config.BackendSQLite:
		return cfg.StoreLocation()
	}
	return "."
}

func printBanner(cfg config.ServerConfig, snapshots bool) {
	base := "http://localhost" + cfg.ListenAddr
	if !strings.HasPrefix(cfg.ListenAddr, ":") {
		base = "http://" + cfg.ListenAddr
	}

	fmt.Printf("\nlicenze %s listening on %s\n", Version, base)
	fmt.Printf("  store: %s (%s)\n\n", cfg.StoreBackend, cfg.StoreLocation())
	endpoints := []string{
		"GET    /license?user=<name>",
		"GET    /licenses",
		"POST   /license/add",
		"PUT    /license/update",
		"DELETE /license/delete?user=<name>",
		"POST   /heartbeat",
		"GET    /heartbeat/history",
		"GET    /heartbeat/stream",
		"GET    /health",
		"GET    /metrics",
		"GET    /api/docs/index.html",
	}
	if snapshots {
		endpoints = append(endpoints, "GET    /snapshots", "POST   /snapshots")
	}
	for _, e := range endpoints {
		fmt.Println("  " + e)
	}
	fmt.Println()
}
