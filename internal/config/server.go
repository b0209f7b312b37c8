// Package config provides configuration management for licenze.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment represents the deployment environment.
type Environment string

const (
	// EnvDevelopment is the default local development environment.
	EnvDevelopment Environment = "development"
	// EnvStaging is the staging/pre-production environment.
	EnvStaging Environment = "staging"
	// EnvProduction is the production environment.
	EnvProduction Environment = "production"
)

// StoreBackend names a license document backend.
type StoreBackend string

const (
	BackendFile     StoreBackend = "file"
	BackendMemory   StoreBackend = "memory"
	BackendSQLite   StoreBackend = "sqlite"
	BackendPostgres StoreBackend = "postgres"
	BackendRedis    StoreBackend = "redis"
)

// ServerConfig holds server-level configuration loaded from environment variables.
type ServerConfig struct {
	Environment Environment
	ListenAddr  string

	StoreBackend StoreBackend
	LicenseFile  string // file backend path (default: licenze.json)
	SQLitePath   string
	DatabaseURL  string
	RedisURL     string // also backs the rate limiter when set
	RedisKey     string

	AllowedOrigins    []string
	RateLimitRequests int64
	RateLimitPeriod   string
	MaxBodyBytes      int64

	Snapshot SnapshotConfig
}

// SnapshotConfig controls periodic copies of the license document.
type SnapshotConfig struct {
	Schedule string // cron expression, empty disables snapshots
	Dir      string
	Keep     int  // snapshots retained in Dir, 0 keeps all
	OnStart  bool // take one snapshot when the server starts

	S3Bucket          string
	S3Prefix          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Enabled reports whether a snapshot schedule is configured.
func (c SnapshotConfig) Enabled() bool {
	return c.Schedule != ""
}

// LoadServerConfig reads server configuration from environment variables.
func LoadServerConfig() ServerConfig {
	env := Environment(os.Getenv("ENV"))
	switch env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// valid
	default:
		env = EnvDevelopment
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":" + getEnvString("PORT", "3000")
	}

	var origins []string
	for _, o := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	rateLimitRequests := int64(getEnvInt("RATE_LIMIT_REQUESTS", 600))
	if rateLimitRequests <= 0 {
		rateLimitRequests = 600
	}

	maxBodyBytes := int64(getEnvInt("MAX_BODY_BYTES", 1<<20))
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}

	keep := getEnvInt("SNAPSHOT_KEEP", 14)
	if keep < 0 {
		keep = 14
	}

	return ServerConfig{
		Environment:       env,
		ListenAddr:        listenAddr,
		StoreBackend:      StoreBackend(strings.ToLower(getEnvString("STORE_BACKEND", string(BackendFile)))),
		LicenseFile:       getEnvString("LICENSE_FILE", "licenze.json"),
		SQLitePath:        getEnvString("SQLITE_PATH", "licenze.db"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		RedisKey:          os.Getenv("REDIS_KEY"),
		AllowedOrigins:    origins,
		RateLimitRequests: rateLimitRequests,
		RateLimitPeriod:   getEnvString("RATE_LIMIT_PERIOD", "1m"),
		MaxBodyBytes:      maxBodyBytes,
		Snapshot: SnapshotConfig{
			Schedule:          os.Getenv("SNAPSHOT_SCHEDULE"),
			Dir:               getEnvString("SNAPSHOT_DIR", "snapshots"),
			Keep:              keep,
			OnStart:           getEnvBool("SNAPSHOT_ON_START", false),
			S3Bucket:          os.Getenv("SNAPSHOT_S3_BUCKET"),
			S3Prefix:          os.Getenv("SNAPSHOT_S3_PREFIX"),
			S3Region:          os.Getenv("SNAPSHOT_S3_REGION"),
			S3Endpoint:        os.Getenv("SNAPSHOT_S3_ENDPOINT"),
			S3AccessKeyID:     os.Getenv("SNAPSHOT_S3_ACCESS_KEY_ID"),
			S3SecretAccessKey: os.Getenv("SNAPSHOT_S3_SECRET_ACCESS_KEY"),
		},
	}
}

// Validate checks that the selected backend has what it needs.
func (c ServerConfig) Validate() error {
	switch c.StoreBackend {
	case BackendFile:
		if c.LicenseFile == "" {
			return errors.New("LICENSE_FILE is required for the file backend")
		}
	case BackendMemory:
	case BackendSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if _, err := time.ParseDuration(c.RateLimitPeriod); err != nil {
		return fmt.Errorf("invalid RATE_LIMIT_PERIOD %q: %w", c.RateLimitPeriod, err)
	}
	return nil
}

// StoreLocation describes where the document lives, for logs and the banner.
func (c ServerConfig) StoreLocation() string {
	switch c.StoreBackend {
	case BackendFile:
		return c.LicenseFile
	case BackendSQLite:
		return c.SQLitePath
	case BackendPostgres:
		return "postgres"
	case BackendRedis:
		return "redis"
	default:
		return string(c.StoreBackend)
	}
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvBool reads a boolean from an environment variable, returning the default if unset or invalid.
func getEnvBool(key string, defaultVal bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultVal
	}
}

// getEnvInt reads an integer from an environment variable, returning the default if unset or invalid.
func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
