// Package store persists the license document. Every backend stores the
// whole document as one unit; there are no partial updates.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/MacJediWizard/licenze/internal/config"
	"github.com/MacJediWizard/licenze/internal/models"
	"github.com/rs/zerolog"
)

// ErrDocumentNotFound is returned by Load when no document has been saved yet.
var ErrDocumentNotFound = errors.New("license document not found")

// Store loads and saves the full license document.
type Store interface {
	// Name identifies the backend in logs and health output.
	Name() string
	Load(ctx context.Context) (*models.LicenseDocument, error)
	Save(ctx context.Context, doc *models.LicenseDocument) error
	// Exists reports whether a document has been saved.
	Exists(ctx context.Context) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the backend selected in cfg.
func Open(ctx context.Context, cfg config.ServerConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendFile:
		return NewFileStore(cfg.LicenseFile, logger), nil
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath, logger)
	case config.BackendPostgres:
		return NewPostgresStore(ctx, DefaultPostgresConfig(cfg.DatabaseURL), logger)
	case config.BackendRedis:
		return NewRedisStore(ctx, cfg.RedisURL, cfg.RedisKey, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
