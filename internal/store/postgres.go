package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MacJediWizard/licenze/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgresConfig holds connection pool configuration.
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultPostgresConfig returns a PostgresConfig sized for a single document.
func DefaultPostgresConfig(url string) PostgresConfig {
	return PostgresConfig{
		URL:             url,
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// PostgresStore keeps the document as JSONB in a single-row table.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresStore connects to PostgreSQL and creates the table if needed.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig, logger zerolog.Logger) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{
		pool:   pool,
		logger: logger.With().Str("component", "postgres_store").Logger(),
	}

	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	s.logger.Info().Msg("connected to database")
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS license_documents (
			id SMALLINT PRIMARY KEY CHECK (id = 1),
			body JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// Name returns the backend name.
func (s *PostgresStore) Name() string { return "postgres" }

// Load reads and decodes the document row.
func (s *PostgresStore) Load(ctx context.Context) (*models.LicenseDocument, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, `SELECT body FROM license_documents WHERE id = 1`).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("select document: %w", err)
	}

	var doc models.LicenseDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &doc, nil
}

// Save upserts the document row.
func (s *PostgresStore) Save(ctx context.Context, doc *models.LicenseDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO license_documents (id, body, updated_at) VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`, data)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Exists reports whether the document row is present.
func (s *PostgresStore) Exists(ctx context.Context) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM license_documents WHERE id = 1)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check document: %w", err)
	}
	return exists, nil
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
