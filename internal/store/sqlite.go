package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MacJediWizard/licenze/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the document as a JSON body in a single-row table.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger zerolog.Logger
}

// NewSQLiteStore opens (creating if needed) the SQLite database at path.
func NewSQLiteStore(ctx context.Context, path string, logger zerolog.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection serializes writers inside this process.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:     db,
		path:   path,
		logger: logger.With().Str("component", "sqlite_store").Logger(),
	}

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	s.logger.Info().Str("path", path).Msg("license database initialized")
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			body TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Name returns the backend name.
func (s *SQLiteStore) Name() string { return "sqlite" }

// Load reads and decodes the document row.
func (s *SQLiteStore) Load(ctx context.Context) (*models.LicenseDocument, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE id = 1`).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("select document: %w", err)
	}

	var doc models.LicenseDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &doc, nil
}

// Save upserts the document row.
func (s *SQLiteStore) Save(ctx context.Context, doc *models.LicenseDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	query := `
		INSERT INTO documents (id, body, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, string(data), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Exists reports whether the document row is present.
func (s *SQLiteStore) Exists(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE id = 1`).Scan(&n); err != nil {
		return false, fmt.Errorf("count documents: %w", err)
	}
	return n > 0, nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
