package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MacJediWizard/licenze/internal/models"
	"github.com/rs/zerolog"
)

// FileStore keeps the document as pretty-printed JSON on local disk.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

// NewFileStore creates a FileStore for the given path.
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.With().Str("component", "file_store").Logger(),
	}
}

// Name returns the backend name.
func (s *FileStore) Name() string { return "file" }

// Path returns the backing file location.
func (s *FileStore) Path() string { return s.path }

// Load reads and decodes the document.
func (s *FileStore) Load(_ context.Context) (*models.LicenseDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("read license file: %w", err)
	}

	var doc models.LicenseDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse license file: %w", err)
	}
	return &doc, nil
}

// Save writes the document to a temporary file and renames it over the
// previous one.
func (s *FileStore) Save(_ context.Context, doc *models.LicenseDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal license document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create license directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0640); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace license file: %w", err)
	}

	s.logger.Debug().Str("path", s.path).Int("size_bytes", len(data)).Msg("license document saved")
	return nil
}

// Exists reports whether the backing file is present.
func (s *FileStore) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat license file: %w", err)
}

// Ping checks that the directory holding the document is reachable.
func (s *FileStore) Ping(_ context.Context) error {
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return fmt.Errorf("stat license directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(s.path))
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
