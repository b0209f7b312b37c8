package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/MacJediWizard/licenze/internal/models"
)

// MemoryStore holds the encoded document in process memory. Documents are
// stored encoded so callers never share state with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte

	// LoadErr and SaveErr, when set, are returned instead of touching the data.
	LoadErr error
	SaveErr error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Name returns the backend name.
func (s *MemoryStore) Name() string { return "memory" }

// Load decodes the stored document.
func (s *MemoryStore) Load(_ context.Context) (*models.LicenseDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.data == nil {
		return nil, ErrDocumentNotFound
	}

	var doc models.LicenseDocument
	if err := json.Unmarshal(s.data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// Save encodes and stores the document.
func (s *MemoryStore) Save(_ context.Context, doc *models.LicenseDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	s.data = data
	return nil
}

// Exists reports whether a document has been saved.
func (s *MemoryStore) Exists(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data != nil, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
