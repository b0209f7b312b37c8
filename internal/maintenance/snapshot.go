// Package maintenance takes scheduled snapshots of the license document.
package maintenance

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/MacJediWizard/licenze/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// SnapshotExt is the file extension of snapshot objects.
const SnapshotExt = ".json.gz"

// snapshotTimeFormat sorts lexically in time order.
const snapshotTimeFormat = "20060102T150405.000Z"

// DocumentSource provides the document to snapshot. store.Store implements it.
type DocumentSource interface {
	Load(ctx context.Context) (*models.LicenseDocument, error)
}

// Sink receives encoded snapshots.
type Sink interface {
	Name() string
	Write(ctx context.Context, name string, data []byte) error
}

// SnapshotResult describes one completed snapshot.
type SnapshotResult struct {
	Name      string    `json:"name"`
	SizeBytes int       `json:"size_bytes"`
	Licenses  int       `json:"licenses"`
	TakenAt   time.Time `json:"taken_at"`
	// Failed lists sinks that rejected the snapshot.
	Failed []string `json:"failed,omitempty"`
}

// SnapshotStatus reports the scheduler state.
type SnapshotStatus struct {
	Running   bool            `json:"running"`
	Schedule  string          `json:"schedule"`
	NextRunAt *time.Time      `json:"next_run_at,omitempty"`
	Last      *SnapshotResult `json:"last,omitempty"`
	LastError string          `json:"last_error,omitempty"`
}

// SnapshotService writes the license document to its sinks on a cron schedule.
type SnapshotService struct {
	source   DocumentSource
	sinks    []Sink
	schedule string
	cron     *cron.Cron
	entryID  cron.EntryID
	logger   zerolog.Logger
	now      func() time.Time

	mu        sync.Mutex
	running   bool
	last      *SnapshotResult
	lastError string
}

// NewSnapshotService creates a snapshot scheduler. schedule is a standard
// five-field cron expression.
func NewSnapshotService(source DocumentSource, schedule string, sinks []Sink, logger zerolog.Logger) *SnapshotService {
	return &SnapshotService{
		source:   source,
		sinks:    sinks,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With().Str("component", "snapshots").Logger(),
		now:      time.Now,
	}
}

// Start registers the schedule and starts the cron runner.
func (s *SnapshotService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("snapshot scheduler already running")
	}
	if len(s.sinks) == 0 {
		return errors.New("no snapshot sinks configured")
	}

	id, err := s.cron.AddFunc(s.schedule, s.RunNow)
	if err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", s.schedule, err)
	}
	s.entryID = id
	s.cron.Start()
	s.running = true

	sinkNames := make([]string, 0, len(s.sinks))
	for _, sink := range s.sinks {
		sinkNames = append(sinkNames, sink.Name())
	}
	s.logger.Info().
		Str("schedule", s.schedule).
		Strs("sinks", sinkNames).
		Msg("snapshot scheduler started")

	return nil
}

// Stop stops the scheduler. The returned context is done once a running
// snapshot has finished.
func (s *SnapshotService) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}

	s.running = false
	s.logger.Info().Msg("stopping snapshot scheduler")
	return s.cron.Stop()
}

// RunNow takes a snapshot immediately, logging the outcome.
func (s *SnapshotService) RunNow() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := s.Snapshot(ctx); err != nil {
		s.logger.Error().Err(err).Msg("snapshot failed")
	}
}

// Snapshot encodes the current document and writes it to every sink. It
// fails only if the document cannot be read or no sink accepts it.
func (s *SnapshotService) Snapshot(ctx context.Context) (*SnapshotResult, error) {
	doc, err := s.source.Load(ctx)
	if err != nil {
		s.setError(err)
		return nil, fmt.Errorf("load document: %w", err)
	}

	data, err := EncodeSnapshot(doc)
	if err != nil {
		s.setError(err)
		return nil, err
	}

	takenAt := s.now().UTC()
	result := &SnapshotResult{
		Name:      SnapshotName(takenAt),
		SizeBytes: len(data),
		Licenses:  len(doc.Licenses),
		TakenAt:   takenAt,
	}

	for _, sink := range s.sinks {
		if err := sink.Write(ctx, result.Name, data); err != nil {
			s.logger.Error().Err(err).
				Str("sink", sink.Name()).
				Str("snapshot", result.Name).
				Msg("failed to write snapshot")
			result.Failed = append(result.Failed, sink.Name())
		}
	}

	if len(s.sinks) > 0 && len(result.Failed) == len(s.sinks) {
		err := errors.New("all snapshot sinks failed")
		s.setError(err)
		return nil, err
	}

	s.mu.Lock()
	s.last = result
	s.lastError = ""
	s.mu.Unlock()

	s.logger.Info().
		Str("snapshot", result.Name).
		Int("size_bytes", result.SizeBytes).
		Int("licenses", result.Licenses).
		Msg("snapshot completed")
	return result, nil
}

func (s *SnapshotService) setError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
}

// Status returns the scheduler state and the last result.
func (s *SnapshotService) Status() SnapshotStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := SnapshotStatus{
		Running:   s.running,
		Schedule:  s.schedule,
		Last:      s.last,
		LastError: s.lastError,
	}
	if s.running {
		if next := s.cron.Entry(s.entryID).Next; !next.IsZero() {
			status.NextRunAt = &next
		}
	}
	return status
}

// SnapshotName returns the object name for a snapshot taken at t.
func SnapshotName(t time.Time) string {
	return "licenze-" + t.UTC().Format(snapshotTimeFormat) + SnapshotExt
}

// EncodeSnapshot returns the gzip-compressed, indented JSON document.
func EncodeSnapshot(doc *models.LicenseDocument) ([]byte, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("create gzip writer: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return nil, fmt.Errorf("write to gzip: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot reverses EncodeSnapshot.
func DecodeSnapshot(r io.Reader) (*models.LicenseDocument, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer zr.Close()

	var doc models.LicenseDocument
	if err := json.NewDecoder(zr).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// ReadSnapshotFile decodes a snapshot written by a DirSink.
func ReadSnapshotFile(path string) (*models.LicenseDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeSnapshot(f)
}
