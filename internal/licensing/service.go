// Package licensing implements license checks, heartbeat recording and
// license administration over a persisted license document.
package licensing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MacJediWizard/licenze/internal/models"
	"github.com/MacJediWizard/licenze/internal/store"
	"github.com/rs/zerolog"
)

var (
	// ErrMissingParameter is returned when a required username or name is empty.
	ErrMissingParameter = errors.New("missing parameter")
	// ErrNotFound is returned when no license matches the username.
	ErrNotFound = errors.New("license not found")
	// ErrDuplicateUsername is returned when adding a username that already exists.
	ErrDuplicateUsername = errors.New("username already exists")
)

// Check results reported to the metrics recorder.
const (
	ResultValid    = "valid"
	ResultInvalid  = "invalid"
	ResultExpired  = models.ReasonExpired
	ResultNotFound = models.ReasonNotFound
)

// Persistence operations reported to the metrics recorder.
const (
	opLoad = "load"
	opSave = "save"
)

// MetricsRecorder receives service events. *metrics.PrometheusMetrics implements it.
type MetricsRecorder interface {
	RecordLicenseCheck(result string)
	RecordHeartbeat(version string)
	RecordLicenseChange(operation string)
	RecordPersistenceFailure(operation string)
	SetDocumentSize(licenses, heartbeats int)
}

// HeartbeatPublisher is notified of every recorded heartbeat.
type HeartbeatPublisher interface {
	PublishHeartbeat(event models.HeartbeatEvent)
}

// Config holds the dependencies of a Service.
type Config struct {
	Store     store.Store
	Metrics   MetricsRecorder    // optional
	Publisher HeartbeatPublisher // optional
	Logger    zerolog.Logger
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// Service performs every operation as a full load, mutate and save of the
// license document. Mutations are serialized so concurrent writers cannot
// lose each other's updates; reads see the last saved document.
type Service struct {
	mu        sync.Mutex
	store     store.Store
	metrics   MetricsRecorder
	publisher HeartbeatPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService creates a Service.
func NewService(cfg Config) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:     cfg.Store,
		metrics:   cfg.Metrics,
		publisher: cfg.Publisher,
		logger:    cfg.Logger.With().Str("component", "licensing").Logger(),
		now:       now,
	}
}

// Initialize writes the seed document if the store holds none. An existing
// document is left untouched.
func (s *Service) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.store.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Debug().Str("store", s.store.Name()).Msg("license document present")
		return nil
	}

	doc := models.SeedDocument()
	if err := s.store.Save(ctx, doc); err != nil {
		return err
	}
	s.recordSize(doc)
	s.logger.Info().
		Str("store", s.store.Name()).
		Int("licenses", len(doc.Licenses)).
		Msg("created seed license document")
	return nil
}

// Check evaluates the license held by username.
func (s *Service) Check(ctx context.Context, username string) (*models.LicenseStatus, error) {
	if username == "" {
		return nil, ErrMissingParameter
	}

	doc := s.load(ctx)
	status := &models.LicenseStatus{Username: username}

	i := doc.FindLicense(username)
	if i < 0 {
		status.Reason = models.ReasonNotFound
		s.recordCheck(ResultNotFound)
		return status, nil
	}

	lic := doc.Licenses[i]
	if lic.Valid && lic.IsExpired(s.now()) {
		status.Reason = models.ReasonExpired
		status.Expires = lic.Expires
		s.recordCheck(ResultExpired)
		return status, nil
	}

	status.Valid = lic.Valid
	if lic.Role != nil && *lic.Role != "" {
		role := *lic.Role
		status.Role = &role
	}
	status.Expires = lic.ExpiresOrNever()
	if lic.Valid {
		s.recordCheck(ResultValid)
	} else {
		s.recordCheck(ResultInvalid)
	}
	return status, nil
}

// RecordHeartbeat appends an active heartbeat for name. A nil or empty
// version is stored as "unknown".
func (s *Service) RecordHeartbeat(ctx context.Context, name string, version *string) (models.HeartbeatEvent, error) {
	if name == "" {
		return models.HeartbeatEvent{}, ErrMissingParameter
	}

	var v string
	if version != nil {
		v = *version
	}
	event := models.NewHeartbeatEvent(name, v, s.now())

	s.mu.Lock()
	doc := s.load(ctx)
	doc.AppendHeartbeat(event)
	s.save(ctx, doc)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordHeartbeat(event.Version)
	}
	if s.publisher != nil {
		s.publisher.PublishHeartbeat(event)
	}

	s.logger.Debug().
		Str("name", event.Username).
		Str("version", event.Version).
		Msg("heartbeat recorded")
	return event, nil
}

// List returns every license in stored order.
func (s *Service) List(ctx context.Context) []*models.License {
	return s.load(ctx).Licenses
}

// History returns the newest heartbeat events, oldest first.
func (s *Service) History(ctx context.Context) []models.HeartbeatEvent {
	return s.load(ctx).RecentHeartbeats(models.HeartbeatHistorySize)
}

// Add creates a license. Usernames are unique ignoring case.
func (s *Service) Add(ctx context.Context, req models.CreateLicenseRequest) (*models.License, error) {
	if req.Username == "" {
		return nil, ErrMissingParameter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load(ctx)
	if doc.FindLicense(req.Username) >= 0 {
		return nil, ErrDuplicateUsername
	}

	lic := models.NewLicense(req.Username, req.Valid, req.Role, req.Expires, req.Notes)
	s.warnUnrecognizedExpires(lic)
	doc.AddLicense(lic)
	s.save(ctx, doc)
	s.recordChange("add")

	s.logger.Info().Str("username", lic.Username).Msg("license added")
	return lic.Clone(), nil
}

// Update overwrites the fields present in req on the matching license.
func (s *Service) Update(ctx context.Context, req models.UpdateLicenseRequest) (*models.License, error) {
	if req.Username == "" {
		return nil, ErrMissingParameter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load(ctx)
	i := doc.FindLicense(req.Username)
	if i < 0 {
		return nil, ErrNotFound
	}

	lic := doc.Licenses[i]
	req.Apply(lic)
	if req.Expires.Set {
		s.warnUnrecognizedExpires(lic)
	}
	s.save(ctx, doc)
	s.recordChange("update")

	s.logger.Info().Str("username", lic.Username).Msg("license updated")
	return lic.Clone(), nil
}

// Delete removes the first license matching username.
func (s *Service) Delete(ctx context.Context, username string) (*models.License, error) {
	if username == "" {
		return nil, ErrMissingParameter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load(ctx)
	i := doc.FindLicense(username)
	if i < 0 {
		return nil, ErrNotFound
	}

	removed := doc.RemoveLicense(i)
	s.save(ctx, doc)
	s.recordChange("delete")

	s.logger.Info().Str("username", removed.Username).Msg("license deleted")
	return removed, nil
}

// load reads the document. Read failures yield an empty document.
func (s *Service) load(ctx context.Context) *models.LicenseDocument {
	doc, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			s.logger.Warn().Str("store", s.store.Name()).Msg("license document missing, using empty document")
		} else {
			s.logger.Error().Err(err).Str("store", s.store.Name()).Msg("failed to load license document, using empty document")
			s.recordFailure(opLoad)
		}
		return models.NewLicenseDocument()
	}
	return doc
}

// save writes the document. Write failures are logged and not returned.
func (s *Service) save(ctx context.Context, doc *models.LicenseDocument) {
	if err := s.store.Save(ctx, doc); err != nil {
		s.logger.Error().Err(err).Str("store", s.store.Name()).Msg("failed to save license document")
		s.recordFailure(opSave)
		return
	}
	s.recordSize(doc)
}

func (s *Service) warnUnrecognizedExpires(lic *models.License) {
	if !models.IsRecognizedExpires(lic.ExpiresOrNever()) {
		s.logger.Warn().
			Str("username", lic.Username).
			Str("expires", lic.Expires).
			Msg("unrecognized expiry date, license will not expire")
	}
}

func (s *Service) recordCheck(result string) {
	if s.metrics != nil {
		s.metrics.RecordLicenseCheck(result)
	}
}

func (s *Service) recordChange(op string) {
	if s.metrics != nil {
		s.metrics.RecordLicenseChange(op)
	}
}

func (s *Service) recordFailure(op string) {
	if s.metrics != nil {
		s.metrics.RecordPersistenceFailure(op)
	}
}

func (s *Service) recordSize(doc *models.LicenseDocument) {
	if s.metrics != nil {
		s.metrics.SetDocumentSize(len(doc.Licenses), len(doc.Heartbeat))
	}
}
