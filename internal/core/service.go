// Package core is the bookdist application controller. Service owns the
// record tree, the archive log, the settings and the confirmation gate, and
// writes every change through to the state store.
package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"bookdist/internal/archive"
	"bookdist/internal/blob"
	"bookdist/internal/confirm"
	"bookdist/internal/persistence"
	"bookdist/internal/records"
	"bookdist/pkg/domain"
)

var (
	// ErrNotFound is returned when a referenced school, class, subject or
	// archive entry does not exist.
	ErrNotFound = errors.New("not found")
	// ErrLastSibling is returned when removing the only remaining school,
	// class or subject at its level.
	ErrLastSibling = errors.New("cannot remove the last remaining item")
	// ErrInvalidSettings wraps settings validation failures.
	ErrInvalidSettings = errors.New("invalid settings")
)

// Service processes one event at a time; every exported method holds the
// service lock for its whole duration.
type Service struct {
	mu       sync.Mutex
	adapter  *persistence.Adapter
	schools  []domain.School
	log      archive.Log
	settings domain.Settings
	gate     confirm.Gate

	logger   Logger
	clock    Clock
	ids      records.IDGenerator
	metrics  MetricsRecorder
	tracer   Tracer
	blobs    blob.Store
	location *time.Location
}

// NewService loads the persisted state from store and returns a ready
// service. Loading never fails; unreadable buckets fall back to defaults.
func NewService(ctx context.Context, store domain.StateStore, opts ...Option) *Service {
	s := &Service{
		logger:   noopLogger{},
		clock:    ClockFunc(func() time.Time { return time.Now().UTC() }),
		ids:      records.NewID,
		metrics:  noopMetrics{},
		tracer:   noopTracer{},
		location: time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.blobs == nil {
		s.blobs = blob.NewMemory()
	}
	s.adapter = persistence.New(store, persistence.WithLogger(s.logger), persistence.WithIDGenerator(s.ids))
	state := s.adapter.Load(ctx)
	s.schools = state.Schools
	s.log = archive.New(state.Log)
	s.settings = state.Settings
	s.logger.Info("state loaded", "schools", len(s.schools), "log_entries", s.log.Len())
	return s
}

// Close releases the underlying state store.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adapter.Close()
}

// Blobs returns the store exports are published to.
func (s *Service) Blobs() blob.Store { return s.blobs }

// run executes fn under the service lock inside a trace span and records
// its outcome.
func (s *Service) run(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, op)
	start := time.Now()
	s.mu.Lock()
	err := fn(ctx)
	s.mu.Unlock()
	elapsed := time.Since(start)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, elapsed)
	if err != nil {
		s.logger.Warn("operation failed", "operation", op, "error", err)
	} else {
		s.logger.Debug("operation completed", "operation", op, "duration", elapsed)
	}
	return err
}

// View is a consistent copy of the whole application state.
type View struct {
	Schools  []domain.School   `json:"schools"`
	Log      []domain.LogEntry `json:"log"`
	LogCount int               `json:"logCount"`
	Settings domain.Settings   `json:"settings"`
	Pending  confirm.State     `json:"pending"`
}

// State returns a deep copy of the current state.
func (s *Service) State() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Schools:  domain.CloneSchools(s.schools),
		Log:      s.log.Entries(),
		LogCount: s.log.Len(),
		Settings: s.settings,
		Pending:  s.gate.State(),
	}
}

// Schools returns a deep copy of the record tree.
func (s *Service) Schools() []domain.School {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneSchools(s.schools)
}

// Log returns deep copies of the archive entries, newest first.
func (s *Service) Log() []domain.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Entries()
}

// Settings returns the current settings.
func (s *Service) Settings() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// commitSchools replaces the tree and writes it through. On a save failure
// the in-memory change is kept and the error returned.
func (s *Service) commitSchools(ctx context.Context, tree []domain.School) error {
	s.schools = tree
	if err := s.adapter.SaveSchools(ctx, tree); err != nil {
		s.logger.Error("persist schools", "error", err)
		return err
	}
	return nil
}

func (s *Service) commitLog(ctx context.Context, log archive.Log) error {
	s.log = log
	if err := s.adapter.SaveLog(ctx, log.Entries()); err != nil {
		s.logger.Error("persist log", "error", err)
		return err
	}
	return nil
}
