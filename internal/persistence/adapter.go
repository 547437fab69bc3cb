// Package persistence loads and saves the three state buckets, applying the
// load-time migrations and fallbacks for missing or corrupt records.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bookdist/internal/records"
	"bookdist/pkg/domain"
)

// Logger receives diagnostics about records that could not be loaded.
// *slog.Logger satisfies it.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// State is the full persisted application state.
type State struct {
	Schools  []domain.School
	Log      []domain.LogEntry
	Settings domain.Settings
}

// Adapter reads and writes typed buckets through a domain.StateStore.
type Adapter struct {
	store  domain.StateStore
	logger Logger
	ids    records.IDGenerator
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the diagnostics logger.
func WithLogger(l Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithIDGenerator sets the id source used when a fresh school has to be created.
func WithIDGenerator(ids records.IDGenerator) Option {
	return func(a *Adapter) { a.ids = ids }
}

// New wraps store.
func New(store domain.StateStore, opts ...Option) *Adapter {
	a := &Adapter{store: store, logger: noopLogger{}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Store returns the underlying state store.
func (a *Adapter) Store() domain.StateStore { return a.store }

// Load reads all three buckets. It never fails: every bucket falls back to
// its default and the reason is logged.
func (a *Adapter) Load(ctx context.Context) State {
	return State{
		Schools:  a.LoadSchools(ctx),
		Log:      a.LoadLog(ctx),
		Settings: a.LoadSettings(ctx),
	}
}

// LoadSchools returns the saved school tree. Schools without subject defaults
// get the baseline values. An absent, unreadable or empty tree is replaced by
// one fresh school.
func (a *Adapter) LoadSchools(ctx context.Context) []domain.School {
	var tree []domain.School
	if a.decode(ctx, domain.BucketSchools, &tree, a.logger.Error) && len(tree) > 0 {
		return MigrateSchools(tree)
	}
	return []domain.School{records.NewSchool(a.ids)}
}

// LoadLog returns the saved archive log, or an empty log when the record is
// absent or corrupt.
func (a *Adapter) LoadLog(ctx context.Context) []domain.LogEntry {
	var entries []domain.LogEntry
	if !a.decode(ctx, domain.BucketLog, &entries, a.logger.Error) || entries == nil {
		return []domain.LogEntry{}
	}
	for i := range entries {
		entries[i].Data = normalizeTree(entries[i].Data)
	}
	return entries
}

// LoadSettings returns the saved settings, or the defaults when the record is
// absent, corrupt or holds values outside the known enums.
func (a *Adapter) LoadSettings(ctx context.Context) domain.Settings {
	var settings domain.Settings
	if !a.decode(ctx, domain.BucketSettings, &settings, a.logger.Warn) {
		return domain.DefaultSettings()
	}
	if err := ValidateSettings(settings); err != nil {
		a.logger.Warn("stored settings invalid, using defaults", "bucket", domain.BucketSettings, "error", err)
		return domain.DefaultSettings()
	}
	return settings
}

// SaveSchools writes the school tree.
func (a *Adapter) SaveSchools(ctx context.Context, tree []domain.School) error {
	if tree == nil {
		tree = []domain.School{}
	}
	return a.encode(ctx, domain.BucketSchools, tree)
}

// SaveLog writes the archive log.
func (a *Adapter) SaveLog(ctx context.Context, entries []domain.LogEntry) error {
	if entries == nil {
		entries = []domain.LogEntry{}
	}
	return a.encode(ctx, domain.BucketLog, entries)
}

// SaveSettings writes the settings record.
func (a *Adapter) SaveSettings(ctx context.Context, settings domain.Settings) error {
	return a.encode(ctx, domain.BucketSettings, settings)
}

// Close closes the underlying store.
func (a *Adapter) Close() error { return a.store.Close() }

// decode loads bucket into target and reports whether it succeeded. A
// missing bucket is normal and is not logged; anything else goes to report.
func (a *Adapter) decode(ctx context.Context, bucket domain.Bucket, target any, report func(string, ...any)) bool {
	payload, err := a.store.Load(ctx, bucket)
	if errors.Is(err, domain.ErrBucketNotFound) {
		return false
	}
	if err != nil {
		report("failed to read stored state", "bucket", bucket, "error", err)
		return false
	}
	if len(payload) == 0 {
		return false
	}
	if err := json.Unmarshal(payload, target); err != nil {
		report("failed to parse stored state", "bucket", bucket, "error", err)
		return false
	}
	return true
}

func (a *Adapter) encode(ctx context.Context, bucket domain.Bucket, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", bucket, err)
	}
	if err := a.store.Save(ctx, bucket, payload); err != nil {
		return fmt.Errorf("save %s: %w", bucket, err)
	}
	return nil
}

// MigrateSchools fills in missing subject defaults and replaces null child
// lists with empty ones. The input is not modified.
func MigrateSchools(tree []domain.School) []domain.School {
	out := normalizeTree(tree)
	for i := range out {
		if out[i].DefaultSubjectValues == nil {
			d := domain.BaselineSubjectValues()
			out[i].DefaultSubjectValues = &d
		}
	}
	return out
}

func normalizeTree(tree []domain.School) []domain.School {
	out := domain.CloneSchools(tree)
	if out == nil {
		return []domain.School{}
	}
	for i := range out {
		if out[i].Classes == nil {
			out[i].Classes = []domain.Class{}
		}
		for j := range out[i].Classes {
			if out[i].Classes[j].Subjects == nil {
				out[i].Classes[j].Subjects = []domain.Subject{}
			}
		}
	}
	return out
}
