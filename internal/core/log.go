package core

import (
	"context"
	"fmt"

	"bookdist/pkg/domain"
)

const (
	confirmDeleteLogEntry = "هل أنت متأكد من حذف هذا السجل؟ لا يمكن التراجع عن هذا الإجراء."
	confirmClearLog       = "هل أنت متأكد من مسح السجل بالكامل؟ لا يمكن التراجع عن هذا الإجراء."
)

// Archive snapshots the current record tree into the log. The live tree is
// left as is.
func (s *Service) Archive(ctx context.Context) (domain.LogEntry, error) {
	var entry domain.LogEntry
	err := s.run(ctx, "archive", func(ctx context.Context) error {
		id := s.ids()
		log := s.log.Archive(s.schools, id, s.clock.Now())
		entry, _ = log.Find(id)
		return s.commitLog(ctx, log)
	})
	return entry, err
}

// LogEntry returns a deep copy of one archived snapshot.
func (s *Service) LogEntry(id string) (domain.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.log.Find(id)
	if !ok {
		return domain.LogEntry{}, fmt.Errorf("log entry %s: %w", id, ErrNotFound)
	}
	return entry, nil
}

// RequestDeleteLogEntry asks for confirmation before deleting one snapshot.
func (s *Service) RequestDeleteLogEntry(ctx context.Context, id string) error {
	return s.run(ctx, "request_delete_log_entry", func(context.Context) error {
		if _, ok := s.log.Find(id); !ok {
			return fmt.Errorf("log entry %s: %w", id, ErrNotFound)
		}
		s.gate.Request(confirmDeleteLogEntry, func(ctx context.Context) error {
			log, ok := s.log.Delete(id)
			if !ok {
				return nil
			}
			if err := s.commitLog(ctx, log); err != nil {
				return err
			}
			s.removeSnapshotExports(ctx, id)
			return nil
		})
		return nil
	})
}

// RequestClearLog asks for confirmation before emptying the log.
func (s *Service) RequestClearLog(ctx context.Context) error {
	return s.run(ctx, "request_clear_log", func(context.Context) error {
		s.gate.Request(confirmClearLog, func(ctx context.Context) error {
			if err := s.commitLog(ctx, s.log.Clear()); err != nil {
				return err
			}
			s.removeSnapshotExports(ctx)
			return nil
		})
		return nil
	})
}
