// Package archive keeps the newest-first log of archived school snapshots.
package archive

import (
	"time"

	"bookdist/pkg/domain"
)

// Log is an immutable, newest-first list of snapshots. Every operation
// returns a new Log and leaves the receiver untouched.
type Log struct {
	entries []domain.LogEntry
}

// New wraps entries (newest first) in a Log. The entries are deep-copied.
func New(entries []domain.LogEntry) Log {
	return Log{entries: domain.CloneLog(entries)}
}

// Archive prepends a deep copy of tree stamped with id and now. Later edits
// to tree never reach the stored snapshot.
func (l Log) Archive(tree []domain.School, id string, now time.Time) Log {
	snapshot := domain.LogEntry{ID: id, Date: now, Data: domain.CloneSchools(tree)}
	if snapshot.Data == nil {
		snapshot.Data = []domain.School{}
	}
	entries := make([]domain.LogEntry, 0, len(l.entries)+1)
	entries = append(entries, snapshot)
	entries = append(entries, l.entries...)
	return Log{entries: entries}
}

// Delete removes the entry with the given id. Unknown ids leave the log as is.
func (l Log) Delete(id string) (Log, bool) {
	for i := range l.entries {
		if l.entries[i].ID != id {
			continue
		}
		entries := make([]domain.LogEntry, 0, len(l.entries)-1)
		entries = append(entries, l.entries[:i]...)
		entries = append(entries, l.entries[i+1:]...)
		return Log{entries: entries}, true
	}
	return l, false
}

// Clear returns an empty log.
func (l Log) Clear() Log { return Log{} }

// Find returns a deep copy of the entry with the given id.
func (l Log) Find(id string) (domain.LogEntry, bool) {
	for _, entry := range l.entries {
		if entry.ID == id {
			return domain.CloneLogEntry(entry), true
		}
	}
	return domain.LogEntry{}, false
}

// Entries returns deep copies of all entries, newest first. The result is
// never nil.
func (l Log) Entries() []domain.LogEntry {
	out := domain.CloneLog(l.entries)
	if out == nil {
		out = []domain.LogEntry{}
	}
	return out
}

// Len reports the number of entries.
func (l Log) Len() int { return len(l.entries) }
