package domain

import "time"

// LogEntry is an archived, immutable snapshot of the full record tree.
type LogEntry struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`
	Data []School  `json:"data"`
}
