// Package memory provides an in-memory state store used for tests and
// ephemeral environments.
package memory

import (
	"context"
	"sync"

	"bookdist/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.StateStore = (*Store)(nil)

// Snapshot captures a point-in-time copy of every saved bucket.
type Snapshot map[domain.Bucket][]byte

// Store keeps bucket payloads in a map guarded by a mutex.
type Store struct {
	mu      sync.RWMutex
	buckets map[domain.Bucket][]byte
	closed  bool
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{buckets: make(map[domain.Bucket][]byte)}
}

// Load returns a copy of the bucket payload.
func (s *Store) Load(_ context.Context, bucket domain.Bucket) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.buckets[bucket]
	if !ok {
		return nil, domain.ErrBucketNotFound
	}
	return clonePayload(payload), nil
}

// Save stores a copy of payload under bucket.
func (s *Store) Save(_ context.Context, bucket domain.Bucket, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[bucket] = clonePayload(payload)
	return nil
}

// Close marks the store closed. Contents stay readable so tests can inspect
// state after the service shuts down.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// ExportState returns a deep copy of all buckets.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(Snapshot, len(s.buckets))
	for k, v := range s.buckets {
		out[k] = clonePayload(v)
	}
	return out
}

// ImportState replaces all buckets with a copy of snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	next := make(map[domain.Bucket][]byte, len(snapshot))
	for k, v := range snapshot {
		next[k] = clonePayload(v)
	}
	s.mu.Lock()
	s.buckets = next
	s.mu.Unlock()
}

func clonePayload(in []byte) []byte {
	if in == nil {
		return nil
	}
	return append([]byte(nil), in...)
}
