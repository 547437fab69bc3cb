package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"bookdist/internal/infra/persistence/memory"
	"bookdist/internal/records"
	"bookdist/pkg/domain"
)

func sequentialIDs() records.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

var fixedNow = time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	base := []Option{
		WithIDGenerator(sequentialIDs()),
		WithClock(ClockFunc(func() time.Time { return fixedNow })),
		WithLocation(time.UTC),
	}
	svc := NewService(context.Background(), store, append(base, opts...)...)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, store
}

func firstPath(t *testing.T, svc *Service) (schoolID, classID, subjectID string) {
	t.Helper()
	tree := svc.Schools()
	if len(tree) == 0 || len(tree[0].Classes) == 0 || len(tree[0].Classes[0].Subjects) == 0 {
		t.Fatalf("unexpected tree shape %+v", tree)
	}
	return tree[0].ID, tree[0].Classes[0].ID, tree[0].Classes[0].Subjects[0].ID
}

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

type failingSaveStore struct{ err error }

func (f failingSaveStore) Load(context.Context, domain.Bucket) ([]byte, error) {
	return nil, domain.ErrBucketNotFound
}
func (f failingSaveStore) Save(context.Context, domain.Bucket, []byte) error { return f.err }
func (f failingSaveStore) Close() error                                    { return nil }

var errDiskFull = errors.New("disk full")
