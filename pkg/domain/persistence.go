package domain

import (
	"context"
	"errors"
)

// Bucket names one independently persisted record.
type Bucket string

// Persisted buckets. The names match the keys used by earlier versions of
// the tool so existing data loads unchanged.
const (
	BucketSchools  Bucket = "schoolData"
	BucketLog      Bucket = "schoolLog"
	BucketSettings Bucket = "appSettings"
)

// Buckets lists every persisted bucket in a stable order.
func Buckets() []Bucket {
	return []Bucket{BucketSchools, BucketLog, BucketSettings}
}

// ErrBucketNotFound is returned by StateStore.Load when nothing has been saved
// under the bucket yet.
var ErrBucketNotFound = errors.New("state bucket not found")

// StateStore is a durable key-value store holding one opaque payload per
// bucket. Implementations must make a successful Save visible to every later
// Load, including one from a freshly opened store on the same backend.
type StateStore interface {
	Load(ctx context.Context, bucket Bucket) ([]byte, error)
	Save(ctx context.Context, bucket Bucket, payload []byte) error
	Close() error
}
