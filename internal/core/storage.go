package core

import (
	"context"
	"fmt"

	"bookdist/internal/blob"
	"bookdist/internal/config"
	"bookdist/internal/infra/persistence/memory"
	"bookdist/internal/infra/persistence/postgres"
	"bookdist/internal/infra/persistence/redis"
	"bookdist/internal/infra/persistence/sqlite"
	"bookdist/pkg/domain"
)

// StorageDriver identifies a state store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageRedis    StorageDriver = "redis"    // one Redis key per bucket
)

// OpenStateStore selects a backend from cfg. An empty driver means sqlite.
func OpenStateStore(ctx context.Context, cfg config.Storage) (domain.StateStore, error) {
	driver := StorageDriver(cfg.Driver)
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		store, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StoragePostgres:
		store, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageRedis:
		store, err := redis.NewStore(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}

// OpenBlobStore builds the download sink described by cfg.
func OpenBlobStore(ctx context.Context, cfg config.Blob) (blob.Store, error) {
	return blob.Open(ctx, blob.Config{
		Driver: blob.Driver(cfg.Driver),
		FSRoot: cfg.FSRoot,
		S3: blob.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		},
	})
}

// Open wires a Service from the process configuration: state store, blob
// store and display location.
func Open(ctx context.Context, cfg config.Config, opts ...Option) (*Service, error) {
	store, err := OpenStateStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	blobs, err := OpenBlobStore(ctx, cfg.Blob)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	base := []Option{WithBlobStore(blobs), WithLocation(loc)}
	return NewService(ctx, store, append(base, opts...)...), nil
}

