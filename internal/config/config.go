// Package config reads bookdist settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvStorageDriver = "BOOKDIST_STORAGE_DRIVER"
	EnvSQLitePath    = "BOOKDIST_SQLITE_PATH"
	EnvPostgresDSN   = "BOOKDIST_POSTGRES_DSN"
	EnvRedisAddr     = "BOOKDIST_REDIS_ADDR"
	EnvRedisPassword = "BOOKDIST_REDIS_PASSWORD"
	EnvRedisDB       = "BOOKDIST_REDIS_DB"
	EnvRedisPrefix   = "BOOKDIST_REDIS_PREFIX"
	EnvBlobDriver    = "BOOKDIST_BLOB_DRIVER"
	EnvBlobFSRoot    = "BOOKDIST_BLOB_FS_ROOT"
	EnvS3Bucket      = "BOOKDIST_BLOB_S3_BUCKET"
	EnvS3Region      = "BOOKDIST_BLOB_S3_REGION"
	EnvS3Endpoint    = "BOOKDIST_BLOB_S3_ENDPOINT"
	EnvS3PathStyle   = "BOOKDIST_BLOB_S3_PATH_STYLE"
	EnvHTTPAddr      = "BOOKDIST_HTTP_ADDR"
	EnvLogLevel      = "BOOKDIST_LOG_LEVEL"
	EnvTimezone      = "BOOKDIST_TIMEZONE"
)

// Defaults applied when a variable is unset.
const (
	DefaultStorageDriver = "sqlite"
	DefaultSQLitePath    = "bookdist.db"
	DefaultRedisPrefix   = "bookdist:"
	DefaultBlobDriver    = "fs"
	DefaultBlobFSRoot    = "./exports"
	DefaultHTTPAddr      = ":8080"
	DefaultLogLevel      = "info"
)

// Storage selects the state store backend.
type Storage struct {
	Driver        string `validate:"oneof=memory sqlite postgres redis"`
	SQLitePath    string `validate:"required_if=Driver sqlite"`
	PostgresDSN   string `validate:"required_if=Driver postgres"`
	RedisAddr     string `validate:"required_if=Driver redis"`
	RedisPassword string
	RedisDB       int `validate:"gte=0"`
	RedisPrefix   string
}

// Blob selects where rendered export files are published.
type Blob struct {
	Driver      string `validate:"oneof=fs s3 memory"`
	FSRoot      string `validate:"required_if=Driver fs"`
	S3Bucket    string `validate:"required_if=Driver s3"`
	S3Region    string
	S3Endpoint  string `validate:"omitempty,url"`
	S3PathStyle bool
}

// Config is the full process configuration.
type Config struct {
	Storage  Storage
	Blob     Blob
	HTTPAddr string `validate:"required"`
	LogLevel string `validate:"oneof=debug info warn error"`
	Timezone string
}

// Load reads the optional dotenv files (".env" when none are given), then
// the process environment, and validates the result. Variables already set
// in the environment win over dotenv values.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (Config, error) {
	redisDB, err := intEnv(EnvRedisDB, 0)
	if err != nil {
		return Config{}, err
	}
	pathStyle, err := boolEnv(EnvS3PathStyle)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Storage: Storage{
			Driver:        strings.ToLower(env(EnvStorageDriver, DefaultStorageDriver)),
			SQLitePath:    env(EnvSQLitePath, DefaultSQLitePath),
			PostgresDSN:   os.Getenv(EnvPostgresDSN),
			RedisAddr:     os.Getenv(EnvRedisAddr),
			RedisPassword: os.Getenv(EnvRedisPassword),
			RedisDB:       redisDB,
			RedisPrefix:   env(EnvRedisPrefix, DefaultRedisPrefix),
		},
		Blob: Blob{
			Driver:      strings.ToLower(env(EnvBlobDriver, DefaultBlobDriver)),
			FSRoot:      env(EnvBlobFSRoot, DefaultBlobFSRoot),
			S3Bucket:    os.Getenv(EnvS3Bucket),
			S3Region:    os.Getenv(EnvS3Region),
			S3Endpoint:  os.Getenv(EnvS3Endpoint),
			S3PathStyle: pathStyle,
		},
		HTTPAddr: env(EnvHTTPAddr, DefaultHTTPAddr),
		LogLevel: strings.ToLower(env(EnvLogLevel, DefaultLogLevel)),
		Timezone: os.Getenv(EnvTimezone),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks driver names and the fields each driver requires.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Location resolves Timezone; empty means the process local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// SlogLevel maps LogLevel to a slog level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func boolEnv(key string) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
