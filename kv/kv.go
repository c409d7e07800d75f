// Package kv defines the whole-value key-value capability recipes are
// persisted through, along with its backends.
package kv

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Backend names accepted by Open.
const (
	BackendMemory    = "memory"
	BackendFile      = "file"
	BackendBadger    = "badger"
	BackendRedis     = "redis"
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// ErrUnknownBackend is returned by Open for an unrecognised backend name.
var ErrUnknownBackend = errors.New("kv: unknown backend")

// Store is an asynchronous-style key-value capability. Every operation
// reads or replaces a whole value. Get reports ok=false for an absent key,
// and removing an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend   string
	DataDir   string
	Redis     RedisConfig
	Firestore FirestoreConfig
}

// Backends lists every backend name Open understands.
func Backends() []string {
	return []string{BackendMemory, BackendFile, BackendBadger, BackendRedis, BackendSQLite, BackendFirestore}
}

// Open constructs the backend named in cfg.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("backend", cfg.Backend).Logger()

	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case BackendMemory:
		s = NewMemory()
	case BackendFile:
		s, err = OpenFile(filepath.Join(cfg.DataDir, "kv"))
	case BackendBadger:
		s, err = OpenBadger(filepath.Join(cfg.DataDir, "badger"))
	case BackendRedis:
		s, err = NewRedis(ctx, cfg.Redis, logger)
	case BackendSQLite:
		s, err = OpenSQLite(ctx, filepath.Join(cfg.DataDir, "recipebox.db"))
	case BackendFirestore:
		s, err = NewFirestore(ctx, cfg.Firestore)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	logger.Debug().Msg("key-value store opened")
	return s, nil
}

// encodeKey turns an arbitrary key into a string safe for file names and
// document ids.
func encodeKey(key string) string {
	return hex.EncodeToString([]byte(key))
}
