package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// KV is a string key-value store. Set may fail (disk full, server gone);
// callers decide whether that is fatal.
type KV interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys lists every key with the given prefix in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases the underlying connection.
	Close() error
}

// Backend names accepted by OpenBackend.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// BackendConfig selects and configures a KV implementation.
type BackendConfig struct {
	Kind      string // sqlite (default), redis or memory
	DBPath    string // sqlite file
	RedisAddr string
	Namespace string // redis key prefix
}

// OpenBackend opens the configured KV.
func OpenBackend(ctx context.Context, cfg BackendConfig) (KV, error) {
	switch cfg.Kind {
	case "", BackendSQLite:
		path := cfg.DBPath
		if path == "" {
			p, err := DefaultDBPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		s, err := Open(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendRedis:
		r, err := OpenRedis(ctx, cfg.RedisAddr, cfg.Namespace)
		if err != nil {
			return nil, err
		}
		return r, nil
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Kind)
	}
}
