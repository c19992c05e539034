// Package kv provides an ordered key-value store with composite keys,
// backed by one of several embedded databases.
package kv

import (
	"context"
	"fmt"

	"github.com/leg100/todo/internal/logr"
)

const (
	MemoryBackend = "memory"
	BadgerBackend = "badger"
	LMDBBackend   = "lmdb"
	SQLiteBackend = "sqlite"

	DefaultBackend = BadgerBackend
)

// Backends lists the supported store backends.
var Backends = []string{MemoryBackend, BadgerBackend, LMDBBackend, SQLiteBackend}

type (
	// Store is an ordered key-value store. Each individual operation is
	// atomic; there are no multi-key transactions.
	Store interface {
		// Get retrieves the value for a key. Returns
		// internal.ErrResourceNotFound if the key does not exist.
		Get(ctx context.Context, key Key) ([]byte, error)
		// Set stores a value for a key, overwriting any existing value.
		Set(ctx context.Context, key Key, value []byte) error
		// Delete removes a key. Deleting a non-existent key is not an error.
		Delete(ctx context.Context, key Key) error
		// List calls fn for every entry whose key extends prefix, in
		// ascending key order. If fn returns an error then iteration stops
		// and the error is returned. fn must not call back into the store.
		List(ctx context.Context, prefix Key, fn func(Entry) error) error
		// Close releases any resources held by the store.
		Close() error
	}

	// GarbageCollector is implemented by stores that must periodically
	// reclaim space left behind by overwritten and deleted values.
	GarbageCollector interface {
		CollectGarbage() error
	}

	Entry struct {
		Key   Key
		Value []byte
	}

	// Config configures the store.
	Config struct {
		// Backend is one of Backends.
		Backend string
		// Path is the directory in which durable backends keep their data.
		Path string
	}
)

// Open opens the store backend named in the config.
func Open(logger logr.Logger, cfg Config) (Store, error) {
	var (
		store Store
		err   error
	)
	if cfg.Backend == "" {
		cfg.Backend = DefaultBackend
	}
	switch cfg.Backend {
	case MemoryBackend:
		store, err = NewBadgerStore(logger, "", true)
	case BadgerBackend:
		store, err = NewBadgerStore(logger, cfg.Path, false)
	case LMDBBackend:
		store, err = NewLMDBStore(cfg.Path)
	case SQLiteBackend:
		store, err = NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unrecognised store backend: %s", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Backend, err)
	}
	logger.Info("opened store", "backend", cfg.Backend, "path", cfg.Path)
	return store, nil
}
