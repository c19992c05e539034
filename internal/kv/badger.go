package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/leg100/todo/internal"
	"github.com/leg100/todo/internal/logr"
)

var (
	_ Store            = (*BadgerStore)(nil)
	_ GarbageCollector = (*BadgerStore)(nil)
)

// gcDiscardRatio is the proportion of a value log file that must be stale
// before it is rewritten.
const gcDiscardRatio = 0.5

// BadgerStore is a store backed by badger, either on disk or in memory.
type BadgerStore struct {
	db       *badger.DB
	inMemory bool
}

// NewBadgerStore opens a badger database in the directory at path. If inMemory
// is true then path is ignored and nothing is persisted.
func NewBadgerStore(logger logr.Logger, path string, inMemory bool) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(&badgerLogger{logger.WithValues("component", "badger")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db, inMemory: inMemory}, nil
}

func (s *BadgerStore) Get(ctx context.Context, key Key) ([]byte, error) {
	k, err := key.Encode()
	if err != nil {
		return nil, err
	}
	var value []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return internal.ErrResourceNotFound
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *BadgerStore) Set(ctx context.Context, key Key, value []byte) error {
	k, err := key.Encode()
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(k, value)
	})
}

func (s *BadgerStore) Delete(ctx context.Context, key Key) error {
	k, err := key.Encode()
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(k)
	})
}

func (s *BadgerStore) List(ctx context.Context, prefix Key, fn func(Entry) error) error {
	p, err := prefix.Encode()
	if err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = p
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			key, err := DecodeKey(item.KeyCopy(nil))
			if err != nil {
				return err
			}
			if !key.HasPrefix(prefix) {
				continue
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(Entry{Key: key, Value: value}); err != nil {
				return err
			}
		}
		return nil
	})
}

// CollectGarbage rewrites value log files until there are none left worth
// rewriting.
func (s *BadgerStore) CollectGarbage() error {
	if s.inMemory {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger's own logging to logr. Badger is chatty at info
// level so its info and debug messages are only shown at higher verbosity.
type badgerLogger struct {
	logr.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.Error(nil, fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.V(2).Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.V(9).Info(fmt.Sprintf(format, args...))
}
