package kv

import (
	"bytes"
	"context"
	"os"

	"github.com/PowerDNS/lmdb-go/lmdb"
	"github.com/leg100/todo/internal"
)

var _ Store = (*LMDBStore)(nil)

// LMDBStore is a store backed by an LMDB environment on disk.
type LMDBStore struct {
	env *lmdb.Env
	dbi lmdb.DBI
}

func NewLMDBStore(path string) (*LMDBStore, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}

	env, err := lmdb.NewEnv()
	if err != nil {
		return nil, err
	}
	env.SetMaxDBs(1)
	env.SetMapSize(1 << 30) // 1GB

	if err := env.Open(path, lmdb.NoTLS|lmdb.WriteMap, 0o644); err != nil {
		env.Close()
		return nil, err
	}

	store := &LMDBStore{env: env}
	if err := env.Update(func(txn *lmdb.Txn) error {
		dbi, err := txn.OpenDBI("todos", lmdb.Create)
		if err != nil {
			return err
		}
		store.dbi = dbi
		return nil
	}); err != nil {
		env.Close()
		return nil, err
	}
	return store, nil
}

func (s *LMDBStore) Get(ctx context.Context, key Key) ([]byte, error) {
	k, err := key.Encode()
	if err != nil {
		return nil, err
	}
	var value []byte
	err = s.env.View(func(txn *lmdb.Txn) error {
		v, err := txn.Get(s.dbi, k)
		if lmdb.IsNotFound(err) {
			return internal.ErrResourceNotFound
		}
		if err != nil {
			return err
		}
		// v is only valid for the lifetime of the transaction
		value = bytes.Clone(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *LMDBStore) Set(ctx context.Context, key Key, value []byte) error {
	k, err := key.Encode()
	if err != nil {
		return err
	}
	return s.env.Update(func(txn *lmdb.Txn) error {
		return txn.Put(s.dbi, k, value, 0)
	})
}

func (s *LMDBStore) Delete(ctx context.Context, key Key) error {
	k, err := key.Encode()
	if err != nil {
		return err
	}
	return s.env.Update(func(txn *lmdb.Txn) error {
		if err := txn.Del(s.dbi, k, nil); err != nil && !lmdb.IsNotFound(err) {
			return err
		}
		return nil
	})
}

func (s *LMDBStore) List(ctx context.Context, prefix Key, fn func(Entry) error) error {
	p, err := prefix.Encode()
	if err != nil {
		return err
	}
	return s.env.View(func(txn *lmdb.Txn) error {
		cur, err := txn.OpenCursor(s.dbi)
		if err != nil {
			return err
		}
		defer cur.Close()

		k, v, err := cur.Get(p, nil, lmdb.SetRange)
		for ; err == nil; k, v, err = cur.Get(nil, nil, lmdb.Next) {
			if !bytes.HasPrefix(k, p) {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			key, err := DecodeKey(k)
			if err != nil {
				return err
			}
			if !key.HasPrefix(prefix) {
				continue
			}
			if err := fn(Entry{Key: key, Value: bytes.Clone(v)}); err != nil {
				return err
			}
		}
		if lmdb.IsNotFound(err) {
			return nil
		}
		return err
	})
}

func (s *LMDBStore) Close() error {
	s.env.Close()
	return nil
}
