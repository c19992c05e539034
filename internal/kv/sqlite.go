package kv

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/leg100/todo/internal"
	_ "github.com/mattn/go-sqlite3"
)

var _ Store = (*SQLiteStore)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
    key   BLOB PRIMARY KEY,
    value BLOB NOT NULL
) WITHOUT ROWID;
`

// SQLiteStore is a store backed by a single sqlite table. Keys are compared
// as blobs, which sqlite orders byte-wise.
type SQLiteStore struct {
	db *sqlx.DB
}

type sqliteRow struct {
	Key   []byte `db:"key"`
	Value []byte `db:"value"`
}

// NewSQLiteStore opens (creating if necessary) a sqlite database in the
// directory at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}
	dsn := "file:" + filepath.Join(path, "todos.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// a single writer avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key Key) ([]byte, error) {
	k, err := key.Encode()
	if err != nil {
		return nil, err
	}
	var value []byte
	err = s.db.GetContext(ctx, &value, `SELECT value FROM kv WHERE key = ?`, k)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, internal.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key Key, value []byte) error {
	k, err := key.Encode()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO kv (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value
`, k, value)
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, key Key) error {
	k, err := key.Encode()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, k)
	return err
}

func (s *SQLiteStore) List(ctx context.Context, prefix Key, fn func(Entry) error) error {
	p, err := prefix.Encode()
	if err != nil {
		return err
	}
	var rows *sqlx.Rows
	if end := prefixEnd(p); end != nil {
		rows, err = s.db.QueryxContext(ctx, `SELECT key, value FROM kv WHERE key >= ? AND key < ? ORDER BY key`, p, end)
	} else {
		rows, err = s.db.QueryxContext(ctx, `SELECT key, value FROM kv WHERE key >= ? ORDER BY key`, p)
	}
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row sqliteRow
		if err := rows.StructScan(&row); err != nil {
			return err
		}
		key, err := DecodeKey(row.Key)
		if err != nil {
			return err
		}
		if !key.HasPrefix(prefix) {
			continue
		}
		if err := fn(Entry{Key: key, Value: row.Value}); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
