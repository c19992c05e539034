package todo

import (
	"context"
	"fmt"

	"github.com/leg100/todo/internal/json"
	"github.com/leg100/todo/internal/kv"
)

// prefix is the first part of the key of every todo.
const prefix = "todos"

func key(id int64) kv.Key { return kv.Key{prefix, id} }

// db stores todos as JSON values under the key ("todos", id).
type db struct {
	kv.Store
}

func (db *db) list(ctx context.Context) ([]*Todo, error) {
	todos := []*Todo{}
	err := db.List(ctx, kv.Key{prefix}, func(e kv.Entry) error {
		var t Todo
		if err := json.Unmarshal(e.Value, &t); err != nil {
			return fmt.Errorf("decoding todo %s: %w", e.Key, err)
		}
		todos = append(todos, &t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return todos, nil
}

func (db *db) get(ctx context.Context, id int64) (*Todo, error) {
	b, err := db.Get(ctx, key(id))
	if err != nil {
		return nil, err
	}
	var t Todo
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("decoding todo %d: %w", id, err)
	}
	return &t, nil
}

func (db *db) put(ctx context.Context, t *Todo) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return db.Set(ctx, key(t.ID), b)
}

func (db *db) delete(ctx context.Context, id int64) error {
	return db.Delete(ctx, key(id))
}
