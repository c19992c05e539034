package todo

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/leg100/todo/internal"
	"github.com/leg100/todo/internal/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	ctx := context.Background()

	t.Run("list empty", func(t *testing.T) {
		svc := newTestService(t, nil)

		got, err := svc.ListTodos(ctx)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("list in order of creation", func(t *testing.T) {
		base := time.UnixMilli(1700000000000)
		svc := newTestService(t, fixedClock(
			base,
			base.Add(time.Millisecond),
			base.Add(time.Second),
			base.Add(time.Hour),
		))

		for _, text := range []string{"first", "second", "third", "fourth"} {
			_, err := svc.CreateTodo(ctx, CreateOptions{Text: internal.String(text)})
			require.NoError(t, err)
		}

		got, err := svc.ListTodos(ctx)
		require.NoError(t, err)
		require.Len(t, got, 4)
		for i, want := range []string{"first", "second", "third", "fourth"} {
			assert.Equal(t, want, got[i].Text)
			if i > 0 {
				assert.Greater(t, got[i].ID, got[i-1].ID)
			}
		}
	})

	t.Run("list orders by id not insertion", func(t *testing.T) {
		svc := newTestService(t, nil)
		seed(t, svc,
			&Todo{ID: 300, Text: "c"},
			&Todo{ID: 1, Text: "a"},
			&Todo{ID: 20, Text: "b"},
		)

		got, err := svc.ListTodos(ctx)
		require.NoError(t, err)
		assert.Equal(t, []*Todo{
			{ID: 1, Text: "a"},
			{ID: 20, Text: "b"},
			{ID: 300, Text: "c"},
		}, got)
	})

	t.Run("create", func(t *testing.T) {
		now := time.UnixMilli(1700000000042)
		svc := newTestService(t, fixedClock(now))

		got, err := svc.CreateTodo(ctx, CreateOptions{Text: internal.String("New Todo")})
		require.NoError(t, err)
		assert.Equal(t, &Todo{ID: 1700000000042, Text: "New Todo", Completed: false}, got)

		list, err := svc.ListTodos(ctx)
		require.NoError(t, err)
		assert.Equal(t, []*Todo{got}, list)
	})

	t.Run("create rejects empty text", func(t *testing.T) {
		svc := newTestService(t, nil)

		_, err := svc.CreateTodo(ctx, CreateOptions{Text: internal.String("")})
		assert.ErrorIs(t, err, internal.ErrInvalidInput)
		_, err = svc.CreateTodo(ctx, CreateOptions{})
		assert.ErrorIs(t, err, internal.ErrInvalidInput)

		list, err := svc.ListTodos(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("creates in the same millisecond collide", func(t *testing.T) {
		now := time.UnixMilli(1700000000000)
		svc := newTestService(t, fixedClock(now))

		_, err := svc.CreateTodo(ctx, CreateOptions{Text: internal.String("first")})
		require.NoError(t, err)
		_, err = svc.CreateTodo(ctx, CreateOptions{Text: internal.String("second")})
		require.NoError(t, err)

		list, err := svc.ListTodos(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "second", list[0].Text)
	})

	t.Run("partial update preserves omitted fields", func(t *testing.T) {
		svc := newTestService(t, nil)
		seed(t, svc, &Todo{ID: 1, Text: "A", Completed: false})

		got, err := svc.UpdateTodo(ctx, 1, UpdateOptions{Completed: internal.Bool(true)})
		require.NoError(t, err)
		assert.Equal(t, &Todo{ID: 1, Text: "A", Completed: true}, got)

		got, err = svc.UpdateTodo(ctx, 1, UpdateOptions{Text: internal.String("B")})
		require.NoError(t, err)
		assert.Equal(t, &Todo{ID: 1, Text: "B", Completed: true}, got)

		list, err := svc.ListTodos(ctx)
		require.NoError(t, err)
		assert.Equal(t, []*Todo{{ID: 1, Text: "B", Completed: true}}, list)
	})

	t.Run("update text leaves completed unchanged", func(t *testing.T) {
		svc := newTestService(t, nil)
		seed(t, svc, &Todo{ID: 1, Text: "A", Completed: false})

		got, err := svc.UpdateTodo(ctx, 1, UpdateOptions{Text: internal.String("B")})
		require.NoError(t, err)
		assert.Equal(t, &Todo{ID: 1, Text: "B", Completed: false}, got)
	})

	t.Run("update keeps id of key", func(t *testing.T) {
		svc := newTestService(t, nil)
		// a stored value whose id disagrees with its key
		seed(t, svc, &Todo{ID: 5, Text: "A"})
		b, err := svc.db.Get(ctx, key(5))
		require.NoError(t, err)
		require.NoError(t, svc.db.Set(ctx, key(6), b))

		got, err := svc.UpdateTodo(ctx, 6, UpdateOptions{Completed: internal.Bool(true)})
		require.NoError(t, err)
		assert.Equal(t, int64(6), got.ID)
	})

	t.Run("update missing todo", func(t *testing.T) {
		svc := newTestService(t, nil)
		seed(t, svc, &Todo{ID: 1, Text: "Todo 1"})

		_, err := svc.UpdateTodo(ctx, 9999, UpdateOptions{Text: internal.String("Updated Todo")})
		assert.ErrorIs(t, err, internal.ErrResourceNotFound)

		list, err := svc.ListTodos(ctx)
		require.NoError(t, err)
		assert.Equal(t, []*Todo{{ID: 1, Text: "Todo 1"}}, list)
	})

	t.Run("delete removes exactly one todo", func(t *testing.T) {
		svc := newTestService(t, nil)
		seed(t, svc,
			&Todo{ID: 1, Text: "Todo 1"},
			&Todo{ID: 2, Text: "Todo 2", Completed: true},
		)

		require.NoError(t, svc.DeleteTodo(ctx, 1))

		list, err := svc.ListTodos(ctx)
		require.NoError(t, err)
		assert.Equal(t, []*Todo{{ID: 2, Text: "Todo 2", Completed: true}}, list)
	})

	t.Run("delete missing todo", func(t *testing.T) {
		svc := newTestService(t, nil)
		seed(t, svc, &Todo{ID: 1, Text: "Todo 1"})

		err := svc.DeleteTodo(ctx, 9999)
		assert.ErrorIs(t, err, internal.ErrResourceNotFound)

		list, err := svc.ListTodos(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("deleted todo cannot be updated", func(t *testing.T) {
		svc := newTestService(t, nil)
		seed(t, svc, &Todo{ID: 1, Text: "Todo 1"})
		require.NoError(t, svc.DeleteTodo(ctx, 1))

		_, err := svc.UpdateTodo(ctx, 1, UpdateOptions{Completed: internal.Bool(true)})
		assert.ErrorIs(t, err, internal.ErrResourceNotFound)
		assert.ErrorIs(t, svc.DeleteTodo(ctx, 1), internal.ErrResourceNotFound)
	})
}

func TestService_NotFoundIsNotLoggedAsError(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	logger, err := logr.New(&logr.Config{Format: "text", Output: &buf})
	require.NoError(t, err)
	svc := newTestServiceWithLogger(t, logger, nil)

	_, err = svc.UpdateTodo(ctx, 9999, UpdateOptions{Completed: internal.Bool(true)})
	require.ErrorIs(t, err, internal.ErrResourceNotFound)
	err = svc.DeleteTodo(ctx, 9999)
	require.ErrorIs(t, err, internal.ErrResourceNotFound)

	assert.NotContains(t, buf.String(), "level=ERROR")
}
