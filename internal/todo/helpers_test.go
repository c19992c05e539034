package todo

import (
	"context"
	"testing"
	"time"

	"github.com/leg100/todo/internal/kv"
	"github.com/leg100/todo/internal/logr"
	"github.com/stretchr/testify/require"
)

// newTestService constructs a service backed by an in-memory store, which is
// closed when the test finishes.
func newTestService(t *testing.T, clock func() time.Time) *Service {
	t.Helper()

	return newTestServiceWithLogger(t, logr.Discard(), clock)
}

func newTestServiceWithLogger(t *testing.T, logger logr.Logger, clock func() time.Time) *Service {
	t.Helper()

	store, err := kv.Open(logr.Discard(), kv.Config{Backend: kv.MemoryBackend})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewService(Options{
		Logger: logger,
		Store:  store,
		Clock:  clock,
	})
}

// seed writes todos directly to the service's store, bypassing ID
// assignment.
func seed(t *testing.T, svc *Service, todos ...*Todo) {
	t.Helper()

	for _, todo := range todos {
		require.NoError(t, svc.db.put(context.Background(), todo))
	}
}

// fixedClock returns a clock that returns each of the given times in turn,
// and then the last time indefinitely.
func fixedClock(times ...time.Time) func() time.Time {
	return func() time.Time {
		now := times[0]
		if len(times) > 1 {
			times = times[1:]
		}
		return now
	}
}
