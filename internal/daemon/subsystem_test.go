package daemon

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leg100/todo/internal/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSubsystem(t *testing.T) {
	ctx := context.Background()

	t.Run("start", func(t *testing.T) {
		sys := &fakeStartable{}
		sub := &Subsystem{Name: "test", System: sys, Logger: logr.Discard()}

		g := &errgroup.Group{}
		require.NoError(t, sub.Start(ctx, g))
		require.NoError(t, g.Wait())
		assert.Equal(t, int32(1), sys.starts.Load())
	})

	t.Run("restart upon error", func(t *testing.T) {
		sys := &fakeStartable{failures: 1}
		reg := prometheus.NewRegistry()
		restarts := newRestartsCounter(reg)
		sub := &Subsystem{
			Name:     "test",
			System:   sys,
			Logger:   logr.Discard(),
			Restarts: restarts.WithLabelValues("test"),
		}

		g := &errgroup.Group{}
		require.NoError(t, sub.Start(ctx, g))
		require.NoError(t, g.Wait())
		assert.Equal(t, int32(2), sys.starts.Load())

		families, err := reg.Gather()
		require.NoError(t, err)
		require.Len(t, families, 1)
		assert.Equal(t, "todod_subsystem_restarts_total", families[0].GetName())
		assert.Equal(t, float64(1), families[0].GetMetric()[0].GetCounter().GetValue())
	})
}

func TestStoreGC(t *testing.T) {
	collector := &fakeCollector{}
	gc := &storeGC{
		Logger:           logr.Discard(),
		GarbageCollector: collector,
		interval:         time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- gc.Start(ctx) }()

	assert.Eventually(t, func() bool {
		return collector.calls.Load() >= 2
	}, time.Second, time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestStoreGC_Error(t *testing.T) {
	gc := &storeGC{
		Logger:           logr.Discard(),
		GarbageCollector: &fakeCollector{err: errors.New("disk on fire")},
		interval:         time.Millisecond,
	}

	assert.EqualError(t, gc.Start(context.Background()), "disk on fire")
}

type (
	fakeStartable struct {
		failures int32
		starts   atomic.Int32
	}

	fakeCollector struct {
		err   error
		calls atomic.Int32
	}
)

func (f *fakeStartable) Start(ctx context.Context) error {
	if f.starts.Add(1) <= f.failures {
		return errors.New("failed to start")
	}
	return nil
}

func (f *fakeCollector) CollectGarbage() error {
	f.calls.Add(1)
	return f.err
}
