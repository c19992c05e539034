package daemon

import (
	"context"
	"time"

	"github.com/leg100/todo/internal/kv"
	"github.com/leg100/todo/internal/logr"
)

// storeGC periodically garbage collects the store.
type storeGC struct {
	logr.Logger
	kv.GarbageCollector

	interval time.Duration
}

// Start collects garbage every interval until the context is canceled or
// collection fails.
func (gc *storeGC) Start(ctx context.Context) error {
	ticker := time.NewTicker(gc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			start := time.Now()
			if err := gc.CollectGarbage(); err != nil {
				return err
			}
			gc.V(2).Info("collected store garbage", "duration", time.Since(start))
		}
	}
}
