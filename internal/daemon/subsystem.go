package daemon

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/leg100/todo/internal/logr"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// maxRestartInterval caps the wait between restarts of a failing subsystem.
const maxRestartInterval = time.Minute

type (
	// Subsystem is a long-running process supervised by todod. A subsystem
	// that fails is restarted, with exponential backoff, until the daemon
	// stops.
	Subsystem struct {
		Name   string
		System Startable
		// Restarts, if non-nil, is incremented upon every restart.
		Restarts prometheus.Counter
		logr.Logger
	}

	Startable interface {
		Start(ctx context.Context) error
	}
)

// newRestartsCounter constructs a counter of subsystem restarts, labelled by
// subsystem name.
func newRestartsCounter(reg prometheus.Registerer) *prometheus.CounterVec {
	restarts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "todod",
		Subsystem: "subsystem",
		Name:      "restarts_total",
		Help:      "Total number of restarts of failed subsystems.",
	}, []string{"name"})
	reg.MustRegister(restarts)
	return restarts
}

// Start runs the subsystem in the errgroup. A subsystem that returns because
// ctx was canceled is considered to have shut down gracefully.
func (s *Subsystem) Start(ctx context.Context, g *errgroup.Group) error {
	op := func() error {
		s.V(1).Info("started subsystem", "name", s.Name)
		err := s.System.Start(ctx)
		if ctx.Err() != nil {
			s.V(1).Info("gracefully shutdown subsystem", "name", s.Name)
			return nil
		}
		return err
	}
	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(0),
		backoff.WithMaxInterval(maxRestartInterval),
	), ctx)
	g.Go(func() error {
		return backoff.RetryNotify(op, policy, func(err error, next time.Duration) {
			s.Error(err, "restarting subsystem", "name", s.Name, "backoff", next)
			if s.Restarts != nil {
				s.Restarts.Inc()
			}
		})
	})
	return nil
}
