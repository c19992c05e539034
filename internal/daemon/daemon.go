// Package daemon configures and starts the todod daemon and its subsystems.
package daemon

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/leg100/todo/internal/http"
	"github.com/leg100/todo/internal/kv"
	"github.com/leg100/todo/internal/logr"
	"github.com/leg100/todo/internal/todo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

type (
	Daemon struct {
		Config
		logr.Logger

		Todos *todo.Service

		// ListenAddress is the listening address of the daemon's http server,
		// only populated once the daemon has started.
		ListenAddress *net.TCPAddr

		store    kv.Store
		registry *prometheus.Registry
		restarts *prometheus.CounterVec
		handlers []http.Handlers
	}
)

// New builds a new daemon and establishes a connection to the store. The
// store is closed when the daemon is started and subsequently stops.
func New(logger logr.Logger, cfg Config) (*Daemon, error) {
	if err := cfg.Valid(); err != nil {
		return nil, err
	}

	if cfg.Store.Backend != kv.MemoryBackend {
		path, err := expandHome(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		cfg.Store.Path = path
	}
	store, err := kv.Open(logger, cfg.Store)
	if err != nil {
		return nil, err
	}

	todoService := todo.NewService(todo.Options{
		Logger: logger.WithValues("component", "todos"),
		Store:  store,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Daemon{
		Config:   cfg,
		Logger:   logger,
		Todos:    todoService,
		store:    store,
		registry: registry,
		restarts: newRestartsCounter(registry),
		handlers: []http.Handlers{todoService},
	}, nil
}

// Start the todod daemon and block until ctx is cancelled or an error is
// returned. The started channel is closed once the daemon has started.
func (d *Daemon) Start(ctx context.Context, started chan struct{}) error {
	// Cancel context the first time a func started with g.Go() fails
	g, ctx := errgroup.WithContext(ctx)

	// close the store upon exit, once the http server has finished with it
	defer func() {
		if err := d.store.Close(); err != nil {
			d.Error(err, "closing store")
		}
	}()

	// Construct web server and start listening on port
	server, err := http.NewServer(d.Logger, http.ServerConfig{
		Username:             d.Username,
		Password:             d.Password,
		EnableRequestLogging: d.EnableRequestLogging,
		Handlers:             d.handlers,
		Registry:             d.registry,
	})
	if err != nil {
		return fmt.Errorf("setting up http server: %w", err)
	}
	ln, err := net.Listen("tcp", d.Address)
	if err != nil {
		return err
	}
	d.ListenAddress = ln.Addr().(*net.TCPAddr)

	defer ln.Close()

	var subsystems []*Subsystem
	if gc, ok := d.store.(kv.GarbageCollector); ok && d.GCInterval > 0 {
		subsystems = append(subsystems, &Subsystem{
			Name:     "store-gc",
			Logger:   d.Logger,
			Restarts: d.restarts.WithLabelValues("store-gc"),
			System: &storeGC{
				Logger:           d.Logger.WithValues("component", "store-gc"),
				GarbageCollector: gc,
				interval:         d.GCInterval,
			},
		})
	}
	for _, ss := range subsystems {
		if err := ss.Start(ctx, g); err != nil {
			return err
		}
	}

	// Run HTTP/JSON-API server
	g.Go(func() error {
		if err := server.Start(ctx, ln); err != nil {
			return fmt.Errorf("http server terminated: %w", err)
		}
		return nil
	})

	// Inform the caller the daemon has started
	close(started)

	// Block until error or Ctrl-C received.
	return g.Wait()
}

// expandHome replaces a leading ~ in path with the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding data directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
