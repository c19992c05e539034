// Package http provides the HTTP server, its middleware, and an API client.
package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leg100/todo/internal"
	"github.com/leg100/todo/internal/json"
	"github.com/leg100/todo/internal/logr"
)

const (
	// shutdownTimeout is the time given for outstanding requests to finish
	// before shutdown.
	shutdownTimeout = 1 * time.Second
)

var healthzPayload = json.MustMarshal(struct {
	Version string
	Commit  string
	Built   string
}{
	Version: internal.Version,
	Commit:  internal.Commit,
	Built:   internal.Built,
})

type (
	// ServerConfig is the http server config
	ServerConfig struct {
		// Credentials required of every request.
		Username, Password string

		EnableRequestLogging bool

		Handlers []Handlers

		// Registry to register request metrics with. A new registry is
		// created if nil.
		Registry *prometheus.Registry
	}

	// Handlers is implemented by anything that adds routes to the router.
	Handlers interface {
		AddHandlers(*mux.Router)
	}

	// Server is the http server for todod
	Server struct {
		logr.Logger
		ServerConfig

		server *http.Server
	}
)

// NewServer constructs the http server for todod
func NewServer(logger logr.Logger, cfg ServerConfig) (*Server, error) {
	if cfg.Username == "" {
		return nil, &internal.MissingParameterError{Parameter: "username"}
	}
	if cfg.Password == "" {
		return nil, &internal.MissingParameterError{Parameter: "password"}
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	r := mux.NewRouter()

	// Prometheus metrics
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-type", "application/json")
		w.Write(healthzPayload)
	})

	// Add handlers for each service
	for _, h := range cfg.Handlers {
		h.AddHandlers(r)
	}

	// The middleware chain wraps the router rather than being added with
	// r.Use, so that it also applies to requests that match no route, i.e.
	// CORS preflight requests and 404s.
	var h http.Handler = r
	h = BasicAuth(cfg.Username, cfg.Password)(h)
	h = CORS()(h)
	h = newMetrics(cfg.Registry).middleware(h)

	// Optionally log every request
	if cfg.EnableRequestLogging {
		h = requestLogger(logger)(h)
	}

	// Catch panics and return 500s
	h = gorillaHandlers.RecoveryHandler(
		gorillaHandlers.PrintRecoveryStack(true),
		gorillaHandlers.RecoveryLogger(&recoveryLogger{logger}),
	)(h)

	return &Server{
		Logger:       logger,
		ServerConfig: cfg,
		server:       &http.Server{Handler: h},
	}, nil
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts serving http traffic on the given listener and waits until the server exits due to
// error or the context is cancelled.
func (s *Server) Start(ctx context.Context, ln net.Listener) (err error) {
	errch := make(chan error)

	go func() {
		errch <- s.server.Serve(ln)
	}()

	s.Info("started server", "address", ln.Addr().String())

	// Block until server stops listening or context is cancelled.
	select {
	case err := <-errch:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.Info("gracefully shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			return s.server.Close()
		}

		return nil
	}
}

// CORS permits cross-origin requests from any origin.
func CORS() func(http.Handler) http.Handler {
	cors := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
	return func(next http.Handler) http.Handler {
		preflight := cors(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only an OPTIONS request carrying an Origin is a preflight;
			// any other OPTIONS request goes through to next.
			if r.Method == http.MethodOptions && r.Header.Get("Origin") == "" {
				next.ServeHTTP(w, r)
				return
			}
			preflight.ServeHTTP(w, r)
		})
	}
}

func requestLogger(logger logr.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			logger.Info("request",
				"duration", fmt.Sprintf("%dms", m.Duration.Milliseconds()),
				"status", m.Code,
				"method", r.Method,
				"path", fmt.Sprintf("%s?%s", r.URL.Path, r.URL.RawQuery))
		})
	}
}

// recoveryLogger logs recovered panics.
type recoveryLogger struct {
	logr.Logger
}

func (l *recoveryLogger) Println(args ...any) {
	l.Error(nil, "recovered from panic", "panic", fmt.Sprint(args...))
}
