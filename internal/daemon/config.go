package daemon

import (
	"fmt"
	"slices"
	"time"

	"github.com/leg100/todo/internal"
	"github.com/leg100/todo/internal/kv"
	"github.com/leg100/todo/internal/logr"
)

const (
	DefaultAddress    = ":8080"
	DefaultDataDir    = "~/.todod-data"
	DefaultGCInterval = 5 * time.Minute
)

// Config configures the todod daemon. Descriptions of each field can be found
// in the flag definitions in ./cmd/todod
type Config struct {
	Address              string
	Store                kv.Config
	Username             string
	Password             string
	EnableRequestLogging bool
	// GCInterval is how often the store is garbage collected. Zero disables
	// garbage collection.
	GCInterval time.Duration
	LogConfig  logr.Config
}

// NewConfig constructs a todod configuration with defaults.
func NewConfig() Config {
	return Config{
		Address: DefaultAddress,
		Store: kv.Config{
			Backend: kv.DefaultBackend,
			Path:    DefaultDataDir,
		},
		GCInterval: DefaultGCInterval,
	}
}

func (cfg *Config) Valid() error {
	if cfg.Username == "" {
		return &internal.MissingParameterError{Parameter: "basic-auth-username"}
	}
	if cfg.Password == "" {
		return &internal.MissingParameterError{Parameter: "basic-auth-password"}
	}
	if cfg.Store.Backend != "" && !slices.Contains(kv.Backends, cfg.Store.Backend) {
		return fmt.Errorf("unrecognised store backend: %s", cfg.Store.Backend)
	}
	return nil
}
