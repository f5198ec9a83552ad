// Package engineopts provides functional-options construction of the engine,
// adapted from the teacher's options.Config/Option pair: a Config struct
// with unexported fields, an Option func(*Config) error, and a WithDefaults() that backfills
// anything the caller left unset.
package engineopts

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/nsforge/formcalc/internal/logging"
	"github.com/nsforge/formcalc/vars"
)

// Config holds every constructor-time setting for an Engine.
type Config struct {
	handler          slog.Handler
	workerPoolSize   int
	variableProvider vars.Provider
}

// Option mutates a Config during construction.
type Option func(*Config) error

// WithLogger sets the slog handler the engine and its subsystems log through.
func WithLogger(handler slog.Handler) Option {
	return func(c *Config) error {
		if handler != nil {
			c.handler = handler
		}
		return nil
	}
}

// WithWorkerPoolSize sets the number of intra-layer workers. Must be >= 1.
func WithWorkerPoolSize(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("engineopts: worker pool size must be >= 1, got %d", n)
		}
		c.workerPoolSize = n
		return nil
	}
}

// WithVariableProvider registers a bulk variable source to load at
// construction time, via Engine.LoadVariables during New.
func WithVariableProvider(p vars.Provider) Option {
	return func(c *Config) error {
		c.variableProvider = p
		return nil
	}
}

// WithDefaults backfills any Config field left unset: GOMAXPROCS workers, a
// stderr/LevelWarn logging handler, and no preloaded variable provider.
func WithDefaults() Option {
	return func(c *Config) error {
		if c.handler == nil {
			c.handler = logging.Default()
		}
		if c.workerPoolSize == 0 {
			c.workerPoolSize = runtime.GOMAXPROCS(0)
		}
		return nil
	}
}

// Handler returns the configured logging handler.
func (c *Config) Handler() slog.Handler { return c.handler }

// WorkerPoolSize returns the configured worker pool size.
func (c *Config) WorkerPoolSize() int { return c.workerPoolSize }

// VariableProvider returns the configured variable provider, or nil.
func (c *Config) VariableProvider() vars.Provider { return c.variableProvider }

// Build applies opts over a fresh Config, then WithDefaults, in order.
func Build(opts ...Option) (*Config, error) {
	cfg := &Config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if err := WithDefaults()(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
