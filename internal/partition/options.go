package partition

import (
	"io"
	"log/slog"
)

const (
	// DefaultMaxDepth bounds recursion for near-coincident objects.
	DefaultMaxDepth = 32
	// MaxDimension keeps the per-node fan-out (2^D) allocatable.
	MaxDimension = 16
)

// Config holds construction parameters. Use the With* options rather than
// filling it directly.
type Config struct {
	Center        []float64
	Width         float64
	MaxDepth      int
	ParallelDepth int // levels whose children are built concurrently
	Logger        *slog.Logger

	widthSet bool
}

// DefaultConfig returns auto-computed bounds, DefaultMaxDepth and a serial
// build.
func DefaultConfig() *Config {
	return &Config{
		MaxDepth: DefaultMaxDepth,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option modifies a Config.
type Option func(*Config)

// WithCenter overrides the default center (mean of all positions).
func WithCenter(center []float64) Option {
	return func(c *Config) {
		c.Center = append([]float64(nil), center...)
	}
}

// WithWidth overrides the default width. Widths <= 0 are rejected by New.
func WithWidth(width float64) Option {
	return func(c *Config) {
		c.Width = width
		c.widthSet = true
	}
}

// WithRegion sets both center and width.
func WithRegion(r Region) Option {
	return func(c *Config) {
		WithCenter(r.Center)(c)
		WithWidth(r.Width)(c)
	}
}

// WithMaxDepth sets the depth at which nodes stop subdividing even when they
// still hold several objects.
func WithMaxDepth(depth int) Option {
	return func(c *Config) {
		c.MaxDepth = depth
	}
}

// WithParallelDepth builds the children of nodes shallower than depth
// concurrently. Zero builds serially.
func WithParallelDepth(depth int) Option {
	return func(c *Config) {
		c.ParallelDepth = depth
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// NewConfig applies opts to DefaultConfig.
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
