package ghcselect

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"github.com/albertocavalcante/go-ghcselect/constraints"
	"github.com/albertocavalcante/go-ghcselect/finalize"
	"github.com/albertocavalcante/go-ghcselect/manifest"
)

// Option configures a Resolver.
type Option func(*resolverConfig) error

// resolverConfig holds all resolution configuration.
type resolverConfig struct {
	libraries   constraints.Libraries
	finalizer   finalize.Finalizer
	platform    manifest.Platform
	components  finalize.Components
	concurrency int
	fixedPoint  bool
	cacheSize   int

	// logger is the structured logger for debug/info output.
	// If nil, logging is disabled (silent mode).
	logger *slog.Logger
}

// DefaultOptions returns the options a Resolver uses when none are given.
func DefaultOptions() []Option {
	return []Option{
		WithLibraries(constraints.DefaultLibraries()),
		WithPlatform(HostPlatform()),
		WithComponents(finalize.AllComponents()),
		WithConcurrency(runtime.GOMAXPROCS(0)),
		WithFixedPointCheck(true),
		WithCacheSize(finalize.DefaultCacheSize),
	}
}

// WithLogger sets a structured logger for resolution diagnostics.
// If not set, logging is disabled (silent mode).
//
// Dropped candidates are logged at debug level and the final choice at
// info level.
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "ghcselect")
//	r, err := ghcselect.NewResolver(rc, ghcselect.WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *resolverConfig) error {
		c.logger = l
		return nil
	}
}

// WithLibraries sets the names of the bundled base and setup libraries.
func WithLibraries(libs constraints.Libraries) Option {
	return func(c *resolverConfig) error {
		c.libraries = libs
		return nil
	}
}

// WithFinalizer replaces the manifest finalizer.
func WithFinalizer(f finalize.Finalizer) Option {
	return func(c *resolverConfig) error {
		c.finalizer = f
		return nil
	}
}

// WithPlatform sets the target platform conditionals are evaluated for.
func WithPlatform(p manifest.Platform) Option {
	return func(c *resolverConfig) error {
		c.platform = p
		return nil
	}
}

// WithComponents selects whether test suites and benchmarks constrain the
// compiler.
func WithComponents(comp finalize.Components) Option {
	return func(c *resolverConfig) error {
		c.components = comp
		return nil
	}
}

// WithConcurrency bounds the number of candidates evaluated at once.
func WithConcurrency(n int) Option {
	return func(c *resolverConfig) error {
		c.concurrency = n
		return nil
	}
}

// WithFixedPointCheck enables or disables the fixed-point check. When
// enabled, a compiler found under another compiler's hypothesis is kept only
// if finalizing the manifest against that compiler itself accepts it.
func WithFixedPointCheck(enabled bool) Option {
	return func(c *resolverConfig) error {
		c.fixedPoint = enabled
		return nil
	}
}

// WithCacheSize sets how many finalizations are memoized. Zero disables
// the cache.
func WithCacheSize(n int) Option {
	return func(c *resolverConfig) error {
		c.cacheSize = n
		return nil
	}
}

// validate checks the configuration for logical consistency.
func (c *resolverConfig) validate() error {
	if c.libraries.Base == "" || c.libraries.Setup == "" {
		return errors.New("bundled library names must not be empty")
	}
	if c.finalizer == nil {
		return errors.New("finalizer must not be nil")
	}
	if c.concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}
	if c.cacheSize < 0 {
		return errors.New("cache size must not be negative")
	}
	return nil
}

// log returns the configured logger, or a no-op logger if none was set.
func (c *resolverConfig) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(discardHandler{})
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// newResolverConfig applies opts over the defaults and validates the result.
func newResolverConfig(opts ...Option) (*resolverConfig, error) {
	c := &resolverConfig{finalizer: finalize.Default}
	for _, opt := range append(DefaultOptions(), opts...) {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// HostPlatform returns the platform of the running process, spelled the way
// manifests spell it.
func HostPlatform() manifest.Platform {
	os := runtime.GOOS
	if os == "darwin" {
		os = "osx"
	}
	arch := runtime.GOARCH
	switch arch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	case "386":
		arch = "i386"
	}
	return manifest.Platform{OS: os, Arch: arch}
}
