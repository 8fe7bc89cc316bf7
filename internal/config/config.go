// Package config loads ghcselect settings from a TOML file, a .env file and
// GHCSELECT_* environment variables, in increasing order of precedence.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	ghcselect "github.com/albertocavalcante/go-ghcselect"
	"github.com/albertocavalcante/go-ghcselect/catalog"
	"github.com/albertocavalcante/go-ghcselect/constraints"
	"github.com/albertocavalcante/go-ghcselect/finalize"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "ghcselect.toml"

// Config is the merged configuration.
type Config struct {
	// Catalog is a path or http(s) URL of a catalog document. Empty means
	// the built-in catalog.
	Catalog string `toml:"catalog"`

	Installed    []string `toml:"installed"`
	InstalledDir string   `toml:"installed_dir"`

	AlwaysNewest bool   `toml:"always_newest"`
	Flags        string `toml:"flags"`

	// FixedPoint defaults to true when unset.
	FixedPoint     *bool `toml:"fixed_point"`
	SkipTests      bool  `toml:"skip_tests"`
	SkipBenchmarks bool  `toml:"skip_benchmarks"`
	Concurrency    int   `toml:"concurrency"`

	Platform  Platform  `toml:"platform"`
	Libraries Libraries `toml:"libraries"`

	LogLevel string `toml:"log_level"`
}

// Platform overrides the host platform. Empty fields keep the host value.
type Platform struct {
	OS   string `toml:"os"`
	Arch string `toml:"arch"`
}

// Libraries overrides the bundled library names.
type Libraries struct {
	Base  string `toml:"base"`
	Setup string `toml:"setup"`
}

// Load reads the TOML file at path, then the given .env files (".env" when
// none are given), then the environment. An empty path reads DefaultFile if
// it exists; an explicit path must exist.
func Load(path string, envFiles ...string) (*Config, error) {
	c := &Config{}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, c); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	_ = godotenv.Load(envFiles...)
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return c, nil
}

func decode(data []byte, c *Config) error {
	return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(c)
}

// applyEnv overrides fields from GHCSELECT_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("GHCSELECT_CATALOG", &c.Catalog)
	str("GHCSELECT_INSTALLED_DIR", &c.InstalledDir)
	str("GHCSELECT_FLAGS", &c.Flags)
	str("GHCSELECT_LOG_LEVEL", &c.LogLevel)
	if v, ok := lookup("GHCSELECT_INSTALLED"); ok {
		c.Installed = splitList(v)
	}
	if err := boolean("GHCSELECT_ALWAYS_NEWEST", &c.AlwaysNewest); err != nil {
		return err
	}
	if v, ok := lookup("GHCSELECT_FIXED_POINT"); ok && strings.TrimSpace(v) != "" {
		var b bool
		if err := boolean("GHCSELECT_FIXED_POINT", &b); err != nil {
			return err
		}
		c.FixedPoint = &b
	}
	if v, ok := lookup("GHCSELECT_CONCURRENCY"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid GHCSELECT_CONCURRENCY: %w", err)
		}
		c.Concurrency = n
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Options converts the configuration into resolver options.
func (c *Config) Options(logger *slog.Logger) []ghcselect.Option {
	opts := []ghcselect.Option{ghcselect.WithLogger(logger)}

	if c.FixedPoint != nil {
		opts = append(opts, ghcselect.WithFixedPointCheck(*c.FixedPoint))
	}
	if c.Concurrency != 0 {
		opts = append(opts, ghcselect.WithConcurrency(c.Concurrency))
	}
	if c.SkipTests || c.SkipBenchmarks {
		opts = append(opts, ghcselect.WithComponents(finalize.Components{
			Tests:      !c.SkipTests,
			Benchmarks: !c.SkipBenchmarks,
		}))
	}
	if c.Platform != (Platform{}) {
		p := ghcselect.HostPlatform()
		if c.Platform.OS != "" {
			p.OS = c.Platform.OS
		}
		if c.Platform.Arch != "" {
			p.Arch = c.Platform.Arch
		}
		opts = append(opts, ghcselect.WithPlatform(p))
	}
	if c.Libraries != (Libraries{}) {
		libs := constraints.DefaultLibraries()
		if c.Libraries.Base != "" {
			libs.Base = c.Libraries.Base
		}
		if c.Libraries.Setup != "" {
			libs.Setup = c.Libraries.Setup
		}
		opts = append(opts, ghcselect.WithLibraries(libs))
	}
	return opts
}

// Level parses LogLevel. An empty level is slog.LevelWarn.
func (c *Config) Level() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// LoadCatalog loads the configured catalog.
func (c *Config) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	switch {
	case c.Catalog == "":
		return catalog.Default(), nil
	case strings.HasPrefix(c.Catalog, "http://"), strings.HasPrefix(c.Catalog, "https://"):
		return catalog.Fetch(ctx, c.Catalog)
	default:
		return catalog.LoadFile(c.Catalog)
	}
}
