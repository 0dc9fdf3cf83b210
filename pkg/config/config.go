// Package config loads webby.toml project configuration.
//
// Configuration is optional. Every setting has a built-in default, the CLI
// flags override whatever the file provides, and a missing file is not an
// error when discovery is used.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/benilovj/webby/pkg/errors"
	"github.com/benilovj/webby/pkg/transpile"
)

// FileName is the configuration file webby looks for in the working directory.
const FileName = "webby.toml"

// Duration wraps time.Duration so TOML values can be written as strings
// like "30s" or "1m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config holds the settings loaded from a webby.toml file.
type Config struct {
	// OutputDir is the directory rendered images are written under.
	OutputDir string `toml:"output_dir"`

	// Filters names the downstream text filters documents pass through.
	Filters []string `toml:"filters"`

	Render Render `toml:"render"`
	Serve  Serve  `toml:"serve"`
}

// Render holds renderer invocation settings.
type Render struct {
	// Timeout bounds each renderer invocation. Zero disables the limit.
	Timeout Duration `toml:"timeout"`
}

// Serve holds HTTP server settings.
type Serve struct {
	// Addr is the listen address for webby serve.
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Serve: Serve{Addr: ":8080"},
	}
}

// Load reads and validates a configuration file.
// A missing file is reported with a FILE_NOT_FOUND code so callers can make
// it optional.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInternal, err, "read config file %s", path)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Discover loads webby.toml from dir when present, falling back to defaults.
func Discover(dir string) (Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// TranspileOptions maps the configuration onto transpilation options.
func (c Config) TranspileOptions() transpile.Options {
	return transpile.Options{
		OutputRoot: c.OutputDir,
		Filters:    c.Filters,
		Timeout:    c.Render.Timeout.Duration,
	}
}

func (c Config) validate() error {
	if c.OutputDir != "" {
		if err := errors.ValidateOutputRoot(c.OutputDir); err != nil {
			return err
		}
	}
	if err := errors.ValidateFilterNames(c.Filters); err != nil {
		return err
	}
	if c.Render.Timeout.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.timeout must not be negative, got %s", c.Render.Timeout.Duration)
	}
	return nil
}
