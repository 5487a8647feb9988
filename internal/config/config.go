// Package config handles configuration of the preset HTTP server.
//
// Configuration is layered, each layer overriding the one before it:
// the built in defaults, an optional TOML file, the environment and finally
// any command line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// MB is one mebibyte.
const MB = 1 << 20

// Default values.
const (
	DefaultPort            = 8787
	DefaultMaxUploadSize   = 10 * MB
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 2 * time.Minute
	DefaultShutdownTimeout = 5 * time.Second
)

// Environment variables read by [Config.ApplyEnv].
const (
	EnvPort      = "PORT"
	EnvStaticDir = "PRESET_STATIC_DIR"
)

// Config is the server configuration.
type Config struct {
	// Addr is the TCP address to listen on e.g. ":8787".
	Addr string `toml:"addr"`

	// StaticDir is an optional directory of static files (the web UI)
	// served for any non API path.
	StaticDir string `toml:"static_dir"`

	// MaxUploadSize is the maximum size in bytes of a conversion request body.
	MaxUploadSize int64 `toml:"max_upload_size"`

	// ReadTimeout is the maximum duration for reading an entire request.
	ReadTimeout time.Duration `toml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writing a response.
	WriteTimeout time.Duration `toml:"write_timeout"`

	// IdleTimeout is how long to keep idle keep-alive connections open.
	IdleTimeout time.Duration `toml:"idle_timeout"`

	// ShutdownTimeout is how long in flight requests get to finish once
	// the server is asked to stop.
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// Default returns the default [Config].
func Default() Config {
	return Config{
		Addr:            ":" + strconv.Itoa(DefaultPort),
		MaxUploadSize:   DefaultMaxUploadSize,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Load reads the TOML file at path on top of the defaults.
//
// Keys in the file that do not correspond to a config field are an error.
func Load(path string) (Config, error) {
	cfg := Default()

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config file %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}

		return Config{}, fmt.Errorf("unknown keys in config file %s: %s", path, strings.Join(keys, ", "))
	}

	return cfg, nil
}

// ApplyEnv overrides c from the environment, lookup is typically [os.LookupEnv].
//
// PORT sets the listen address to ":<port>" and PRESET_STATIC_DIR sets the static
// directory.
func (c *Config) ApplyEnv(lookup func(key string) (string, bool)) error {
	if port, ok := lookup(EnvPort); ok && port != "" {
		number, err := strconv.Atoi(port)
		if err != nil || number < 0 || number > 65535 {
			return fmt.Errorf("invalid %s %q, must be a port number", EnvPort, port)
		}

		c.Addr = ":" + port
	}

	if dir, ok := lookup(EnvStaticDir); ok && dir != "" {
		c.StaticDir = dir
	}

	return nil
}

// Validate reports whether the Config is valid, returning a non-nil
// error if it's not.
func (c Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}

	if c.MaxUploadSize <= 0 {
		errs = append(errs, fmt.Errorf("max_upload_size must be positive, got %d", c.MaxUploadSize))
	}

	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{name: "read_timeout", value: c.ReadTimeout},
		{name: "write_timeout", value: c.WriteTimeout},
		{name: "idle_timeout", value: c.IdleTimeout},
	}

	for _, timeout := range timeouts {
		if timeout.value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %s", timeout.name, timeout.value))
		}
	}

	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown_timeout must be positive, got %s", c.ShutdownTimeout))
	}

	return errors.Join(errs...)
}
