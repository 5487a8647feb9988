package preset

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.followtheprocess.codes/preset/internal/config"
	"go.followtheprocess.codes/preset/internal/server"
)

// ServeOptions are the options passed to the serve subcommand.
type ServeOptions struct {
	// Config is the path to an optional TOML config file.
	Config string

	// Addr overrides the listen address.
	Addr string

	// Static overrides the directory of static files to serve.
	Static string

	// Debug enables debug logging.
	Debug bool
}

// Serve implements the serve subcommand, running the HTTP server until ctx
// is cancelled.
func (p Preset) Serve(ctx context.Context, options ServeOptions) error {
	cfg, err := p.ServerConfig(options, os.LookupEnv)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, p.logger)
	if err != nil {
		return err
	}

	return srv.ListenAndServe(ctx)
}

// ServerConfig resolves the server configuration from the defaults, the config
// file, the environment (via lookup) and the options, in increasing order
// of precedence.
func (p Preset) ServerConfig(options ServeOptions, lookup func(key string) (string, bool)) (config.Config, error) {
	logger := p.logger.Prefixed("serve")

	cfg := config.Default()

	if options.Config != "" {
		loaded, err := config.Load(options.Config)
		if err != nil {
			return config.Config{}, err
		}

		logger.Debug("Loaded config file", slog.String("path", options.Config))

		cfg = loaded
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return config.Config{}, err
	}

	if options.Addr != "" {
		cfg.Addr = options.Addr
	}

	if options.Static != "" {
		cfg.StaticDir = options.Static
	}

	if cfg.StaticDir != "" {
		info, err := os.Stat(cfg.StaticDir)
		if err != nil {
			return config.Config{}, fmt.Errorf("could not get static directory info: %w", err)
		}

		if !info.IsDir() {
			return config.Config{}, fmt.Errorf("static path %s is not a directory", cfg.StaticDir)
		}
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid server config: %w", err)
	}

	logger.Debug("Server configuration", slog.String("config", fmt.Sprintf("%+v", cfg)))

	return cfg, nil
}
