package preset

import (
	"fmt"
	"log/slog"

	"go.followtheprocess.codes/preset/internal/export"
)

// InspectOptions are the options passed to the inspect subcommand.
type InspectOptions struct {
	// Format is the format the settings are dumped in e.g. json, yaml or toml.
	Format string

	// Debug enables debug logging.
	Debug bool
}

// Validate reports whether the InspectOptions is valid, returning a non-nil
// error if it's not.
func (i InspectOptions) Validate() error {
	if _, err := export.ByName(i.Format); err != nil {
		return fmt.Errorf("invalid option for --format: %w", err)
	}

	return nil
}

// Inspect implements the inspect subcommand, dumping the settings parsed
// from file.
func (p Preset) Inspect(file string, options InspectOptions) error {
	logger := p.logger.Prefixed("inspect").With(slog.String("file", file))

	if err := options.Validate(); err != nil {
		return err
	}

	exporter, err := export.ByName(options.Format)
	if err != nil {
		return err
	}

	parsed, detected, err := parsePreset(file)
	if err != nil {
		return err
	}

	logger.Debug(
		"Parsed preset",
		slog.String("format", detected.String()),
		slog.Int("settings", parsed.Len()),
	)

	if err := exporter.Export(p.stdout, parsed); err != nil {
		return fmt.Errorf("could not export settings as %s: %w", options.Format, err)
	}

	return nil
}
