// Package preset implements the functionality of the program, the CLI in package cmd is simply the
// entrypoint to exported functions and methods in this package.
package preset

import (
	"fmt"
	"io"
	"os"

	"go.followtheprocess.codes/log"
	"go.followtheprocess.codes/preset/internal/convert"
	"go.followtheprocess.codes/preset/internal/format"
	"go.followtheprocess.codes/preset/internal/settings"
)

// Preset represents the preset program.
type Preset struct {
	stdout    io.Writer         // Normal program output is written here
	stderr    io.Writer         // Logs and errors are written here
	logger    *log.Logger       // The logger for the application
	converter convert.Converter // Performs the conversions
}

// New returns a new [Preset].
func New(debug bool, stdout, stderr io.Writer) Preset {
	level := log.LevelInfo
	if debug {
		level = log.LevelDebug
	}

	logger := log.New(stderr, log.WithLevel(level), log.Prefix("preset"))

	return Preset{
		stdout:    stdout,
		stderr:    stderr,
		logger:    logger,
		converter: convert.New(),
	}
}

// readPreset reads the file at path and detects its format.
//
// An undetectable format is an error.
func readPreset(path string) ([]byte, format.Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, format.Unsupported, fmt.Errorf("could not read %s: %w", path, err)
	}

	detected := format.Detect(path, data)
	if detected == format.Unsupported {
		return nil, format.Unsupported, fmt.Errorf("unsupported input file: %s", path)
	}

	return data, detected, nil
}

// parsePreset reads the file at path and parses its settings.
func parsePreset(path string) (*settings.Settings, format.Format, error) {
	data, detected, err := readPreset(path)
	if err != nil {
		return nil, format.Unsupported, err
	}

	parsed, err := convert.Parse(detected, data)
	if err != nil {
		return nil, format.Unsupported, fmt.Errorf("could not parse %s: %w", path, err)
	}

	return parsed, detected, nil
}
