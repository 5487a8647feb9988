// Package export provides mechanisms for dumping parsed preset settings into
// general purpose data formats for inspection.
//
// Notably, the package provides the [Exporter] interface for doing this in a
// format-agnostic way, along with the built in JSON, YAML and TOML exporters.
//
// Every exporter writes the settings in the order they appeared in the preset.
package export

import (
	"fmt"
	"io"
	"strings"

	"go.followtheprocess.codes/preset/internal/settings"
)

// Exporter is the interface defining a mechanism for exporting preset settings
// into an external format.
type Exporter interface {
	// Export exports the settings into an external format, written to w.
	Export(w io.Writer, s *settings.Settings) error
}

// Names returns the names of all the built in exporters.
func Names() []string {
	return []string{"json", "yaml", "toml"}
}

// ByName returns the built in [Exporter] called name.
func ByName(name string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSONExporter{}, nil
	case "yaml", "yml":
		return YAMLExporter{}, nil
	case "toml":
		return TOMLExporter{}, nil
	default:
		return nil, fmt.Errorf("invalid export format %q, allowed values are 'json', 'yaml', 'toml'", name)
	}
}
