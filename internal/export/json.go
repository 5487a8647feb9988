package export

import (
	"encoding/json"
	"io"

	"go.followtheprocess.codes/preset/internal/settings"
)

// JSONExporter is an [Exporter] that dumps settings as a JSON object.
type JSONExporter struct{}

// Export implements [Exporter] for [JSONExporter] and exports the given settings
// as a complete JSON document.
func (j JSONExporter) Export(w io.Writer, s *settings.Settings) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(s)
}
