package export

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"go.followtheprocess.codes/preset/internal/settings"
)

// TOMLExporter is an [Exporter] that dumps settings as a flat TOML document.
type TOMLExporter struct{}

// Export implements [Exporter] for [TOMLExporter] and exports the given settings
// as a complete TOML document.
//
// The TOML encoder sorts map keys so each setting is encoded on its own to keep
// the preset order.
func (t TOMLExporter) Export(w io.Writer, s *settings.Settings) error {
	encoder := toml.NewEncoder(w)
	encoder.Indent = ""

	for key, value := range s.All() {
		if err := encoder.Encode(map[string]any{key: value.Any()}); err != nil {
			return fmt.Errorf("could not encode setting %s as TOML: %w", key, err)
		}
	}

	return nil
}
