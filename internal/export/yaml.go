package export

import (
	"fmt"
	"io"

	"go.followtheprocess.codes/preset/internal/settings"
	"go.yaml.in/yaml/v4"
)

const yamlIndent = 2

// YAMLExporter is an [Exporter] that dumps settings as a YAML mapping.
type YAMLExporter struct{}

// Export implements [Exporter] for [YAMLExporter] and exports the given settings as
// a complete YAML document.
func (y YAMLExporter) Export(w io.Writer, s *settings.Settings) error {
	node, err := yamlMapping(s)
	if err != nil {
		return err
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(yamlIndent)

	if err := encoder.Encode(node); err != nil {
		return fmt.Errorf("could not encode YAML: %w", err)
	}

	return encoder.Close()
}

// yamlMapping builds a mapping node from s, a node rather than a map so the
// keys stay in preset order.
func yamlMapping(s *settings.Settings) (*yaml.Node, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for key, value := range s.All() {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}

		valueNode := &yaml.Node{}
		if err := valueNode.Encode(value.Any()); err != nil {
			return nil, fmt.Errorf("could not encode setting %s as YAML: %w", key, err)
		}

		mapping.Content = append(mapping.Content, keyNode, valueNode)
	}

	return mapping, nil
}
