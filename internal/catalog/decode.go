package catalog

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the decoder by file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a catalog document: a list of {nome, gramaturas: [{valor,
// valor_base_lombada}]}.
func Decode(data []byte, format Format) (*Catalog, error) {
	var papers []PaperType

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &papers); err != nil {
			return nil, fmt.Errorf("decode yaml catalog: %w", err)
		}
	case FormatJSON, "":
		if err := json.Unmarshal(data, &papers); err != nil {
			return nil, fmt.Errorf("decode json catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}

	return New(papers), nil
}

// Encode is the inverse of Decode, used when exporting a catalog read from
// Postgres back to a file.
func Encode(c *Catalog, format Format) ([]byte, error) {
	papers := c.Papers()
	if papers == nil {
		papers = []PaperType{}
	}

	switch format {
	case FormatYAML:
		return yaml.Marshal(papers)
	case FormatJSON, "":
		return json.MarshalIndent(papers, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
}
