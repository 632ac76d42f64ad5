package resource

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/catalog.json
var defaultCatalog []byte

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// LoadDefault parses the catalog bundle shipped with the binary.
func LoadDefault() (*Catalog, error) {
	return Parse(defaultCatalog, FormatJSON)
}

// Load reads a catalog bundle from disk. The format follows the file
// extension (.json, .yaml, .yml).
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data, formatOf(path))
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes and validates a catalog bundle. Any violation is returned as
// a configuration error; the catalog is never partially usable.
func Parse(data []byte, format string) (*Catalog, error) {
	if format == FormatYAML {
		// YAML goes through the JSON field names so both formats share one schema.
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse catalog yaml: %w", err)
		}
		js, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert catalog yaml: %w", err)
		}
		data = js
	}

	c := &Catalog{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse catalog json: %w", err)
	}
	c.index()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}
