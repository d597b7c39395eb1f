package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Catalog is one snapshot supplied by the catalog provider.
type Catalog struct {
	Songs  []SongRecord `json:"songs" yaml:"songs" toml:"songs"`
	People []string     `json:"people" yaml:"people" toml:"people"`
	Tags   []string     `json:"tags" yaml:"tags" toml:"tags"`
}

type SongRecord struct {
	ID        string   `json:"id" yaml:"id" toml:"id"`
	Title     string   `json:"title" yaml:"title" toml:"title"`
	Lyricists []string `json:"lyricists" yaml:"lyricists" toml:"lyricists"`
	Composers []string `json:"composers" yaml:"composers" toml:"composers"`
	Arrangers []string `json:"arrangers" yaml:"arrangers" toml:"arrangers"`
	Tags      []string `json:"tags" yaml:"tags" toml:"tags"`
}

// Format names a catalog encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("content: unsupported catalog extension %q", filepath.Ext(path))
}

// LoadCatalog reads a catalog file, choosing the decoder by extension.
func LoadCatalog(path string) (Catalog, error) {
	format, err := FormatFor(path)
	if err != nil {
		return Catalog{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseCatalog(data, format)
}

func ParseCatalog(data []byte, format Format) (Catalog, error) {
	var cat Catalog
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &cat)
	case FormatYAML:
		err = yaml.Unmarshal(data, &cat)
	case FormatTOML:
		err = toml.Unmarshal(data, &cat)
	default:
		return Catalog{}, fmt.Errorf("content: unknown catalog format %q", format)
	}
	if err != nil {
		return Catalog{}, fmt.Errorf("parsing %s catalog: %w", format, err)
	}
	return cat, nil
}
