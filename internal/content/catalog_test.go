package content

import (
	"os"
	"path/filepath"
	"testing"
)

const yamlCatalog = `
songs:
  - id: "1"
    title: First Light
    lyricists: [Alice]
    composers: [Bob]
    tags: [dawn]
people: [Alice, Bob]
tags: [dusk]
`

const tomlCatalog = `
people = ["Alice"]
tags = ["dusk"]

[[songs]]
id = "1"
title = "First Light"
lyricists = ["Alice"]
composers = ["Bob"]
tags = ["dawn"]
`

const jsonCatalog = `{
  "songs": [{"id": "1", "title": "First Light", "lyricists": ["Alice"], "composers": ["Bob"], "tags": ["dawn"]}],
  "people": ["Alice"],
  "tags": ["dusk"]
}`

func TestLoadCatalogFormats(t *testing.T) {
	tests := []struct {
		file string
		body string
	}{
		{"catalog.yaml", yamlCatalog},
		{"catalog.toml", tomlCatalog},
		{"catalog.json", jsonCatalog},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}

			cat, err := LoadCatalog(path)
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if len(cat.Songs) != 1 || cat.Songs[0].Title != "First Light" {
				t.Fatalf("unexpected songs %+v", cat.Songs)
			}
			if cat.Songs[0].Composers[0] != "Bob" {
				t.Errorf("composer not decoded: %+v", cat.Songs[0])
			}
			if len(cat.Tags) != 1 || cat.Tags[0] != "dusk" {
				t.Errorf("unexpected tags %v", cat.Tags)
			}

			reg, _ := Build(cat)
			if reg.Len() != 5 {
				t.Errorf("expected 5 items, got %d", reg.Len())
			}
		})
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadCatalog(filepath.Join(dir, "catalog.csv")); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := LoadCatalog(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalog(bad); err == nil {
		t.Error("expected parse error")
	}
}
