package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// ChunkPolicy is the window size and overlap, counted in runes.
type ChunkPolicy struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// DestinationTables holds the gazetteer and the city->country resolution map.
// All entries are lowercase.
type DestinationTables struct {
	Cities      []string          `yaml:"cities"`
	Countries   []string          `yaml:"countries"`
	CityCountry map[string]string `yaml:"city_country"`
}

// Tables is the static knowledge configuration the engine receives as data.
type Tables struct {
	Destinations DestinationTables      `yaml:"destinations"`
	Chunking     map[string]ChunkPolicy `yaml:"chunking"`
}

// LoadTables reads the knowledge tables from path, falling back to the
// embedded defaults when path is empty or the file does not exist.
func LoadTables(path string) (Tables, error) {
	data := defaultTables
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Tables{}, fmt.Errorf("read tables %s: %w", path, err)
			}
		} else {
			data = b
		}
	}

	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("parse tables: %w", err)
	}
	t.normalize()
	return t, nil
}

// PolicyFor returns the chunk window policy for a document type, falling
// back to the "default" entry.
func (t Tables) PolicyFor(docType string) ChunkPolicy {
	if p, ok := t.Chunking[docType]; ok {
		return p.normalized()
	}
	return t.Chunking["default"].normalized()
}

func (t *Tables) normalize() {
	if t.Chunking == nil {
		t.Chunking = map[string]ChunkPolicy{}
	}
	if _, ok := t.Chunking["default"]; !ok {
		t.Chunking["default"] = ChunkPolicy{Size: 800, Overlap: 150}
	}
	if t.Destinations.CityCountry == nil {
		t.Destinations.CityCountry = map[string]string{}
	}
}

func (p ChunkPolicy) normalized() ChunkPolicy {
	if p.Size <= 0 {
		p.Size = 800
	}
	if p.Overlap < 0 {
		p.Overlap = 0
	}
	if p.Overlap >= p.Size {
		p.Overlap = p.Size / 4
	}
	return p
}
