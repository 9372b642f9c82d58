package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModelEntry is one named model: a triangle mesh plus how to draw it.
// Vertices is a flat xyz list; Indices are counter-clockwise triangles.
type ModelEntry struct {
	Name     string    `yaml:"name"`
	Glyph    string    `yaml:"glyph"`
	Color    string    `yaml:"color"`
	Vertices []float32 `yaml:"vertices"`
	Indices  []uint32  `yaml:"indices"`
}

// ModelTable provides lookup of models by name.
type ModelTable struct {
	models map[string]*ModelEntry
	order  []string
}

// LoadModelTable loads models.yaml.
func LoadModelTable(path string) (*ModelTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model list: %w", err)
	}
	return ParseModelTable(raw)
}

// ParseModelTable parses the models.yaml document.
func ParseModelTable(raw []byte) (*ModelTable, error) {
	var entries []ModelEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse model list: %w", err)
	}
	t := &ModelTable{
		models: make(map[string]*ModelEntry, len(entries)),
		order:  make([]string, 0, len(entries)),
	}
	for i := range entries {
		e := &entries[i]
		if e.Name == "" {
			return nil, fmt.Errorf("parse model list: entry %d has no name", i)
		}
		if _, dup := t.models[e.Name]; dup {
			return nil, fmt.Errorf("parse model list: duplicate model %q", e.Name)
		}
		t.models[e.Name] = e
		t.order = append(t.order, e.Name)
	}
	return t, nil
}

// Get returns the named model, or nil if none.
func (t *ModelTable) Get(name string) *ModelEntry {
	return t.models[name]
}

// Names returns model names in file order.
func (t *ModelTable) Names() []string {
	return t.order
}

// Count returns the total number of models loaded.
func (t *ModelTable) Count() int {
	return len(t.models)
}
