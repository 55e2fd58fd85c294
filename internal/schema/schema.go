// Package schema loads the essential-check list and classification banding
// that drive the inspection form. Scored characteristics come from the catalog.
package schema

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abrezinsky/revista/pkg/scoring"
)

//go:embed default.yaml
var defaultYAML []byte

// File is the on-disk shape of an inspection schema.
type File struct {
	Name        string                   `yaml:"name" json:"name"`
	Version     int                      `yaml:"version" json:"version"`
	Description string                   `yaml:"description" json:"description"`
	Essential   []scoring.EssentialCheck `yaml:"essential" json:"essential"`
	Banding     scoring.Banding          `yaml:"banding" json:"banding"`
}

// Parse decodes and validates a schema document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("schema.Parse: %w", err)
	}
	if len(f.Essential) == 0 {
		return nil, fmt.Errorf("schema.Parse: no essential checks defined")
	}
	if err := f.With(nil).Validate(); err != nil {
		return nil, fmt.Errorf("schema.Parse: %w", err)
	}
	return &f, nil
}

// Default returns the embedded schema.
func Default() *File {
	f, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded schema is invalid: %v", err))
	}
	return f
}

// DefaultYAML returns the embedded schema document.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

// Load reads a schema file. An empty path returns the embedded default.
func Load(path string) (*File, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema.Load: %w", err)
	}
	return Parse(data)
}

// With combines the file with catalog characteristics into an engine schema.
func (f *File) With(scored []scoring.ScoredCharacteristic) scoring.Schema {
	return scoring.Schema{
		Essential: f.Essential,
		Scored:    scored,
		Banding:   f.Banding,
	}
}

// Marshal renders the file back to YAML.
func (f *File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}
