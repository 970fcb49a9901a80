package factor

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a factor model override
type File struct {
	Betas     []FileEntry `yaml:"betas"`
	Scenarios []FileEntry `yaml:"scenarios"`
}

// FileEntry is one named 7-factor vector
type FileEntry struct {
	ID     string    `yaml:"id"`
	Vector []float64 `yaml:"vector"`
}

// ValidationError reports the offending field of a model file
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads a factor model from a YAML file.
// Unknown keys fail the decode so typos never silently fall back to defaults.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read factor model: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML factor model
func Parse(data []byte) (*Model, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode factor model: %w", err)
	}

	betas, err := toEntries("betas", f.Betas)
	if err != nil {
		return nil, err
	}
	scenarios, err := toEntries("scenarios", f.Scenarios)
	if err != nil {
		return nil, err
	}
	if len(betas) == 0 {
		return nil, ValidationError{"betas", "at least one asset required"}
	}
	if len(scenarios) == 0 {
		return nil, ValidationError{"scenarios", "at least one scenario required"}
	}

	return New(betas, scenarios)
}

func toEntries(field string, in []FileEntry) ([]Entry, error) {
	out := make([]Entry, 0, len(in))
	for i, e := range in {
		if e.ID == "" {
			return nil, ValidationError{fmt.Sprintf("%s[%d].id", field, i), "required"}
		}
		if len(e.Vector) != NumFactors {
			return nil, ValidationError{
				fmt.Sprintf("%s[%d].vector", field, i),
				fmt.Sprintf("must have %d factors, got %d", NumFactors, len(e.Vector)),
			}
		}
		var v Vector
		copy(v[:], e.Vector)
		out = append(out, Entry{ID: e.ID, Vector: v})
	}
	return out, nil
}
