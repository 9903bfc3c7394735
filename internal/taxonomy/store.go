package taxonomy

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNotFound indicates no taxonomy document exists yet. Labeling
// cannot run until analysis has produced one.
var ErrNotFound = errors.New("no taxonomy found")

// Exists reports whether a taxonomy document is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Load reads and validates the persisted taxonomy document. The
// document is human-editable YAML; edits that break the schema are
// surfaced as errors rather than silently coerced.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s; run analyze first", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read taxonomy: %w", err)
	}

	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy at %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("taxonomy at %s is invalid: %w", path, err)
	}
	return &t, nil
}

// Save persists the taxonomy as a full overwrite of the document at
// path. There are no partial or append writes.
func Save(path string, t *Taxonomy) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("refusing to persist invalid taxonomy: %w", err)
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode taxonomy: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write taxonomy: %w", err)
	}
	return nil
}
