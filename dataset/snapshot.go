package dataset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a fixture snapshot from a YAML file.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture file: %w", err)
	}

	var d Dataset
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse fixture file: %w", err)
	}

	return &d, nil
}

// Save writes a fixture snapshot to a YAML file.
func Save(d *Dataset, path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture file: %w", err)
	}

	return nil
}
