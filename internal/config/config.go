package config

import (
	"fmt"
	"os"

	"github.com/monoctl/monoctl/internal/schema"
)

// LoadAndValidate reads a config file, checks it against the embedded
// JSON schema, applies defaults, validates, and returns warnings.
// A missing file is not an error: the default configuration is returned.
func LoadAndValidate(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := schema.ValidateConfig(data); err != nil {
		return nil, nil, err
	}

	cfg, unknownWarnings, err := LoadWithWarnings(data)
	if err != nil {
		return nil, nil, err
	}

	applyDefaults(cfg)

	validationWarnings, err := Validate(cfg)

	// Combine warnings from both sources.
	allWarnings := make([]string, 0, len(unknownWarnings)+len(validationWarnings))
	allWarnings = append(allWarnings, unknownWarnings...)
	allWarnings = append(allWarnings, validationWarnings...)

	if err != nil {
		return nil, allWarnings, err
	}

	return cfg, allWarnings, nil
}
