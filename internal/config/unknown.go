package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// LoadWithWarnings parses config data and returns any unknown field warnings.
func LoadWithWarnings(data []byte) (*Config, []string, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Detect unknown fields
	warnings := detectUnknownFields(data)

	return &cfg, warnings, nil
}

// detectUnknownFields compares raw JSON with known struct fields.
// Note: Since this is called after successful Config parsing, a parse failure
// here would indicate an unexpected internal inconsistency.
func detectUnknownFields(data []byte) []string {
	var warnings []string

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// This should never happen since the data was already parsed successfully.
		// Return a warning so the condition is visible rather than silently ignored.
		return []string{"internal: failed to re-parse config for unknown field detection"}
	}

	knownTopLevel := getJSONFields(reflect.TypeOf(Config{}))
	for key := range raw {
		if key == "$schema" {
			continue // $schema is explicitly allowed and ignored
		}
		if !knownTopLevel[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q at root level (ignored)", key))
		}
	}

	warnings = append(warnings, checkNestedUnknownFields(raw, "layout", reflect.TypeOf(LayoutConfig{}))...)
	warnings = append(warnings, checkNestedUnknownFields(raw, "reports", reflect.TypeOf(ReportsConfig{}))...)
	warnings = append(warnings, checkNestedUnknownFields(raw, "project", reflect.TypeOf(ProjectConfig{}))...)

	return warnings
}

// checkNestedUnknownFields reports unknown keys inside a nested config object.
func checkNestedUnknownFields(raw map[string]json.RawMessage, section string, t reflect.Type) []string {
	sectionRaw, ok := raw[section]
	if !ok {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(sectionRaw, &fields); err != nil {
		// Should not happen since the section parsed successfully.
		return []string{fmt.Sprintf("internal: failed to re-parse %q for unknown field detection", section)}
	}

	known := getJSONFields(t)
	var warnings []string
	for key := range fields {
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q in %q (ignored)", key, section))
		}
	}
	return warnings
}

// getJSONFields returns a map of known JSON field names for a struct type.
func getJSONFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		// Extract field name from tag (before comma)
		name := strings.Split(tag, ",")[0]
		if name != "" {
			fields[name] = true
		}
	}
	return fields
}
