// Package config provides configuration loading and validation for config.json.
package config

import "github.com/monoctl/monoctl/internal/unit"

// Config represents the complete .monoctl/config.json configuration.
// Every field is optional; a missing config file yields Default().
type Config struct {
	Project      ProjectConfig     `json:"project,omitempty"`
	Layout       *LayoutConfig     `json:"layout,omitempty"`
	Repositories []string          `json:"repositories,omitempty"`
	Commands     map[string]string `json:"commands,omitempty"`
	Reports      *ReportsConfig    `json:"reports,omitempty"`
	Concurrency  int               `json:"concurrency,omitempty"`
	TimeoutSec   int               `json:"timeout_sec,omitempty"`
}

// ProjectConfig contains project metadata.
type ProjectConfig struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// LayoutConfig configures the directory conventions used for
// classification and manifest regeneration.
type LayoutConfig struct {
	WebRoot       string `json:"web_root,omitempty"`
	FunctionsRoot string `json:"functions_root,omitempty"`
	Marker        string `json:"marker,omitempty"`
}

// ReportsConfig configures artifact locations for report aggregation.
// TestResults and Coverage are unit-relative; OutputDir is root-relative.
type ReportsConfig struct {
	OutputDir   string `json:"output_dir,omitempty"`
	TestResults string `json:"test_results,omitempty"`
	Coverage    string `json:"coverage,omitempty"`
}

// UnitLayout converts the configured layout to the unit package's form.
func (c *Config) UnitLayout() unit.Layout {
	layout := unit.DefaultLayout()
	if c.Layout == nil {
		return layout
	}
	if c.Layout.WebRoot != "" {
		layout.WebRoot = c.Layout.WebRoot
	}
	if c.Layout.FunctionsRoot != "" {
		layout.FunctionsRoot = c.Layout.FunctionsRoot
	}
	if c.Layout.Marker != "" {
		layout.Marker = c.Layout.Marker
	}
	return layout
}
