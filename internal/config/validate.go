package config

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// projectNamePattern: must start with a lowercase letter, may contain
// lowercase letters, digits, and non-consecutive, non-trailing hyphens.
var projectNamePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// maxConcurrency caps the worker pool. Beyond this, goroutine scheduling
// overhead outweighs any benefit for subprocess-bound work.
const maxConcurrency = 256

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a configuration for errors and returns warnings for
// non-fatal issues. Defaults must already be applied.
func Validate(cfg *Config) (warnings []string, err error) {
	if err := validateProject(cfg); err != nil {
		return nil, err
	}
	if err := validateLayout(cfg); err != nil {
		return nil, err
	}
	if err := validateReports(cfg); err != nil {
		return nil, err
	}
	if err := validateCommands(cfg); err != nil {
		return nil, err
	}
	if err := validateRun(cfg); err != nil {
		return nil, err
	}
	return nil, nil
}

func validateProject(cfg *Config) error {
	if cfg.Project.Name == "" {
		return nil // Optional: the manifest's root_name is the authoritative name
	}
	return ValidateProjectName(cfg.Project.Name)
}

// ValidateProjectName checks if a project name is valid.
func ValidateProjectName(name string) error {
	if len(name) > 128 {
		return &ValidationError{Field: "project.name", Message: "must be 128 characters or less"}
	}
	if !projectNamePattern.MatchString(name) {
		return &ValidationError{
			Field:   "project.name",
			Message: "must match pattern ^[a-z][a-z0-9]*(-[a-z0-9]+)*$ (lowercase letters, digits, non-consecutive hyphens)",
		}
	}
	return nil
}

func validateLayout(cfg *Config) error {
	for field, value := range map[string]string{
		"layout.web_root":       cfg.Layout.WebRoot,
		"layout.functions_root": cfg.Layout.FunctionsRoot,
	} {
		if err := validateRelativePath(field, value); err != nil {
			return err
		}
	}
	if strings.ContainsAny(cfg.Layout.Marker, "/\\") {
		return &ValidationError{Field: "layout.marker", Message: "must be a bare file name"}
	}
	return nil
}

func validateReports(cfg *Config) error {
	for field, value := range map[string]string{
		"reports.output_dir":   cfg.Reports.OutputDir,
		"reports.test_results": cfg.Reports.TestResults,
		"reports.coverage":     cfg.Reports.Coverage,
	} {
		if err := validateRelativePath(field, value); err != nil {
			return err
		}
	}
	return nil
}

func validateCommands(cfg *Config) error {
	for name, cmd := range cfg.Commands {
		if strings.TrimSpace(cmd) == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("commands.%s", name),
				Message: "override command must not be empty",
			}
		}
	}
	return nil
}

func validateRun(cfg *Config) error {
	if cfg.Concurrency < 1 || cfg.Concurrency > maxConcurrency {
		return &ValidationError{
			Field:   "concurrency",
			Message: fmt.Sprintf("must be between 1 and %d", maxConcurrency),
		}
	}
	if cfg.TimeoutSec < 0 {
		return &ValidationError{Field: "timeout_sec", Message: "must not be negative"}
	}
	return nil
}

// validateRelativePath rejects absolute paths and parent-directory
// escapes in configured root-relative or unit-relative paths.
func validateRelativePath(field, value string) error {
	if strings.HasPrefix(value, "/") || strings.HasPrefix(value, "\\") {
		return &ValidationError{Field: field, Message: "must be a relative path"}
	}
	clean := path.Clean(strings.ReplaceAll(value, "\\", "/"))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return &ValidationError{Field: field, Message: "must not escape the repository root"}
	}
	return nil
}
