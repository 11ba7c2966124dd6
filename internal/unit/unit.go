// Package unit provides the unit model and directory-convention classification.
package unit

import (
	"os"
	"path/filepath"
	"strings"
)

// Classification represents the kind of a subproject unit.
type Classification string

const (
	// WebApp represents the web front-end unit.
	WebApp Classification = "web-app"
	// FunctionUnit represents an independent serverless-function unit.
	FunctionUnit Classification = "function-unit"
	// Unclassified represents a unit matching no directory convention.
	// Unclassified units stay in the manifest but are excluded from
	// operation dispatch by every default skip predicate.
	Unclassified Classification = "unclassified"
)

// ParseClassification parses a classification string.
func ParseClassification(s string) (Classification, bool) {
	switch Classification(s) {
	case WebApp, FunctionUnit, Unclassified:
		return Classification(s), true
	}
	return "", false
}

// ValidClassifications returns all valid classification names.
func ValidClassifications() []string {
	return []string{string(WebApp), string(FunctionUnit), string(Unclassified)}
}

// Layout describes the directory conventions of the monorepo.
type Layout struct {
	WebRoot       string // Path segment marking the web front-end (e.g., "react")
	FunctionsRoot string // Path segment under which function units live (e.g., "src/lambda")
	Marker        string // File whose presence qualifies a directory as a manageable unit
}

// DefaultLayout returns the built-in directory conventions.
func DefaultLayout() Layout {
	return Layout{
		WebRoot:       "react",
		FunctionsRoot: "src/lambda",
		Marker:        "package.json",
	}
}

// Unit represents one independently buildable subproject.
// Units are immutable for the lifetime of an orchestrator run.
type Unit struct {
	Name           string
	Path           string // Root-relative path
	Classification Classification
	HasMarker      bool
}

// Classify tags a root-relative path by directory convention.
// It is a pure function of the path string and the layout: a path
// containing the functions-root segment is a FunctionUnit, a path
// containing the web-root segment is a WebApp, anything else is
// Unclassified. Classification never depends on execution order.
func Classify(path string, layout Layout) Classification {
	switch {
	case containsSegments(path, layout.FunctionsRoot):
		return FunctionUnit
	case containsSegments(path, layout.WebRoot):
		return WebApp
	default:
		return Unclassified
	}
}

// New builds a Unit for a root-relative path, probing the filesystem
// under root for the marker file.
func New(root, name, path string, layout Layout) Unit {
	return Unit{
		Name:           name,
		Path:           path,
		Classification: Classify(path, layout),
		HasMarker:      HasMarker(filepath.Join(root, path), layout),
	}
}

// HasMarker reports whether the unit marker file exists in dir.
func HasMarker(dir string, layout Layout) bool {
	info, err := os.Stat(filepath.Join(dir, layout.Marker))
	return err == nil && !info.IsDir()
}

// DirExists reports whether the unit's directory exists under root.
func (u Unit) DirExists(root string) bool {
	info, err := os.Stat(filepath.Join(root, u.Path))
	return err == nil && info.IsDir()
}

// lintConfigNames lists the recognized lint configuration files.
// eslint supports several config flavors; any of these qualifies.
var lintConfigNames = []string{
	".eslintrc.js",
	".eslintrc.cjs",
	".eslintrc.json",
	".eslintrc.yml",
	".eslintrc.yaml",
	"eslint.config.js",
	"eslint.config.mjs",
}

// HasLintConfig reports whether a recognized lint configuration file
// exists at the unit's root.
func (u Unit) HasLintConfig(root string) bool {
	for _, name := range lintConfigNames {
		if info, err := os.Stat(filepath.Join(root, u.Path, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// containsSegments reports whether path contains segment as a
// contiguous, slash-bounded segment sequence. Both arguments are
// normalized to forward slashes, so "src/lambda/fn1" contains
// "src/lambda" but "src/lambda-utils" does not.
func containsSegments(path, segment string) bool {
	if segment == "" {
		return false
	}
	p := "/" + strings.Trim(filepath.ToSlash(path), "/") + "/"
	s := "/" + strings.Trim(filepath.ToSlash(segment), "/") + "/"
	return strings.Contains(p, s)
}
