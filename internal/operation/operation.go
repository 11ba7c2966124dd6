// Package operation defines operation specs and command resolution for units.
package operation

import (
	"sort"

	"github.com/monoctl/monoctl/internal/errors"
	"github.com/monoctl/monoctl/internal/unit"
)

// Skip reasons reported when an operation does not run for a unit.
const (
	SkipUnclassified  = "unclassified"
	SkipMissingDir    = "directory missing"
	SkipNoMarker      = "marker file absent"
	SkipNoLintConfig  = "no lint configuration"
	SkipNotApplicable = "not applicable"
)

// defaults is the built-in command decision table. An operation missing
// a classification entry is unbound for that classification; resolving
// an unbound pair without an override is a configuration error.
var defaults = map[string]map[unit.Classification]string{
	"install": {
		unit.WebApp:       "yarn install --frozen-lockfile",
		unit.FunctionUnit: "npm ci",
	},
	"installProduction": {
		unit.WebApp:       "yarn install --frozen-lockfile --production",
		unit.FunctionUnit: "npm ci --omit=dev",
	},
	"test": {
		unit.WebApp:       "yarn test --watchAll=false --coverage",
		unit.FunctionUnit: "npm test",
	},
	"lint": {
		unit.WebApp:       "yarn lint",
		unit.FunctionUnit: "npm run lint",
	},
	"typecheck": {
		unit.WebApp:       "yarn tsc --noEmit",
		unit.FunctionUnit: "npx tsc --noEmit",
	},
	"run": {
		unit.WebApp: "yarn start",
	},
	"buildStyles": {
		unit.WebApp: "yarn build:styles",
	},
	"clean": {
		unit.WebApp:       "rm -rf node_modules build coverage",
		unit.FunctionUnit: "rm -rf node_modules coverage",
	},
}

// operationDescriptions holds help text for built-in operations.
var operationDescriptions = map[string]string{
	"install":           "Install dependencies for all units",
	"installProduction": "Install production dependencies only",
	"test":              "Run unit tests with coverage",
	"lint":              "Run the linter",
	"typecheck":         "Type-check without emitting output",
	"run":               "Start the web front-end",
	"buildStyles":       "Build the web front-end style bundle",
	"clean":             "Remove installed dependencies and build output",
}

// Known returns the built-in operation names, sorted.
func Known() []string {
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsKnown reports whether name is a built-in operation.
func IsKnown(name string) bool {
	_, ok := defaults[name]
	return ok
}

// Describe returns the help text for a built-in operation, or "" if none.
func Describe(name string) string {
	return operationDescriptions[name]
}

// Spec is the immutable description of one operation: its default
// commands per classification, an optional configured override, and a
// skip predicate. Specs are built once at process start and never
// mutated during a run.
type Spec struct {
	Name     string
	Override string // Configured override command; applies to every classification
	defaults map[unit.Classification]string
}

// NewSpec builds a Spec for an operation, overlaying the configured
// override commands on the built-in table. Unknown operation names are
// allowed only when an override supplies their command.
func NewSpec(name string, overrides map[string]string) (*Spec, error) {
	override := overrides[name]
	builtin, known := defaults[name]
	if !known && override == "" {
		return nil, errors.Configf("unknown operation %q and no override configured", name)
	}
	return &Spec{
		Name:     name,
		Override: override,
		defaults: builtin,
	}, nil
}

// Resolve maps a classification to the command to execute. Resolution
// order: configured override first, then the built-in default. An
// unbound pair is a configuration error. Side-effect-free.
func (s *Spec) Resolve(class unit.Classification) (string, error) {
	if s.Override != "" {
		return s.Override, nil
	}
	if cmd, ok := s.defaults[class]; ok {
		return cmd, nil
	}
	return "", errors.Configf("operation %q has no command for classification %q and no override configured", s.Name, class)
}

// AppliesTo reports whether the operation has a command binding for the
// classification (override or built-in default).
func (s *Spec) AppliesTo(class unit.Classification) bool {
	if s.Override != "" {
		return class != unit.Unclassified
	}
	_, ok := s.defaults[class]
	return ok
}

// ShouldSkip evaluates the operation's skip predicate for a unit.
// Returns the skip decision and a reason suitable for the summary
// table. Predicates only probe the filesystem; they never execute
// anything.
func (s *Spec) ShouldSkip(root string, u unit.Unit) (bool, string) {
	if u.Classification == unit.Unclassified {
		return true, SkipUnclassified
	}
	if !s.AppliesTo(u.Classification) {
		return true, SkipNotApplicable
	}
	if !u.DirExists(root) {
		return true, SkipMissingDir
	}
	if u.Classification == unit.FunctionUnit && !u.HasMarker {
		return true, SkipNoMarker
	}
	if s.Name == "lint" && !u.HasLintConfig(root) {
		return true, SkipNoLintConfig
	}
	return false, ""
}

// WarnUnknownOverrides returns a warning per override key that matches
// no built-in operation. Unrecognized keys are ignored, not fatal:
// they may be user-defined operations invoked explicitly.
func WarnUnknownOverrides(overrides map[string]string) []string {
	var keys []string
	for key := range overrides {
		if !IsKnown(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	warnings := make([]string, 0, len(keys))
	for _, key := range keys {
		warnings = append(warnings, "override for unknown operation \""+key+"\" (used only when invoked explicitly)")
	}
	return warnings
}
