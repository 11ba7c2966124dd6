// Package report merges per-unit build artifacts into combined documents.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/monoctl/monoctl/internal/config"
	"github.com/monoctl/monoctl/internal/errors"
	"github.com/monoctl/monoctl/internal/output"
	"github.com/monoctl/monoctl/internal/unit"
)

// Kind selects which artifact family an aggregation run merges.
type Kind string

const (
	KindTestResults Kind = "test-results"
	KindCoverage    Kind = "coverage"
)

// Kinds lists the supported artifact kinds in display order.
func Kinds() []Kind {
	return []Kind{KindTestResults, KindCoverage}
}

// ParseKind converts a CLI argument into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindTestResults, KindCoverage:
		return Kind(s), nil
	}
	return "", errors.Configf("unknown report kind %q (supported: %s, %s)", s, KindTestResults, KindCoverage)
}

// Report describes one aggregation run: which units contributed, which
// were missing their artifact, and which files were written.
type Report struct {
	Kind    Kind
	Merged  []string // units whose artifact was found and merged
	Missing []string // units without the artifact, skipped
	Outputs []string // written file paths, relative to the root
}

// Aggregator merges unit artifacts for one repository.
type Aggregator struct {
	root string
	cfg  *config.ReportsConfig
	out  *output.Writer
}

// New creates an Aggregator for a repository root.
func New(root string, cfg *config.ReportsConfig) *Aggregator {
	return &Aggregator{root: root, cfg: cfg, out: output.New()}
}

// SetOutput replaces the writer used for missing-artifact warnings, so
// the CLI's quiet setting carries into aggregation.
func (a *Aggregator) SetOutput(w *output.Writer) {
	a.out = w
}

// Aggregate merges the artifacts of the given kind across all units,
// in the given (manifest) order. A unit missing its artifact is logged
// and skipped; the merge never fails because an optional input is
// absent. Zero present inputs still produce an empty combined
// document. Outputs are deterministic for identical inputs and are
// written atomically.
func (a *Aggregator) Aggregate(units []unit.Unit, kind Kind) (*Report, error) {
	switch kind {
	case KindTestResults:
		return a.aggregateTestResults(units)
	case KindCoverage:
		return a.aggregateCoverage(units)
	}
	return nil, errors.Configf("unknown report kind %q", kind)
}

// collect reads each unit's artifact at the given unit-relative path.
// Missing files are reported through the warnings channel of the
// Report, not as errors; unreadable or unparseable files abort.
func (a *Aggregator) collect(units []unit.Unit, relPath string, rep *Report, merge func(u unit.Unit, data []byte) error) error {
	for _, u := range units {
		path := filepath.Join(a.root, filepath.FromSlash(u.Path), filepath.FromSlash(relPath))
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			rep.Missing = append(rep.Missing, u.Name)
			a.out.WarningSimple("no %s artifact for unit '%s' (%s), skipping", rep.Kind, u.Name, relPath)
			continue
		}
		if err != nil {
			return errors.WrapIO(err, fmt.Sprintf("failed to read %s artifact for unit '%s'", rep.Kind, u.Name))
		}
		if err := merge(u, data); err != nil {
			return err
		}
		rep.Merged = append(rep.Merged, u.Name)
	}
	return nil
}

// writeOutput writes one combined document below the configured output
// directory, atomically. Returns the root-relative path.
func (a *Aggregator) writeOutput(name string, data []byte) (string, error) {
	dir := filepath.Join(a.root, filepath.FromSlash(a.cfg.OutputDir))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.WrapIO(err, "failed to create report output directory")
	}

	path := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return "", errors.WrapIO(err, "failed to create temporary report file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", errors.WrapIO(err, "failed to write report file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", errors.WrapIO(err, "failed to write report file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", errors.WrapIO(err, "failed to finalize report file")
	}

	return filepath.ToSlash(filepath.Join(a.cfg.OutputDir, name)), nil
}
