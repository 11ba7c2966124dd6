package runner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/monoctl/monoctl/internal/errors"
	"github.com/monoctl/monoctl/internal/operation"
	"github.com/monoctl/monoctl/internal/unit"
)

// RunBatch executes one operation across all units. Every unit is
// visited exactly once; individual failures never stop the batch, and
// the result sequence always preserves manifest order regardless of
// completion order. Units may run concurrently up to the configured
// bound; they share no mutable state.
//
// The returned error is reserved for configuration problems detected
// before any execution. Per-unit failures are reported only through
// the Outcome.
func (r *Runner) RunBatch(ctx context.Context, units []unit.Unit, spec *operation.Spec, opts Options) (*Outcome, error) {
	outcome := &Outcome{
		Operation: spec.Name,
		Results:   make([]Result, len(units)),
	}

	if len(units) == 0 {
		return outcome, nil
	}

	if err := preflight(units, spec); err != nil {
		return nil, err
	}

	workers := opts.Concurrency
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			// Each result lands at its unit's manifest index, so the
			// reported order is reproducible under concurrency.
			outcome.Results[i] = r.RunUnit(ctx, u, spec, opts)
			return nil
		})
	}
	// Workers never return errors; Wait is purely a join.
	_ = g.Wait()

	return outcome, nil
}

// preflight surfaces configuration errors before any command runs.
// Every (operation, classification) pair present in the manifest and
// claimed applicable must resolve; an operation no unit supports is a
// configuration error rather than an all-skipped no-op.
func preflight(units []unit.Unit, spec *operation.Spec) error {
	applicable := 0
	seen := make(map[unit.Classification]bool)
	for _, u := range units {
		if !spec.AppliesTo(u.Classification) {
			continue
		}
		applicable++
		if seen[u.Classification] {
			continue
		}
		seen[u.Classification] = true
		if _, err := spec.Resolve(u.Classification); err != nil {
			return err
		}
	}
	if applicable == 0 {
		return errors.Configf("no unit in the manifest supports operation %q", spec.Name)
	}
	return nil
}
