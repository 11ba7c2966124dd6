package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/monoctl/monoctl/internal/errors"
	"github.com/monoctl/monoctl/internal/operation"
	"github.com/monoctl/monoctl/internal/unit"
)

func TestRunBatch_EmptyManifestSucceeds(t *testing.T) {
	r := New(t.TempDir())
	outcome, err := r.RunBatch(context.Background(), nil, testSpec(t, "test", "true"), Options{})
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}
	if outcome.Failed() {
		t.Error("empty batch reported failure")
	}
	if len(outcome.Results) != 0 {
		t.Errorf("Results = %+v, want none", outcome.Results)
	}
}

func TestRunBatch_FailureDoesNotStopBatch(t *testing.T) {
	root, units := newTestRepo(t, "fn1", "fn2", "fn3")
	r := New(root)

	// fn2 carries a sentinel its command trips over.
	if err := os.WriteFile(filepath.Join(root, "src", "lambda", "fn2", ".broken"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	outcome, err := r.RunBatch(context.Background(), units, testSpec(t, "test", "test ! -f .broken"), Options{})
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}

	if len(outcome.Results) != 3 {
		t.Fatalf("len(Results) = %d, want every unit visited", len(outcome.Results))
	}
	wantStatus := []Status{StatusSuccess, StatusFailed, StatusSuccess}
	for i, want := range wantStatus {
		if outcome.Results[i].Status != want {
			t.Errorf("Results[%d] (%s) = %v, want %v", i, outcome.Results[i].Unit, outcome.Results[i].Status, want)
		}
	}
	if !outcome.Failed() {
		t.Error("Outcome.Failed() = false with a failed unit")
	}
}

func TestRunBatch_SkippedUnitsDoNotFailBatch(t *testing.T) {
	root, units := newTestRepo(t, "fn1", "fn2")
	r := New(root)

	// fn2 loses its marker: the default install predicate skips it.
	if err := os.Remove(filepath.Join(root, "src", "lambda", "fn2", "package.json")); err != nil {
		t.Fatal(err)
	}
	units[1] = unit.New(root, "fn2", "src/lambda/fn2", unit.DefaultLayout())

	spec, err := operation.NewSpec("install", map[string]string{"install": "true"})
	if err != nil {
		t.Fatal(err)
	}
	outcome, err := r.RunBatch(context.Background(), units, spec, Options{})
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}

	if outcome.Results[0].Status != StatusSuccess {
		t.Errorf("fn1 = %v, want success", outcome.Results[0].Status)
	}
	if outcome.Results[1].Status != StatusSkipped {
		t.Errorf("fn2 = %v, want skipped", outcome.Results[1].Status)
	}
	if outcome.Failed() {
		t.Error("Outcome.Failed() = true, skipped units must not count as failures")
	}

	succeeded, failed, skipped := outcome.Counts()
	if succeeded != 1 || failed != 0 || skipped != 1 {
		t.Errorf("Counts() = %d/%d/%d, want 1/0/1", succeeded, failed, skipped)
	}
}

func TestRunBatch_PreservesManifestOrderUnderConcurrency(t *testing.T) {
	root, units := newTestRepo(t, "fn1", "fn2", "fn3", "fn4")
	r := New(root)

	// Stagger completion so later units finish before earlier ones.
	cmd := `case "$(basename "$PWD")" in fn1) sleep 0.3;; fn2) sleep 0.15;; esac`
	outcome, err := r.RunBatch(context.Background(), units, testSpec(t, "test", cmd), Options{Concurrency: 4})
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}

	for i, u := range units {
		if outcome.Results[i].Unit != u.Name {
			t.Errorf("Results[%d].Unit = %s, want %s", i, outcome.Results[i].Unit, u.Name)
		}
		if outcome.Results[i].Status != StatusSuccess {
			t.Errorf("Results[%d] = %v (%s)", i, outcome.Results[i].Status, outcome.Results[i].Reason)
		}
	}
}

func TestRunBatch_EveryUnitExactlyOnce(t *testing.T) {
	root, units := newTestRepo(t, "fn1", "fn2", "fn3")
	r := New(root)

	// Each unit appends its name to a shared log; concurrency 2 must not
	// duplicate or drop a visit.
	log := filepath.Join(root, "visits.log")
	cmd := `basename "$PWD" >> "` + log + `"`
	outcome, err := r.RunBatch(context.Background(), units, testSpec(t, "test", cmd), Options{Concurrency: 2})
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}
	if len(outcome.Results) != len(units) {
		t.Fatalf("len(Results) = %d, want %d", len(outcome.Results), len(units))
	}

	data, err := os.ReadFile(log)
	if err != nil {
		t.Fatal(err)
	}
	visits := make(map[string]int)
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		visits[line]++
	}
	for _, u := range units {
		if visits[u.Name] != 1 {
			t.Errorf("unit %s visited %d times, want exactly once", u.Name, visits[u.Name])
		}
	}
}

func TestRunBatch_NoApplicableUnitIsConfigError(t *testing.T) {
	root := t.TempDir()
	units := []unit.Unit{
		{Name: "docs", Path: "docs", Classification: unit.Unclassified},
	}

	spec, err := operation.NewSpec("test", nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = New(root).RunBatch(context.Background(), units, spec, Options{})
	if err == nil {
		t.Fatal("RunBatch() error = nil, want config error")
	}
	if errors.GetExitCode(err) != errors.ExitConfigError {
		t.Errorf("exit code = %d, want %d", errors.GetExitCode(err), errors.ExitConfigError)
	}
}

func TestRunBatch_CanceledContextFailsRemainingUnits(t *testing.T) {
	root, units := newTestRepo(t, "fn1", "fn2")
	r := New(root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := r.RunBatch(ctx, units, testSpec(t, "test", "true"), Options{})
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}
	for i, res := range outcome.Results {
		if res.Status != StatusFailed || res.Reason != ReasonCanceled {
			t.Errorf("Results[%d] = %v (%s), want failed/canceled", i, res.Status, res.Reason)
		}
	}
}
