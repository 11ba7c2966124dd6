package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/monoctl/monoctl/internal/operation"
	"github.com/monoctl/monoctl/internal/output"
	"github.com/monoctl/monoctl/internal/unit"
)

// newTestRepo creates a repository root with marker-carrying function
// units and returns the root plus the resolved units.
func newTestRepo(t *testing.T, names ...string) (string, []unit.Unit) {
	t.Helper()
	root := t.TempDir()
	layout := unit.DefaultLayout()

	units := make([]unit.Unit, 0, len(names))
	for _, name := range names {
		dir := filepath.Join(root, "src", "lambda", name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
		units = append(units, unit.New(root, name, "src/lambda/"+name, layout))
	}
	return root, units
}

// testSpec builds a spec whose override command applies to every unit.
func testSpec(t *testing.T, name, cmd string) *operation.Spec {
	t.Helper()
	spec, err := operation.NewSpec(name, map[string]string{name: cmd})
	if err != nil {
		t.Fatal(err)
	}
	return spec
}

func TestRunUnit_Success(t *testing.T) {
	root, units := newTestRepo(t, "fn1")
	r := New(root)

	res := r.RunUnit(context.Background(), units[0], testSpec(t, "test", "echo ok"), Options{})
	if res.Status != StatusSuccess {
		t.Fatalf("Status = %v (%s), want success", res.Status, res.Reason)
	}
	if res.Unit != "fn1" || res.Operation != "test" {
		t.Errorf("Result identity = %s/%s", res.Unit, res.Operation)
	}
	if res.Output != "ok\n" {
		t.Errorf("Output = %q, want captured 'ok'", res.Output)
	}
}

func TestRunUnit_NonZeroExitIsData(t *testing.T) {
	root, units := newTestRepo(t, "fn1")
	r := New(root)

	res := r.RunUnit(context.Background(), units[0], testSpec(t, "test", "echo boom; exit 3"), Options{})
	if res.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", res.Status)
	}
	if res.Reason != ReasonExit {
		t.Errorf("Reason = %q, want %q", res.Reason, ReasonExit)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if res.Output != "boom\n" {
		t.Errorf("Output = %q", res.Output)
	}
}

func TestRunUnit_CommandNotFound(t *testing.T) {
	root, units := newTestRepo(t, "fn1")
	r := New(root)

	// The shell reports a missing command with exit 127.
	res := r.RunUnit(context.Background(), units[0], testSpec(t, "test", "definitely-not-a-real-binary-xyz"), Options{})
	if res.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", res.Status)
	}
	if res.ExitCode != 127 {
		t.Errorf("ExitCode = %d, want 127", res.ExitCode)
	}
}

func TestRunUnit_RunsInUnitDirectory(t *testing.T) {
	root, units := newTestRepo(t, "fn1")
	r := New(root)

	res := r.RunUnit(context.Background(), units[0], testSpec(t, "test", "basename \"$PWD\""), Options{})
	if res.Status != StatusSuccess {
		t.Fatalf("Status = %v (%s)", res.Status, res.Reason)
	}
	if res.Output != "fn1\n" {
		t.Errorf("Output = %q, want fn1", res.Output)
	}
}

func TestRunUnit_SkipPredicateSuppressesExecution(t *testing.T) {
	root, _ := newTestRepo(t, "fn1")
	r := New(root)

	// Remove the marker so the default install predicate skips the unit.
	if err := os.Remove(filepath.Join(root, "src", "lambda", "fn1", "package.json")); err != nil {
		t.Fatal(err)
	}
	u := unit.New(root, "fn1", "src/lambda/fn1", unit.DefaultLayout())

	spec, err := operation.NewSpec("install", nil)
	if err != nil {
		t.Fatal(err)
	}
	res := r.RunUnit(context.Background(), u, spec, Options{})
	if res.Status != StatusSkipped {
		t.Fatalf("Status = %v, want skipped", res.Status)
	}
	if res.Reason != operation.SkipNoMarker {
		t.Errorf("Reason = %q, want %q", res.Reason, operation.SkipNoMarker)
	}
	if res.Output != "" {
		t.Errorf("skipped unit captured output %q", res.Output)
	}
}

func TestRunUnit_ReportsThroughConfiguredWriter(t *testing.T) {
	root, units := newTestRepo(t, "fn1")
	r := New(root)

	var stdout, stderr bytes.Buffer
	r.SetOutput(output.NewWithWriters(&stdout, &stderr, false))

	res := r.RunUnit(context.Background(), units[0], testSpec(t, "install", "true"), Options{})
	if res.Status != StatusSuccess {
		t.Fatalf("Status = %v (%s)", res.Status, res.Reason)
	}
	if !strings.Contains(stdout.String(), "─── [fn1] install ───") {
		t.Errorf("banner missing from configured writer: %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "[fn1] install done") {
		t.Errorf("success line missing from configured writer: %q", stdout.String())
	}
}

func TestRunUnit_QuietSuppressesProgressLines(t *testing.T) {
	root, units := newTestRepo(t, "fn1")
	r := New(root)

	var stdout, stderr bytes.Buffer
	w := output.NewWithWriters(&stdout, &stderr, false)
	w.SetQuiet(true)
	r.SetOutput(w)

	res := r.RunUnit(context.Background(), units[0], testSpec(t, "install", "true"), Options{})
	if res.Status != StatusSuccess {
		t.Fatalf("Status = %v (%s)", res.Status, res.Reason)
	}
	if stdout.Len() != 0 {
		t.Errorf("quiet run wrote to stdout: %q", stdout.String())
	}
	if stderr.Len() != 0 {
		t.Errorf("quiet run wrote to stderr: %q", stderr.String())
	}

	// Failures still surface on stderr in quiet mode.
	res = r.RunUnit(context.Background(), units[0], testSpec(t, "install", "exit 1"), Options{})
	if res.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", res.Status)
	}
	if !strings.Contains(stderr.String(), "[fn1] install failed") {
		t.Errorf("quiet run suppressed the failure line: %q", stderr.String())
	}
}

func TestRunUnit_Timeout(t *testing.T) {
	root, units := newTestRepo(t, "fn1")
	r := New(root)

	start := time.Now()
	res := r.RunUnit(context.Background(), units[0], testSpec(t, "test", "sleep 5"), Options{Timeout: 200 * time.Millisecond})
	if res.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", res.Status)
	}
	if res.Reason != ReasonTimeout {
		t.Errorf("Reason = %q, want %q", res.Reason, ReasonTimeout)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("timeout not enforced: took %v", elapsed)
	}
}

func TestRunUnit_CanceledContext(t *testing.T) {
	root, units := newTestRepo(t, "fn1")
	r := New(root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := r.RunUnit(ctx, units[0], testSpec(t, "test", "echo never"), Options{})
	if res.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", res.Status)
	}
	if res.Reason != ReasonCanceled {
		t.Errorf("Reason = %q, want %q", res.Reason, ReasonCanceled)
	}
}
