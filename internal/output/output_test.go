package output

import (
	"bytes"
	"strings"
	"testing"
)

func newTestWriter(color bool) (*Writer, *bytes.Buffer, *bytes.Buffer) {
	var out, errBuf bytes.Buffer
	return NewWithWriters(&out, &errBuf, color), &out, &errBuf
}

func TestInfo_QuietMode(t *testing.T) {
	w, out, _ := newTestWriter(false)
	w.SetQuiet(true)
	w.Info("hidden")
	if out.Len() != 0 {
		t.Errorf("Info in quiet mode produced output: %q", out.String())
	}

	w.SetQuiet(false)
	w.Info("visible")
	if !strings.Contains(out.String(), "visible") {
		t.Errorf("Info output = %q, want to contain 'visible'", out.String())
	}
}

func TestVerbose(t *testing.T) {
	w, out, _ := newTestWriter(false)
	w.Verbose("hidden")
	if out.Len() != 0 {
		t.Errorf("Verbose without verbose mode produced output: %q", out.String())
	}

	w.SetVerbose(true)
	if !w.IsVerbose() {
		t.Error("IsVerbose() = false after SetVerbose(true)")
	}
	w.Verbose("shown")
	if !strings.Contains(out.String(), "shown") {
		t.Errorf("Verbose output = %q, want to contain 'shown'", out.String())
	}
}

func TestWarning_GoesToStderr(t *testing.T) {
	w, out, errBuf := newTestWriter(false)
	w.Warning("disk almost full")
	if out.Len() != 0 {
		t.Errorf("Warning wrote to stdout: %q", out.String())
	}
	if got := errBuf.String(); got != "warning: disk almost full\n" {
		t.Errorf("Warning output = %q", got)
	}
}

func TestErrorPrefix(t *testing.T) {
	w, _, errBuf := newTestWriter(false)
	w.ErrorPrefix("manifest not found")
	if got := errBuf.String(); got != "monoctl: manifest not found\n" {
		t.Errorf("ErrorPrefix output = %q", got)
	}
}

func TestUnitLifecycleMessages(t *testing.T) {
	w, out, errBuf := newTestWriter(false)

	w.UnitStart("fn1", "test")
	if !strings.Contains(out.String(), "[fn1] test") {
		t.Errorf("UnitStart output = %q", out.String())
	}

	w.UnitSuccess("fn1", "test")
	if !strings.Contains(out.String(), "[fn1] test done") {
		t.Errorf("UnitSuccess output = %q", out.String())
	}

	w.UnitSkipped("fn2", "test", "marker file absent")
	if !strings.Contains(out.String(), "[fn2] test skipped (marker file absent)") {
		t.Errorf("UnitSkipped output = %q", out.String())
	}

	w.UnitFailed("fn3", "test", "exit status 1")
	if !strings.Contains(errBuf.String(), "[fn3] test failed: exit status 1") {
		t.Errorf("UnitFailed output = %q", errBuf.String())
	}
}

func TestUnitMessages_QuietMode(t *testing.T) {
	w, out, errBuf := newTestWriter(false)
	w.SetQuiet(true)

	w.UnitStart("web", "lint")
	w.UnitSuccess("web", "lint")
	w.UnitSkipped("web", "lint", "no lint config")
	if out.Len() != 0 {
		t.Errorf("quiet mode produced stdout output: %q", out.String())
	}

	// Failures are never suppressed.
	w.UnitFailed("web", "lint", "exit status 2")
	if errBuf.Len() == 0 {
		t.Error("UnitFailed suppressed in quiet mode")
	}
}

func TestTable(t *testing.T) {
	w, out, _ := newTestWriter(false)
	w.Table(
		[]string{"UNIT", "STATUS"},
		[][]string{
			{"fn1", "success"},
			{"web", "failed"},
		},
	)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Table produced %d lines, want 4:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "UNIT") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "----") {
		t.Errorf("separator = %q", lines[1])
	}
	if !strings.Contains(lines[2], "fn1") || !strings.Contains(lines[2], "success") {
		t.Errorf("row = %q", lines[2])
	}
}

func TestSummaryHelpers(t *testing.T) {
	w, out, _ := newTestWriter(false)
	w.SummaryHeader("Batch Summary")
	w.SummaryPassed("Succeeded", "3")
	w.SummaryFailed("Failed", "1")
	w.SummaryItem("Skipped", "2")
	w.FinalFailure("1 of 6 units failed.")

	got := out.String()
	for _, want := range []string{"=== Batch Summary ===", "Succeeded: 3", "Failed: 1", "Skipped: 2", "1 of 6 units failed."} {
		if !strings.Contains(got, want) {
			t.Errorf("summary output missing %q:\n%s", want, got)
		}
	}
}

func TestSummaryHelpers_QuietMode(t *testing.T) {
	w, out, errBuf := newTestWriter(false)
	w.SetQuiet(true)

	w.SummaryHeader("Summary")
	w.Table([]string{"UNIT", "STATUS"}, [][]string{{"web", "success"}})
	w.SummaryPassed("Succeeded", "1")
	w.SummaryItem("Skipped", "0")
	w.FinalSuccess("Operation 'install' succeeded")
	w.WarningSimple("no coverage artifact for unit 'fn1'")
	if out.Len() != 0 {
		t.Errorf("quiet mode produced stdout output: %q", out.String())
	}
	if errBuf.Len() != 0 {
		t.Errorf("quiet mode produced stderr output: %q", errBuf.String())
	}

	// Failure reporting is never suppressed.
	w.SummaryFailed("Failed", "1")
	w.FinalFailure("Operation 'install' failed")
	if !strings.Contains(out.String(), "Failed: 1") {
		t.Errorf("SummaryFailed suppressed in quiet mode: %q", out.String())
	}
	if !strings.Contains(out.String(), "Operation 'install' failed") {
		t.Errorf("FinalFailure suppressed in quiet mode: %q", out.String())
	}
}

func TestColorOutput(t *testing.T) {
	w, out, _ := newTestWriter(true)
	w.Success("all good")
	if !strings.Contains(out.String(), "\033[32m") {
		t.Errorf("Success with color enabled has no ANSI codes: %q", out.String())
	}
}

func TestColorPlaceholders(t *testing.T) {
	w, _, _ := newTestWriter(true)
	got := w.colorPlaceholders("run <operation>")
	if !strings.Contains(got, colorPlaceholder+"<operation>") {
		t.Errorf("colorPlaceholders = %q", got)
	}

	// No placeholder: text passes through untouched.
	plain := w.colorPlaceholders("plain text")
	if plain != "plain text" {
		t.Errorf("colorPlaceholders(plain) = %q", plain)
	}
}
