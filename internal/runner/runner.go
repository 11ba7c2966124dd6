// Package runner provides per-unit command execution and batch orchestration.
package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/monoctl/monoctl/internal/operation"
	"github.com/monoctl/monoctl/internal/output"
	"github.com/monoctl/monoctl/internal/unit"
)

// Options configures execution behavior for a batch.
type Options struct {
	Concurrency int               // Worker pool size; values < 1 mean sequential
	Timeout     time.Duration     // Per-unit command timeout; 0 disables
	Env         map[string]string // Additional environment variables
}

// Runner executes resolved commands for units of one repository.
type Runner struct {
	root string
	out  *output.Writer
}

// New creates a Runner for a repository root.
func New(root string) *Runner {
	return &Runner{root: root, out: output.New()}
}

// SetOutput replaces the writer used for per-unit progress lines, so
// the CLI's quiet/verbose settings carry into batch execution.
func (r *Runner) SetOutput(w *output.Writer) {
	r.out = w
}

// RunUnit executes one operation for one unit and returns the result.
// The skip predicate is evaluated first; a skipped unit never spawns a
// command. Command failures of any kind are returned as data, never as
// a raised error.
func (r *Runner) RunUnit(ctx context.Context, u unit.Unit, spec *operation.Spec, opts Options) Result {
	res := Result{Unit: u.Name, Operation: spec.Name}

	if skip, reason := spec.ShouldSkip(r.root, u); skip {
		res.Status = StatusSkipped
		res.Reason = reason
		r.out.UnitSkipped(u.Name, spec.Name, reason)
		return res
	}

	// The batch preflight resolves every applicable pair before any
	// execution starts, so this cannot fail for a non-skipped unit.
	cmdStr, err := spec.Resolve(u.Classification)
	if err != nil {
		res.Status = StatusFailed
		res.Reason = err.Error()
		return res
	}

	if ctx.Err() != nil {
		res.Status = StatusFailed
		res.Reason = ReasonCanceled
		return res
	}

	r.out.UnitStart(u.Name, spec.Name)

	execCtx := ctx
	var cancel context.CancelFunc
	if opts.Timeout > 0 {
		execCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var buf bytes.Buffer
	cmd := exec.CommandContext(execCtx, "sh", "-c", cmdStr)
	cmd.Dir = filepath.Join(r.root, filepath.FromSlash(u.Path))
	var sink io.Writer = &buf
	if r.out.IsVerbose() {
		// Stream while capturing so long-running commands stay visible.
		sink = io.MultiWriter(&buf, os.Stdout)
	}
	cmd.Stdout = sink
	cmd.Stderr = sink

	cmd.Env = os.Environ()
	for k, v := range opts.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	start := time.Now()
	runErr := cmd.Run()
	res.Duration = time.Since(start)
	res.Output = buf.String()

	if runErr == nil {
		res.Status = StatusSuccess
		r.out.UnitSuccess(u.Name, spec.Name)
		return res
	}

	res.Status = StatusFailed
	switch {
	case errors.Is(execCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		res.Reason = ReasonTimeout
	case ctx.Err() != nil:
		res.Reason = ReasonCanceled
	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.Reason = ReasonExit
			res.ExitCode = exitErr.ExitCode()
		} else {
			// The process never ran: binary not found, permission
			// denied, unusable working directory.
			res.Reason = ReasonSpawn
		}
	}
	r.out.UnitFailed(u.Name, spec.Name, res.Reason)
	return res
}
