package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/monoctl/monoctl/internal/errors"
	"github.com/monoctl/monoctl/internal/manifest"
	"github.com/monoctl/monoctl/internal/operation"
	"github.com/monoctl/monoctl/internal/output"
	"github.com/monoctl/monoctl/internal/project"
	"github.com/monoctl/monoctl/internal/report"
	"github.com/monoctl/monoctl/internal/runner"
)

// out is the shared output writer for CLI commands.
var out = output.New()

// Help text alignment width for flags like "--concurrency=<n>".
const widthFlagWithValue = 18

// titleCaser renders status words for summary tables.
var titleCaser = cases.Title(language.English)

// applyVerbosityToOutput configures the output writer based on verbosity settings.
func applyVerbosityToOutput(opts *GlobalOptions) {
	out.SetQuiet(opts.Quiet)
	out.SetVerbose(opts.Verbose)
}

// loadProject loads the repository and handles errors uniformly.
// Returns the project and exit code 0 on success, or nil and the
// appropriate exit code on failure. Configuration warnings are printed
// here so every command surfaces them consistently.
func loadProject() (*project.Project, int) {
	proj, err := project.Load()
	if err != nil {
		out.ErrorPrefix("%v", err)
		return nil, errors.GetExitCode(err)
	}
	for _, w := range proj.Warnings {
		out.WarningSimple("%s", w)
	}
	return proj, 0
}

// runnerOptions merges CLI flags with configured values; flags win.
func runnerOptions(proj *project.Project, opts *GlobalOptions) runner.Options {
	ropts := runner.Options{Concurrency: proj.Config.Concurrency}
	if opts.Concurrency > 0 {
		ropts.Concurrency = opts.Concurrency
	}
	timeoutSec := proj.Config.TimeoutSec
	if opts.TimeoutSec >= 0 {
		timeoutSec = opts.TimeoutSec
	}
	if timeoutSec > 0 {
		ropts.Timeout = time.Duration(timeoutSec) * time.Second
	}
	return ropts
}

// batchContext returns a context canceled by SIGINT/SIGTERM so
// in-flight unit commands are killed rather than orphaned.
func batchContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// cmdRun executes one operation across every manifest unit.
func cmdRun(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printRunUsage()
		return 0
	}
	if len(args) == 0 {
		out.ErrorPrefix("run: operation required (run 'monoctl run --help' for usage)")
		return errors.ExitConfigError
	}
	if len(args) > 1 {
		out.ErrorPrefix("run: unexpected argument %q", args[1])
		return errors.ExitConfigError
	}

	proj, exitCode := loadProject()
	if proj == nil {
		return exitCode
	}

	spec, err := operation.NewSpec(args[0], proj.Config.Commands)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	units, err := proj.Units()
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	ctx, stop := batchContext()
	defer stop()

	r := runner.New(proj.Root)
	r.SetOutput(out)
	outcome, err := r.RunBatch(ctx, units, spec, runnerOptions(proj, opts))
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	printOutcome(outcome)
	if outcome.Failed() {
		out.FinalFailure("Operation '%s' failed", spec.Name)
		return errors.ExitRuntimeError
	}
	out.FinalSuccess("Operation '%s' succeeded", spec.Name)
	return 0
}

// printOutcome renders the per-unit summary table for a finished batch.
func printOutcome(outcome *runner.Outcome) {
	if len(outcome.Results) == 0 {
		out.Info("No units in manifest; nothing to do.")
		return
	}

	rows := make([][]string, 0, len(outcome.Results))
	for _, res := range outcome.Results {
		rows = append(rows, []string{
			res.Unit,
			titleCaser.String(string(res.Status)),
			res.Reason,
			formatDuration(res.Duration),
		})
	}

	out.SummaryHeader("Summary")
	out.Table([]string{"UNIT", "STATUS", "REASON", "TIME"}, rows)

	succeeded, failed, skipped := outcome.Counts()
	out.SummaryPassed("Succeeded", fmt.Sprintf("%d", succeeded))
	if failed > 0 {
		out.SummaryFailed("Failed", fmt.Sprintf("%d", failed))
	}
	if skipped > 0 {
		out.SummaryItem("Skipped", fmt.Sprintf("%d", skipped))
	}
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.Round(10 * time.Millisecond).String()
}

// cmdRegenerateManifest rescans the tree and rewrites the manifest.
func cmdRegenerateManifest(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printRegenerateUsage()
		return 0
	}
	if len(args) > 0 {
		out.ErrorPrefix("regenerate-manifest: unexpected argument %q", args[0])
		return errors.ExitConfigError
	}

	proj, exitCode := loadProject()
	if proj == nil {
		return exitCode
	}

	m, err := manifest.Generate(proj.Root, proj.Name(), proj.Config.Repositories, proj.Config.UnitLayout())
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	if err := m.Save(proj.Root); err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	for _, e := range m.Units {
		out.Verbose("unit %s (%s)", e.Name, e.Path)
	}
	out.FinalSuccess("Manifest regenerated: %d units", len(m.Units))
	return 0
}

// cmdAggregateReports merges per-unit artifacts of one kind.
func cmdAggregateReports(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printAggregateUsage()
		return 0
	}
	if len(args) == 0 {
		out.ErrorPrefix("aggregate-reports: report kind required (test-results, coverage)")
		return errors.ExitConfigError
	}

	kind, err := report.ParseKind(args[0])
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	proj, exitCode := loadProject()
	if proj == nil {
		return exitCode
	}

	units, err := proj.Units()
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	agg := report.New(proj.Root, proj.Config.Reports)
	agg.SetOutput(out)
	rep, err := agg.Aggregate(units, kind)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	out.SummaryHeader("Aggregation")
	out.SummaryItem("Merged", fmt.Sprintf("%d of %d units", len(rep.Merged), len(units)))
	for _, path := range rep.Outputs {
		out.SummaryItem("Wrote", path)
	}
	out.FinalSuccess("Aggregated %s reports", kind)
	return 0
}

// cmdClean removes aggregate reports, runs per-unit clean, or both.
func cmdClean(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printCleanUsage()
		return 0
	}
	if len(args) == 0 {
		out.ErrorPrefix("clean: target required (reports, units, all)")
		return errors.ExitConfigError
	}

	target := args[0]
	switch target {
	case "reports", "units", "all":
	default:
		out.ErrorPrefix("clean: unknown target %q (use reports, units, or all)", target)
		return errors.ExitConfigError
	}

	proj, exitCode := loadProject()
	if proj == nil {
		return exitCode
	}

	if target == "reports" || target == "all" {
		dir := filepath.Join(proj.Root, filepath.FromSlash(proj.Config.Reports.OutputDir))
		if err := os.RemoveAll(dir); err != nil {
			out.ErrorPrefix("failed to remove report directory: %v", err)
			return errors.ExitIOError
		}
		out.Info("Removed %s", proj.Config.Reports.OutputDir)
	}

	if target == "units" || target == "all" {
		spec, err := operation.NewSpec("clean", proj.Config.Commands)
		if err != nil {
			out.ErrorPrefix("%v", err)
			return errors.GetExitCode(err)
		}
		units, err := proj.Units()
		if err != nil {
			out.ErrorPrefix("%v", err)
			return errors.GetExitCode(err)
		}

		ctx, stop := batchContext()
		defer stop()

		r := runner.New(proj.Root)
		r.SetOutput(out)
		outcome, err := r.RunBatch(ctx, units, spec, runnerOptions(proj, opts))
		if err != nil {
			out.ErrorPrefix("%v", err)
			return errors.GetExitCode(err)
		}
		printOutcome(outcome)
		if outcome.Failed() {
			out.FinalFailure("Clean failed")
			return errors.ExitRuntimeError
		}
	}

	out.FinalSuccess("Clean complete")
	return 0
}

// cmdUnits lists manifest units with classification and marker state.
func cmdUnits(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printUnitsUsage()
		return 0
	}

	proj, exitCode := loadProject()
	if proj == nil {
		return exitCode
	}

	units, err := proj.Units()
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	if len(units) == 0 {
		out.Info("Manifest is empty. Run 'monoctl regenerate-manifest' after adding units.")
		return 0
	}

	rows := make([][]string, 0, len(units))
	for _, u := range units {
		marker := ""
		if u.HasMarker {
			marker = "yes"
		}
		rows = append(rows, []string{u.Name, string(u.Classification), u.Path, marker})
	}
	out.Table([]string{"NAME", "CLASSIFICATION", "PATH", "MARKER"}, rows)
	return 0
}

// cmdConfig handles configuration utilities.
func cmdConfig(args []string) int {
	if len(args) == 0 {
		out.ErrorPrefix("config: subcommand required (validate)")
		return errors.ExitConfigError
	}

	switch args[0] {
	case "validate":
		return cmdConfigValidate()
	case "-h", "--help":
		printConfigUsage()
		return 0
	default:
		out.ErrorPrefix("config: unknown subcommand %q", args[0])
		return errors.ExitConfigError
	}
}

func cmdConfigValidate() int {
	proj, exitCode := loadProject()
	if proj == nil {
		return exitCode
	}

	layout := proj.Config.UnitLayout()
	out.ValidationSuccess("Configuration is valid.")
	out.SummaryItem("Project", proj.Name())
	out.SummaryItem("Web root", layout.WebRoot)
	out.SummaryItem("Functions root", layout.FunctionsRoot)
	out.SummaryItem("Marker", layout.Marker)
	if len(proj.Config.Commands) > 0 {
		out.SummaryItem("Overrides", fmt.Sprintf("%d", len(proj.Config.Commands)))
	}
	if len(proj.Warnings) > 0 {
		out.SummaryItem("Warnings", fmt.Sprintf("%d", len(proj.Warnings)))
	}
	return 0
}

func printRunUsage() {
	w := output.New()
	w.HelpTitle("monoctl run - run one operation across all manifest units")

	w.HelpSection("Usage:")
	w.HelpUsage("monoctl run <operation> [flags]")

	w.HelpSection("Operations:")
	for _, op := range operation.Known() {
		w.HelpCommand(op, operation.Describe(op), 12)
	}

	w.HelpSection("Flags:")
	w.HelpFlag("--concurrency=<n>", "Run up to n units at once", widthFlagWithValue)
	w.HelpFlag("--timeout=<sec>", "Per-unit command timeout (0 disables)", widthFlagWithValue)

	w.HelpSection("Examples:")
	w.HelpExample("monoctl run test", "Run tests for every unit")
	w.HelpExample("monoctl run install --timeout=600", "Install with a 10-minute per-unit cap")
	w.Println("")
}

func printRegenerateUsage() {
	w := output.New()
	w.HelpTitle("monoctl regenerate-manifest - rescan units into the manifest")

	w.HelpSection("Usage:")
	w.HelpUsage("monoctl regenerate-manifest")

	w.HelpSection("Behavior:")
	w.Println("  Scans the configured web root and functions root, then rewrites")
	w.Println("  .monoctl/manifest.yaml atomically. Two scans of an unchanged tree")
	w.Println("  produce identical files. The manifest is never rewritten implicitly.")
	w.Println("")
}

func printAggregateUsage() {
	w := output.New()
	w.HelpTitle("monoctl aggregate-reports - merge per-unit artifacts")

	w.HelpSection("Usage:")
	w.HelpUsage("monoctl aggregate-reports <kind>")

	w.HelpSection("Kinds:")
	w.HelpCommand("test-results", "Merge JUnit XML files into one document", 12)
	w.HelpCommand("coverage", "Merge LCOV tracefiles and write a numeric summary", 12)

	w.HelpSection("Behavior:")
	w.Println("  Units without the artifact are skipped with a warning; the merge")
	w.Println("  never fails because an optional input is absent.")
	w.Println("")
}

func printCleanUsage() {
	w := output.New()
	w.HelpTitle("monoctl clean - remove build and report artifacts")

	w.HelpSection("Usage:")
	w.HelpUsage("monoctl clean <reports|units|all>")

	w.HelpSection("Targets:")
	w.HelpCommand("reports", "Remove the aggregate report output directory", 8)
	w.HelpCommand("units", "Run the clean operation for every unit", 8)
	w.HelpCommand("all", "Both of the above", 8)
	w.Println("")
}

func printUnitsUsage() {
	w := output.New()
	w.HelpTitle("monoctl units - list manifest units")

	w.HelpSection("Usage:")
	w.HelpUsage("monoctl units")
	w.Println("")
}

func printConfigUsage() {
	w := output.New()
	w.HelpTitle("monoctl config - configuration utilities")

	w.HelpSection("Usage:")
	w.HelpUsage("monoctl config validate")

	w.HelpSection("Subcommands:")
	w.HelpCommand("validate", "Validate .monoctl/config.json against the schema", 8)
	w.Println("")
}
