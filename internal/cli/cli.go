// Package cli provides command-line interface functionality for monoctl.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/monoctl/monoctl/internal/errors"
	"github.com/monoctl/monoctl/internal/operation"
	"github.com/monoctl/monoctl/internal/output"
)

// Version is set at build time.
var Version = "dev"

// wantsHelp returns true if args contain -h or --help before any -- separator.
// Arguments after -- are passed through to commands, so help flags there are ignored.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
		if arg == "--" {
			return false
		}
	}
	return false
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 0
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return 0
	case "--version", "version":
		fmt.Printf("monoctl %s\n", Version)
		return 0
	}

	opts, remaining, err := parseGlobalFlags(args)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}

	// Re-extract command after flag parsing
	if len(remaining) == 0 {
		printUsage()
		return 0
	}
	cmd := remaining[0]
	cmdArgs := remaining[1:]

	switch cmd {
	case "help", "-h", "--help":
		printUsage()
		return 0
	case "version", "--version":
		fmt.Printf("monoctl %s\n", Version)
		return 0
	case "run":
		return cmdRun(cmdArgs, opts)
	case "regenerate-manifest":
		return cmdRegenerateManifest(cmdArgs, opts)
	case "aggregate-reports":
		return cmdAggregateReports(cmdArgs, opts)
	case "clean":
		return cmdClean(cmdArgs, opts)
	case "units":
		return cmdUnits(cmdArgs, opts)
	case "config":
		return cmdConfig(cmdArgs)
	case "completion":
		return cmdCompletion(cmdArgs)
	default:
		// Bare operation names run across all units, so
		// `monoctl test` is shorthand for `monoctl run test`.
		if operation.IsKnown(cmd) {
			return cmdRun(remaining, opts)
		}
		out.ErrorPrefix("unknown command %q (run 'monoctl help' for usage)", cmd)
		return errors.ExitConfigError
	}
}

// GlobalOptions holds parsed global flags.
type GlobalOptions struct {
	Quiet       bool
	Verbose     bool
	Concurrency int // 0 means "use configured value"
	TimeoutSec  int // -1 means "use configured value"
}

// parseGlobalFlags manually parses global flags from arguments.
//
// Manual parsing is used instead of stdlib flag package because:
// - Flags can appear anywhere in the argument list, not just before the command
// - Pass-through arguments after -- must be preserved verbatim
// - Custom error messages with usage hints are needed
// - Flag package doesn't support these use cases cleanly
func parseGlobalFlags(args []string) (*GlobalOptions, []string, error) {
	opts := &GlobalOptions{TimeoutSec: -1}
	var remaining []string

	i := 0
	for i < len(args) {
		arg := args[i]

		switch {
		case arg == "-q" || arg == "--quiet":
			opts.Quiet = true
			i++
		case arg == "-v" || arg == "--verbose":
			opts.Verbose = true
			i++
		case arg == "--concurrency":
			if i+1 >= len(args) {
				return nil, nil, fmt.Errorf("--concurrency requires a value")
			}
			n, err := parseConcurrency(args[i+1])
			if err != nil {
				return nil, nil, err
			}
			opts.Concurrency = n
			i += 2
		case strings.HasPrefix(arg, "--concurrency="):
			n, err := parseConcurrency(strings.TrimPrefix(arg, "--concurrency="))
			if err != nil {
				return nil, nil, err
			}
			opts.Concurrency = n
			i++
		case arg == "--timeout":
			if i+1 >= len(args) {
				return nil, nil, fmt.Errorf("--timeout requires a value (seconds)")
			}
			n, err := parseTimeout(args[i+1])
			if err != nil {
				return nil, nil, err
			}
			opts.TimeoutSec = n
			i += 2
		case strings.HasPrefix(arg, "--timeout="):
			n, err := parseTimeout(strings.TrimPrefix(arg, "--timeout="))
			if err != nil {
				return nil, nil, err
			}
			opts.TimeoutSec = n
			i++
		case arg == "--":
			// Everything after -- is passed through
			remaining = append(remaining, args[i:]...)
			i = len(args)
		default:
			remaining = append(remaining, arg)
			i++
		}
	}

	if opts.Quiet && opts.Verbose {
		return nil, nil, fmt.Errorf("--quiet and --verbose are mutually exclusive")
	}

	// Apply verbosity settings to the global output writer so all
	// commands report consistently.
	applyVerbosityToOutput(opts)

	return opts, remaining, nil
}

func parseConcurrency(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid --concurrency value %q (want a positive integer)", value)
	}
	return n, nil
}

func parseTimeout(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid --timeout value %q (want seconds, 0 disables)", value)
	}
	return n, nil
}

func printUsage() {
	w := output.New()

	w.HelpTitle("monoctl - monorepo task orchestration and report aggregation")

	w.HelpSection("Usage:")
	w.HelpUsage("monoctl run <operation> [flags]      Run an operation across all units")
	w.HelpUsage("monoctl <operation> [flags]          Shorthand for 'run' with a built-in operation")

	w.HelpSection("Operations:")
	ops := operation.Known()
	width := 0
	for _, op := range ops {
		if len(op) > width {
			width = len(op)
		}
	}
	for _, op := range ops {
		w.HelpCommand(op, operation.Describe(op), width)
	}

	w.HelpSection("Commands:")
	w.HelpCommand("run <operation>", "Run an operation for every manifest unit", 26)
	w.HelpCommand("regenerate-manifest", "Rescan the tree and rewrite the unit manifest", 26)
	w.HelpCommand("aggregate-reports <kind>", "Merge unit artifacts (test-results, coverage)", 26)
	w.HelpCommand("clean <reports|units|all>", "Remove aggregate reports and/or clean units", 26)
	w.HelpCommand("units", "List manifest units and their classification", 26)
	w.HelpCommand("config validate", "Validate .monoctl/config.json", 26)
	w.HelpCommand("completion <shell>", "Generate shell completion (bash, zsh, fish)", 26)
	w.HelpCommand("version", "Show version information", 26)

	w.HelpSection("Global Flags:")
	w.HelpFlag("-q, --quiet", "Minimal output (errors only)", widthFlagWithValue)
	w.HelpFlag("-v, --verbose", "Stream unit command output", widthFlagWithValue)
	w.HelpFlag("--concurrency=<n>", "Run up to n units at once", widthFlagWithValue)
	w.HelpFlag("--timeout=<sec>", "Per-unit command timeout (0 disables)", widthFlagWithValue)
	w.HelpFlag("-h, --help", "Show this help", widthFlagWithValue)
	w.HelpFlag("--version", "Show version", widthFlagWithValue)

	w.HelpSection("Examples:")
	w.HelpExample("monoctl regenerate-manifest", "Rescan units into .monoctl/manifest.yaml")
	w.HelpExample("monoctl run test", "Run tests for every unit")
	w.HelpExample("monoctl install --concurrency=4", "Install dependencies four units at a time")
	w.HelpExample("monoctl aggregate-reports coverage", "Merge per-unit coverage into one tracefile")
	w.Println("")
}
