package cli

import (
	"fmt"
	"strings"

	"github.com/monoctl/monoctl/internal/operation"
	"github.com/monoctl/monoctl/internal/output"
)

// cmdCompletion generates shell completion scripts.
func cmdCompletion(args []string) int {
	w := output.New()
	shell := ""
	alias := ""

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			printCompletionUsage()
			return 0
		case strings.HasPrefix(arg, "--alias="):
			alias = strings.TrimPrefix(arg, "--alias=")
		case arg == "--alias":
			w.ErrorPrefix("completion: --alias requires a value (--alias=<name>)")
			return 2
		case strings.HasPrefix(arg, "-"):
			w.ErrorPrefix("completion: unknown flag: %s", arg)
			printCompletionUsage()
			return 2
		default:
			if shell != "" {
				w.ErrorPrefix("completion: unexpected argument: %s", arg)
				return 2
			}
			shell = arg
		}
	}

	if shell == "" {
		w.ErrorPrefix("completion: shell required (bash, zsh, fish)")
		printCompletionUsage()
		return 2
	}

	cmdName := "monoctl"
	if alias != "" {
		cmdName = alias
	}

	switch shell {
	case "bash":
		fmt.Print(generateBashCompletion(cmdName))
	case "zsh":
		fmt.Print(generateZshCompletion(cmdName))
	case "fish":
		fmt.Print(generateFishCompletion(cmdName))
	default:
		w.ErrorPrefix("completion: unsupported shell %q (use bash, zsh, or fish)", shell)
		return 2
	}

	return 0
}

// printCompletionUsage prints the help text for the completion command.
func printCompletionUsage() {
	w := output.New()

	w.HelpTitle("monoctl completion - generate shell completion scripts")

	w.HelpSection("Usage:")
	w.HelpUsage("monoctl completion <shell> [--alias=<name>]")

	w.HelpSection("Arguments:")
	w.HelpFlag("<shell>", "Shell type: bash, zsh, or fish", 14)

	w.HelpSection("Options:")
	w.HelpFlag("--alias=<name>", "Generate completion for command alias", 14)
	w.HelpFlag("-h, --help", "Show this help", 14)

	w.HelpSection("Installation:")
	w.Println("  Bash:  eval \"$(monoctl completion bash)\"")
	w.Println("  Zsh:   eval \"$(monoctl completion zsh)\"")
	w.Println("  Fish:  monoctl completion fish | source")
	w.Println("")
}

// builtinCommands returns the list of built-in CLI commands.
func builtinCommands() []string {
	return []string{
		"run",
		"regenerate-manifest",
		"aggregate-reports",
		"clean",
		"units",
		"config",
		"completion",
		"version",
		"help",
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []string {
	return []string{
		"--quiet",
		"--verbose",
		"--concurrency",
		"--timeout",
		"--help",
		"--version",
	}
}

func generateBashCompletion(cmdName string) string {
	commands := append(builtinCommands(), operation.Known()...)
	flags := globalFlags()

	funcName := "_" + strings.ReplaceAll(cmdName, "-", "_") + "_completions"

	var aliasNote string
	if cmdName == "monoctl" {
		aliasNote = `
# Alias support:
# If you use an alias (e.g., alias mc="monoctl"), add completion for it:
#   complete -F _monoctl_completions mc
# Or generate completion directly for your alias:
#   eval "$(monoctl completion bash --alias=mc)"
`
	} else {
		aliasNote = fmt.Sprintf(`
# This completion is generated for the alias "%s"
# Make sure you have the alias defined: alias %s="monoctl"
`, cmdName, cmdName)
	}

	return fmt.Sprintf(`# monoctl bash completion
# Add to ~/.bashrc: eval "$(monoctl completion bash)"
%s
%s() {
    local cur prev words cword
    _init_completion || return

    local commands="%s"
    local flags="%s"
    local operations="%s"
    local report_kinds="test-results coverage"
    local clean_targets="reports units all"
    local config_subcommands="validate"
    local completion_shells="bash zsh fish"

    case "${prev}" in
        %s)
            COMPREPLY=($(compgen -W "${commands} ${flags}" -- "${cur}"))
            return
            ;;
        run)
            COMPREPLY=($(compgen -W "${operations}" -- "${cur}"))
            return
            ;;
        aggregate-reports)
            COMPREPLY=($(compgen -W "${report_kinds}" -- "${cur}"))
            return
            ;;
        clean)
            COMPREPLY=($(compgen -W "${clean_targets}" -- "${cur}"))
            return
            ;;
        config)
            COMPREPLY=($(compgen -W "${config_subcommands}" -- "${cur}"))
            return
            ;;
        completion)
            COMPREPLY=($(compgen -W "${completion_shells}" -- "${cur}"))
            return
            ;;
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=($(compgen -W "${flags}" -- "${cur}"))
        return
    fi

    COMPREPLY=($(compgen -W "${commands} ${flags}" -- "${cur}"))
}

complete -F %s %s
`, aliasNote, funcName, strings.Join(commands, " "), strings.Join(flags, " "),
		strings.Join(operation.Known(), " "), cmdName, funcName, cmdName)
}

func generateZshCompletion(cmdName string) string {
	funcName := "_" + strings.ReplaceAll(cmdName, "-", "_")

	var aliasNote string
	if cmdName == "monoctl" {
		aliasNote = `
# Alias support:
# If you use an alias (e.g., alias mc="monoctl"), add completion for it:
#   compdef _monoctl mc
# Or generate completion directly for your alias:
#   eval "$(monoctl completion zsh --alias=mc)"
`
	} else {
		aliasNote = fmt.Sprintf(`
# This completion is generated for the alias "%s"
# Make sure you have the alias defined: alias %s="monoctl"
`, cmdName, cmdName)
	}

	var opEntries strings.Builder
	for _, op := range operation.Known() {
		fmt.Fprintf(&opEntries, "        '%s:%s'\n", op, operation.Describe(op))
	}

	return fmt.Sprintf(`#compdef %s
# monoctl zsh completion
# Add to ~/.zshrc: eval "$(monoctl completion zsh)"
%s
%s() {
    local -a commands operations flags report_kinds clean_targets config_subcommands completion_shells

    commands=(
        'run:Run an operation across all units'
        'regenerate-manifest:Rescan the tree and rewrite the unit manifest'
        'aggregate-reports:Merge unit artifacts'
        'clean:Remove aggregate reports and/or clean units'
        'units:List manifest units'
        'config:Configuration utilities'
        'completion:Generate shell completion'
        'version:Show version information'
        'help:Show help'
    )

    operations=(
%s    )

    flags=(
        '--quiet[Minimal output]'
        '--verbose[Stream unit command output]'
        '--concurrency=[Run up to n units at once]'
        '--timeout=[Per-unit command timeout in seconds]'
        '--help[Show help]'
        '--version[Show version]'
    )

    report_kinds=(
        'test-results:Merge JUnit XML files'
        'coverage:Merge LCOV tracefiles'
    )

    clean_targets=(
        'reports:Remove the aggregate report output directory'
        'units:Run the clean operation for every unit'
        'all:Both'
    )

    config_subcommands=(
        'validate:Validate configuration'
    )

    completion_shells=(
        'bash:Generate bash completion'
        'zsh:Generate zsh completion'
        'fish:Generate fish completion'
    )

    local cur_pos=$((CURRENT - 1))

    if (( cur_pos == 1 )); then
        _describe -t commands 'command' commands
        _describe -t operations 'operation' operations
        _arguments -s $flags[@]
        return
    fi

    case "${words[2]}" in
        run)
            _describe -t operations 'operation' operations
            ;;
        aggregate-reports)
            _describe -t report-kinds 'report kind' report_kinds
            ;;
        clean)
            _describe -t clean-targets 'clean target' clean_targets
            ;;
        config)
            _describe -t config-subcommands 'config subcommand' config_subcommands
            ;;
        completion)
            _describe -t shells 'shell' completion_shells
            ;;
        *)
            _arguments -s $flags[@]
            ;;
    esac
}

compdef %s %s
`, cmdName, aliasNote, funcName, opEntries.String(), funcName, cmdName)
}

func generateFishCompletion(cmdName string) string {
	var sb strings.Builder

	var aliasNote string
	if cmdName == "monoctl" {
		aliasNote = `# Alias support:
# If you use an alias (e.g., alias mc="monoctl"), add completion for it:
#   complete -c mc -w monoctl
# Or generate completion directly for your alias:
#   monoctl completion fish --alias=mc | source
`
	} else {
		aliasNote = fmt.Sprintf(`# This completion is generated for the alias "%s"
# Make sure you have the alias defined: alias %s="monoctl"
`, cmdName, cmdName)
	}

	sb.WriteString(fmt.Sprintf(`# monoctl fish completion
# Add to config: monoctl completion fish | source

%s
# Disable file completion by default
complete -c %s -f

`, aliasNote, cmdName))

	commandDescs := []struct{ name, desc string }{
		{"run", "Run an operation across all units"},
		{"regenerate-manifest", "Rescan the tree and rewrite the unit manifest"},
		{"aggregate-reports", "Merge unit artifacts"},
		{"clean", "Remove aggregate reports and/or clean units"},
		{"units", "List manifest units"},
		{"config", "Configuration utilities"},
		{"completion", "Generate shell completion"},
		{"version", "Show version information"},
		{"help", "Show help"},
	}
	for _, c := range commandDescs {
		sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_use_subcommand' -a '%s' -d '%s'\n", cmdName, c.name, c.desc))
	}

	sb.WriteString("\n# Operations\n")
	for _, op := range operation.Known() {
		sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_use_subcommand; or __fish_seen_subcommand_from run' -a '%s' -d '%s'\n",
			cmdName, op, operation.Describe(op)))
	}

	sb.WriteString("\n# Global flags\n")
	sb.WriteString(fmt.Sprintf("complete -c %s -s q -l quiet -d 'Minimal output'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -s v -l verbose -d 'Stream unit command output'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -l concurrency -d 'Run up to n units at once' -x\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -l timeout -d 'Per-unit command timeout in seconds' -x\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -l help -d 'Show help'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -l version -d 'Show version'\n", cmdName))

	sb.WriteString("\n# aggregate-reports kinds\n")
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from aggregate-reports' -a 'test-results' -d 'Merge JUnit XML files'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from aggregate-reports' -a 'coverage' -d 'Merge LCOV tracefiles'\n", cmdName))

	sb.WriteString("\n# clean targets\n")
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from clean' -a 'reports units all'\n", cmdName))

	sb.WriteString("\n# config subcommands\n")
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from config' -a 'validate' -d 'Validate configuration'\n", cmdName))

	sb.WriteString("\n# completion subcommands\n")
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish'\n", cmdName))

	return sb.String()
}
