// Package output provides formatted output utilities for the CLI.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Writer handles CLI output formatting.
type Writer struct {
	out     io.Writer
	err     io.Writer
	color   bool
	quiet   bool
	verbose bool
}

// New creates a new Writer with default settings.
func New() *Writer {
	return &Writer{
		out:   os.Stdout,
		err:   os.Stderr,
		color: isTerminal(),
	}
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{
		out:   out,
		err:   err,
		color: color,
	}
}

// SetQuiet enables or disables quiet mode.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// SetVerbose enables or disables verbose mode.
func (w *Writer) SetVerbose(verbose bool) {
	w.verbose = verbose
}

// IsVerbose returns true if verbose mode is enabled.
func (w *Writer) IsVerbose() bool {
	return w.verbose
}

// Print writes to stdout.
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Error writes to stderr.
func (w *Writer) Error(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format, args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// Info prints an info message (skipped in quiet mode).
func (w *Writer) Info(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println(format, args...)
}

// Verbose prints a message only in verbose mode.
func (w *Writer) Verbose(format string, args ...interface{}) {
	if !w.verbose {
		return
	}
	w.Println(format, args...)
}

// Success prints a success message.
func (w *Writer) Success(format string, args ...interface{}) {
	if w.color {
		w.Println("\033[32m"+format+"\033[0m", args...)
	} else {
		w.Println(format, args...)
	}
}

// Warning prints a warning message (skipped in quiet mode).
func (w *Writer) Warning(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	if w.color {
		w.Errorln("\033[33mwarning: "+format+"\033[0m", args...)
	} else {
		w.Errorln("warning: "+format, args...)
	}
}

// WarningSimple prints a warning message to stderr with a colored prefix.
// Skipped in quiet mode: warnings are advisory, not errors.
func (w *Writer) WarningSimple(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Errorln("%swarning:%s %s", yellow, reset, msg)
	} else {
		w.Errorln("warning: %s", msg)
	}
}

// ErrorPrefix prints an error message with the monoctl prefix to stderr.
func (w *Writer) ErrorPrefix(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Errorln("%smonoctl:%s %s", red, reset, msg)
	} else {
		w.Errorln("monoctl: %s", msg)
	}
}

// UnitStart prints the start of a unit operation with enhanced visibility.
func (w *Writer) UnitStart(unit, operation string) {
	if w.quiet {
		return
	}
	// Empty line for visual separation
	w.Println("")
	label := fmt.Sprintf("─── [%s] %s ───", unit, operation)
	if w.color {
		w.Println("%s%s%s", bold+cyan, label, reset)
	} else {
		w.Println("%s", label)
	}
}

// UnitSuccess prints unit operation success.
func (w *Writer) UnitSuccess(unit, operation string) {
	if w.quiet {
		return
	}
	if w.color {
		w.Println("\033[32m[%s]\033[0m %s \033[32m✓\033[0m", unit, operation)
	} else {
		w.Println("[%s] %s done", unit, operation)
	}
}

// UnitFailed prints unit operation failure.
func (w *Writer) UnitFailed(unit, operation string, reason string) {
	if w.color {
		w.Errorln("\033[31m[%s] %s failed:\033[0m %s", unit, operation, reason)
	} else {
		w.Errorln("[%s] %s failed: %s", unit, operation, reason)
	}
}

// UnitSkipped prints a skipped unit operation.
func (w *Writer) UnitSkipped(unit, operation, reason string) {
	if w.quiet {
		return
	}
	if w.color {
		w.Println("%s[%s] %s skipped (%s)%s", dim, unit, operation, reason, reset)
	} else {
		w.Println("[%s] %s skipped (%s)", unit, operation, reason)
	}
}

// UnitInfo prints a unit information line.
func (w *Writer) UnitInfo(name, classification, path string) {
	if w.color {
		w.Println("%s%s%s (%s): %s", cyan+bold, name, reset, classification, path)
	} else {
		w.Println("%s (%s): %s", name, classification, path)
	}
}

// UnitDetail prints an indented unit detail.
func (w *Writer) UnitDetail(label, value string) {
	if w.color {
		w.Println("  %s%s:%s %s", dim, label, reset, value)
	} else {
		w.Println("  %s: %s", label, value)
	}
}

// Section prints a section header.
func (w *Writer) Section(title string) {
	if w.quiet {
		return
	}
	w.Println("")
	if w.color {
		w.Println("\033[1m=== %s ===\033[0m", title)
	} else {
		w.Println("=== %s ===", title)
	}
}

// List prints a list of items.
func (w *Writer) List(items []string) {
	for _, item := range items {
		w.Println("  - %s", item)
	}
}

// Table prints a simple table (skipped in quiet mode).
func (w *Writer) Table(headers []string, rows [][]string) {
	if w.quiet {
		return
	}
	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Print header
	var headerParts []string
	for i, h := range headers {
		headerParts = append(headerParts, fmt.Sprintf("%-*s", widths[i], h))
	}
	w.Println(strings.Join(headerParts, "  "))

	// Print separator
	var sepParts []string
	for _, width := range widths {
		sepParts = append(sepParts, strings.Repeat("-", width))
	}
	w.Println(strings.Join(sepParts, "  "))

	// Print rows
	for _, row := range rows {
		var rowParts []string
		for i, cell := range row {
			if i < len(widths) {
				rowParts = append(rowParts, fmt.Sprintf("%-*s", widths[i], cell))
			}
		}
		w.Println(strings.Join(rowParts, "  "))
	}
}

// SummaryHeader prints a summary section header (skipped in quiet mode).
func (w *Writer) SummaryHeader(title string) {
	if w.quiet {
		return
	}
	w.Println("")
	if w.color {
		w.Println("%s=== %s ===%s", bold+cyan, title, reset)
	} else {
		w.Println("=== %s ===", title)
	}
	w.Println("")
}

// SummaryItem prints a labeled summary item with value (skipped in quiet mode).
func (w *Writer) SummaryItem(label, value string) {
	if w.quiet {
		return
	}
	if w.color {
		w.Println("  %s%s:%s %s", dim, label, reset, value)
	} else {
		w.Println("  %s: %s", label, value)
	}
}

// SummaryPassed prints a passed/success items summary (skipped in quiet mode).
func (w *Writer) SummaryPassed(label, value string) {
	if w.quiet {
		return
	}
	if w.color {
		w.Println("  %s%s:%s %s%s%s", dim, label, reset, green, value, reset)
	} else {
		w.Println("  %s: %s", label, value)
	}
}

// SummaryFailed prints a failed items summary.
func (w *Writer) SummaryFailed(label, value string) {
	if w.color {
		w.Println("  %s%s:%s %s%s%s", dim, label, reset, red, value, reset)
	} else {
		w.Println("  %s: %s", label, value)
	}
}

// SummarySectionLabel prints a label for a summary section (e.g., "Units:").
// Skipped in quiet mode.
func (w *Writer) SummarySectionLabel(label string) {
	if w.quiet {
		return
	}
	if w.color {
		w.Println("  %s%s%s", dim, label, reset)
	} else {
		w.Println("  %s", label)
	}
}

// SummaryAction prints an item with status indicator, name, duration, and optional reason.
func (w *Writer) SummaryAction(name string, success bool, duration string, errMsg string) {
	if w.quiet {
		return
	}
	if w.color {
		if success {
			w.Print("    %s✓%s %-12s %s%s%s", green, reset, name, dim, duration, reset)
		} else {
			w.Print("    %s✗%s %-12s %s%s%s", red, reset, name, dim, duration, reset)
			if errMsg != "" {
				w.Print("  %s(%s)%s", dim, errMsg, reset)
			}
		}
	} else {
		if success {
			w.Print("    + %-12s %s", name, duration)
		} else {
			w.Print("    x %-12s %s", name, duration)
			if errMsg != "" {
				w.Print("  (%s)", errMsg)
			}
		}
	}
	w.Print("\n")
}

// FinalSuccess prints a final success message (skipped in quiet mode).
// FinalFailure has no such gate: failures always surface.
func (w *Writer) FinalSuccess(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println("")
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Println("%s%s%s", green, msg, reset)
	} else {
		w.Println("%s", msg)
	}
}

// FinalFailure prints a final failure message.
func (w *Writer) FinalFailure(format string, args ...interface{}) {
	w.Println("")
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Println("%s%s%s", red, msg, reset)
	} else {
		w.Println("%s", msg)
	}
}

// ValidationSuccess prints a validation success message (skipped in quiet mode).
func (w *Writer) ValidationSuccess(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Println("%s%s%s %s", green, "✓", reset, msg)
	} else {
		w.Println("%s", msg)
	}
}

// Hint prints a hint message for the user (skipped in quiet mode).
func (w *Writer) Hint(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Println("%s%s%s", dim, msg, reset)
	} else {
		w.Println("%s", msg)
	}
}

// isTerminal returns true if stdout is a terminal.
func isTerminal() bool {
	// Simple check - could be enhanced with golang.org/x/term
	if fi, _ := os.Stdout.Stat(); fi != nil {
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

// Semantic color roles for help output.
const (
	colorTitle       = bold + cyan   // Main title/brand
	colorSection     = bold + yellow // Section headers
	colorCommand     = bold + cyan   // Commands and subcommands
	colorPlaceholder = green         // Placeholders like <operation>, <kind>
	colorFlag        = yellow        // Flags like --concurrency
	colorDescription = dim           // Help text descriptions
	colorExample     = cyan          // Example commands
)

// HelpTitle formats the main help title line.
func (w *Writer) HelpTitle(title string) {
	if w.color {
		w.Println("%s%s%s", colorTitle, title, reset)
	} else {
		w.Println("%s", title)
	}
}

// HelpSection formats a section header (e.g., "Commands:").
func (w *Writer) HelpSection(title string) {
	w.Println("")
	if w.color {
		w.Println("%s%s%s", colorSection, title, reset)
	} else {
		w.Println("%s", title)
	}
}

// HelpCommand formats a command with its description.
func (w *Writer) HelpCommand(name, description string, width int) {
	if w.color {
		coloredName := w.colorPlaceholders(name)
		// Calculate display width (name without ANSI codes)
		padding := width - len(name)
		if padding < 0 {
			padding = 0
		}
		w.Println("  %s%s%s%s  %s%s%s", colorCommand, coloredName, reset, strings.Repeat(" ", padding), colorDescription, description, reset)
	} else {
		w.Println("  %-*s  %s", width, name, description)
	}
}

// HelpFlag formats a flag with its description.
func (w *Writer) HelpFlag(name, description string, width int) {
	if w.color {
		coloredName := w.colorPlaceholders(name)
		padding := width - len(name)
		if padding < 0 {
			padding = 0
		}
		w.Println("  %s%s%s%s  %s%s%s", colorFlag, coloredName, reset, strings.Repeat(" ", padding), colorDescription, description, reset)
	} else {
		w.Println("  %-*s  %s", width, name, description)
	}
}

// HelpExample formats an example command with description.
func (w *Writer) HelpExample(command, description string) {
	if w.color {
		w.Println("  %s%s%s", colorExample, command, reset)
		if description != "" {
			w.Println("      %s%s%s", colorDescription, description, reset)
		}
	} else {
		w.Println("  %s", command)
		if description != "" {
			w.Println("      %s", description)
		}
	}
}

// HelpUsage formats usage lines.
func (w *Writer) HelpUsage(usage string) {
	if w.color {
		colored := w.colorPlaceholders(usage)
		w.Println("  %s", colored)
	} else {
		w.Println("  %s", usage)
	}
}

// colorPlaceholders highlights <placeholder> patterns in text.
func (w *Writer) colorPlaceholders(text string) string {
	var result strings.Builder
	i := 0
	for i < len(text) {
		if text[i] == '<' {
			// Find closing >
			end := strings.Index(text[i:], ">")
			if end != -1 {
				// Found a placeholder
				placeholder := text[i : i+end+1]
				result.WriteString(reset)
				result.WriteString(colorPlaceholder)
				result.WriteString(placeholder)
				result.WriteString(reset)
				i += end + 1
				continue
			}
		}
		result.WriteByte(text[i])
		i++
	}
	return result.String()
}
