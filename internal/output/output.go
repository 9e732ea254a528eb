// Package output provides styled terminal output for the mcpkit CLI.
//
// Functions use lipgloss for styling but abstract away the details from
// callers. When JSON mode is enabled every message is suppressed so the
// command can emit a single machine-readable object instead.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	verboseMode bool
	jsonMode    bool

	writer io.Writer = os.Stdout
)

// SetVerbose enables or disables verbose output for debugging.
// Called by the CLI when the --verbose flag is set.
func SetVerbose(v bool) {
	verboseMode = v
}

// SetJSON enables JSON mode: all styled output is suppressed.
func SetJSON(v bool) {
	jsonMode = v
}

// JSONEnabled reports whether JSON mode is active.
func JSONEnabled() bool {
	return jsonMode
}

// SetWriter redirects output, used by tests to capture messages.
func SetWriter(w io.Writer) {
	writer = w
}

// Success prints a completed-operation message in green.
//
// Example:
//
//	output.Success("Added tool: search_docs")
func Success(msg string) {
	emit(successStyle.Render("✔ " + msg))
}

// Error prints a failure that needs user attention in red.
func Error(msg string) {
	emit(errorStyle.Render("✖ " + msg))
}

// Warn prints a non-blocking problem in yellow, e.g. an advisory
// validation check that failed.
func Warn(msg string) {
	emit(warnStyle.Render("⚠ " + msg))
}

// Info prints a status update or explanation in cyan.
func Info(msg string) {
	emit(infoStyle.Render("ℹ " + msg))
}

// Step prints an indented actionable next step in gray.
//
// Example:
//
//	output.Step("cd myserver")
//	output.Step("npm install")
func Step(msg string) {
	emit(stepStyle.Render("   " + msg))
}

// Verbose prints a debug message only when verbose mode is enabled.
func Verbose(msg string) {
	if verboseMode {
		emit(stepStyle.Render("· " + msg))
	}
}

func emit(line string) {
	if jsonMode {
		return
	}
	fmt.Fprintln(writer, line)
}
