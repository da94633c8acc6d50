// Package output provides styled terminal output for the kestrel CLI.
//
// Everything prints to stderr: stdout is reserved for the analysis report
// in check mode and for protocol JSON in hook and serve modes. Functions
// use lipgloss for styling but abstract away the details from callers.
package output

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	verboseMode bool
)

// SetVerbose enables or disables verbose output for debugging.
// This should be called by the CLI when the --verbose flag is set.
func SetVerbose(v bool) {
	verboseMode = v
}

// Success prints a success message with ✅ emoji and green color.
// Use this for completed operations.
//
// Example:
//
//	output.Success("Created kestrel.yml")
func Success(msg string) {
	fmt.Fprintln(os.Stderr, successStyle.Render("✅ "+msg))
}

// Error prints an error message with ❌ emoji and red color.
// Use this for failures that need user attention.
func Error(msg string) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("❌ "+msg))
}

// Warn prints a warning message with ⚠️ emoji and yellow color.
// Use this for findings that do not stop the write.
func Warn(msg string) {
	fmt.Fprintln(os.Stderr, warnStyle.Render("⚠️  "+msg))
}

// Info prints an informational message with ℹ️ emoji and cyan color.
// Use this for status updates or explanations.
func Info(msg string) {
	fmt.Fprintln(os.Stderr, infoStyle.Render("ℹ️  "+msg))
}

// Step prints an indented step message in gray.
// Use this for actionable next steps or sub-items.
//
// Example:
//
//	output.Step("kestrel check app/services/order_service.py")
func Step(msg string) {
	fmt.Fprintln(os.Stderr, stepStyle.Render("   "+msg))
}

// Verbose prints a debug message with 🔍 emoji only if verbose mode is enabled.
func Verbose(msg string) {
	if verboseMode {
		fmt.Fprintln(os.Stderr, stepStyle.Render("🔍 "+msg))
	}
}
