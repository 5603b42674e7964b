package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/buildergen/internal/models"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
	noColor bool
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     os.Stderr,
	}
}

// SetOutput redirects the reporter, disabling color for non-terminal writers
func (r *DiagnosticReporter) SetOutput(out io.Writer, colored bool) {
	r.out = out
	r.noColor = !colored
}

// ReportDiagnostic prints one element diagnostic as position: severity: message
func (r *DiagnosticReporter) ReportDiagnostic(d models.Diagnostic) {
	var severity *color.Color
	switch d.Severity {
	case models.SeverityError:
		severity = r.color(color.FgRed, color.Bold)
	case models.SeverityWarning:
		severity = r.color(color.FgYellow, color.Bold)
	default:
		severity = r.color(color.FgCyan)
	}

	fmt.Fprintf(r.out, "%s: ", d.Element.Position)
	severity.Fprintf(r.out, "%s", d.Severity)
	fmt.Fprintf(r.out, ": %s\n", d.Message)

	if r.verbose && d.Element.EnclosingType != "" {
		fmt.Fprintf(r.out, "   element: %s (%s)\n", d.Element, d.Element.EnclosingType)
	}
}

// ReportWarning prints a single warning line
func (r *DiagnosticReporter) ReportWarning(message string) {
	r.color(color.FgYellow, color.Bold).Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError provides comprehensive error reporting. Joined errors are
// reported one by one.
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	fmt.Fprintf(r.out, "\nERROR: Code Generation Failed\n")
	fmt.Fprintf(r.out, "=============================\n\n")

	for _, e := range splitJoined(err) {
		var genErr *models.GeneratorError
		if errors.As(e, &genErr) {
			r.reportGeneratorError(genErr)
		} else {
			fmt.Fprintf(r.out, "Message: %s\n\n", e.Error())
		}
	}

	if !r.verbose {
		fmt.Fprintf(r.out, "Run with --verbose for more detailed output\n")
	}
}

// reportGeneratorError reports a GeneratorError with full context and suggestions
func (r *DiagnosticReporter) reportGeneratorError(genErr *models.GeneratorError) {
	title := genErr.Type.String()
	r.color(color.FgRed, color.Bold).Fprintf(r.out, "Type: %s\n", title)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(title)+6))

	fmt.Fprintf(r.out, "Message: %s\n", genErr.Message)
	if genErr.Cause != nil {
		fmt.Fprintf(r.out, "Cause: %s\n", genErr.Cause.Error())
	}
	if genErr.Position.IsValid() {
		fmt.Fprintf(r.out, "Location: %s\n", genErr.Position)
	}
	fmt.Fprintln(r.out)

	if len(genErr.Context) > 0 {
		r.printContext(genErr.Context)
	}
	if len(genErr.Suggestions) > 0 {
		r.printSuggestions(genErr.Suggestions)
	}
	if r.verbose && genErr.Cause != nil {
		r.printErrorChain(genErr.Cause)
	}
}

// printContext prints context information sorted by key
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(r.out, "Context:\n")
	for _, key := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), context[key])
	}
	fmt.Fprintln(r.out)
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, suggestion)
	}
	fmt.Fprintln(r.out)
}

// printErrorChain walks single-cause wrapping below a GeneratorError
func (r *DiagnosticReporter) printErrorChain(err error) {
	fmt.Fprintf(r.out, "Error Chain:\n")
	for level := 1; err != nil; level++ {
		fmt.Fprintf(r.out, "   %d. %s\n", level, err.Error())
		err = errors.Unwrap(err)
	}
	fmt.Fprintln(r.out)
}

// Debug prints debug information when verbose mode is enabled
func (r *DiagnosticReporter) Debug(format string, args ...interface{}) {
	if r.verbose {
		fmt.Fprintf(r.out, "[DEBUG] "+format+"\n", args...)
	}
}

func (r *DiagnosticReporter) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if r.noColor {
		c.DisableColor()
	}
	return c
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// splitJoined flattens errors.Join trees into their leaves
func splitJoined(err error) []error {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}

	var leaves []error
	for _, e := range joined.Unwrap() {
		leaves = append(leaves, splitJoined(e)...)
	}
	return leaves
}
