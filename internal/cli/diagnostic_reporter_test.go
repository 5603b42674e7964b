package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/buildergen/internal/models"
)

func newTestReporter(verbose bool) (*DiagnosticReporter, *bytes.Buffer) {
	var out bytes.Buffer
	reporter := NewDiagnosticReporter(verbose)
	reporter.SetOutput(&out, false)
	return reporter, &out
}

func TestDiagnosticReporter_ReportDiagnostic(t *testing.T) {
	reporter, out := newTestReporter(false)

	reporter.ReportDiagnostic(models.Diagnostic{
		Severity: models.SeverityError,
		Message:  "boom",
		Element: models.MarkedElement{
			Name:          "GetAge",
			EnclosingType: "a.b.Person",
			Position:      models.Position{File: "person.go", Line: 7, Column: 2},
		},
	})
	assert.Equal(t, "person.go:7:2: error: boom\n", out.String())

	verbose, verboseOut := newTestReporter(true)
	verbose.ReportDiagnostic(models.Diagnostic{
		Severity: models.SeverityWarning,
		Message:  "careful",
		Element:  models.MarkedElement{Name: "SetAge", EnclosingType: "a.b.Person"},
	})
	assert.Equal(t, "unknown location: warning: careful\n   element: Person.SetAge (a.b.Person)\n", verboseOut.String())
}

func TestDiagnosticReporter_ReportError(t *testing.T) {
	reporter, out := newTestReporter(false)

	first := models.NewEmissionError("a.b.PersonBuilder", errors.New("disk full"))
	second := errors.New("plain failure")
	reporter.ReportError(errors.Join(first, second))

	text := out.String()
	assert.Contains(t, text, "Type: Emission I/O Failure")
	assert.Contains(t, text, "Message: failed to emit a.b.PersonBuilder")
	assert.Contains(t, text, "Cause: disk full")
	assert.Contains(t, text, "   Unit: a.b.PersonBuilder")
	assert.Contains(t, text, "Suggestions:\n   1. Check that the package directory is writable")
	assert.Contains(t, text, "Message: plain failure")
	assert.Contains(t, text, "Run with --verbose")

	out.Reset()
	reporter.ReportError(nil)
	assert.Empty(t, out.String())
}

func TestDiagnosticReporter_VerboseErrorChain(t *testing.T) {
	reporter, out := newTestReporter(true)

	root := errors.New("permission denied")
	reporter.ReportError(&models.GeneratorError{
		Type:    models.ErrorTypeFileSystem,
		Message: "failed to clean ./...",
		Cause:   errors.Join(root),
	})

	assert.Contains(t, out.String(), "Error Chain:\n   1. permission denied")
	assert.NotContains(t, out.String(), "Run with --verbose")
}

func TestMessager(t *testing.T) {
	reporter, out := newTestReporter(false)
	messager := NewMessager(reporter)

	assert.False(t, messager.HasErrors())

	messager.Report(models.Diagnostic{Severity: models.SeverityWarning, Message: "w"})
	assert.False(t, messager.HasErrors())

	messager.Report(models.Diagnostic{Severity: models.SeverityError, Message: "e"})
	assert.True(t, messager.HasErrors())
	assert.Equal(t, 1, messager.Count(models.SeverityError))
	assert.Len(t, messager.Diagnostics(), 2)
	assert.Contains(t, out.String(), "error: e")

	silent := NewMessager(nil)
	silent.Report(models.Diagnostic{Severity: models.SeverityError})
	assert.True(t, silent.HasErrors())
}

func TestFormatContextKey(t *testing.T) {
	assert.Equal(t, "Config File", formatContextKey("config_file"))
	assert.Equal(t, "Unit", formatContextKey("unit"))
}
