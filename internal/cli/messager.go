package cli

import (
	"sync"

	"github.com/toyz/buildergen/internal/models"
)

// Messager collects diagnostics for a generation pass and echoes them
// through the reporter as they arrive
type Messager struct {
	mu          sync.Mutex
	reporter    *DiagnosticReporter
	diagnostics []models.Diagnostic
}

// NewMessager creates a messager. A nil reporter only collects.
func NewMessager(reporter *DiagnosticReporter) *Messager {
	return &Messager{reporter: reporter}
}

// Report records a diagnostic
func (m *Messager) Report(d models.Diagnostic) {
	m.mu.Lock()
	m.diagnostics = append(m.diagnostics, d)
	m.mu.Unlock()

	if m.reporter != nil {
		m.reporter.ReportDiagnostic(d)
	}
}

// Diagnostics returns a copy of everything reported so far
func (m *Messager) Diagnostics() []models.Diagnostic {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Diagnostic, len(m.diagnostics))
	copy(out, m.diagnostics)
	return out
}

// Count returns the number of diagnostics with the given severity
func (m *Messager) Count(severity models.Severity) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, d := range m.diagnostics {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

// HasErrors reports whether any ERROR diagnostic was reported
func (m *Messager) HasErrors() bool {
	return m.Count(models.SeverityError) > 0
}
