package models

import "fmt"

// Severity is the level of a reported diagnostic
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

// String returns the lower-case severity name
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Diagnostic is a message attached to a marked element
type Diagnostic struct {
	Severity Severity      // diagnostic level
	Kind     ErrorType     // what went wrong
	Message  string        // fixed or formatted message text
	Element  MarkedElement // element the message is addressed at
}

// String formats the diagnostic the way compilers do: position: severity: message
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Element.Position, d.Severity, d.Message)
}
