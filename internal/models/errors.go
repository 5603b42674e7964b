package models

import (
	"errors"
	"fmt"
)

// ErrNameConflict is returned when two valid setters share a method name
var ErrNameConflict = errors.New("duplicate setter name")

// ErrorType represents different types of generator errors
type ErrorType int

const (
	ErrorTypeStructuralViolation ErrorType = iota
	ErrorTypeNameConflict
	ErrorTypeEmissionIO
	ErrorTypeFileSystem
	ErrorTypeValidation
	ErrorTypeConfiguration
	ErrorTypeGeneration
)

// String returns a human readable name for the error type
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeStructuralViolation:
		return "Structural Violation"
	case ErrorTypeNameConflict:
		return "Name Conflict"
	case ErrorTypeEmissionIO:
		return "Emission I/O Failure"
	case ErrorTypeFileSystem:
		return "File System Error"
	case ErrorTypeValidation:
		return "Validation Error"
	case ErrorTypeConfiguration:
		return "Configuration Error"
	case ErrorTypeGeneration:
		return "Code Generation Error"
	default:
		return "Unknown Error"
	}
}

// GeneratorError represents an error that occurred during code generation
type GeneratorError struct {
	Type        ErrorType              // type of error
	Position    Position               // where the error occurred, if known
	Message     string                 // error message
	Cause       error                  // underlying error cause
	Suggestions []string               // actionable hints for the user
	Context     map[string]interface{} // additional context information
}

// Error implements the error interface
func (e *GeneratorError) Error() string {
	msg := e.Message
	if e.Position.IsValid() {
		msg = fmt.Sprintf("%s: %s", e.Position, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error cause
func (e *GeneratorError) Unwrap() error {
	return e.Cause
}

// WithContext adds a context value and returns the error for chaining
func (e *GeneratorError) WithContext(key string, value interface{}) *GeneratorError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewEmissionError wraps a failure to create, write or close a compilation unit
func NewEmissionError(unit string, cause error) *GeneratorError {
	return &GeneratorError{
		Type:    ErrorTypeEmissionIO,
		Message: fmt.Sprintf("failed to emit %s", unit),
		Cause:   cause,
		Suggestions: []string{
			"Check that the package directory is writable",
			"Remove stale generated files with `buildergen clean`",
		},
		Context: map[string]interface{}{"unit": unit},
	}
}

// IsErrorType reports whether err wraps a GeneratorError of the given type
func IsErrorType(err error, t ErrorType) bool {
	var genErr *GeneratorError
	if errors.As(err, &genErr) {
		return genErr.Type == t
	}
	return false
}
