package models

import "fmt"

// MarkerType identifies the marker comment that selected a group of elements
type MarkerType string

// Position represents a location in Go source code
type Position struct {
	File   string // file path
	Line   int    // line number (1-based)
	Column int    // column number (1-based)
}

// String returns the position in file:line:column form
func (p Position) String() string {
	if p.File == "" {
		return "unknown location"
	}
	if p.Line == 0 {
		return p.File
	}
	if p.Column == 0 {
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// IsValid reports whether the position points into a file
func (p Position) IsValid() bool {
	return p.File != ""
}

// MarkedElement represents a method declaration carrying a marker comment.
// The core only reads it; the discovering host owns it.
type MarkedElement struct {
	Name          string   // simple method name, e.g. SetAge
	ParamTypes    []string // declared parameter types in order
	EnclosingType string   // fully qualified owning type, e.g. example.com/app/models.Person
	PackageName   string   // package clause of the owning type, if known
	Imports       []string // import paths referenced by the parameter types
	Position      Position // where the method is declared
}

// String returns the element as Type.Method for diagnostics
func (e MarkedElement) String() string {
	if e.EnclosingType == "" {
		return e.Name
	}
	return SimpleName(e.EnclosingType) + "." + e.Name
}

// ElementGroup represents all elements sharing one marker in one processing pass
type ElementGroup struct {
	Marker   MarkerType      // marker the elements carry
	Elements []MarkedElement // elements in discovery order
}

// Len returns the number of elements in the group
func (g ElementGroup) Len() int {
	return len(g.Elements)
}

// ClassificationResult holds the stable partition of an ElementGroup
type ClassificationResult struct {
	ValidSetters   []MarkedElement // single-argument set-prefixed methods
	InvalidMethods []MarkedElement // everything else
}
