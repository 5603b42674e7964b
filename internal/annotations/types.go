package annotations

import (
	"fmt"

	"github.com/toyz/buildergen/internal/models"
)

const (
	// Namespace is the prefix shared by every marker comment
	Namespace = "builder"

	// Separator splits the namespace from the marker name
	Separator = "::"
)

// PropertyMarker selects setter methods to expose on a generated builder
const PropertyMarker models.MarkerType = Namespace + Separator + "property"

// SourceLocation represents the location of a marker in source code
type SourceLocation struct {
	File   string // File path
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// ParsedMarker represents a marker comment that matched the grammar and a
// registered schema
type ParsedMarker struct {
	Type     models.MarkerType // marker type, e.g. builder::property
	Location SourceLocation    // where the comment starts
	Raw      string            // original comment text
}

// String returns the marker as it is written in source
func (m *ParsedMarker) String() string {
	return "//" + string(m.Type)
}

// MarkerSchema describes a marker the generator understands
type MarkerSchema struct {
	Type        models.MarkerType // full marker type
	Description string            // human readable description
	Examples    []string          // usage examples
}

// Validate checks that the schema is usable
func (s MarkerSchema) Validate() error {
	if s.Type == "" {
		return fmt.Errorf("marker type cannot be empty")
	}
	if s.Description == "" {
		return fmt.Errorf("marker %s requires a description", s.Type)
	}
	return nil
}

// PropertyMarkerSchema defines the schema for //builder::property
var PropertyMarkerSchema = MarkerSchema{
	Type:        PropertyMarker,
	Description: "Exposes a single-argument setXxx method on the generated <Type>Builder",
	Examples: []string{
		"//builder::property",
	},
}
