package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerParser_IsCandidate(t *testing.T) {
	parser := NewMarkerParser(nil)

	tests := []struct {
		comment  string
		expected bool
	}{
		{"//builder::property", true},
		{"// builder::property", true},
		{"  //builder::unknown", true},
		{"//builder::", true},
		{"// SetAge sets the age", false},
		{"/* builder::property */", false},
		{"//route::get /users", false},
		{"//go:generate buildergen ./...", false},
	}

	for _, tt := range tests {
		t.Run(tt.comment, func(t *testing.T) {
			assert.Equal(t, tt.expected, parser.IsCandidate(tt.comment))
		})
	}
}

func TestMarkerParser_Parse(t *testing.T) {
	parser := NewMarkerParser(nil)
	location := SourceLocation{File: "person.go", Line: 12, Column: 1}

	t.Run("property marker", func(t *testing.T) {
		marker, err := parser.Parse("//builder::property", location)
		require.NoError(t, err)
		assert.Equal(t, PropertyMarker, marker.Type)
		assert.Equal(t, location, marker.Location)
		assert.Equal(t, "//builder::property", marker.Raw)
		assert.Equal(t, "//builder::property", marker.String())
	})

	t.Run("whitespace is tolerated", func(t *testing.T) {
		marker, err := parser.Parse("  // builder::property\t", location)
		require.NoError(t, err)
		assert.Equal(t, PropertyMarker, marker.Type)
	})

	errorCases := []struct {
		name    string
		comment string
		errMsg  string
	}{
		{"unknown marker", "//builder::field", "unknown marker //builder::field"},
		{"trailing arguments", "//builder::property -Name=x", "malformed marker"},
		{"missing name", "//builder::", "malformed marker"},
		{"wrong namespace", "//other::property", "namespace must be"},
	}

	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.comment, location)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	assert.Empty(t, registry.ListTypes())
	assert.False(t, registry.IsRegistered(PropertyMarker))

	require.NoError(t, RegisterBuiltinSchemas(registry))
	assert.True(t, registry.IsRegistered(PropertyMarker))

	schema, err := registry.GetSchema(PropertyMarker)
	require.NoError(t, err)
	assert.Equal(t, PropertyMarkerSchema.Description, schema.Description)

	err = registry.Register(PropertyMarkerSchema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	err = registry.Register(MarkerSchema{Type: "builder::other"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a description")

	_, err = registry.GetSchema("builder::missing")
	assert.Error(t, err)
}

func TestDefaultRegistry(t *testing.T) {
	assert.Same(t, DefaultRegistry(), DefaultRegistry())
	assert.True(t, DefaultRegistry().IsRegistered(PropertyMarker))
}
