package annotations

import (
	"fmt"
	"sort"
	"sync"

	"github.com/toyz/buildergen/internal/models"
)

// MarkerRegistry defines the interface for managing marker schemas
type MarkerRegistry interface {
	// Register a new marker type with its schema
	Register(schema MarkerSchema) error

	// GetSchema retrieves the schema for a marker type
	GetSchema(markerType models.MarkerType) (MarkerSchema, error)

	// ListTypes returns all registered marker types in sorted order
	ListTypes() []models.MarkerType

	// IsRegistered checks if a marker type is registered
	IsRegistered(markerType models.MarkerType) bool
}

// registry is the concrete implementation of MarkerRegistry
type registry struct {
	mu      sync.RWMutex
	schemas map[models.MarkerType]MarkerSchema
}

// NewRegistry creates an empty marker registry
func NewRegistry() MarkerRegistry {
	return &registry{
		schemas: make(map[models.MarkerType]MarkerSchema),
	}
}

var (
	defaultRegistry     MarkerRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the global registry with the builtin markers
func DefaultRegistry() MarkerRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := RegisterBuiltinSchemas(defaultRegistry); err != nil {
			panic(fmt.Sprintf("failed to register builtin markers: %v", err))
		}
	})
	return defaultRegistry
}

// RegisterBuiltinSchemas registers every marker shipped with the generator
func RegisterBuiltinSchemas(r MarkerRegistry) error {
	return r.Register(PropertyMarkerSchema)
}

// Register adds a marker schema to the registry
func (r *registry) Register(schema MarkerSchema) error {
	if err := schema.Validate(); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[schema.Type]; exists {
		return fmt.Errorf("marker type %s is already registered", schema.Type)
	}

	r.schemas[schema.Type] = schema
	return nil
}

// GetSchema retrieves the schema for a marker type
func (r *registry) GetSchema(markerType models.MarkerType) (MarkerSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, exists := r.schemas[markerType]
	if !exists {
		return MarkerSchema{}, fmt.Errorf("marker type %s is not registered", markerType)
	}
	return schema, nil
}

// ListTypes returns all registered marker types
func (r *registry) ListTypes() []models.MarkerType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]models.MarkerType, 0, len(r.schemas))
	for markerType := range r.schemas {
		types = append(types, markerType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// IsRegistered checks if a marker type is registered
func (r *registry) IsRegistered(markerType models.MarkerType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.schemas[markerType]
	return exists
}
