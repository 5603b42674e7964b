package models

import "fmt"

// Setter is a single entry of a SetterDescriptor
type Setter struct {
	Name      string // setter method name
	ParamType string // type of its single parameter
}

// SetterDescriptor maps setter names to their parameter type while
// remembering insertion order. Keys are unique.
type SetterDescriptor struct {
	entries []Setter
	index   map[string]int
}

// NewSetterDescriptor creates an empty descriptor
func NewSetterDescriptor() *SetterDescriptor {
	return &SetterDescriptor{
		index: make(map[string]int),
	}
}

// Add appends a setter. Adding a name that is already present returns an
// error wrapping ErrNameConflict and leaves the descriptor unchanged.
func (d *SetterDescriptor) Add(name, paramType string) error {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if _, exists := d.index[name]; exists {
		return fmt.Errorf("%w: %s", ErrNameConflict, name)
	}
	d.index[name] = len(d.entries)
	d.entries = append(d.entries, Setter{Name: name, ParamType: paramType})
	return nil
}

// Get returns the parameter type registered for a setter name
func (d *SetterDescriptor) Get(name string) (string, bool) {
	i, exists := d.index[name]
	if !exists {
		return "", false
	}
	return d.entries[i].ParamType, true
}

// Entries returns the setters in insertion order
func (d *SetterDescriptor) Entries() []Setter {
	out := make([]Setter, len(d.entries))
	copy(out, d.entries)
	return out
}

// Len returns the number of setters
func (d *SetterDescriptor) Len() int {
	return len(d.entries)
}
