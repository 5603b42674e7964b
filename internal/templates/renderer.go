package templates

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/toyz/buildergen/internal/models"
)

// setterData is the data passed to the setter slot
type setterData struct {
	Name              string
	ParamType         string
	OwningSimpleName  string
	BuilderSimpleName string
}

// Renderer renders builder compilation units from the slot templates
type Renderer struct {
	registry *TemplateRegistry
	tmpl     *template.Template
}

// NewRenderer parses every slot of the default registry
func NewRenderer() (*Renderer, error) {
	return NewRendererWithRegistry(NewTemplateRegistry())
}

// NewRendererWithRegistry parses every slot of the given registry
func NewRendererWithRegistry(registry *TemplateRegistry) (*Renderer, error) {
	funcMap := template.FuncMap{
		"constructorName": ConstructorName,
		"callArgs":        callArgs,
	}

	root := template.New("builder").Funcs(funcMap)
	for _, name := range registry.Names() {
		text, exists := registry.Get(name)
		if !exists {
			return nil, fmt.Errorf("missing template slot %s", name)
		}
		if _, err := root.New(name).Parse(text); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
	}

	return &Renderer{
		registry: registry,
		tmpl:     root,
	}, nil
}

// MustNewRenderer is like NewRenderer but panics on a broken slot
func MustNewRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// RenderSlot executes a single slot with the given data
func (r *Renderer) RenderSlot(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// Render assembles the complete source of a builder. Non-empty slots are
// separated by one blank line; the same spec always yields the same bytes.
func (r *Renderer) Render(spec *models.BuilderSpec) (string, error) {
	if spec == nil {
		return "", fmt.Errorf("builder spec cannot be nil")
	}
	if spec.Setters == nil || spec.Setters.Len() == 0 {
		return "", fmt.Errorf("builder %s has no setters", spec.BuilderFQN)
	}

	parts := make([]string, 0, len(slotOrder)+spec.Setters.Len())
	for _, name := range slotOrder {
		part, err := r.RenderSlot(name, spec)
		if err != nil {
			return "", err
		}
		if part != "" {
			parts = append(parts, part)
		}
	}

	for _, setter := range spec.Setters.Entries() {
		part, err := r.RenderSlot(SlotSetter, setterData{
			Name:              setter.Name,
			ParamType:         setter.ParamType,
			OwningSimpleName:  spec.OwningSimpleName,
			BuilderSimpleName: spec.BuilderSimpleName,
		})
		if err != nil {
			return "", fmt.Errorf("failed to render setter %s: %w", setter.Name, err)
		}
		parts = append(parts, part)
	}

	return strings.Join(parts, "\n"), nil
}

// RenderSource derives the builder names from owningFQN and renders it
func (r *Renderer) RenderSource(owningFQN string, setters *models.SetterDescriptor) (string, error) {
	spec, err := models.NewBuilderSpec(owningFQN, "", nil, setters)
	if err != nil {
		return "", err
	}
	return r.Render(spec)
}

// ConstructorName returns New<Builder> for exported builders and
// new<Builder> for unexported ones
func ConstructorName(builderName string) string {
	first, size := utf8.DecodeRuneInString(builderName)
	if unicode.IsUpper(first) {
		return "New" + builderName
	}
	return "new" + string(unicode.ToUpper(first)) + builderName[size:]
}

// callArgs forwards the setter argument, spreading variadic parameters
func callArgs(paramType string) string {
	if strings.HasPrefix(paramType, "...") {
		return "value..."
	}
	return "value"
}
