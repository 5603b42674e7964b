package templates

// Slot names, in the order a builder compilation unit is assembled
const (
	SlotHeader      = "header"
	SlotPackage     = "package"
	SlotImports     = "imports"
	SlotType        = "type"
	SlotConstructor = "constructor"
	SlotBuild       = "build"
	SlotSetter      = "setter"
)

// slotOrder lists the slots rendered once per builder. SlotSetter is
// rendered once per setter after these.
var slotOrder = []string{
	SlotHeader,
	SlotPackage,
	SlotImports,
	SlotType,
	SlotConstructor,
	SlotBuild,
}

// TemplateRegistry provides a centralized way to access all slot templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all slots
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerFileTemplates()
	registry.registerBuilderTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

// Names returns the slot names in render order, setter last
func (tr *TemplateRegistry) Names() []string {
	names := make([]string, 0, len(slotOrder)+1)
	names = append(names, slotOrder...)
	return append(names, SlotSetter)
}

// registerFileTemplates registers the slots that frame the compilation unit
func (tr *TemplateRegistry) registerFileTemplates() {
	tr.templates[SlotHeader] = `// Code generated by buildergen. DO NOT EDIT.
`

	tr.templates[SlotPackage] = `{{if .HasPackage}}package {{.PackageName}}
{{end}}`

	tr.templates[SlotImports] = `{{if .Imports}}import (
{{range .Imports}}	{{printf "%q" .}}
{{end}})
{{end}}`
}

// registerBuilderTemplates registers the builder type and its methods
func (tr *TemplateRegistry) registerBuilderTemplates() {
	tr.templates[SlotType] = `// {{.BuilderSimpleName}} builds {{.OwningSimpleName}} values through chained setters.
type {{.BuilderSimpleName}} struct {
	object {{.OwningSimpleName}}
}
`

	tr.templates[SlotConstructor] = `// {{constructorName .BuilderSimpleName}} returns a builder around a zero {{.OwningSimpleName}}.
func {{constructorName .BuilderSimpleName}}() *{{.BuilderSimpleName}} {
	return &{{.BuilderSimpleName}}{}
}
`

	tr.templates[SlotBuild] = `// Build returns the {{.OwningSimpleName}} assembled so far.
func (b *{{.BuilderSimpleName}}) Build() *{{.OwningSimpleName}} {
	return &b.object
}
`

	tr.templates[SlotSetter] = `// {{.Name}} calls {{.OwningSimpleName}}.{{.Name}} and returns the builder for chaining.
func (b *{{.BuilderSimpleName}}) {{.Name}}(value {{.ParamType}}) *{{.BuilderSimpleName}} {
	b.object.{{.Name}}({{callArgs .ParamType}})
	return b
}
`
}
