package processor

import (
	"errors"
	"fmt"
	"io"

	"github.com/toyz/buildergen/internal/models"
	"github.com/toyz/buildergen/internal/templates"
)

// Filer creates new compilation units by fully qualified type name
type Filer interface {
	Create(typeFQN string) (io.WriteCloser, error)
}

// Outcome describes what happened to one element group
type Outcome int

const (
	OutcomeGenerated Outcome = iota
	OutcomeNoSetters
	OutcomeNameConflict
	OutcomeFailed
	OutcomeUnclaimed
)

// String returns the outcome name used in summaries
func (o Outcome) String() string {
	switch o {
	case OutcomeGenerated:
		return "generated"
	case OutcomeNoSetters:
		return "no setters"
	case OutcomeNameConflict:
		return "name conflict"
	case OutcomeFailed:
		return "failed"
	case OutcomeUnclaimed:
		return "unclaimed"
	default:
		return "unknown"
	}
}

// GroupResult records the processing of a single element group
type GroupResult struct {
	Marker  models.MarkerType // marker of the group
	Owner   string            // owning type, empty when no valid setter was found
	Unit    string            // builder FQN written, when generated
	Valid   int               // number of valid setters
	Invalid int               // number of invalid methods
	Outcome Outcome           // what happened
	Err     error             // failure for OutcomeFailed
}

// Result summarizes one processing pass
type Result struct {
	Claimed bool          // whether every group's marker was handled here
	Groups  []GroupResult // per-group results in input order
}

// Generated returns the builder FQNs written during the pass
func (r *Result) Generated() []string {
	var units []string
	for _, g := range r.Groups {
		if g.Outcome == OutcomeGenerated {
			units = append(units, g.Unit)
		}
	}
	return units
}

// Processor runs classification, rendering and emission for element groups
type Processor struct {
	marker     models.MarkerType
	classifier *Classifier
	renderer   *templates.Renderer
	messager   Messager
	filer      Filer
}

// NewProcessor creates a processor claiming marker
func NewProcessor(marker models.MarkerType, messager Messager, filer Filer) (*Processor, error) {
	if messager == nil {
		return nil, fmt.Errorf("messager cannot be nil")
	}
	if filer == nil {
		return nil, fmt.Errorf("filer cannot be nil")
	}

	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	return &Processor{
		marker:     marker,
		classifier: NewClassifier(messager),
		renderer:   renderer,
		messager:   messager,
		filer:      filer,
	}, nil
}

// Claims reports whether the processor fully handles a marker type
func (p *Processor) Claims(marker models.MarkerType) bool {
	return marker == p.marker
}

// Process handles every group in isolation. Emission failures do not stop
// later groups; they are joined into the returned error.
func (p *Processor) Process(groups []models.ElementGroup) (*Result, error) {
	result := &Result{Claimed: true, Groups: make([]GroupResult, 0, len(groups))}

	var errs []error
	for _, group := range groups {
		groupResult := p.ProcessGroup(group)
		if groupResult.Outcome == OutcomeUnclaimed {
			result.Claimed = false
		}
		if groupResult.Err != nil {
			errs = append(errs, groupResult.Err)
		}
		result.Groups = append(result.Groups, groupResult)
	}

	return result, errors.Join(errs...)
}

// ProcessGroup classifies one group and, when it holds at least one valid
// setter and no duplicate names, renders and emits its builder
func (p *Processor) ProcessGroup(group models.ElementGroup) GroupResult {
	result := GroupResult{Marker: group.Marker}
	if !p.Claims(group.Marker) {
		result.Outcome = OutcomeUnclaimed
		return result
	}

	classified := p.classifier.Classify(group)
	result.Valid = len(classified.ValidSetters)
	result.Invalid = len(classified.InvalidMethods)

	if len(classified.ValidSetters) == 0 {
		result.Outcome = OutcomeNoSetters
		return result
	}

	first := classified.ValidSetters[0]
	result.Owner = first.EnclosingType

	setters, ok := p.describeSetters(group.Marker, classified.ValidSetters)
	if !ok {
		result.Outcome = OutcomeNameConflict
		return result
	}

	spec, err := models.NewBuilderSpec(first.EnclosingType, first.PackageName, collectImports(classified.ValidSetters), setters)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = &models.GeneratorError{
			Type:     models.ErrorTypeValidation,
			Position: first.Position,
			Message:  fmt.Sprintf("cannot derive builder for %s", first.EnclosingType),
			Cause:    err,
		}
		return result
	}

	if err := p.Emit(spec); err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	result.Unit = spec.BuilderFQN
	result.Outcome = OutcomeGenerated
	return result
}

// describeSetters builds the name to parameter type mapping. Every
// duplicate name is reported; ok is false if any was found.
func (p *Processor) describeSetters(marker models.MarkerType, valid []models.MarkedElement) (*models.SetterDescriptor, bool) {
	setters := models.NewSetterDescriptor()
	ok := true

	for _, element := range valid {
		if err := setters.Add(element.Name, element.ParamTypes[0]); err != nil {
			ok = false
			p.messager.Report(models.Diagnostic{
				Severity: models.SeverityError,
				Kind:     models.ErrorTypeNameConflict,
				Message: fmt.Sprintf("duplicate //%s setter %q for %s: overloaded setters are not supported",
					marker, element.Name, models.SimpleName(element.EnclosingType)),
				Element: element,
			})
		}
	}

	return setters, ok
}

// Emit renders the builder and writes it to a new compilation unit. The
// unit is closed on every path; any failure is returned as an emission error.
func (p *Processor) Emit(spec *models.BuilderSpec) (err error) {
	source, err := p.renderer.Render(spec)
	if err != nil {
		return &models.GeneratorError{
			Type:    models.ErrorTypeGeneration,
			Message: fmt.Sprintf("failed to render %s", spec.BuilderFQN),
			Cause:   err,
		}
	}

	unit, err := p.filer.Create(spec.BuilderFQN)
	if err != nil {
		return models.NewEmissionError(spec.BuilderFQN, err)
	}
	defer func() {
		if closeErr := unit.Close(); closeErr != nil && err == nil {
			err = models.NewEmissionError(spec.BuilderFQN, closeErr)
		}
	}()

	if _, err := io.WriteString(unit, source); err != nil {
		return models.NewEmissionError(spec.BuilderFQN, err)
	}

	return nil
}

func collectImports(elements []models.MarkedElement) []string {
	var imports []string
	for _, element := range elements {
		imports = append(imports, element.Imports...)
	}
	return imports
}
