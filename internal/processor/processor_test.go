package processor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/buildergen/internal/models"
)

const testMarker models.MarkerType = "builder::property"

type recordingMessager struct {
	diagnostics []models.Diagnostic
}

func (m *recordingMessager) Report(d models.Diagnostic) {
	m.diagnostics = append(m.diagnostics, d)
}

func (m *recordingMessager) kinds() []models.ErrorType {
	kinds := make([]models.ErrorType, len(m.diagnostics))
	for i, d := range m.diagnostics {
		kinds[i] = d.Kind
	}
	return kinds
}

type memoryUnit struct {
	buf      bytes.Buffer
	closed   bool
	writeErr error
	closeErr error
}

func (u *memoryUnit) Write(p []byte) (int, error) {
	if u.writeErr != nil {
		return 0, u.writeErr
	}
	return u.buf.Write(p)
}

func (u *memoryUnit) String() string {
	return u.buf.String()
}

func (u *memoryUnit) Close() error {
	u.closed = true
	return u.closeErr
}

type memoryFiler struct {
	units     map[string]*memoryUnit
	order     []string
	createErr map[string]error
	writeErr  error
	closeErr  error
}

func newMemoryFiler() *memoryFiler {
	return &memoryFiler{
		units:     make(map[string]*memoryUnit),
		createErr: make(map[string]error),
	}
}

func (f *memoryFiler) Create(typeFQN string) (io.WriteCloser, error) {
	if err := f.createErr[typeFQN]; err != nil {
		return nil, err
	}
	if _, exists := f.units[typeFQN]; exists {
		return nil, fmt.Errorf("compilation unit %s already exists", typeFQN)
	}
	unit := &memoryUnit{writeErr: f.writeErr, closeErr: f.closeErr}
	f.units[typeFQN] = unit
	f.order = append(f.order, typeFQN)
	return unit, nil
}

func element(owner, name string, params ...string) models.MarkedElement {
	return models.MarkedElement{
		Name:          name,
		ParamTypes:    params,
		EnclosingType: owner,
		Position:      models.Position{File: "person.go", Line: 1},
	}
}

func personGroup() models.ElementGroup {
	return models.ElementGroup{
		Marker: testMarker,
		Elements: []models.MarkedElement{
			element("a.b.Person", "setAge", "int"),
			element("a.b.Person", "setName", "string"),
		},
	}
}

func newTestProcessor(t *testing.T) (*Processor, *recordingMessager, *memoryFiler) {
	t.Helper()
	messager := &recordingMessager{}
	filer := newMemoryFiler()
	p, err := NewProcessor(testMarker, messager, filer)
	require.NoError(t, err)
	return p, messager, filer
}

func TestIsValidSetter(t *testing.T) {
	tests := []struct {
		name     string
		element  models.MarkedElement
		expected bool
	}{
		{"lower set prefix", element("a.T", "setAge", "int"), true},
		{"exported Set prefix", element("a.T", "SetAge", "int"), true},
		{"bare set", element("a.T", "set", "int"), true},
		{"prefix only by letters", element("a.T", "settle", "int"), true},
		{"no parameters", element("a.T", "SetAge"), false},
		{"two parameters", element("a.T", "SetAge", "int", "string"), false},
		{"getter", element("a.T", "GetAge", "int"), false},
		{"upper case SET", element("a.T", "SETAge", "int"), false},
		{"short name", element("a.T", "se", "int"), false},
		{"empty name", element("a.T", "", "int"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidSetter(tt.element))
		})
	}
}

func TestClassifier_Classify(t *testing.T) {
	t.Run("stable partition with diagnostics", func(t *testing.T) {
		messager := &recordingMessager{}
		classifier := NewClassifier(messager)

		group := models.ElementGroup{
			Marker: testMarker,
			Elements: []models.MarkedElement{
				element("a.T", "SetA", "int"),
				element("a.T", "GetB"),
				element("a.T", "SetC", "int"),
				element("a.T", "SetD", "int", "int"),
				element("a.T", "SetE", "string"),
			},
		}

		result := classifier.Classify(group)

		assert.Equal(t, []string{"SetA", "SetC", "SetE"}, names(result.ValidSetters))
		assert.Equal(t, []string{"GetB", "SetD"}, names(result.InvalidMethods))

		require.Len(t, messager.diagnostics, 2)
		for i, d := range messager.diagnostics {
			assert.Equal(t, models.SeverityError, d.Severity)
			assert.Equal(t, models.ErrorTypeStructuralViolation, d.Kind)
			assert.Equal(t, "//builder::property must be applied to a setXxx method with a single argument", d.Message)
			assert.Equal(t, result.InvalidMethods[i], d.Element)
		}
	})

	t.Run("empty group", func(t *testing.T) {
		messager := &recordingMessager{}
		result := NewClassifier(messager).Classify(models.ElementGroup{Marker: testMarker})
		assert.Empty(t, result.ValidSetters)
		assert.Empty(t, result.InvalidMethods)
		assert.Empty(t, messager.diagnostics)
	})

	t.Run("partition law on random groups", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		candidates := []string{"SetA", "setB", "GetC", "Reset", "SetD", "Build", "set"}

		for round := 0; round < 200; round++ {
			messager := &recordingMessager{}
			group := models.ElementGroup{Marker: testMarker}
			n := rng.Intn(8)
			for i := 0; i < n; i++ {
				params := make([]string, rng.Intn(3))
				for j := range params {
					params[j] = "int"
				}
				name := fmt.Sprintf("%s%d", candidates[rng.Intn(len(candidates))], i)
				group.Elements = append(group.Elements, element("a.T", name, params...))
			}

			result := NewClassifier(messager).Classify(group)

			require.Equal(t, group.Len(), len(result.ValidSetters)+len(result.InvalidMethods))
			require.Len(t, messager.diagnostics, len(result.InvalidMethods))

			seen := make(map[string]bool)
			for _, e := range result.ValidSetters {
				require.True(t, IsValidSetter(e))
				seen[e.Name] = true
			}
			for _, e := range result.InvalidMethods {
				require.False(t, IsValidSetter(e))
				require.False(t, seen[e.Name], "element in both halves")
			}
		}
	})
}

func TestProcessor_Process(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		p, messager, filer := newTestProcessor(t)

		result, err := p.Process([]models.ElementGroup{personGroup()})
		require.NoError(t, err)
		assert.True(t, result.Claimed)
		assert.Empty(t, messager.diagnostics)
		assert.Equal(t, []string{"a.b.PersonBuilder"}, result.Generated())

		unit := filer.units["a.b.PersonBuilder"]
		require.NotNil(t, unit)
		assert.True(t, unit.closed)

		source := unit.String()
		assert.Contains(t, source, "package b\n")
		assert.Contains(t, source, "type PersonBuilder struct {\n\tobject Person\n}")
		assert.Contains(t, source, "func (b *PersonBuilder) Build() *Person {\n\treturn &b.object\n}")
		assert.Contains(t, source, "func (b *PersonBuilder) setAge(value int) *PersonBuilder {\n\tb.object.setAge(value)\n\treturn b\n}")
		assert.Less(t, strings.Index(source, "setAge(value int)"), strings.Index(source, "setName(value string)"))
	})

	t.Run("no valid setters skips rendering", func(t *testing.T) {
		p, messager, filer := newTestProcessor(t)

		group := models.ElementGroup{
			Marker: testMarker,
			Elements: []models.MarkedElement{
				element("a.b.Person", "GetAge"),
				element("a.b.Person", "Age", "int"),
				element("a.b.Person", "SetBoth", "int", "int"),
			},
		}

		result, err := p.Process([]models.ElementGroup{group})
		require.NoError(t, err)
		assert.Empty(t, filer.units)
		assert.Len(t, messager.diagnostics, 3)
		assert.Equal(t, OutcomeNoSetters, result.Groups[0].Outcome)
		assert.Equal(t, 3, result.Groups[0].Invalid)
	})

	t.Run("duplicate setter names skip the group", func(t *testing.T) {
		p, messager, filer := newTestProcessor(t)

		group := models.ElementGroup{
			Marker: testMarker,
			Elements: []models.MarkedElement{
				element("a.b.Person", "SetAge", "int"),
				element("a.b.Person", "SetName", "string"),
				element("a.b.Person", "SetAge", "int64"),
				element("a.b.Person", "Nope"),
			},
		}

		result, err := p.Process([]models.ElementGroup{group})
		require.NoError(t, err)
		assert.Empty(t, filer.units)
		assert.Equal(t, OutcomeNameConflict, result.Groups[0].Outcome)
		assert.Equal(t, []models.ErrorType{models.ErrorTypeStructuralViolation, models.ErrorTypeNameConflict}, messager.kinds())

		conflict := messager.diagnostics[1]
		assert.Equal(t, `duplicate //builder::property setter "SetAge" for Person: overloaded setters are not supported`, conflict.Message)
		assert.Equal(t, []string{"int64"}, conflict.Element.ParamTypes)
	})

	t.Run("create failure is surfaced and isolated", func(t *testing.T) {
		p, _, filer := newTestProcessor(t)
		filer.createErr["a.b.PersonBuilder"] = errors.New("permission denied")

		other := models.ElementGroup{
			Marker:   testMarker,
			Elements: []models.MarkedElement{element("a.b.Address", "SetStreet", "string")},
		}

		result, err := p.Process([]models.ElementGroup{personGroup(), other})
		require.Error(t, err)
		assert.True(t, models.IsErrorType(err, models.ErrorTypeEmissionIO))
		assert.Contains(t, err.Error(), "permission denied")

		assert.Equal(t, OutcomeFailed, result.Groups[0].Outcome)
		assert.Equal(t, OutcomeGenerated, result.Groups[1].Outcome)
		assert.Equal(t, []string{"a.b.AddressBuilder"}, filer.order)
	})

	t.Run("write failure closes the unit", func(t *testing.T) {
		p, _, filer := newTestProcessor(t)
		filer.writeErr = errors.New("disk full")

		_, err := p.Process([]models.ElementGroup{personGroup()})
		require.Error(t, err)
		assert.True(t, models.IsErrorType(err, models.ErrorTypeEmissionIO))
		assert.True(t, filer.units["a.b.PersonBuilder"].closed)
	})

	t.Run("close failure is surfaced", func(t *testing.T) {
		p, _, filer := newTestProcessor(t)
		filer.closeErr = errors.New("flush failed")

		_, err := p.Process([]models.ElementGroup{personGroup()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "flush failed")
	})

	t.Run("naming collision", func(t *testing.T) {
		p, _, _ := newTestProcessor(t)

		result, err := p.Process([]models.ElementGroup{personGroup(), personGroup()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
		assert.Equal(t, OutcomeGenerated, result.Groups[0].Outcome)
		assert.Equal(t, OutcomeFailed, result.Groups[1].Outcome)
	})

	t.Run("invalid owner is a validation failure", func(t *testing.T) {
		p, _, filer := newTestProcessor(t)

		group := models.ElementGroup{
			Marker:   testMarker,
			Elements: []models.MarkedElement{element("a.b.", "SetAge", "int")},
		}

		_, err := p.Process([]models.ElementGroup{group})
		require.Error(t, err)
		assert.True(t, models.IsErrorType(err, models.ErrorTypeValidation))
		assert.Empty(t, filer.units)
	})

	t.Run("imports and package name come from the elements", func(t *testing.T) {
		p, _, filer := newTestProcessor(t)

		timeout := element("example.com/app/v2.Server", "SetTimeout", "time.Duration")
		timeout.PackageName = "app"
		timeout.Imports = []string{"time"}

		_, err := p.Process([]models.ElementGroup{{Marker: testMarker, Elements: []models.MarkedElement{timeout}}})
		require.NoError(t, err)

		source := filer.units["example.com/app/v2.ServerBuilder"].String()
		assert.Contains(t, source, "package app\n\nimport (\n\t\"time\"\n)\n")
	})

	t.Run("foreign markers are not claimed", func(t *testing.T) {
		p, messager, filer := newTestProcessor(t)

		group := personGroup()
		group.Marker = "builder::other"

		result, err := p.Process([]models.ElementGroup{group})
		require.NoError(t, err)
		assert.False(t, result.Claimed)
		assert.Equal(t, OutcomeUnclaimed, result.Groups[0].Outcome)
		assert.Empty(t, messager.diagnostics)
		assert.Empty(t, filer.units)
	})

	t.Run("deterministic output", func(t *testing.T) {
		p1, _, filer1 := newTestProcessor(t)
		p2, _, filer2 := newTestProcessor(t)

		_, err := p1.Process([]models.ElementGroup{personGroup()})
		require.NoError(t, err)
		_, err = p2.Process([]models.ElementGroup{personGroup()})
		require.NoError(t, err)

		assert.Equal(t, filer1.units["a.b.PersonBuilder"].String(), filer2.units["a.b.PersonBuilder"].String())
	})
}

func TestNewProcessor_RequiresSinks(t *testing.T) {
	_, err := NewProcessor(testMarker, nil, newMemoryFiler())
	assert.Error(t, err)

	_, err = NewProcessor(testMarker, &recordingMessager{}, nil)
	assert.Error(t, err)
}

func names(elements []models.MarkedElement) []string {
	out := make([]string, len(elements))
	for i, e := range elements {
		out[i] = e.Name
	}
	return out
}
