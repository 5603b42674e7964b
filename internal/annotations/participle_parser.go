package annotations

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/buildergen/internal/models"
)

// markerGrammar is the participle grammar of a marker comment:
//
//	//builder::property
type markerGrammar struct {
	Pos       lexer.Position
	Namespace string `parser:"Comment @Ident Separator"`
	Name      string `parser:"@Ident"`
}

// MarkerParser parses marker comments using alecthomas/participle
type MarkerParser struct {
	parser   *participle.Parser[markerGrammar]
	registry MarkerRegistry
}

// NewMarkerParser creates a marker parser validating against registry. A nil
// registry falls back to DefaultRegistry.
func NewMarkerParser(registry MarkerRegistry) *MarkerParser {
	if registry == nil {
		registry = DefaultRegistry()
	}

	lex := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `//`},
		{Name: "Separator", Pattern: `::`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Punct", Pattern: `[^ \t]`},
	})

	parser := participle.MustBuild[markerGrammar](
		participle.Lexer(lex),
		participle.Elide("Whitespace"),
	)

	return &MarkerParser{
		parser:   parser,
		registry: registry,
	}
}

// IsCandidate reports whether a comment claims to be a marker. Candidates
// that fail to parse are reported instead of being silently ignored.
func (p *MarkerParser) IsCandidate(comment string) bool {
	text := strings.TrimSpace(comment)
	if !strings.HasPrefix(text, "//") {
		return false
	}
	text = strings.TrimSpace(strings.TrimPrefix(text, "//"))
	return strings.HasPrefix(text, Namespace+Separator)
}

// Parse parses one comment line into a registered marker
func (p *MarkerParser) Parse(comment string, location SourceLocation) (*ParsedMarker, error) {
	text := strings.TrimSpace(comment)

	grammar, err := p.parser.ParseString(location.File, text)
	if err != nil {
		return nil, fmt.Errorf("malformed marker %q: %w", text, err)
	}

	if grammar.Namespace != Namespace {
		return nil, fmt.Errorf("marker namespace must be %q, got %q", Namespace, grammar.Namespace)
	}

	markerType := models.MarkerType(grammar.Namespace + Separator + grammar.Name)
	if !p.registry.IsRegistered(markerType) {
		return nil, fmt.Errorf("unknown marker //%s (known: %s)", markerType, p.knownMarkers())
	}

	return &ParsedMarker{
		Type:     markerType,
		Location: location,
		Raw:      text,
	}, nil
}

func (p *MarkerParser) knownMarkers() string {
	types := p.registry.ListTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = "//" + string(t)
	}
	return strings.Join(names, ", ")
}
