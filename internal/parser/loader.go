package parser

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/buildergen/internal/annotations"
	"github.com/toyz/buildergen/internal/models"
	"github.com/toyz/buildergen/internal/processor"
)

// Discovery is the outcome of scanning packages for marked methods
type Discovery struct {
	Groups      []models.ElementGroup // one group per marker and owning type
	Diagnostics []models.Diagnostic   // markers that never reach a group
	PackageDirs map[string]string     // import path -> package directory
	Packages    int                   // packages scanned
	Elements    int                   // marked methods found
	Warnings    []string              // type errors tolerated while loading
}

// Loader discovers marked methods using golang.org/x/tools/go/packages
type Loader struct {
	dir          string
	buildFlags   []string
	markerParser *annotations.MarkerParser
}

// NewLoader creates a loader resolving patterns relative to dir
func NewLoader(dir string, markerParser *annotations.MarkerParser) *Loader {
	if markerParser == nil {
		markerParser = annotations.NewMarkerParser(nil)
	}
	return &Loader{
		dir:          dir,
		markerParser: markerParser,
	}
}

// SetBuildFlags sets extra flags passed to the underlying build system, e.g. -tags
func (l *Loader) SetBuildFlags(flags []string) {
	l.buildFlags = flags
}

// Load scans the packages matching patterns. Type errors are tolerated
// because the packages commonly reference builders that do not exist yet;
// list and syntax errors fail the load.
func (l *Loader) Load(ctx context.Context, patterns ...string) (*Discovery, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	cfg := &packages.Config{
		Mode:       loadMode,
		Context:    ctx,
		Dir:        l.dir,
		BuildFlags: l.buildFlags,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, &models.GeneratorError{
			Type:    models.ErrorTypeFileSystem,
			Message: fmt.Sprintf("failed to load packages %s", strings.Join(patterns, " ")),
			Cause:   err,
			Suggestions: []string{
				"Run buildergen from inside a Go module",
				"Check that the patterns match existing packages",
			},
		}
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })

	discovery := &Discovery{PackageDirs: make(map[string]string)}
	groups := newGroupCollector()

	for _, pkg := range pkgs {
		if err := checkPackageErrors(pkg, discovery); err != nil {
			return nil, err
		}
		if len(pkg.Syntax) == 0 {
			continue
		}

		discovery.Packages++
		if dir := packageDir(pkg); dir != "" {
			discovery.PackageDirs[pkg.PkgPath] = dir
		}
		l.scanPackage(pkg, groups, discovery)
	}

	discovery.Groups = groups.groups()
	return discovery, nil
}

func checkPackageErrors(pkg *packages.Package, discovery *Discovery) error {
	var fatal []error
	for _, e := range pkg.Errors {
		if e.Kind == packages.TypeError {
			discovery.Warnings = append(discovery.Warnings, e.Error())
			continue
		}
		fatal = append(fatal, errors.New(e.Error()))
	}
	if len(fatal) == 0 {
		return nil
	}
	return &models.GeneratorError{
		Type:    models.ErrorTypeValidation,
		Message: fmt.Sprintf("failed to load package %s", pkg.ID),
		Cause:   errors.Join(fatal...),
		Suggestions: []string{
			"Fix the syntax errors reported above",
			"Ensure the directory contains a valid Go package",
		},
		Context: map[string]interface{}{"package": pkg.PkgPath},
	}
}

func packageDir(pkg *packages.Package) string {
	if len(pkg.GoFiles) > 0 {
		return filepath.Dir(pkg.GoFiles[0])
	}
	if len(pkg.CompiledGoFiles) > 0 {
		return filepath.Dir(pkg.CompiledGoFiles[0])
	}
	return ""
}

// scanPackage walks the method declarations of every non-generated file
func (l *Loader) scanPackage(pkg *packages.Package, groups *groupCollector, discovery *Discovery) {
	files := make([]*ast.File, len(pkg.Syntax))
	copy(files, pkg.Syntax)
	sort.SliceStable(files, func(i, j int) bool {
		return pkg.Fset.Position(files[i].Pos()).Filename < pkg.Fset.Position(files[j].Pos()).Filename
	})

	for _, file := range files {
		fileName := pkg.Fset.Position(file.Pos()).Filename
		if strings.HasPrefix(filepath.Base(fileName), GeneratedFilePrefix) {
			continue
		}

		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Doc == nil {
				continue
			}
			l.scanFunc(pkg, file, fn, groups, discovery)
		}
	}
}

func (l *Loader) scanFunc(pkg *packages.Package, file *ast.File, fn *ast.FuncDecl, groups *groupCollector, discovery *Discovery) {
	seen := make(map[models.MarkerType]bool)

	for _, comment := range fn.Doc.List {
		if !l.markerParser.IsCandidate(comment.Text) {
			continue
		}

		element := describe(pkg, file, fn)
		commentPos := pkg.Fset.Position(comment.Slash)
		marker, err := l.markerParser.Parse(comment.Text, annotations.SourceLocation{
			File:   commentPos.Filename,
			Line:   commentPos.Line,
			Column: commentPos.Column,
		})
		if err != nil {
			element.Position = toPosition(commentPos)
			discovery.Diagnostics = append(discovery.Diagnostics, models.Diagnostic{
				Severity: models.SeverityError,
				Kind:     models.ErrorTypeValidation,
				Message:  err.Error(),
				Element:  element,
			})
			continue
		}

		if seen[marker.Type] {
			continue
		}
		seen[marker.Type] = true
		discovery.Elements++

		recv, generic := receiverTypeName(fn)
		switch {
		case recv == "":
			discovery.Diagnostics = append(discovery.Diagnostics, models.Diagnostic{
				Severity: models.SeverityError,
				Kind:     models.ErrorTypeStructuralViolation,
				Message:  processor.InvalidSetterMessage(marker.Type),
				Element:  element,
			})
		case generic:
			discovery.Diagnostics = append(discovery.Diagnostics, models.Diagnostic{
				Severity: models.SeverityError,
				Kind:     models.ErrorTypeStructuralViolation,
				Message:  fmt.Sprintf("//%s is not supported on methods of generic type %s", marker.Type, recv),
				Element:  element,
			})
		default:
			groups.add(marker.Type, element)
		}
	}
}

// describe builds the MarkedElement for a function declaration. Parameter
// types come from go/types when available and fall back to the source text.
func describe(pkg *packages.Package, file *ast.File, fn *ast.FuncDecl) models.MarkedElement {
	element := models.MarkedElement{
		Name:        fn.Name.Name,
		PackageName: pkg.Name,
		Position:    toPosition(pkg.Fset.Position(fn.Name.Pos())),
	}

	if recv, _ := receiverTypeName(fn); recv != "" {
		element.EnclosingType = pkg.PkgPath + "." + recv
	}

	astTypes := astParamTypes(fn.Type.Params)
	astImports := referencedImports(file, fn.Type.Params)

	var fnObj *types.Func
	if pkg.TypesInfo != nil {
		fnObj, _ = pkg.TypesInfo.Defs[fn.Name].(*types.Func)
	}
	if fnObj == nil {
		element.ParamTypes = astTypes
		element.Imports = astImports
		return element
	}

	sig, ok := fnObj.Type().(*types.Signature)
	if !ok {
		element.ParamTypes = astTypes
		element.Imports = astImports
		return element
	}

	paramTypes, imports, complete := signatureParamTypes(sig, pkg.Types)
	if !complete && len(astTypes) == len(paramTypes) {
		for i, t := range paramTypes {
			if t == "" {
				paramTypes[i] = astTypes[i]
			}
		}
		imports = append(imports, astImports...)
	}
	element.ParamTypes = paramTypes
	element.Imports = imports
	return element
}

// signatureParamTypes renders parameter types relative to self and records
// every other package they mention. Types that failed to check are left
// empty and complete is false.
func signatureParamTypes(sig *types.Signature, self *types.Package) (paramTypes []string, imports []string, complete bool) {
	seen := make(map[string]bool)
	qualifier := func(other *types.Package) string {
		if other == self {
			return ""
		}
		if !seen[other.Path()] {
			seen[other.Path()] = true
			imports = append(imports, other.Path())
		}
		return other.Name()
	}

	complete = true
	params := sig.Params()
	paramTypes = make([]string, params.Len())
	for i := 0; i < params.Len(); i++ {
		t := params.At(i).Type()
		if isInvalid(t) {
			complete = false
			continue
		}
		if sig.Variadic() && i == params.Len()-1 {
			if slice, ok := t.(*types.Slice); ok {
				paramTypes[i] = "..." + types.TypeString(slice.Elem(), qualifier)
				continue
			}
		}
		paramTypes[i] = types.TypeString(t, qualifier)
	}

	sort.Strings(imports)
	return paramTypes, imports, complete
}

func isInvalid(t types.Type) bool {
	invalid := false
	var check func(types.Type)
	check = func(t types.Type) {
		switch tt := t.(type) {
		case *types.Basic:
			if tt.Kind() == types.Invalid {
				invalid = true
			}
		case *types.Pointer:
			check(tt.Elem())
		case *types.Slice:
			check(tt.Elem())
		case *types.Array:
			check(tt.Elem())
		case *types.Map:
			check(tt.Key())
			check(tt.Elem())
		case *types.Chan:
			check(tt.Elem())
		}
	}
	check(t)
	return invalid
}

// astParamTypes returns one source-spelled type per declared parameter
func astParamTypes(params *ast.FieldList) []string {
	if params == nil {
		return nil
	}
	var out []string
	for _, field := range params.List {
		typ := types.ExprString(field.Type)
		n := len(field.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			out = append(out, typ)
		}
	}
	return out
}

// referencedImports resolves package selectors in parameter types against
// the file's import declarations
func referencedImports(file *ast.File, params *ast.FieldList) []string {
	if params == nil {
		return nil
	}

	byName := make(map[string]string)
	for _, spec := range file.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := models.DefaultPackageName(importPath)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		byName[name] = importPath
	}

	seen := make(map[string]bool)
	var imports []string
	for _, field := range params.List {
		ast.Inspect(field.Type, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			if ident, ok := sel.X.(*ast.Ident); ok {
				if importPath, exists := byName[ident.Name]; exists && !seen[importPath] {
					seen[importPath] = true
					imports = append(imports, importPath)
				}
			}
			return false
		})
	}
	sort.Strings(imports)
	return imports
}

// receiverTypeName returns the receiver's type name, empty for plain
// functions, and whether the receiver type is generic
func receiverTypeName(fn *ast.FuncDecl) (name string, generic bool) {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return "", false
	}

	expr := fn.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}

	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name, false
	case *ast.IndexExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name, true
		}
	case *ast.IndexListExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name, true
		}
	}
	return "", false
}

func toPosition(pos token.Position) models.Position {
	return models.Position{
		File:   pos.Filename,
		Line:   pos.Line,
		Column: pos.Column,
	}
}

// groupCollector groups elements by marker and owning type in first-seen order
type groupCollector struct {
	index map[string]int
	list  []models.ElementGroup
}

func newGroupCollector() *groupCollector {
	return &groupCollector{index: make(map[string]int)}
}

func (c *groupCollector) add(marker models.MarkerType, element models.MarkedElement) {
	key := string(marker) + " " + element.EnclosingType
	i, exists := c.index[key]
	if !exists {
		i = len(c.list)
		c.index[key] = i
		c.list = append(c.list, models.ElementGroup{Marker: marker})
	}
	c.list[i].Elements = append(c.list[i].Elements, element)
}

func (c *groupCollector) groups() []models.ElementGroup {
	return c.list
}
