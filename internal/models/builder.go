package models

import (
	"fmt"
	"go/token"
	"path"
	"sort"
	"strings"

	"golang.org/x/mod/module"
)

// BuilderSuffix is appended to the owning type name to name its builder
const BuilderSuffix = "Builder"

// BuilderSpec represents everything needed to render one builder type
type BuilderSpec struct {
	OwningFQN         string            // fully qualified owning type
	OwningSimpleName  string            // owning type without package
	PackagePath       string            // package part of OwningFQN, empty if none
	PackageName       string            // package clause to emit, empty if none
	BuilderFQN        string            // OwningFQN + "Builder"
	BuilderSimpleName string            // builder type without package
	Imports           []string          // sorted, deduplicated import paths
	Setters           *SetterDescriptor // setters in insertion order
}

// HasPackage reports whether the builder is emitted with a package clause
func (s *BuilderSpec) HasPackage() bool {
	return s.PackagePath != ""
}

// SplitQualifiedName splits a qualified name at its last dot. The package
// part is empty when the name contains no dot.
func SplitQualifiedName(fqn string) (pkg, simple string) {
	lastDot := strings.LastIndex(fqn, ".")
	if lastDot <= 0 {
		return "", fqn[lastDot+1:]
	}
	return fqn[:lastDot], fqn[lastDot+1:]
}

// SimpleName returns the part of a qualified name after its last dot
func SimpleName(fqn string) string {
	_, simple := SplitQualifiedName(fqn)
	return simple
}

// DefaultPackageName guesses the package clause for an import path: the last
// path element without a major version suffix, and for dotted paths without
// slashes the segment after the last dot.
func DefaultPackageName(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}
	if prefix, pathMajor, ok := module.SplitPathVersion(pkgPath); ok && pathMajor != "" && prefix != "" {
		pkgPath = prefix
	}
	name := path.Base(pkgPath)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// NewBuilderSpec derives the builder names for an owning type. packageName
// overrides the clause guessed from the package path when not empty.
func NewBuilderSpec(owningFQN, packageName string, imports []string, setters *SetterDescriptor) (*BuilderSpec, error) {
	if setters == nil || setters.Len() == 0 {
		return nil, fmt.Errorf("builder for %s requires at least one setter", owningFQN)
	}

	pkgPath, simple := SplitQualifiedName(owningFQN)
	if !token.IsIdentifier(simple) {
		return nil, fmt.Errorf("invalid owning type name %q in %q", simple, owningFQN)
	}

	if pkgPath != "" {
		if err := module.CheckImportPath(pkgPath); err != nil {
			return nil, fmt.Errorf("invalid package path in %q: %w", owningFQN, err)
		}
		if packageName == "" {
			packageName = DefaultPackageName(pkgPath)
		}
		if !token.IsIdentifier(packageName) {
			return nil, fmt.Errorf("invalid package name %q for %s", packageName, pkgPath)
		}
	} else {
		packageName = ""
	}

	builderFQN := owningFQN + BuilderSuffix

	return &BuilderSpec{
		OwningFQN:         owningFQN,
		OwningSimpleName:  simple,
		PackagePath:       pkgPath,
		PackageName:       packageName,
		BuilderFQN:        builderFQN,
		BuilderSimpleName: builderFQN[len(owningFQN)-len(simple):],
		Imports:           normalizeImports(imports, pkgPath),
		Setters:           setters,
	}, nil
}

// normalizeImports sorts and deduplicates import paths, dropping the
// builder's own package
func normalizeImports(imports []string, self string) []string {
	if len(imports) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(imports))
	out := make([]string, 0, len(imports))
	for _, imp := range imports {
		if imp == "" || imp == self || seen[imp] {
			continue
		}
		seen[imp] = true
		out = append(out, imp)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
