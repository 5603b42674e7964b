package cli

import (
	"fmt"
	"path/filepath"

	"github.com/toyz/buildergen/internal/utils"
)

// ModuleInfo describes the module generation runs in
type ModuleInfo struct {
	Path string // module path from go.mod
	Root string // directory holding go.mod
}

// ModuleResolver handles resolving Go module information
type ModuleResolver struct{}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{}
}

// Resolve finds the module enclosing dir
func (r *ModuleResolver) Resolve(dir string) (ModuleInfo, error) {
	goModPath, err := utils.FindGoModFile(dir)
	if err != nil {
		return ModuleInfo{}, fmt.Errorf("failed to determine module for %s: %w", dir, err)
	}

	modulePath, err := utils.ParseModuleName(goModPath)
	if err != nil {
		return ModuleInfo{}, err
	}

	return ModuleInfo{
		Path: modulePath,
		Root: filepath.Dir(goModPath),
	}, nil
}
