package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/toyz/buildergen/internal/models"
	"github.com/toyz/buildergen/internal/parser"
	"github.com/toyz/buildergen/internal/utils"
)

// builderFileSuffix ends every generated builder file name
const builderFileSuffix = "_builder.go"

// Cleaner handles cleaning up generated builder files
type Cleaner struct {
	dir     string
	prefix  string
	dryRun  bool
	workers int
}

// NewCleaner creates a cleaner resolving patterns relative to dir
func NewCleaner(dir, prefix string, dryRun bool) *Cleaner {
	if prefix == "" {
		prefix = parser.GeneratedFilePrefix
	}
	return &Cleaner{
		dir:     dir,
		prefix:  prefix,
		dryRun:  dryRun,
		workers: runtime.GOMAXPROCS(0),
	}
}

// CleanGeneratedFiles removes generated builder files matching the given
// directory patterns. Patterns ending in /... are walked recursively. The
// removed files are returned in pattern order without duplicates.
func (c *Cleaner) CleanGeneratedFiles(ctx context.Context, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	results := make([][]string, len(patterns))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.workers)

	for i, pattern := range patterns {
		i, pattern := i, pattern
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			removed, err := c.cleanPattern(pattern)
			results[i] = removed
			return err
		})
	}
	err := eg.Wait()

	seen := make(map[string]bool)
	var removed []string
	for _, files := range results {
		for _, file := range files {
			if !seen[file] {
				seen[file] = true
				removed = append(removed, file)
			}
		}
	}
	return removed, err
}

func (c *Cleaner) cleanPattern(pattern string) ([]string, error) {
	base, recursive := utils.TrimRecursivePattern(pattern)
	if !filepath.IsAbs(base) {
		base = filepath.Join(c.dir, base)
	}

	files, err := utils.WalkFiles(base, utils.FileWalkOptions{
		FileFilter:      utils.GeneratedFileFilter(c.prefix, builderFileSuffix),
		DirectoryFilter: utils.DefaultDirectoryFilter(),
		Recursive:       recursive,
		SkipErrors:      true,
	})
	if err != nil {
		return nil, c.fileSystemError(pattern, err)
	}

	var removed []string
	for _, file := range files {
		if !c.dryRun {
			if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
				return removed, c.fileSystemError(pattern, fmt.Errorf("failed to remove file %s: %w", file, err))
			}
		}
		removed = append(removed, file)
	}
	return removed, nil
}

func (c *Cleaner) fileSystemError(pattern string, cause error) *models.GeneratorError {
	return &models.GeneratorError{
		Type:    models.ErrorTypeFileSystem,
		Message: fmt.Sprintf("failed to clean %s", pattern),
		Cause:   cause,
		Suggestions: []string{
			"Check that you have write permission for the package directories",
		},
	}
}
