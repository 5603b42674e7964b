package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-openapi/inflect"

	"github.com/toyz/buildergen/internal/models"
	"github.com/toyz/buildergen/internal/parser"
	"github.com/toyz/buildergen/internal/utils"
)

// ErrUnitClosed is returned when a compilation unit is used after Close
var ErrUnitClosed = errors.New("compilation unit already closed")

// Filer creates compilation units inside the package directories found
// during discovery. Every unit is written exactly once per pass.
type Filer struct {
	mu      sync.Mutex
	dirs    map[string]string // package path -> directory
	prefix  string
	dryRun  bool
	units   map[string]string // builder FQN -> file path
	paths   map[string]string // file path -> builder FQN
	written []string
}

// NewFiler creates a filer for the given package directories
func NewFiler(dirs map[string]string, prefix string, dryRun bool) *Filer {
	if prefix == "" {
		prefix = parser.GeneratedFilePrefix
	}
	return &Filer{
		dirs:   dirs,
		prefix: prefix,
		dryRun: dryRun,
		units:  make(map[string]string),
		paths:  make(map[string]string),
	}
}

// FileName returns the generated file name for a builder type
func FileName(prefix, builderSimpleName string) string {
	return prefix + inflect.Underscore(builderSimpleName) + ".go"
}

// Create opens a new compilation unit for typeFQN. Asking for the same
// type twice, or for two types that map to the same file, is an error.
func (f *Filer) Create(typeFQN string) (io.WriteCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.units[typeFQN]; exists {
		return nil, fmt.Errorf("compilation unit %s was already created in this pass", typeFQN)
	}

	pkgPath, simpleName := models.SplitQualifiedName(typeFQN)
	dir, ok := f.dirs[pkgPath]
	if !ok {
		return nil, fmt.Errorf("no directory known for package %q", pkgPath)
	}

	path := filepath.Join(dir, FileName(f.prefix, simpleName))
	if other, exists := f.paths[path]; exists {
		return nil, fmt.Errorf("%s and %s would both be written to %s", other, typeFQN, path)
	}

	f.units[typeFQN] = path
	f.paths[path] = typeFQN

	return &compilationUnit{filer: f, typeFQN: typeFQN, path: path}, nil
}

// Written returns the files written so far, sorted
func (f *Filer) Written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.written))
	copy(out, f.written)
	sort.Strings(out)
	return out
}

// PathOf returns the file a unit was or will be written to
func (f *Filer) PathOf(typeFQN string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path, ok := f.units[typeFQN]
	return path, ok
}

func (f *Filer) recordWritten(path string) {
	f.mu.Lock()
	f.written = append(f.written, path)
	f.mu.Unlock()
}

// compilationUnit buffers source text; formatting and the file write
// happen on Close
type compilationUnit struct {
	filer   *Filer
	typeFQN string
	path    string
	buf     bytes.Buffer
	closed  bool
}

func (u *compilationUnit) Write(p []byte) (int, error) {
	if u.closed {
		return 0, ErrUnitClosed
	}
	return u.buf.Write(p)
}

func (u *compilationUnit) Close() error {
	if u.closed {
		return ErrUnitClosed
	}
	u.closed = true

	formatted, err := utils.FormatGeneratedFile(u.path, u.buf.Bytes())
	if err != nil {
		if !u.filer.dryRun {
			// Keep the unformatted text around for debugging
			_ = os.WriteFile(u.path+".error", u.buf.Bytes(), 0o644)
		}
		return fmt.Errorf("format %s: %w", filepath.Base(u.path), err)
	}

	if !u.filer.dryRun {
		if err := os.WriteFile(u.path, formatted, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", u.path, err)
		}
	}

	u.filer.recordWritten(u.path)
	return nil
}
