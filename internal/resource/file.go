package resource

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/taskflow/internal/ident"
)

// FileResource is a resource naming a file path.
type FileResource struct {
	Resource
	path string
}

// NewFile creates a file resource named "File_<basename>".
func NewFile(ids *ident.Allocator, path string, opts ...Option) *FileResource {
	f := &FileResource{path: path}
	opts = append([]Option{WithName("File_" + filepath.Base(path))}, opts...)
	Init(&f.Resource, ids, opts...)
	return f
}

// Path returns the file path.
func (f *FileResource) Path() string { return f.path }

// Create opens the file for writing, truncating it and creating any missing
// parent directories.
func (f *FileResource) Create() (*os.File, error) {
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory for %s: %w", f.name, err)
		}
	}
	fh, err := os.Create(f.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.name, err)
	}
	return fh, nil
}
