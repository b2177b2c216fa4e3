package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:generate go tool mockgen -source=source.go -destination=mock_source_test.go -package=catalog

// Source is a collection of storage units, one strategy record per unit.
type Source interface {
	// List returns the names of all units in the source.
	List(ctx context.Context) ([]string, error)

	// Read returns the raw bytes of the named unit.
	Read(ctx context.Context, name string) ([]byte, error)
}

// recordExts are the record encodings the loader understands. Any of them
// may carry an additional .gz suffix.
var recordExts = []string{".json", ".yaml", ".yml"}

// KeyFromName derives a strategy key from a unit name: the base name with
// its record extension (and optional .gz) removed. It returns false for
// units that are not strategy records.
func KeyFromName(name string) (string, bool) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSuffix(base, ".gz")
	for _, ext := range recordExts {
		if key, ok := strings.CutSuffix(base, ext); ok && key != "" {
			return key, true
		}
	}
	return "", false
}

// FSSource reads records from the top level of an fs.FS. It serves both
// on-disk directories (os.DirFS) and the embedded built-in catalog.
type FSSource struct {
	fsys fs.FS
}

// NewFSSource creates a Source over fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// List implements Source.
func (s *FSSource) List(_ context.Context) ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := KeyFromName(e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Read implements Source.
func (s *FSSource) Read(_ context.Context, name string) ([]byte, error) {
	return fs.ReadFile(s.fsys, name)
}
