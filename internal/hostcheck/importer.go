package hostcheck

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Importer resolves local packages from their source directories and
// everything else through the source importer of the running toolchain.
//
// Thread-safety: Importer is safe for concurrent use via internal mutex.
type Importer struct {
	mu       sync.Mutex
	fset     *token.FileSet
	dirs     map[string]string
	cache    map[string]*types.Package
	fallback types.Importer
}

// NewImporter returns an Importer that loads each import path in dirs from
// the named directory.
func NewImporter(dirs map[string]string) *Importer {
	fset := token.NewFileSet()
	return &Importer{
		fset:     fset,
		dirs:     dirs,
		cache:    make(map[string]*types.Package),
		fallback: importer.ForCompiler(fset, "source", nil),
	}
}

// Import implements types.Importer.
func (imp *Importer) Import(path string) (*types.Package, error) {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	return imp.load(path)
}

func (imp *Importer) load(path string) (*types.Package, error) {
	if pkg, ok := imp.cache[path]; ok {
		return pkg, nil
	}

	dir, ok := imp.dirs[path]
	if !ok {
		pkg, err := imp.fallback.Import(path)
		if err != nil {
			return nil, err
		}
		imp.cache[path] = pkg
		return pkg, nil
	}

	files, err := imp.parseDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	conf := types.Config{Importer: importerFunc(imp.load)}
	pkg, err := conf.Check(path, imp.fset, files, nil)
	if err != nil {
		return nil, fmt.Errorf("type-checking %s: %w", path, err)
	}
	imp.cache[path] = pkg
	return pkg, nil
}

// parseDir parses the non-test Go files of dir in name order.
func (imp *Importer) parseDir(dir string) ([]*ast.File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var files []*ast.File
	for _, name := range names {
		f, err := parser.ParseFile(imp.fset, filepath.Join(dir, name), nil, 0)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no Go files in %s", dir)
	}
	return files, nil
}

// importerFunc lets load recurse without re-taking the mutex.
type importerFunc func(path string) (*types.Package, error)

func (f importerFunc) Import(path string) (*types.Package, error) { return f(path) }
