package harness

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/roach88/polyconst/internal/compiler"
	"github.com/roach88/polyconst/internal/hostcheck"
)

var (
	importerOnce sync.Once
	importer     *hostcheck.Importer
)

// newTestHarness returns a harness whose host checks load the numeric
// package from this repository.
func newTestHarness(t *testing.T) *Harness {
	t.Helper()
	importerOnce.Do(func() {
		importer = hostcheck.NewImporter(map[string]string{
			compiler.NumericImport: filepath.Join("..", "..", "numeric"),
		})
	})
	return New(WithImporter(importer))
}

func boolPtr(b bool) *bool { return &b }
