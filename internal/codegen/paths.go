package codegen

import (
	"path/filepath"
	"strings"
)

// File naming.
const (
	SourceExt           = ".pconst"
	DefaultOutputSuffix = "_polyconst.go"
)

// OutputPath returns the generated file path for a declaration file:
// dir/shapes.pconst becomes dir/shapes_polyconst.go.
func OutputPath(input, suffix string) string {
	if suffix == "" {
		suffix = DefaultOutputSuffix
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// IsSource reports whether path names a declaration file.
func IsSource(path string) bool {
	return filepath.Ext(path) == SourceExt
}
