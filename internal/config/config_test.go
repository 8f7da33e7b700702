package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// =============================================================================
// YAML
// =============================================================================

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, FileYAML, `
package: geometry
prefix: Const
goarch: arm64
strict: true
header: |
  Copyright 2026 The Geometry Authors.
inputs:
  - shapes.pconst
  - sizes.pconst
output_suffix: _gen.go
cache: .polyconst/cache.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "geometry", cfg.Package)
	assert.Equal(t, "Const", cfg.Prefix)
	assert.Equal(t, "arm64", cfg.GoArch)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "Copyright 2026 The Geometry Authors.\n", cfg.Header)
	assert.Equal(t, []string{"shapes.pconst", "sizes.pconst"}, cfg.Inputs)
	assert.Equal(t, "_gen.go", cfg.OutputSuffix)
	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, filepath.Join(dir, ".polyconst/cache.db"), cfg.Resolve(cfg.Cache))
}

func TestLoadYAMLUnknownField(t *testing.T) {
	path := writeFile(t, t.TempDir(), FileYAML, "pakage: geometry\n")

	_, err := Load(path)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "yaml", cerr.Field)
	assert.Contains(t, cerr.Message, "pakage")
}

func TestLoadYAMLEmpty(t *testing.T) {
	path := writeFile(t, t.TempDir(), FileYAML, "\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Package)
}

func TestLoadYAMLInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"package", "package: 9lives\n", "package"},
		{"prefix", "prefix: has-dash\n", "prefix"},
		{"goarch", "goarch: z80\n", "goarch"},
		{"suffix", "output_suffix: _gen.txt\n", "output_suffix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), FileYAML, tt.body)
			_, err := Load(path)
			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

// =============================================================================
// CUE
// =============================================================================

func TestLoadCUE(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, FileCUE, `
goarch: "386"
"package": "geometry"
strict: true
inputs: ["a.pconst"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "geometry", cfg.Package)
	assert.Equal(t, "386", cfg.GoArch)
	assert.True(t, cfg.Strict)
	assert.Equal(t, []string{"a.pconst"}, cfg.Inputs)
}

func TestLoadCUESchemaViolation(t *testing.T) {
	path := writeFile(t, t.TempDir(), FileCUE, `goarch: "z80"`+"\n")

	_, err := Load(path)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "cue", cerr.Field)
	assert.Equal(t, path, cerr.File)
}

func TestLoadCUEUnknownField(t *testing.T) {
	path := writeFile(t, t.TempDir(), FileCUE, `pakage: "geometry"`+"\n")

	_, err := Load(path)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Error(), "pakage")
}

func TestLoadCUESyntaxError(t *testing.T) {
	path := writeFile(t, t.TempDir(), FileCUE, "goarch: \n")

	_, err := Load(path)
	assert.Error(t, err)
}

// =============================================================================
// Discovery and merging
// =============================================================================

func TestDiscover(t *testing.T) {
	dir := t.TempDir()

	cfg, path, err := Discover(dir)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, dir, cfg.Dir)

	writeFile(t, dir, FileCUE, `prefix: "FromCue"`+"\n")
	cfg, path, err = Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileCUE), path)
	assert.Equal(t, "FromCue", cfg.Prefix)

	writeFile(t, dir, FileYAML, "prefix: FromYaml\n")
	cfg, path, err = Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileYAML), path, "yaml wins over cue")
	assert.Equal(t, "FromYaml", cfg.Prefix)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "polyconst.toml", "")
	_, err := Load(path)
	assert.ErrorContains(t, err, "unsupported config format")
}

func TestMerge(t *testing.T) {
	base := Config{Package: "geometry", GoArch: "amd64", Inputs: []string{"a.pconst"}, Dir: "/src"}
	merged := base.Merge(Config{GoArch: "arm64", Strict: true, Inputs: []string{"b.pconst"}})

	assert.Equal(t, "geometry", merged.Package)
	assert.Equal(t, "arm64", merged.GoArch)
	assert.True(t, merged.Strict)
	assert.Equal(t, []string{"b.pconst"}, merged.Inputs)
	assert.Equal(t, "/src", merged.Dir)
}

func TestResolve(t *testing.T) {
	cfg := &Config{Dir: "/src"}
	assert.Equal(t, "/src/cache.db", cfg.Resolve("cache.db"))
	assert.Equal(t, "/tmp/cache.db", cfg.Resolve("/tmp/cache.db"))
	assert.Equal(t, "", cfg.Resolve(""))
}
