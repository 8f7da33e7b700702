package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/polyconst/internal/store"
	"github.com/roach88/polyconst/internal/testutil"
)

const geometrySource = `// HEIGHT is the sprite height in pixels.
pub const HEIGHT: i8 | u8 | i16 | i32 | nz_u16 = 16
pub const WIDTH: i16 | i32 | f64 = 32
pub(crate) const AREA: i32 | u128 = HEIGHT * WIDTH
`

type genResponse struct {
	Status string    `json:"status"`
	Data   GenResult `json:"data"`
	Error  *CLIError `json:"error"`
}

// runGenJSON runs gen with deterministic run IDs and decodes its output.
func runGenJSON(t *testing.T, ids *testutil.FixedRunIDs, args ...string) (genResponse, error) {
	t.Helper()
	out, err := executeCommand(t, newGenCommand(&RootOptions{Format: "json"}, ids), args...)
	var resp genResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp, err
}

func TestGen_WritesNextToInput(t *testing.T) {
	golden, err := filepath.Abs(filepath.Join("..", "codegen", "testdata", "golden", "geometry.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(golden)
	require.NoError(t, err)

	t.Chdir(t.TempDir())
	writeFile(t, "geometry.pconst", geometrySource)

	out, err := execute(t, "gen", "--package", "geometry")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ geometry.pconst -> geometry_polyconst.go")
	assert.Contains(t, out, "1 generated, 0 up to date, 0 failed")

	got, err := os.ReadFile("geometry_polyconst.go")
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestGen_OutputFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "a.pconst", "const A: u8 = 1\n")
	writeFile(t, "b.pconst", "const B: u8 = 2\n")

	_, err := execute(t, "gen", "a.pconst", "-o", "consts.go", "--package", "consts")
	require.NoError(t, err)
	data, err := os.ReadFile("consts.go")
	require.NoError(t, err)
	assert.Contains(t, string(data), "package consts")
	assert.Contains(t, string(data), "u8: uint8(1),")

	_, err = execute(t, "gen", "a.pconst", "b.pconst", "-o", "consts.go")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGen_DeclarationErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "bad.pconst", "const SMALL: nz_u8 = 0\nconst NEG: u16 = -1\n")
	writeFile(t, "good.pconst", "const OK: u8 = 1\n")

	out, err := execute(t, "gen")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ bad.pconst")
	assert.Contains(t, out, "bad.pconst:1:1: E126: SMALL (nz_u8): value is zero")
	assert.Contains(t, out, "bad.pconst:2:1: E124: NEG (u16)")
	assert.Contains(t, out, "1 generated, 0 up to date, 1 failed")

	_, err = os.Stat("bad_polyconst.go")
	assert.True(t, os.IsNotExist(err), "no output for a failing file")
	_, err = os.Stat("good_polyconst.go")
	assert.NoError(t, err)
}

func TestGen_JSONFailure(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "bad.pconst", "const BIG: i8 = 128\n")

	resp, err := runGenJSON(t, testutil.NewFixedRunIDs())
	require.Error(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E123", resp.Error.Code)
	require.Len(t, resp.Data.Files, 1)
	assert.Equal(t, StatusFailed, resp.Data.Files[0].Status)
	assert.Equal(t, "BIG", resp.Data.Files[0].Errors[0].Constant)
	assert.Equal(t, "i8", resp.Data.Files[0].Errors[0].Tag)
}

func TestGen_ConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "polyconst.yaml", `package: consts
prefix: Const
inputs:
  - "defs/*.pconst"
output_suffix: _gen.go
`)
	writeFile(t, "defs/limits.pconst", "pub const LIMIT: u32 = 10\n")
	writeFile(t, "ignored.pconst", "const X: u8 = 1\n")

	_, err := execute(t, "gen")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join("defs", "limits_gen.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "package consts")
	assert.Contains(t, string(data), "type ConstLimit struct")

	_, err = os.Stat("ignored_polyconst.go")
	assert.True(t, os.IsNotExist(err))

	// Flags override the file.
	_, err = execute(t, "gen", "--package", "other")
	require.NoError(t, err)
	data, err = os.ReadFile(filepath.Join("defs", "limits_gen.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "package other")
}

func TestGen_InvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "polyconst.yaml", "pakage: consts\n")
	writeFile(t, "a.pconst", "const A: u8 = 1\n")

	_, err := execute(t, "gen")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeConfig)
}

func TestGen_InvalidGoArchFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "a.pconst", "const A: u8 = 1\n")

	_, err := execute(t, "gen", "--goarch", "pdp11")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "pdp11")
}

func TestGen_NoInputs(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "gen")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNoFiles)

	_, err = execute(t, "gen", "missing.pconst")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}

func TestGen_Cache(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "a.pconst", "const A: u8 = 1\n")
	ids := testutil.NewFixedRunIDs("run-1", "run-2", "run-3", "run-4", "run-5")

	resp, err := runGenJSON(t, ids, "--cache", "cache.db")
	require.NoError(t, err)
	assert.Equal(t, "run-1", resp.Data.RunID)
	assert.Equal(t, 1, resp.Data.Generated)

	resp, err = runGenJSON(t, ids, "--cache", "cache.db")
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Data.Generated)
	assert.Equal(t, 1, resp.Data.Skipped)
	assert.Equal(t, StatusSkipped, resp.Data.Files[0].Status)

	resp, err = runGenJSON(t, ids, "--cache", "cache.db", "--force")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Data.Generated)

	// A hand edit to the output is overwritten.
	writeFile(t, "a_polyconst.go", "package edited\n")
	resp, err = runGenJSON(t, ids, "--cache", "cache.db")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Data.Generated)

	// Different options are a different input.
	resp, err = runGenJSON(t, ids, "--cache", "cache.db", "--package", "consts")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Data.Generated)

	s, err := store.Open("cache.db")
	require.NoError(t, err)
	defer s.Close()

	runs, err := s.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 5)
	assert.Equal(t, store.Run{ID: "run-2", Seq: 2, GeneratorVersion: runs[1].GeneratorVersion, Inputs: 1, Skipped: 1}, runs[1])

	rec, ok, err := s.LookupOutput(context.Background(), "a_polyconst.go")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "run-5", rec.RunID)
}

func TestGen_PackageFromGoGenerate(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOPACKAGE", "shapes")
	writeFile(t, "sides.pconst", "const SIDES: u8 = 4\n")

	_, err := execute(t, "gen")
	require.NoError(t, err)
	data, err := os.ReadFile("sides_polyconst.go")
	require.NoError(t, err)
	assert.Contains(t, string(data), "\npackage shapes\n")

	_, err = execute(t, "gen", "--package", "override", "--force")
	require.NoError(t, err)
	data, err = os.ReadFile("sides_polyconst.go")
	require.NoError(t, err)
	assert.Contains(t, string(data), "\npackage override\n", "the flag wins over GOPACKAGE")
}

func TestGen_DefaultPackageWithoutGoGenerate(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOPACKAGE", "")
	writeFile(t, "sides.pconst", "const SIDES: u8 = 4\n")

	_, err := execute(t, "gen")
	require.NoError(t, err)
	data, err := os.ReadFile("sides_polyconst.go")
	require.NoError(t, err)
	assert.Contains(t, string(data), "\npackage main\n")
}
