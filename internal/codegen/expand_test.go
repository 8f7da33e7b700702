package codegen

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/polyconst/internal/compiler"
)

const geometrySrc = `// HEIGHT is the sprite height in pixels.
pub const HEIGHT: i8 | u8 | i16 | i32 | nz_u16 = 16
pub const WIDTH: i16 | i32 | f64 = 32
pub(crate) const AREA: i32 | u128 = HEIGHT * WIDTH
`

func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func expandErrors(t *testing.T, src string, opts Options) compiler.ErrorList {
	t.Helper()
	_, err := Expand("test.pconst", []byte(src), opts)
	require.Error(t, err)
	var errs compiler.ErrorList
	require.ErrorAs(t, err, &errs)
	return errs
}

// =============================================================================
// Generated output
// =============================================================================

func TestExpandGolden(t *testing.T) {
	result, err := Expand("geometry.pconst", []byte(geometrySrc), Options{Package: "geometry"})
	require.NoError(t, err)

	newGolden(t).Assert(t, "geometry", result.Source)
}

func TestExpandHeaderGolden(t *testing.T) {
	result, err := Expand("shapes.pconst", []byte("const SIDES: u8 = 4\n"), Options{
		Package:    "shapes",
		TypePrefix: "Const",
		Header:     "Copyright 2026 The Geometry Authors.\n\nLicensed under the MIT license.\n",
	})
	require.NoError(t, err)

	newGolden(t).Assert(t, "header", result.Source)
}

func TestExpandEmptyList(t *testing.T) {
	result, err := Expand("empty.pconst", []byte("// nothing yet\n"), Options{Package: "empty"})
	require.NoError(t, err)

	assert.Empty(t, result.Expansions)
	assert.Equal(t, GeneratedHeader+"\n\npackage empty\n", string(result.Source))
}

func TestExpandAccessorPerVariant(t *testing.T) {
	result, err := Expand("a.pconst", []byte("pub const A: i8 | u64 | f32 | nz_i32 | byte = 7\n"), Options{})
	require.NoError(t, err)

	src := string(result.Source)
	assert.Contains(t, src, "func (c PolymorphicConstantA) I8() int8 {")
	assert.Contains(t, src, "func (c PolymorphicConstantA) U64() uint64 {")
	assert.Contains(t, src, "func (c PolymorphicConstantA) F32() float32 {")
	assert.Contains(t, src, "func (c PolymorphicConstantA) NzI32() numeric.NonZero[int32] {")
	assert.Contains(t, src, "func (c PolymorphicConstantA) Byte() byte {")
	assert.Equal(t, 5, bytes.Count(result.Source, []byte("func (c PolymorphicConstantA)")))
	assert.Contains(t, src, "package main")
}

func TestExpandWideValues(t *testing.T) {
	src := "const NEG: i128 | nz_i128 = -1\nconst BIG: u128 = 1<<64 + 5\n"
	result, err := Expand("w.pconst", []byte(src), Options{Package: "w"})
	require.NoError(t, err)

	out := string(result.Source)
	assert.Contains(t, out, "numeric.Int128FromParts(-1, 18446744073709551615)")
	assert.Contains(t, out, "numeric.AssumeNonZero(numeric.Int128FromParts(-1, 18446744073709551615))")
	assert.Contains(t, out, "numeric.Uint128FromParts(1, 5)")
	assert.NotContains(t, out, "_ = 1 /", "128-bit wrappers have no Go-level guard")
}

func TestExpandQualifiedTagAddsImport(t *testing.T) {
	result, err := Expand("t.pconst", []byte("const TIMEOUT: time.Duration | i64 = 5\n"), Options{Package: "t"})
	require.NoError(t, err)

	out := string(result.Source)
	assert.Contains(t, out, `import "time"`)
	assert.Contains(t, out, "time.Duration(5)")
	assert.Contains(t, out, "func (c polymorphicConstantTimeout) TimeDuration() time.Duration {")
}

func TestExpandCustomNumericImport(t *testing.T) {
	result, err := Expand("n.pconst", []byte("const N: nz_u8 = 1\n"), Options{
		Package:       "n",
		NumericImport: "example.com/vendored/polynum",
	})
	require.NoError(t, err)
	assert.Contains(t, string(result.Source), `import numeric "example.com/vendored/polynum"`)
}

// =============================================================================
// Substitution through the fold
// =============================================================================

func TestExpandCrossReference(t *testing.T) {
	result, err := Expand("x.pconst", []byte("const A: i32 = 5\nconst B: i32 = A * 2\nconst C: i64 = B + A\n"), Options{})
	require.NoError(t, err)

	b, ok := result.Lookup("B")
	require.True(t, ok)
	assert.Equal(t, "(5) * 2", b.Rewritten)
	assert.Equal(t, "10", b.Value.ExactString())

	c, ok := result.Lookup("C")
	require.True(t, ok)
	assert.Equal(t, "((5) * 2) + (5)", c.Rewritten)
	assert.Equal(t, "15", c.Value.ExactString())

	_, ok = result.Lookup("D")
	assert.False(t, ok)
	assert.Len(t, result.Declarations(), 3)
}

func TestExpandForwardReferenceWarns(t *testing.T) {
	var logs bytes.Buffer
	opts := Options{Logger: slog.New(slog.NewTextHandler(&logs, nil))}

	result, err := Expand("f.pconst", []byte("const A: i32 = B\nconst B: i32 = 1\n"), opts)
	require.NoError(t, err)

	a, _ := result.Lookup("A")
	assert.Equal(t, "B", a.Rewritten, "forward references are left as written")
	assert.Nil(t, a.Value)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "A", result.Warnings[0].Constant)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, string(result.Source), "i32: int32(B),")
	assert.Contains(t, string(result.Source), "\t_ = int32(B)\n", "unevaluated initializers must stay constant")
}

func TestExpandHostExpressionGetsConstantCheck(t *testing.T) {
	result, err := Expand("h.pconst", []byte("const A: i8 | u8 | nz_u16 = len(os.Args)*1000 - 1\n"), Options{Package: "h"})
	require.NoError(t, err)

	out := string(result.Source)
	assert.Contains(t, out, "\t\"os\"\n")
	assert.Contains(t, out, "// A must be a constant of each declared type.")
	assert.Contains(t, out, "\t_ = int8(len(os.Args)*1000 - 1)\n")
	assert.Contains(t, out, "\t_ = uint8(len(os.Args)*1000 - 1)\n")
	assert.Contains(t, out, "\t_ = 1 / uint16(len(os.Args)*1000")
}

func TestExpandResolvedHasNoConstantCheck(t *testing.T) {
	result, err := Expand("r.pconst", []byte("const A: i8 = 5\n"), Options{Package: "r"})
	require.NoError(t, err)
	assert.NotContains(t, string(result.Source), "must be a constant")
}

func TestExpandForwardReferenceStrict(t *testing.T) {
	errs := expandErrors(t, "const A: i32 = B\nconst B: i32 = 1\n", Options{Strict: true})
	assert.Equal(t, []string{compiler.ErrUnresolved}, errs.Codes())
}

// =============================================================================
// Errors
// =============================================================================

func TestExpandRejectsUnrepresentable(t *testing.T) {
	tests := []struct {
		src  string
		code string
	}{
		{"const A: nz_u8 = 0\n", compiler.ErrZeroNonZero},
		{"const A: u8 = -1\n", compiler.ErrNegativeUnsigned},
		{"const A: nz_i8 = 128\n", compiler.ErrOverflow},
		{"const A: f32 = 1e39\n", compiler.ErrFloatOverflow},
		{"const A: i32 = 2.5\n", compiler.ErrTruncated},
		{"const A: i32 = uint32(5)\n", compiler.ErrTypedInitializer},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			errs := expandErrors(t, tt.src, Options{})
			assert.Equal(t, []string{tt.code}, errs.Codes())
		})
	}
}

func TestExpandCollectsAllErrors(t *testing.T) {
	src := "const A: u8 = 300\nconst A: i8 = 1\nconst B: nz_u8 | i8 = A - 300\n"
	errs := expandErrors(t, src, Options{})

	assert.Equal(t, []string{compiler.ErrOverflow, compiler.ErrDuplicateName, compiler.ErrZeroNonZero}, errs.Codes())
	assert.Equal(t, 1, errs[0].Pos.Line)
	assert.Equal(t, 3, errs[2].Pos.Line)
}

func TestExpandSyntaxError(t *testing.T) {
	_, err := Expand("s.pconst", []byte("const A i32 = 1\n"), Options{})
	var serr *compiler.SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, compiler.ErrMissingColon, serr.Code)
	assert.Equal(t, "s.pconst", serr.Pos.Filename)
}

func TestExpandUnknownArch(t *testing.T) {
	_, err := Expand("a.pconst", []byte("const A: i8 = 1\n"), Options{GoArch: "pdp11"})
	assert.ErrorContains(t, err, "pdp11")
}

func TestExpandFloatPrecisionLossAccepted(t *testing.T) {
	result, err := Expand("pi.pconst", []byte("const PI: f32 | f64 = 3.141592653589793238462643383279\n"), Options{})
	require.NoError(t, err)
	assert.Contains(t, string(result.Source), "float32(3.141592653589793238462643383279)")
}

// =============================================================================
// Options
// =============================================================================

func TestOptionsFingerprint(t *testing.T) {
	base := Options{Package: "p"}
	assert.Equal(t, base.Fingerprint(), Options{Package: "p", GoArch: "amd64"}.Fingerprint(), "defaults are applied")
	assert.NotEqual(t, base.Fingerprint(), Options{Package: "q"}.Fingerprint())
	assert.NotEqual(t, base.Fingerprint(), Options{Package: "p", Strict: true}.Fingerprint())
	assert.NotEqual(t, base.Fingerprint(), Options{Package: "p", Header: "x"}.Fingerprint())
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "dir/shapes_polyconst.go", OutputPath("dir/shapes.pconst", ""))
	assert.Equal(t, "dir/shapes_gen.go", OutputPath("dir/shapes.pconst", "_gen.go"))
	assert.True(t, IsSource("a/b.pconst"))
	assert.False(t, IsSource("a/b.go"))
}
