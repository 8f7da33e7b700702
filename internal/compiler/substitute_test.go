package compiler

import (
	"go/ast"
	goparser "go/parser"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	expr, err := goparser.ParseExpr(src)
	require.NoError(t, err)
	return expr
}

func TestSubstituteReplacesEarlierConstants(t *testing.T) {
	dict := NewDictionary()
	require.True(t, dict.Insert("A", mustExpr(t, "5")))

	out := Substitute(mustExpr(t, "A * 2"), dict)
	assert.Equal(t, "(5) * 2", FormatExpr(out))
}

func TestSubstituteWholeExpression(t *testing.T) {
	dict := NewDictionary()
	dict.Insert("A", mustExpr(t, "1 << 4"))

	out := Substitute(mustExpr(t, "A"), dict)
	assert.Equal(t, "(1 << 4)", FormatExpr(out))
}

func TestSubstituteTransitive(t *testing.T) {
	dict := NewDictionary()
	a := mustExpr(t, "5")
	dict.Insert("A", a)

	b := Substitute(mustExpr(t, "A * 2"), dict)
	dict.Insert("B", b)

	c := Substitute(mustExpr(t, "B + A"), dict)
	assert.Equal(t, "((5) * 2) + (5)", FormatExpr(c))
}

func TestSubstituteLeavesUnknownIdentifiers(t *testing.T) {
	dict := NewDictionary()
	dict.Insert("A", mustExpr(t, "5"))

	out := Substitute(mustExpr(t, "A + LATER + math.MaxInt8"), dict)
	assert.Equal(t, "(5) + LATER + math.MaxInt8", FormatExpr(out))
}

func TestSubstituteSkipsSelectorNames(t *testing.T) {
	dict := NewDictionary()
	dict.Insert("MaxInt8", mustExpr(t, "1"))

	out := Substitute(mustExpr(t, "math.MaxInt8 + MaxInt8"), dict)
	assert.Equal(t, "math.MaxInt8 + (1)", FormatExpr(out))
}

func TestSubstituteDoesNotRescanInsertedTrees(t *testing.T) {
	// A self-referencing entry must not recurse.
	dict := NewDictionary()
	dict.Insert("A", mustExpr(t, "A + 1"))

	out := Substitute(mustExpr(t, "A"), dict)
	assert.Equal(t, "(A + 1)", FormatExpr(out))
}

func TestSubstituteDoesNotModifyInput(t *testing.T) {
	dict := NewDictionary()
	dict.Insert("A", mustExpr(t, "5"))

	in := mustExpr(t, "A - 1")
	Substitute(in, dict)
	assert.Equal(t, "A - 1", FormatExpr(in))
}

func TestDictionaryInsertOnce(t *testing.T) {
	dict := NewDictionary()
	assert.True(t, dict.Insert("A", mustExpr(t, "1")))
	assert.False(t, dict.Insert("A", mustExpr(t, "2")))

	got, ok := dict.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, "1", FormatExpr(got))
	assert.Equal(t, 1, dict.Len())

	dict.Insert("B", mustExpr(t, "3"))
	assert.Equal(t, []string{"A", "B"}, dict.Names())

	_, ok = dict.Lookup("C")
	assert.False(t, ok)
}
