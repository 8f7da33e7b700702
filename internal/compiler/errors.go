package compiler

import (
	"fmt"
	"go/token"
	"sort"
	"strings"

	"github.com/roach88/polyconst/internal/ir"
)

// Error codes.
const (
	// Syntax errors (E100-E109). The first one aborts the declaration list.
	ErrIllegalToken       = "E100" // scanner error
	ErrMissingKeyword     = "E101" // expected const or static
	ErrMissingName        = "E102" // expected constant name
	ErrMissingColon       = "E103" // expected ':'
	ErrEmptyTypeList      = "E104" // empty or malformed type-tag list
	ErrMissingAssign      = "E105" // expected '='
	ErrMissingInitializer = "E106" // no initializer tokens
	ErrUnterminated       = "E107" // EOF or line end inside the declaration
	ErrInvalidExpression  = "E108" // initializer is not a Go expression
	ErrInvalidVisibility  = "E109" // malformed pub(...)

	// Declaration errors (E110-E119)
	ErrDuplicateName     = "E110" // constant declared twice
	ErrDuplicateTag      = "E111" // tag repeated within a declaration
	ErrTypeNameCollision = "E112" // two constants derive one container type name
	ErrAccessorCollision = "E113" // two tags derive one accessor or field name
	ErrImportCollision   = "E114" // constant named like a package the output imports

	// Representation errors (E120-E139)
	ErrNotConstant      = "E120" // initializer is not a constant expression
	ErrTypedInitializer = "E121" // initializer has a type; an untyped value is required
	ErrNotNumeric       = "E122" // bool, string or complex value
	ErrOverflow         = "E123" // integer out of range
	ErrNegativeUnsigned = "E124" // negative value for an unsigned target
	ErrTruncated        = "E125" // fractional value for an integer target
	ErrZeroNonZero      = "E126" // zero for a non-zero target
	ErrFloatOverflow    = "E127" // float rounds to infinity
	ErrUnresolved       = "E128" // unresolved identifiers (strict mode)
	ErrInvalidConstant  = "E129" // go/types rejected the constant expression
	ErrWideUnresolved   = "E130" // 128-bit variant needs a resolvable value
)

// SyntaxError reports a malformed declaration at the offending token.
type SyntaxError struct {
	Code    string
	Message string
	Pos     token.Position
}

func (e *SyntaxError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CheckError reports a declaration or representation error for one constant.
// Tag is empty when the error concerns the whole declaration.
type CheckError struct {
	Code     string
	Constant string
	Tag      ir.Shorthand
	Message  string
	Pos      token.Position
}

func (e *CheckError) Error() string {
	subject := e.Constant
	if e.Tag != "" {
		subject = fmt.Sprintf("%s (%s)", e.Constant, e.Tag)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s: %s", e.Pos, e.Code, subject, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, subject, e.Message)
}

// ErrorList collects every CheckError of one declaration list.
type ErrorList []*CheckError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

// Sort orders the list by source position, then by code.
// The sort is stable so errors of one variant keep their emission order.
func (l ErrorList) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i].Pos, l[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return l[i].Code < l[j].Code
	})
}

// Err returns nil for an empty list and the list otherwise.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Codes returns the error codes in list order.
func (l ErrorList) Codes() []string {
	codes := make([]string, len(l))
	for i, e := range l {
		codes[i] = e.Code
	}
	return codes
}

// Details renders one error per line.
func (l ErrorList) Details() string {
	lines := make([]string, len(l))
	for i, e := range l {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}
