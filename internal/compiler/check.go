package compiler

import (
	"errors"
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"io"
	"log/slog"
	"math"
	"math/big"
	"sort"

	"github.com/roach88/polyconst/internal/ir"
)

// DefaultGoArch sizes int, uint and uintptr when no target is configured.
const DefaultGoArch = "amd64"

// CheckConfig configures a Checker.
type CheckConfig struct {
	// GoArch selects the word size used for int, uint and uintptr.
	GoArch string

	// Strict turns unresolved identifiers into E128 errors instead of
	// warnings.
	Strict bool

	Logger *slog.Logger
}

// Evaluation is the checker's view of one rewritten initializer.
type Evaluation struct {
	// Value is the exact untyped value, or nil when the initializer
	// references identifiers the checker cannot see.
	Value constant.Value

	// Unresolved lists those identifiers, sorted.
	Unresolved []string
}

// Resolved reports whether the initializer was evaluated.
func (e Evaluation) Resolved() bool {
	return e.Value != nil
}

// Checker verifies that every variant of a declaration can represent the
// initializer's value exactly.
type Checker struct {
	sizes  types.Sizes
	strict bool
	logger *slog.Logger
}

// NewChecker returns a Checker for cfg. An unknown GoArch is an error.
func NewChecker(cfg CheckConfig) (*Checker, error) {
	arch := cfg.GoArch
	if arch == "" {
		arch = DefaultGoArch
	}
	sizes := types.SizesFor("gc", arch)
	if sizes == nil {
		return nil, fmt.Errorf("unknown GOARCH %q", arch)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Checker{sizes: sizes, strict: cfg.Strict, logger: logger}, nil
}

// Check evaluates expr, the rewritten initializer of decl, and checks it
// against every variant. All errors for the declaration are returned.
func (c *Checker) Check(decl ir.Declaration, expr ast.Expr) (Evaluation, ErrorList) {
	if unresolved := unresolvedIdents(expr); len(unresolved) > 0 {
		return c.deferred(decl, unresolved)
	}

	info := &types.Info{Types: make(map[ast.Expr]types.TypeAndValue)}
	if err := types.CheckExpr(token.NewFileSet(), nil, token.NoPos, expr, info); err != nil {
		return Evaluation{}, ErrorList{c.declError(decl, ErrInvalidConstant, typesMessage(err))}
	}

	tv := info.Types[expr]
	if tv.Value == nil {
		return Evaluation{}, ErrorList{c.declError(decl, ErrNotConstant, "initializer is not a constant expression")}
	}
	basic, ok := tv.Type.(*types.Basic)
	if !ok || basic.Info()&types.IsUntyped == 0 {
		return Evaluation{}, ErrorList{c.declError(decl, ErrTypedInitializer,
			fmt.Sprintf("initializer has type %s; declare an untyped value", tv.Type))}
	}
	if basic.Info()&types.IsNumeric == 0 {
		return Evaluation{}, ErrorList{c.declError(decl, ErrNotNumeric,
			fmt.Sprintf("initializer is a %s, not a number", basic.Name()))}
	}

	value := tv.Value
	if value.Kind() == constant.Complex {
		re := constant.ToFloat(value)
		if re.Kind() == constant.Unknown {
			return Evaluation{}, ErrorList{c.declError(decl, ErrNotNumeric,
				fmt.Sprintf("complex value %s has an imaginary part", value))}
		}
		value = re
	}

	var errs ErrorList
	for _, v := range decl.Variants {
		if err := c.checkVariant(decl, v, value); err != nil {
			errs = append(errs, err)
		}
	}
	return Evaluation{Value: value}, errs
}

// deferred handles initializers that reference identifiers outside the
// declaration list. Their checks fall to the Go compiler, except for
// 128-bit variants whose halves must be computed here.
func (c *Checker) deferred(decl ir.Declaration, unresolved []string) (Evaluation, ErrorList) {
	eval := Evaluation{Unresolved: unresolved}

	var errs ErrorList
	if c.strict {
		errs = append(errs, c.declError(decl, ErrUnresolved, fmt.Sprintf("undefined: %v", unresolved)))
	}
	for _, v := range decl.Variants {
		if v.Kind == ir.KindInt128 || v.Kind == ir.KindUint128 {
			errs = append(errs, c.variantError(decl, v, ErrWideUnresolved,
				fmt.Sprintf("%s needs a value computable from the declaration list; undefined: %v", v.ResolvedType, unresolved)))
		}
	}
	if len(errs) == 0 {
		c.logger.Warn("initializer references identifiers outside the declaration list; range checks deferred to the Go compiler",
			"constant", decl.Name,
			"identifiers", unresolved)
	}
	return eval, errs
}

func (c *Checker) checkVariant(decl ir.Declaration, v ir.Variant, value constant.Value) *CheckError {
	switch {
	case v.Kind.IsInteger():
		iv := constant.ToInt(value)
		if iv.Kind() != constant.Int {
			return c.variantError(decl, v, ErrTruncated,
				fmt.Sprintf("constant %s truncated to integer", value))
		}
		if v.Kind.IsUnsigned() && constant.Sign(iv) < 0 {
			return c.variantError(decl, v, ErrNegativeUnsigned,
				fmt.Sprintf("constant %s is negative; %s is unsigned", iv, v.ResolvedType))
		}
		lo, hi := c.bounds(v.Kind)
		if constant.Compare(iv, token.LSS, lo) || constant.Compare(iv, token.GTR, hi) {
			return c.variantError(decl, v, ErrOverflow,
				fmt.Sprintf("constant %s overflows %s", iv.ExactString(), v.Kind))
		}
		if v.Strategy == ir.NonZeroWrap && constant.Sign(iv) == 0 {
			return c.variantError(decl, v, ErrZeroNonZero, "value is zero")
		}

	case v.Kind.IsFloat():
		fv := constant.ToFloat(value)
		if fv.Kind() == constant.Unknown {
			return c.variantError(decl, v, ErrNotNumeric,
				fmt.Sprintf("constant %s is not a real number", value))
		}
		if v.Kind == ir.KindFloat32 {
			if f, _ := constant.Float32Val(fv); math.IsInf(float64(f), 0) {
				return c.variantError(decl, v, ErrFloatOverflow,
					fmt.Sprintf("constant %s overflows float32", value))
			}
		} else if f, _ := constant.Float64Val(fv); math.IsInf(f, 0) {
			return c.variantError(decl, v, ErrFloatOverflow,
				fmt.Sprintf("constant %s overflows float64", value))
		}

	default:
		c.logger.Debug("range check deferred to the Go compiler",
			"constant", decl.Name,
			"type", v.ResolvedType)
	}
	return nil
}

// bounds returns the inclusive range of an integer kind.
func (c *Checker) bounds(k ir.Kind) (lo, hi constant.Value) {
	switch k {
	case ir.KindInt, ir.KindUint, ir.KindUintptr:
		bits := c.sizes.Sizeof(types.Typ[types.Int]) * 8
		if k == ir.KindUintptr {
			bits = c.sizes.Sizeof(types.Typ[types.Uintptr]) * 8
		}
		if k == ir.KindInt {
			return signedBounds(uint(bits))
		}
		return unsignedBounds(uint(bits))
	case ir.KindInt8:
		return signedBounds(8)
	case ir.KindInt16:
		return signedBounds(16)
	case ir.KindInt32:
		return signedBounds(32)
	case ir.KindInt64:
		return signedBounds(64)
	case ir.KindInt128:
		return signedBounds(128)
	case ir.KindUint8:
		return unsignedBounds(8)
	case ir.KindUint16:
		return unsignedBounds(16)
	case ir.KindUint32:
		return unsignedBounds(32)
	case ir.KindUint64:
		return unsignedBounds(64)
	case ir.KindUint128:
		return unsignedBounds(128)
	}
	panic(fmt.Sprintf("bounds: not an integer kind: %s", k))
}

func signedBounds(bits uint) (lo, hi constant.Value) {
	one := constant.MakeInt64(1)
	limit := constant.Shift(one, token.SHL, bits-1)
	return constant.UnaryOp(token.SUB, limit, 0), constant.BinaryOp(limit, token.SUB, one)
}

func unsignedBounds(bits uint) (lo, hi constant.Value) {
	one := constant.MakeInt64(1)
	limit := constant.Shift(one, token.SHL, bits)
	return constant.MakeInt64(0), constant.BinaryOp(limit, token.SUB, one)
}

// BigInt returns the integer value of v, reporting false when v is not an
// exact integer.
func BigInt(v constant.Value) (*big.Int, bool) {
	iv := constant.ToInt(v)
	if iv.Kind() != constant.Int {
		return nil, false
	}
	switch x := constant.Val(iv).(type) {
	case int64:
		return big.NewInt(x), true
	case *big.Int:
		return new(big.Int).Set(x), true
	}
	return nil, false
}

func (c *Checker) declError(decl ir.Declaration, code, msg string) *CheckError {
	return &CheckError{Code: code, Constant: decl.Name, Message: msg, Pos: decl.Pos}
}

func (c *Checker) variantError(decl ir.Declaration, v ir.Variant, code, msg string) *CheckError {
	return &CheckError{Code: code, Constant: decl.Name, Tag: v.Tag, Message: msg, Pos: decl.Pos}
}

// unresolvedIdents lists identifiers in expr that the universe scope does
// not declare. Selector names are skipped; their package operand is not.
func unresolvedIdents(expr ast.Expr) []string {
	seen := make(map[string]bool)
	ast.Inspect(expr, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.SelectorExpr:
			ast.Inspect(n.X, func(n ast.Node) bool {
				if id, ok := n.(*ast.Ident); ok && types.Universe.Lookup(id.Name) == nil && id.Name != "_" {
					seen[id.Name] = true
				}
				return true
			})
			return false
		case *ast.Ident:
			if types.Universe.Lookup(n.Name) == nil && n.Name != "_" {
				seen[n.Name] = true
			}
		}
		return true
	})

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func typesMessage(err error) string {
	var terr types.Error
	if errors.As(err, &terr) {
		return terr.Msg
	}
	return err.Error()
}
