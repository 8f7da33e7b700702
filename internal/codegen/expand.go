package codegen

import (
	"fmt"
	"go/constant"
	"go/token"
	"io"
	"log/slog"

	"github.com/roach88/polyconst/internal/compiler"
	"github.com/roach88/polyconst/internal/ir"
)

// DefaultPackage is used when Options.Package is empty.
const DefaultPackage = "main"

// Options configures an expansion.
type Options struct {
	// Package is the package clause of the generated file.
	Package string

	// TypePrefix replaces "PolymorphicConstant" in container type names.
	TypePrefix string

	// GoArch sizes int, uint and uintptr for range checks.
	GoArch string

	// Strict reports unresolved identifiers as errors.
	Strict bool

	// Header is written as a comment block after the generated-code line.
	Header string

	// NumericImport overrides the import path of the numeric package.
	NumericImport string

	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Package == "" {
		o.Package = DefaultPackage
	}
	if o.TypePrefix == "" {
		o.TypePrefix = ir.DefaultTypePrefix
	}
	if o.GoArch == "" {
		o.GoArch = compiler.DefaultGoArch
	}
	if o.NumericImport == "" {
		o.NumericImport = compiler.NumericImport
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Fingerprint identifies the options that shape generated output.
// The logger is excluded.
func (o Options) Fingerprint() string {
	o = o.withDefaults()
	return fmt.Sprintf("package=%s\x00prefix=%s\x00goarch=%s\x00strict=%t\x00numeric=%s\x00header=%s",
		o.Package, o.TypePrefix, o.GoArch, o.Strict, o.NumericImport, o.Header)
}

// Expansion is one declaration after substitution and checking.
type Expansion struct {
	Declaration ir.Declaration `json:"declaration"`

	// Rewritten is the initializer with earlier constants substituted.
	Rewritten string `json:"rewritten"`

	// Value is the exact value, nil when the initializer could not be
	// evaluated at generation time.
	Value constant.Value `json:"-"`

	// Unresolved lists identifiers left for the Go compiler.
	Unresolved []string `json:"unresolved,omitempty"`
}

// Warning is a non-fatal diagnostic.
type Warning struct {
	Pos      token.Position `json:"-"`
	Constant string         `json:"constant"`
	Message  string         `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Pos, w.Constant, w.Message)
}

// Result is a successful expansion.
type Result struct {
	Filename   string      `json:"filename"`
	Source     []byte      `json:"-"`
	Expansions []Expansion `json:"expansions"`
	Warnings   []Warning   `json:"warnings,omitempty"`
}

// Declarations returns the parsed declarations in source order.
func (r *Result) Declarations() []ir.Declaration {
	decls := make([]ir.Declaration, len(r.Expansions))
	for i, e := range r.Expansions {
		decls[i] = e.Declaration
	}
	return decls
}

// Lookup returns the expansion of the named constant.
func (r *Result) Lookup(name string) (Expansion, bool) {
	for _, e := range r.Expansions {
		if e.Declaration.Name == name {
			return e, true
		}
	}
	return Expansion{}, false
}

// Expand parses a declaration list and generates the Go file for it.
// filename is used for positions only; src is not read from disk.
// Syntax errors come back as *compiler.SyntaxError; checks collect every
// error of the list into a compiler.ErrorList.
func Expand(filename string, src []byte, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	logger := opts.Logger

	decls, err := compiler.ParseList(filename, src, compiler.ParseConfig{TypePrefix: opts.TypePrefix})
	if err != nil {
		return nil, err
	}
	logger.Debug("parsed declarations", "file", filename, "count", len(decls))

	checker, err := compiler.NewChecker(compiler.CheckConfig{
		GoArch: opts.GoArch,
		Strict: opts.Strict,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	gen, err := NewGenerator(opts)
	if err != nil {
		return nil, err
	}

	errs := compiler.ValidateDeclarations(decls)
	dict := compiler.NewDictionary()
	result := &Result{Filename: filename}
	fragments := make([][]byte, 0, len(decls))
	needsNumeric := false

	for _, decl := range decls {
		expr, err := compiler.ParseInitializer(decl)
		if err != nil {
			return nil, err
		}
		rewritten := compiler.Substitute(expr, dict)
		eval, checkErrs := checker.Check(decl, rewritten)
		errs = append(errs, checkErrs...)

		exp := Expansion{
			Declaration: decl,
			Rewritten:   compiler.FormatExpr(rewritten),
			Value:       eval.Value,
			Unresolved:  eval.Unresolved,
		}
		if len(eval.Unresolved) > 0 && !opts.Strict {
			result.Warnings = append(result.Warnings, Warning{
				Pos:      decl.Pos,
				Constant: decl.Name,
				Message:  fmt.Sprintf("undefined identifiers %v left for the Go compiler", eval.Unresolved),
			})
		}

		// No output once anything failed; keep checking to report every error.
		if len(errs) == 0 {
			frag, err := gen.Declaration(exp)
			if err != nil {
				return nil, err
			}
			fragments = append(fragments, frag)
			for _, v := range decl.Variants {
				needsNumeric = needsNumeric || compiler.NeedsNumeric(v)
			}
		}

		dict.Insert(decl.Name, rewritten)
		result.Expansions = append(result.Expansions, exp)
	}

	if len(errs) > 0 {
		errs.Sort()
		return nil, errs
	}

	out, err := gen.File(OutputPath(filename, ""), fragments, needsNumeric)
	if err != nil {
		return nil, err
	}
	result.Source = out
	logger.Debug("generated file", "file", filename, "declarations", len(decls), "bytes", len(out))
	return result, nil
}
