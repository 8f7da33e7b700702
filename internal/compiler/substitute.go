package compiler

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/token"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/roach88/polyconst/internal/ir"
)

// Dictionary maps constant names to their rewritten initializers, in
// declaration order. An entry is never changed once inserted.
type Dictionary struct {
	names   []string
	entries map[string]ast.Expr
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{entries: make(map[string]ast.Expr)}
}

// Insert records name. It reports false, leaving the dictionary unchanged,
// when name is already present.
func (d *Dictionary) Insert(name string, expr ast.Expr) bool {
	if _, ok := d.entries[name]; ok {
		return false
	}
	d.names = append(d.names, name)
	d.entries[name] = cloneExpr(expr)
	return true
}

// Lookup returns the rewritten initializer recorded for name.
func (d *Dictionary) Lookup(name string) (ast.Expr, bool) {
	expr, ok := d.entries[name]
	return expr, ok
}

// Names returns the recorded names in insertion order.
func (d *Dictionary) Names() []string {
	return append([]string(nil), d.names...)
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.names)
}

// Substitute returns a copy of expr in which every identifier naming a
// dictionary entry is replaced by that entry's initializer in parentheses.
// Inserted subtrees are not scanned again, so only constants declared
// earlier are ever substituted. Selector names (the Sel of x.Sel) are
// never replaced. The input tree is not modified.
func Substitute(expr ast.Expr, dict *Dictionary) ast.Expr {
	root := cloneExpr(expr)
	result := astutil.Apply(root, func(c *astutil.Cursor) bool {
		id, ok := c.Node().(*ast.Ident)
		if !ok {
			return true
		}
		if _, ok := c.Parent().(*ast.SelectorExpr); ok && c.Name() == "Sel" {
			return false
		}
		repl, ok := dict.Lookup(ir.NormalizeIdent(id.Name))
		if !ok {
			return false
		}
		c.Replace(&ast.ParenExpr{X: cloneExpr(repl)})
		return false
	}, nil)
	return result.(ast.Expr)
}

// FormatExpr prints expr as single-line Go source.
func FormatExpr(expr ast.Expr) string {
	var buf bytes.Buffer
	if err := format.Node(&buf, token.NewFileSet(), expr); err != nil {
		return ""
	}
	return buf.String()
}

// cloneExpr deep-copies the expression forms that can appear in a constant
// initializer, dropping source positions.
func cloneExpr(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *ast.Ident:
		return &ast.Ident{Name: e.Name}
	case *ast.BasicLit:
		return &ast.BasicLit{Kind: e.Kind, Value: e.Value}
	case *ast.ParenExpr:
		return &ast.ParenExpr{X: cloneExpr(e.X)}
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Op: e.Op, X: cloneExpr(e.X)}
	case *ast.BinaryExpr:
		return &ast.BinaryExpr{Op: e.Op, X: cloneExpr(e.X), Y: cloneExpr(e.Y)}
	case *ast.StarExpr:
		return &ast.StarExpr{X: cloneExpr(e.X)}
	case *ast.SelectorExpr:
		return &ast.SelectorExpr{X: cloneExpr(e.X), Sel: &ast.Ident{Name: e.Sel.Name}}
	case *ast.CallExpr:
		return &ast.CallExpr{Fun: cloneExpr(e.Fun), Args: cloneList(e.Args)}
	case *ast.IndexExpr:
		return &ast.IndexExpr{X: cloneExpr(e.X), Index: cloneExpr(e.Index)}
	case *ast.IndexListExpr:
		return &ast.IndexListExpr{X: cloneExpr(e.X), Indices: cloneList(e.Indices)}
	case *ast.SliceExpr:
		return &ast.SliceExpr{X: cloneExpr(e.X), Low: cloneExpr(e.Low), High: cloneExpr(e.High), Max: cloneExpr(e.Max), Slice3: e.Slice3}
	case *ast.ArrayType:
		return &ast.ArrayType{Len: cloneExpr(e.Len), Elt: cloneExpr(e.Elt)}
	case *ast.CompositeLit:
		return &ast.CompositeLit{Type: cloneExpr(e.Type), Elts: cloneList(e.Elts)}
	case *ast.KeyValueExpr:
		return &ast.KeyValueExpr{Key: cloneExpr(e.Key), Value: cloneExpr(e.Value)}
	case *ast.TypeAssertExpr:
		return &ast.TypeAssertExpr{X: cloneExpr(e.X), Type: cloneExpr(e.Type)}
	}
	return e
}

func cloneList(list []ast.Expr) []ast.Expr {
	if list == nil {
		return nil
	}
	out := make([]ast.Expr, len(list))
	for i, e := range list {
		out[i] = cloneExpr(e)
	}
	return out
}
