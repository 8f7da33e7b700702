package codegen

import (
	"bytes"
	"fmt"
	"go/constant"
	"path"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/roach88/polyconst/internal/compiler"
	"github.com/roach88/polyconst/internal/ir"
	"github.com/roach88/polyconst/numeric"
)

// GeneratedHeader is the first line of every generated file.
const GeneratedHeader = "// Code generated by polyconst. DO NOT EDIT."

// Generator renders checked declarations as Go source.
type Generator struct {
	opts Options
	decl *template.Template
	file *template.Template
}

// NewGenerator parses the output templates.
func NewGenerator(opts Options) (*Generator, error) {
	decl, err := template.New("decl").Parse(declTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing declaration template: %w", err)
	}
	file, err := template.New("file").Parse(fileTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing file template: %w", err)
	}
	return &Generator{opts: opts.withDefaults(), decl: decl, file: file}, nil
}

type fieldData struct {
	Field    string
	Type     string
	Accessor string
	Init     string
}

type declData struct {
	Name       string
	TypeName   string
	Expr       string
	Scope      string
	Attributes []string
	Fields     []fieldData
	Guards     []string
	Checks     []string
}

// Declaration renders the container type, its accessors, the instance and
// any zero guards for one checked declaration. Initializers the checker could
// not evaluate also get constant checks, so Go rejects them at build time
// instead of converting a run-time value.
func (g *Generator) Declaration(exp Expansion) ([]byte, error) {
	decl := exp.Declaration
	data := declData{
		Name:       decl.Name,
		TypeName:   decl.TypeName,
		Expr:       exp.Rewritten,
		Attributes: decl.Attributes,
	}
	if decl.Visibility == ir.PublicScoped {
		data.Scope = decl.ScopePath
	}

	for _, v := range decl.Variants {
		init, guard, err := initializer(v, exp.Rewritten, exp.Value)
		if err != nil {
			return nil, fmt.Errorf("%s (%s): %w", decl.Name, v.Tag, err)
		}
		data.Fields = append(data.Fields, fieldData{
			Field:    v.FieldName(),
			Type:     v.ResolvedType,
			Accessor: v.AccessorName(),
			Init:     init,
		})
		if guard != "" {
			data.Guards = append(data.Guards, guard)
		}
		if len(exp.Unresolved) > 0 && v.Strategy == ir.DirectCast {
			data.Checks = append(data.Checks, init)
		}
	}

	var buf bytes.Buffer
	if err := g.decl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing declaration template: %w", err)
	}
	return buf.Bytes(), nil
}

type importEntry struct {
	Name string
	Path string
}

// File assembles rendered declarations into one formatted Go file.
// needsNumeric adds the numeric support import.
func (g *Generator) File(filename string, fragments [][]byte, needsNumeric bool) ([]byte, error) {
	var imp *importEntry
	if needsNumeric {
		imp = &importEntry{Path: g.opts.NumericImport}
		if path.Base(imp.Path) != "numeric" {
			imp.Name = "numeric"
		}
	}

	frags := make([]string, len(fragments))
	for i, f := range fragments {
		frags[i] = string(f)
	}

	data := struct {
		Header    string
		Package   string
		Import    *importEntry
		Fragments []string
	}{
		Header:    commentBlock(g.opts.Header),
		Package:   g.opts.Package,
		Import:    imp,
		Fragments: frags,
	}

	var buf bytes.Buffer
	if err := g.file.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing file template: %w", err)
	}

	out, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %w", err)
	}
	return out, nil
}

// initializer returns the field initializer for one variant and, for
// non-zero wrappers, the conversion that the zero guard divides by.
func initializer(v ir.Variant, expr string, value constant.Value) (init, guard string, err error) {
	switch v.Strategy {
	case ir.DirectCast:
		return fmt.Sprintf("%s(%s)", v.ResolvedType, expr), "", nil

	case ir.NonZeroWrap:
		if v.Kind == ir.KindInt128 || v.Kind == ir.KindUint128 {
			wide, err := wideLiteral(v.Kind, value)
			if err != nil {
				return "", "", err
			}
			return fmt.Sprintf("numeric.AssumeNonZero(%s)", wide), "", nil
		}
		conv := fmt.Sprintf("%s(%s)", v.Elem, expr)
		return fmt.Sprintf("numeric.AssumeNonZero(%s)", conv), conv, nil

	case ir.WideSplit:
		wide, err := wideLiteral(v.Kind, value)
		if err != nil {
			return "", "", err
		}
		return wide, "", nil
	}
	return "", "", fmt.Errorf("unknown strategy %s", v.Strategy)
}

// wideLiteral builds a 128-bit value from its 64-bit halves.
func wideLiteral(kind ir.Kind, value constant.Value) (string, error) {
	if value == nil {
		return "", fmt.Errorf("%s value is not known at generation time", kind)
	}
	n, ok := compiler.BigInt(value)
	if !ok {
		return "", fmt.Errorf("%s is not an integer", value)
	}

	switch kind {
	case ir.KindInt128:
		x, ok := numeric.Int128FromBig(n)
		if !ok {
			return "", fmt.Errorf("%s overflows int128", n)
		}
		return fmt.Sprintf("numeric.Int128FromParts(%d, %d)", x.Hi(), x.Lo()), nil
	case ir.KindUint128:
		x, ok := numeric.Uint128FromBig(n)
		if !ok {
			return "", fmt.Errorf("%s overflows uint128", n)
		}
		return fmt.Sprintf("numeric.Uint128FromParts(%d, %d)", x.Hi(), x.Lo()), nil
	}
	return "", fmt.Errorf("%s is not a 128-bit kind", kind)
}

// commentBlock turns a license header into Go line comments.
func commentBlock(text string) string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "//"):
		case line == "":
			lines[i] = "//"
		default:
			lines[i] = "// " + line
		}
	}
	return strings.Join(lines, "\n")
}

// Templates

const declTemplate = `// {{.TypeName}} holds {{.Name}} in each of its declared representations.
{{- if .Scope}}
//
// Visible within {{.Scope}}.
{{- end}}
type {{.TypeName}} struct {
{{- range .Fields}}
	{{.Field}} {{.Type}}
{{- end}}
}
{{- range .Fields}}

// {{.Accessor}} returns {{$.Name}} as {{.Type}}.
func (c {{$.TypeName}}) {{.Accessor}}() {{.Type}} {
	return c.{{.Field}}
}
{{- end}}

{{if .Attributes}}{{range .Attributes}}{{.}}
{{end}}{{else}}// {{.Name}} is the constant {{.Expr}}.
{{end -}}
var {{.Name}} = {{.TypeName}}{
{{- range .Fields}}
	{{.Field}}: {{.Init}},
{{- end}}
}
{{- if .Guards}}

// Zero checks for the non-zero variants of {{.Name}}.
const (
{{- range .Guards}}
	_ = 1 / {{.}}
{{- end}}
)
{{- end}}
{{- if .Checks}}

// {{.Name}} must be a constant of each declared type.
const (
{{- range .Checks}}
	_ = {{.}}
{{- end}}
)
{{- end}}
`

const fileTemplate = GeneratedHeader + `
{{- if .Header}}

{{.Header}}
{{- end}}

package {{.Package}}
{{- with .Import}}

import {{if .Name}}{{.Name}} {{end}}"{{.Path}}"
{{- end}}
{{range .Fragments}}
{{.}}
{{- end}}
`
