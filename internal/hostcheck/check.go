package hostcheck

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"

	"golang.org/x/tools/go/packages"
)

// Diagnostic is one type error in generated or host code.
type Diagnostic struct {
	Pos     string `json:"pos"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Pos == "" {
		return d.Message
	}
	return d.Pos + ": " + d.Message
}

// CheckSource parses and type-checks one Go file as its own package.
// All type errors are returned; a parse error is returned alone.
func CheckSource(filename string, src []byte, imp types.Importer) ([]Diagnostic, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	var diags []Diagnostic
	conf := types.Config{
		Importer: imp,
		Error: func(err error) {
			var terr types.Error
			if errors.As(err, &terr) {
				diags = append(diags, Diagnostic{Pos: terr.Fset.Position(terr.Pos).String(), Message: terr.Msg})
				return
			}
			diags = append(diags, Diagnostic{Message: err.Error()})
		},
	}
	// Errors are collected by conf.Error.
	_, _ = conf.Check(f.Name.Name, fset, []*ast.File{f}, nil)
	return diags, nil
}

// CheckPackages loads the packages matching patterns under dir and returns
// the errors of the matched packages. Dependencies are loaded but their
// errors are not reported.
func CheckPackages(ctx context.Context, dir string, patterns ...string) ([]Diagnostic, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo | packages.NeedDeps | packages.NeedImports,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	var diags []Diagnostic
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			diags = append(diags, Diagnostic{Pos: e.Pos, Message: e.Msg})
		}
	}
	return diags, nil
}

// PackageDir returns the source directory of importPath as resolved from
// the module containing dir.
func PackageDir(ctx context.Context, dir, importPath string) (string, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode:    packages.NeedName | packages.NeedFiles,
	}
	pkgs, err := packages.Load(cfg, importPath)
	if err != nil {
		return "", fmt.Errorf("locating %s: %w", importPath, err)
	}
	if len(pkgs) != 1 {
		return "", fmt.Errorf("locating %s: found %d packages", importPath, len(pkgs))
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return "", fmt.Errorf("locating %s: %s", importPath, pkg.Errors[0].Msg)
	}
	if len(pkg.GoFiles) == 0 {
		return "", fmt.Errorf("locating %s: no Go files", importPath)
	}
	return filepath.Dir(pkg.GoFiles[0]), nil
}
