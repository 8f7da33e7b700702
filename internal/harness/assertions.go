package harness

import (
	"fmt"
	"go/constant"
	"go/token"
	"go/types"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/polyconst/internal/codegen"
	"github.com/roach88/polyconst/internal/hostcheck"
)

// checkOutcome compares whether expansion succeeded, and with which
// codes, against the expectation.
func checkOutcome(e Expectation, r *Result) []string {
	failed := r.Source == ""
	switch {
	case *e.OK && failed:
		return []string{fmt.Sprintf("expected expansion to succeed, got:\n%s", r.Diagnostics)}
	case !*e.OK && !failed:
		return []string{fmt.Sprintf("expected expansion to fail with %v, but it succeeded", e.Codes)}
	case !*e.OK && len(e.Codes) > 0 && !slices.Equal(e.Codes, r.Codes):
		return []string{fmt.Sprintf("error codes: expected %v, got %v\n%s", e.Codes, r.Codes, r.Diagnostics)}
	}
	return nil
}

// EvaluateExpectations checks the value, type, accessor and content
// expectations against a successful expansion.
// Returns all mismatches found (does not fail-fast), ordered by constant name.
func EvaluateExpectations(e Expectation, res *codegen.Result) []string {
	var errs []string

	for _, name := range sortedKeys(e.Values) {
		exp, ok := res.Lookup(name)
		if !ok {
			errs = append(errs, fmt.Sprintf("values: constant %s not declared", name))
			continue
		}
		if msg := compareValue(name, e.Values[name], exp.Value); msg != "" {
			errs = append(errs, msg)
		}
	}

	for _, name := range sortedKeys(e.Types) {
		exp, ok := res.Lookup(name)
		if !ok {
			errs = append(errs, fmt.Sprintf("types: constant %s not declared", name))
			continue
		}
		if got := exp.Declaration.TypeName; got != e.Types[name] {
			errs = append(errs, fmt.Sprintf("types: %s: expected %s, got %s", name, e.Types[name], got))
		}
	}

	for _, name := range sortedKeys(e.Accessors) {
		exp, ok := res.Lookup(name)
		if !ok {
			errs = append(errs, fmt.Sprintf("accessors: constant %s not declared", name))
			continue
		}
		var got []string
		for _, v := range exp.Declaration.Variants {
			got = append(got, v.AccessorName())
		}
		if !slices.Equal(got, e.Accessors[name]) {
			errs = append(errs, fmt.Sprintf("accessors: %s: expected %v, got %v", name, e.Accessors[name], got))
		}
	}

	src := string(res.Source)
	for _, want := range e.Contains {
		if !strings.Contains(src, want) {
			errs = append(errs, fmt.Sprintf("contains: generated file has no %q", want))
		}
	}
	return errs
}

// compareValue compares an evaluated constant with an expected literal
// expression. Integer and float values compare exactly across kinds.
func compareValue(name, want string, got constant.Value) string {
	if got == nil {
		return fmt.Sprintf("values: %s: not evaluated at generation time", name)
	}
	tv, err := types.Eval(token.NewFileSet(), nil, token.NoPos, want)
	if err != nil || tv.Value == nil {
		return fmt.Sprintf("values: %s: expected value %q is not a constant", name, want)
	}
	if !constant.Compare(got, token.EQL, tv.Value) {
		return fmt.Sprintf("values: %s: expected %s, got %s", name, want, got.ExactString())
	}
	return ""
}

// checkHost type-checks generated source against the expected outcome.
func checkHost(want, filename string, src []byte, imp types.Importer) ([]string, error) {
	diags, err := hostcheck.CheckSource(filename, src, imp)
	if err != nil {
		return nil, err
	}
	switch {
	case want == HostPass && len(diags) > 0:
		lines := make([]string, len(diags))
		for i, d := range diags {
			lines[i] = d.String()
		}
		return []string{fmt.Sprintf("host: expected generated code to type-check:\n%s", strings.Join(lines, "\n"))}, nil
	case want == HostFail && len(diags) == 0:
		return []string{"host: expected generated code to fail type-checking"}, nil
	}
	return nil, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
