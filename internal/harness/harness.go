package harness

import (
	"errors"
	"fmt"
	"go/types"
	"io"
	"log/slog"

	"github.com/roach88/polyconst/internal/codegen"
	"github.com/roach88/polyconst/internal/compiler"
)

// ErrNoImporter is returned when a scenario needs a host check and the
// harness has no importer for the numeric package.
var ErrNoImporter = errors.New("host check requires an importer")

// Harness runs scenarios.
type Harness struct {
	importer types.Importer
	logger   *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithImporter sets the importer used for host checks.
func WithImporter(imp types.Importer) Option {
	return func(h *Harness) { h.importer = imp }
}

// WithLogger sets the logger passed to the generator.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) { h.logger = logger }
}

// New creates a Harness. Without WithImporter, scenarios that expect a
// host check fail with ErrNoImporter.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(scenario)
}

// Run expands the scenario's source and evaluates its expectations.
//
// Execution flow:
// 1. Expand the source with the scenario's options
// 2. Compare the outcome and error codes with expect.ok and expect.codes
// 3. Evaluate value, type, accessor and content expectations
// 4. Type-check the generated file when expect.host is set
//
// The returned error is reserved for problems running the scenario itself;
// unmet expectations are reported through Result.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	if scenario.Expect.Host != "" && h.importer == nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, ErrNoImporter)
	}

	pkg := scenario.Package
	if pkg == "" {
		pkg = DefaultPackage
	}
	filename := scenario.Name + codegen.SourceExt

	expanded, err := codegen.Expand(filename, []byte(scenario.Source), codegen.Options{
		Package:    pkg,
		TypePrefix: scenario.Options.Prefix,
		GoArch:     scenario.Options.GoArch,
		Strict:     scenario.Options.Strict,
		Logger:     h.logger,
	})

	result := NewResult()
	if err != nil {
		codes, details, ok := diagnostics(err)
		if !ok {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		result.Codes = codes
		result.Diagnostics = details
	} else {
		result.Source = string(expanded.Source)
		for _, w := range expanded.Warnings {
			result.Warnings = append(result.Warnings, w.String())
		}
	}

	for _, msg := range checkOutcome(scenario.Expect, result) {
		result.AddError(msg)
	}
	if err != nil || !result.Pass {
		return result, nil
	}

	for _, msg := range EvaluateExpectations(scenario.Expect, expanded) {
		result.AddError(msg)
	}

	if scenario.Expect.Host != "" {
		msgs, err := checkHost(scenario.Expect.Host, codegen.OutputPath(filename, ""), expanded.Source, h.importer)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		for _, msg := range msgs {
			result.AddError(msg)
		}
	}
	return result, nil
}

// diagnostics extracts error codes from generator errors. It reports false
// for errors that are not declaration diagnostics.
func diagnostics(err error) (codes []string, details string, ok bool) {
	var list compiler.ErrorList
	if errors.As(err, &list) {
		return list.Codes(), list.Details(), true
	}
	var syn *compiler.SyntaxError
	if errors.As(err, &syn) {
		return []string{syn.Code}, syn.Error(), true
	}
	return nil, "", false
}
