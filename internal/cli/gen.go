package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/polyconst/internal/codegen"
	"github.com/roach88/polyconst/internal/config"
	"github.com/roach88/polyconst/internal/ir"
	"github.com/roach88/polyconst/internal/store"
)

// GenOptions holds flags for the gen command.
type GenOptions struct {
	*RootOptions
	Output  string
	Package string
	Prefix  string
	GoArch  string
	Strict  bool
	Cache   string
	Force   bool

	RunIDs store.RunIDGenerator
}

// File statuses reported by gen.
const (
	StatusGenerated = "generated"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// GenFile is the outcome for one input.
type GenFile struct {
	Input    string       `json:"input"`
	Output   string       `json:"output,omitempty"`
	Status   string       `json:"status"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []Diagnostic `json:"errors,omitempty"`
}

// GenResult holds the result of a gen run.
type GenResult struct {
	RunID     string    `json:"run_id,omitempty"`
	Files     []GenFile `json:"files"`
	Generated int       `json:"generated"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
}

// NewGenCommand creates the gen command.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	return newGenCommand(rootOpts, store.UUIDv7Generator{})
}

func newGenCommand(rootOpts *RootOptions, ids store.RunIDGenerator) *cobra.Command {
	opts := &GenOptions{RootOptions: rootOpts, RunIDs: ids}

	cmd := &cobra.Command{
		Use:   "gen [files or dirs...]",
		Short: "Generate Go code from declaration files",
		Long: `Expand each declaration file into a Go source file written next to it.

Without arguments, the inputs listed in the config file are used, or every
.pconst file in the current directory.

With --cache, a file whose input and generated output are unchanged since
the last run is skipped. --force regenerates everything.

Exit codes:
  0 - All files generated or up to date
  1 - One or more files had declaration errors
  2 - Command error (missing inputs, unreadable config, etc.)

Examples:
  polyconst gen
  polyconst gen consts.pconst -o consts.go --package geometry
  polyconst gen ./defs --cache .polyconst.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (single input only)")
	cmd.Flags().StringVar(&opts.Package, "package", "", "package clause of generated files")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "container type name prefix")
	cmd.Flags().StringVar(&opts.GoArch, "goarch", "", "target GOARCH for int, uint and uintptr range checks")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject identifiers not declared in the file")
	cmd.Flags().StringVar(&opts.Cache, "cache", "", "generation cache database")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "ignore the cache and regenerate every file")

	return cmd
}

// effectiveConfig applies flags on top of the config file.
func (o *GenOptions) effectiveConfig() (*config.Config, string, error) {
	cfg, err := o.LoadConfig(".")
	if err != nil {
		return nil, "", err
	}
	merged := cfg.Merge(config.Config{
		Package: o.Package,
		Prefix:  o.Prefix,
		GoArch:  o.GoArch,
		Strict:  o.Strict,
	})
	if err := merged.Validate(); err != nil {
		return nil, "", err
	}

	cache := o.Cache
	if cache == "" {
		cache = merged.Resolve(merged.Cache)
	}
	return &merged, cache, nil
}

func runGen(ctx context.Context, opts *GenOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, cachePath, err := opts.effectiveConfig()
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error())
	}
	inputs, err := ResolveInputs(args, cfg)
	if err != nil {
		return commandError(formatter, loadErrorCode(err), err.Error())
	}
	if opts.Output != "" && len(inputs) > 1 {
		return commandError(formatter, ErrCodeGeneric, fmt.Sprintf("-o needs exactly one input, got %d", len(inputs)))
	}
	formatter.VerboseLog("Found %d input file(s)", len(inputs))

	genOpts := generatorOptions(cfg, opts.RootOptions, formatter)
	fingerprint := genOpts.Fingerprint()

	var cache *store.Store
	var run store.Run
	if cachePath != "" {
		cache, err = store.Open(cachePath)
		if err != nil {
			return commandError(formatter, ErrCodeCache, err.Error())
		}
		defer cache.Close()

		run, err = cache.BeginRun(ctx, opts.RunIDs.Generate())
		if err != nil {
			return commandError(formatter, ErrCodeCache, err.Error())
		}
		formatter.VerboseLog("Cache %s, run %d (%s)", cachePath, run.Seq, run.ID)
	}

	result := GenResult{RunID: run.ID, Files: make([]GenFile, 0, len(inputs))}
	for _, input := range inputs {
		output := opts.Output
		if output == "" {
			output = codegen.OutputPath(input, cfg.OutputSuffix)
		}

		file, err := genFile(ctx, cache, run.ID, input, output, fingerprint, genOpts, opts.Force)
		if err != nil {
			return commandError(formatter, ErrCodeWriteFailed, err.Error())
		}
		switch file.Status {
		case StatusGenerated:
			result.Generated++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
		}
		result.Files = append(result.Files, file)
	}

	if cache != nil {
		run.Inputs = len(inputs)
		run.Generated = result.Generated
		run.Skipped = result.Skipped
		run.Failed = result.Failed
		if err := cache.FinishRun(ctx, run); err != nil {
			return commandError(formatter, ErrCodeCache, err.Error())
		}
	}

	return outputGen(formatter, result)
}

// genFile expands one input. Declaration errors are reported in the
// returned GenFile; the error return is for I/O and cache failures.
func genFile(ctx context.Context, cache *store.Store, runID, input, output, fingerprint string, opts codegen.Options, force bool) (GenFile, error) {
	file := GenFile{Input: input, Output: output}

	src, err := os.ReadFile(input)
	if err != nil {
		return file, fmt.Errorf("reading %s: %w", input, err)
	}
	inputHash := ir.InputHash(fingerprint, src)

	if cache != nil && !force {
		fresh, err := cache.UpToDate(ctx, output, inputHash)
		if err != nil {
			return file, err
		}
		if fresh {
			file.Status = StatusSkipped
			return file, nil
		}
	}

	expanded, err := codegen.Expand(input, src, opts)
	if err != nil {
		diags, ok := diagnosticsOf(err)
		if !ok {
			return file, err
		}
		file.Status = StatusFailed
		file.Output = ""
		file.Errors = diags
		return file, nil
	}
	for _, w := range expanded.Warnings {
		file.Warnings = append(file.Warnings, w.String())
	}

	if err := os.WriteFile(output, expanded.Source, 0o644); err != nil {
		return file, fmt.Errorf("writing %s: %w", output, err)
	}
	if cache != nil {
		err := cache.RecordOutput(ctx, store.Output{
			Path:             output,
			InputHash:        inputHash,
			OutputHash:       ir.OutputHash(expanded.Source),
			GeneratorVersion: ir.GeneratorVersion,
			RunID:            runID,
		})
		if err != nil {
			return file, err
		}
	}
	file.Status = StatusGenerated
	return file, nil
}

func outputGen(formatter *OutputFormatter, result GenResult) error {
	var failure error
	if result.Failed > 0 {
		// Declaration errors = exit code 1
		failure = NewExitError(ExitFailure, fmt.Sprintf("%d file(s) failed", result.Failed))
	}

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if result.Failed > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    firstCode(result.Files),
				Message: failure.Error(),
			}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
		return failure
	}

	w := formatter.Writer
	for _, f := range result.Files {
		switch f.Status {
		case StatusGenerated:
			fmt.Fprintf(w, "%s %s -> %s\n", formatter.Mark(true), f.Input, f.Output)
		case StatusSkipped:
			fmt.Fprintf(w, "%s %s (up to date)\n", formatter.Skip(), f.Input)
		case StatusFailed:
			fmt.Fprintf(w, "%s %s\n", formatter.Mark(false), f.Input)
			for _, d := range f.Errors {
				fmt.Fprintf(w, "  %s\n", d)
			}
		}
		for _, warning := range f.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warning)
		}
	}
	fmt.Fprintf(w, "\n%d generated, %d up to date, %d failed\n", result.Generated, result.Skipped, result.Failed)
	return failure
}

func firstCode(files []GenFile) string {
	for _, f := range files {
		if len(f.Errors) > 0 {
			return f.Errors[0].Code
		}
	}
	return ErrCodeGeneric
}
