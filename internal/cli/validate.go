package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/polyconst/internal/codegen"
)

// FileValidation is the validation outcome for one input.
type FileValidation struct {
	File         string       `json:"file"`
	Valid        bool         `json:"valid"`
	Declarations int          `json:"declarations"`
	Warnings     []string     `json:"warnings,omitempty"`
	Errors       []Diagnostic `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [files or dirs...]",
		Short: "Check declaration files without writing output",
		Long: `Run the full expansion of each declaration file and report every error.

Nothing is written. Inputs are resolved the same way as for gen.`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := opts.LoadConfig(".")
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error())
	}
	inputs, err := ResolveInputs(args, cfg)
	if err != nil {
		return commandError(formatter, loadErrorCode(err), err.Error())
	}
	formatter.VerboseLog("Validating %d file(s)", len(inputs))

	genOpts := generatorOptions(cfg, opts, formatter)
	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(inputs))}

	for _, input := range inputs {
		src, err := os.ReadFile(input)
		if err != nil {
			return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("reading %s: %v", input, err))
		}

		file := FileValidation{File: input, Valid: true}
		expanded, err := codegen.Expand(input, src, genOpts)
		if err != nil {
			diags, ok := diagnosticsOf(err)
			if !ok {
				return commandError(formatter, ErrCodeGeneric, err.Error())
			}
			file.Valid = false
			file.Errors = diags
			result.Valid = false
		} else {
			file.Declarations = len(expanded.Expansions)
			for _, w := range expanded.Warnings {
				file.Warnings = append(file.Warnings, w.String())
			}
		}
		result.Files = append(result.Files, file)
	}

	return outputValidation(formatter, result)
}

// outputValidation writes the results and maps failures to exit code 1.
func outputValidation(formatter *OutputFormatter, result ValidationResult) error {
	var failure error
	count := 0
	for _, f := range result.Files {
		count += len(f.Errors)
	}
	if !result.Valid {
		// Validation failures = exit code 1 (test/validation failure)
		failure = NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", count))
	}

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			first := firstDiagnostic(result.Files)
			resp.Status = "error"
			resp.Error = &CLIError{Code: first.Code, Message: first.Message}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
		return failure
	}

	w := formatter.Writer
	for _, f := range result.Files {
		if f.Valid {
			fmt.Fprintf(w, "%s %s (%d declarations)\n", formatter.Mark(true), f.File, f.Declarations)
		} else {
			fmt.Fprintf(w, "%s %s\n", formatter.Mark(false), f.File)
		}
		for _, d := range f.Errors {
			fmt.Fprintf(w, "  %s\n", d)
		}
		for _, warning := range f.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warning)
		}
	}
	if result.Valid {
		fmt.Fprintln(w, "\nAll declarations valid")
	}
	return failure
}

func firstDiagnostic(files []FileValidation) Diagnostic {
	for _, f := range files {
		if len(f.Errors) > 0 {
			return f.Errors[0]
		}
	}
	return Diagnostic{Code: ErrCodeGeneric, Message: "validation failed"}
}
