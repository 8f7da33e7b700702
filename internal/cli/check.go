package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/polyconst/internal/hostcheck"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Dir string
}

// CheckResult holds host type-check results.
type CheckResult struct {
	Patterns    []string               `json:"patterns"`
	Diagnostics []hostcheck.Diagnostic `json:"diagnostics,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check [packages...]",
		Short: "Type-check packages containing generated code",
		Long: `Load Go packages and report their type errors.

Generated files leave some checks to the Go compiler: zero guards on
non-zero variants and conversions of identifiers declared outside the
declaration file. check runs those without building.

Examples:
  polyconst check
  polyconst check ./...
  polyconst check --dir examples/geometry .`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "directory to resolve packages from")
	return cmd
}

func runCheck(opts *CheckOptions, patterns []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	formatter.VerboseLog("Loading %v from %s", patterns, opts.Dir)

	diags, err := hostcheck.CheckPackages(cmd.Context(), opts.Dir, patterns...)
	if err != nil {
		return commandError(formatter, ErrCodeHostCheck, err.Error())
	}

	result := CheckResult{Patterns: patterns, Diagnostics: diags}
	var failure error
	if len(diags) > 0 {
		failure = NewExitError(ExitFailure, fmt.Sprintf("%d type error(s)", len(diags)))
	}

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if failure != nil {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeHostCheck, Message: failure.Error()}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
		return failure
	}

	w := formatter.Writer
	if failure == nil {
		fmt.Fprintf(w, "%s %v type-checks\n", formatter.Mark(true), patterns)
		return nil
	}
	fmt.Fprintf(w, "%s %v\n", formatter.Mark(false), patterns)
	for _, d := range diags {
		fmt.Fprintf(w, "  %s\n", d)
	}
	return failure
}
