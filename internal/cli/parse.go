package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/polyconst/internal/compiler"
	"github.com/roach88/polyconst/internal/ir"
)

// ParseResult holds the parsed declarations of one file.
type ParseResult struct {
	File         string           `json:"file"`
	Declarations []ir.Declaration `json:"declarations"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Print the parsed declaration list",
		Long: `Parse a declaration file and print each declaration with its
resolved variants. Only syntax is checked; use validate for the full checks.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runParse(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := opts.LoadConfig(".")
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error())
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("reading %s: %v", path, err))
	}

	decls, err := compiler.ParseList(path, src, compiler.ParseConfig{TypePrefix: cfg.Prefix})
	if err != nil {
		diags, ok := diagnosticsOf(err)
		if !ok {
			return commandError(formatter, ErrCodeGeneric, err.Error())
		}
		_ = formatter.Error(diags[0].Code, diags[0].String(), nil)
		return NewExitError(ExitFailure, diags[0].String())
	}
	if decls == nil {
		decls = []ir.Declaration{}
	}

	result := ParseResult{File: path, Declarations: decls}
	if formatter.Format == "json" {
		return formatter.JSON(CLIResponse{Status: "ok", Data: result})
	}

	w := formatter.Writer
	for _, d := range decls {
		fmt.Fprintf(w, "%s %s %s (%s)\n", visibilityLabel(d), d.Keyword, d.Name, d.TypeName)
		for _, v := range d.Variants {
			fmt.Fprintf(w, "  %-10s %-28s %s\n", v.Tag, v.ResolvedType, v.Strategy)
		}
		fmt.Fprintf(w, "  = %s\n", d.Initializer)
	}
	formatter.VerboseLog("Parsed %d declaration(s)", len(decls))
	return nil
}

func visibilityLabel(d ir.Declaration) string {
	switch d.Visibility {
	case ir.Public:
		return "pub"
	case ir.PublicScoped:
		return "pub(" + d.ScopePath + ")"
	}
	return "private"
}
