package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/roach88/polyconst/internal/codegen"
	"github.com/roach88/polyconst/internal/compiler"
	"github.com/roach88/polyconst/internal/config"
)

// Error codes for CLI errors. Declaration errors use the compiler's codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No declaration files found
	ErrCodeConfig      = "E004" // Config file unreadable or invalid
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeCache       = "E006" // Generation cache error
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeHostCheck   = "E008" // Host packages failed to load
)

// LoadError represents an error that occurred while locating inputs.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Diagnostic is one declaration error in command output.
type Diagnostic struct {
	Pos      string `json:"pos,omitempty"`
	Code     string `json:"code"`
	Constant string `json:"constant,omitempty"`
	Tag      string `json:"tag,omitempty"`
	Message  string `json:"message"`
}

func (d Diagnostic) String() string {
	subject := d.Constant
	if d.Tag != "" {
		subject = fmt.Sprintf("%s (%s)", d.Constant, d.Tag)
	}
	msg := d.Code + ": " + d.Message
	if subject != "" {
		msg = d.Code + ": " + subject + ": " + d.Message
	}
	if d.Pos != "" {
		return d.Pos + ": " + msg
	}
	return msg
}

// diagnosticsOf converts expansion errors to diagnostics. It reports
// false for errors that are not about the declarations themselves.
func diagnosticsOf(err error) ([]Diagnostic, bool) {
	var list compiler.ErrorList
	if errors.As(err, &list) {
		diags := make([]Diagnostic, len(list))
		for i, e := range list {
			diags[i] = Diagnostic{
				Code:     e.Code,
				Constant: e.Constant,
				Tag:      string(e.Tag),
				Message:  e.Message,
			}
			if e.Pos.IsValid() {
				diags[i].Pos = e.Pos.String()
			}
		}
		return diags, true
	}
	var syn *compiler.SyntaxError
	if errors.As(err, &syn) {
		d := Diagnostic{Code: syn.Code, Message: syn.Message}
		if syn.Pos.IsValid() {
			d.Pos = syn.Pos.String()
		}
		return []Diagnostic{d}, true
	}
	return nil, false
}

// FindSourceFiles returns the declaration files directly inside dir,
// sorted by name.
func FindSourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && codegen.IsSource(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ResolveInputs determines the declaration files a command works on:
// the arguments (files or directories), else the config's inputs, else
// every declaration file in the current directory.
func ResolveInputs(args []string, cfg *config.Config) ([]string, error) {
	var files []string

	switch {
	case len(args) > 0:
		for _, arg := range args {
			more, err := expandArg(arg)
			if err != nil {
				return nil, err
			}
			files = append(files, more...)
		}

	case len(cfg.Inputs) > 0:
		for _, pattern := range cfg.Inputs {
			matches, err := filepath.Glob(cfg.Resolve(pattern))
			if err != nil {
				return nil, &LoadError{Code: ErrCodeConfig, Message: fmt.Sprintf("invalid input pattern %q: %v", pattern, err)}
			}
			if len(matches) == 0 {
				return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("input pattern %q matched no files", pattern)}
			}
			sort.Strings(matches)
			files = append(files, matches...)
		}

	default:
		found, err := FindSourceFiles(".")
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		files = found
	}

	files = dedupe(files)
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no %s files found", codegen.SourceExt)}
	}
	return files, nil
}

func expandArg(arg string) ([]string, error) {
	info, err := os.Stat(arg)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("input not found: %s", arg)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", arg, err)}
	}
	if !info.IsDir() {
		return []string{arg}, nil
	}
	files, err := FindSourceFiles(arg)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	return files, nil
}

func dedupe(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := files[:0]
	for _, f := range files {
		clean := filepath.Clean(f)
		if seen[clean] {
			continue
		}
		seen[clean] = true
		out = append(out, f)
	}
	return out
}

// loadErrorCode returns the code of a LoadError or ErrCodeGeneric.
func loadErrorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}

// generatorOptions turns the effective config into generator options.
// Without a configured package, the package go:generate runs in is used.
func generatorOptions(cfg *config.Config, opts *RootOptions, formatter *OutputFormatter) codegen.Options {
	pkg := cfg.Package
	if pkg == "" {
		pkg = os.Getenv("GOPACKAGE")
	}
	return codegen.Options{
		Package:       pkg,
		TypePrefix:    cfg.Prefix,
		GoArch:        cfg.GoArch,
		Strict:        cfg.Strict,
		Header:        cfg.Header,
		NumericImport: cfg.NumericImport,
		Logger:        opts.Logger(formatter.GetErrWriter()),
	}
}

// commandError reports a command-level failure and returns exit code 2.
func commandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
