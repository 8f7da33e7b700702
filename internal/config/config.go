// Package config loads project settings for polyconst from polyconst.yaml
// or polyconst.cue. Command-line flags override file values.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"go/token"
	"go/types"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuetoken "cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

// Config file names, in lookup order.
const (
	FileYAML = "polyconst.yaml"
	FileCUE  = "polyconst.cue"
)

//go:embed schema.cue
var schemaSource string

// Config holds project settings. Zero values mean "use the default".
type Config struct {
	Package       string   `yaml:"package" json:"package,omitempty"`
	Prefix        string   `yaml:"prefix" json:"prefix,omitempty"`
	GoArch        string   `yaml:"goarch" json:"goarch,omitempty"`
	Strict        bool     `yaml:"strict" json:"strict,omitempty"`
	Header        string   `yaml:"header" json:"header,omitempty"`
	Inputs        []string `yaml:"inputs" json:"inputs,omitempty"`
	OutputSuffix  string   `yaml:"output_suffix" json:"output_suffix,omitempty"`
	Cache         string   `yaml:"cache" json:"cache,omitempty"`
	NumericImport string   `yaml:"numeric_import" json:"numeric_import,omitempty"`

	// Dir is the directory the file was loaded from. Relative inputs and
	// cache paths resolve against it.
	Dir string `yaml:"-" json:"-"`
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	File    string
	Field   string
	Message string
	Pos     cuetoken.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads a configuration file. The format follows the extension:
// .yaml/.yml or .cue.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg *Config
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		cfg, err = parseYAML(path, data)
	case ".cue":
		cfg, err = parseCUE(path, data)
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	cfg.Dir = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Discover looks for polyconst.yaml, then polyconst.cue, in dir. It returns
// an empty Config rooted at dir when neither exists, and the path loaded
// otherwise.
func Discover(dir string) (*Config, string, error) {
	for _, name := range []string{FileYAML, FileCUE} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", fmt.Errorf("checking %s: %w", path, err)
		}
		cfg, err := Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	return &Config{Dir: dir}, "", nil
}

func parseYAML(path string, data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// An empty document decodes to io.EOF.
		if len(bytes.TrimSpace(data)) == 0 {
			return &cfg, nil
		}
		return nil, &ConfigError{File: path, Field: "yaml", Message: err.Error()}
	}
	return &cfg, nil
}

func parseCUE(path string, data []byte) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling config schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(path, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(path, err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, formatCUEError(path, err)
	}
	return &cfg, nil
}

// formatCUEError keeps the first error and its position.
func formatCUEError(path string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ConfigError{File: path, Field: "cue", Message: err.Error()}
	}

	first := errs[0]
	cerr := &ConfigError{File: path, Field: "cue", Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		cerr.Pos = positions[0]
	}
	return cerr
}

// Validate checks the fields the file formats cannot express.
func (c *Config) Validate() error {
	if c.Package != "" && !token.IsIdentifier(c.Package) {
		return &ConfigError{Field: "package", Message: fmt.Sprintf("%q is not a Go identifier", c.Package)}
	}
	if c.Prefix != "" && !token.IsIdentifier(c.Prefix) {
		return &ConfigError{Field: "prefix", Message: fmt.Sprintf("%q is not a Go identifier", c.Prefix)}
	}
	if c.GoArch != "" && types.SizesFor("gc", c.GoArch) == nil {
		return &ConfigError{Field: "goarch", Message: fmt.Sprintf("unknown GOARCH %q", c.GoArch)}
	}
	if c.OutputSuffix != "" && filepath.Ext(c.OutputSuffix) != ".go" {
		return &ConfigError{Field: "output_suffix", Message: fmt.Sprintf("%q must end in .go", c.OutputSuffix)}
	}
	return nil
}

// Merge returns c with every non-zero field of over applied on top.
// Inputs are replaced, not appended.
func (c Config) Merge(over Config) Config {
	if over.Package != "" {
		c.Package = over.Package
	}
	if over.Prefix != "" {
		c.Prefix = over.Prefix
	}
	if over.GoArch != "" {
		c.GoArch = over.GoArch
	}
	if over.Strict {
		c.Strict = true
	}
	if over.Header != "" {
		c.Header = over.Header
	}
	if len(over.Inputs) > 0 {
		c.Inputs = over.Inputs
	}
	if over.OutputSuffix != "" {
		c.OutputSuffix = over.OutputSuffix
	}
	if over.Cache != "" {
		c.Cache = over.Cache
	}
	if over.NumericImport != "" {
		c.NumericImport = over.NumericImport
	}
	return c
}

// Resolve joins a relative path from the config onto its directory.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Dir == "" {
		return path
	}
	return filepath.Join(c.Dir, path)
}
