package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is one declaration list and what expanding it must produce.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Package is the package clause of the generated file.
	// Defaults to DefaultPackage.
	Package string `yaml:"package,omitempty"`

	Options ScenarioOptions `yaml:"options,omitempty"`

	// Source is the declaration list.
	Source string `yaml:"source"`

	Expect Expectation `yaml:"expect"`
}

// ScenarioOptions mirror the generator options a scenario may set.
type ScenarioOptions struct {
	Prefix string `yaml:"prefix,omitempty"`
	GoArch string `yaml:"goarch,omitempty"`
	Strict bool   `yaml:"strict,omitempty"`
}

// Expectation describes the expected expansion.
type Expectation struct {
	// OK is whether the list expands without errors. Required.
	OK *bool `yaml:"ok"`

	// Codes are the expected error codes in report order.
	Codes []string `yaml:"codes,omitempty"`

	// Values maps constant names to their exact values ("512", "1.5").
	Values map[string]string `yaml:"values,omitempty"`

	// Types maps constant names to their container type names.
	Types map[string]string `yaml:"types,omitempty"`

	// Accessors maps constant names to their accessor methods, in order.
	Accessors map[string][]string `yaml:"accessors,omitempty"`

	// Contains lists substrings of the generated file.
	Contains []string `yaml:"contains,omitempty"`

	// Host is HostPass or HostFail; empty skips the host check.
	Host string `yaml:"host,omitempty"`
}

// Host check outcomes.
const (
	HostPass = "pass"
	HostFail = "fail"
)

// DefaultPackage is the package clause used when a scenario sets none.
const DefaultPackage = "scenario"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	scenarios := make([]*Scenario, 0, len(names))
	seen := make(map[string]string)
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%s: scenario %q already defined in %s", name, s.Name, prev)
		}
		seen[s.Name] = name
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and consistent.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\ `) {
		return fmt.Errorf("name %q must not contain path separators or spaces", s.Name)
	}
	if strings.TrimSpace(s.Source) == "" {
		return fmt.Errorf("source is required")
	}

	e := s.Expect
	if e.OK == nil {
		return fmt.Errorf("expect.ok is required")
	}
	if *e.OK {
		if len(e.Codes) > 0 {
			return fmt.Errorf("expect.codes requires ok: false")
		}
	} else {
		if len(e.Values) > 0 || len(e.Types) > 0 || len(e.Accessors) > 0 || len(e.Contains) > 0 || e.Host != "" {
			return fmt.Errorf("ok: false scenarios may only expect codes")
		}
	}

	switch e.Host {
	case "", HostPass, HostFail:
	default:
		return fmt.Errorf("expect.host must be %q or %q, got %q", HostPass, HostFail, e.Host)
	}
	return nil
}
