package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a declarative script executed against a fresh runtime.
// Type definitions are inline CUE (or loaded from TypesFile), objects are
// constructed up front, and steps run in order against live instances.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Types holds inline CUE source declaring the type definitions the
	// scenario needs. TypesFile names a CUE file relative to the scenario
	// file instead; LoadScenario resolves it into Types.
	Types     string `yaml:"types,omitempty"`
	TypesFile string `yaml:"types_file,omitempty"`

	Objects    []ObjectDecl `yaml:"objects,omitempty"`
	Steps      []Step       `yaml:"steps,omitempty"`
	Assertions []Assertion  `yaml:"assertions,omitempty"`
}

// ObjectDecl constructs one instance before the steps run and binds it to
// a scenario-local variable name.
type ObjectDecl struct {
	Var  string         `yaml:"var"`
	Type string         `yaml:"type"`
	With map[string]any `yaml:"with,omitempty"`
}

// Step is a single operation against the runtime. Op selects the operation;
// the remaining fields are interpreted per op. ExpectError, when set, means
// the step must fail with that error code.
type Step struct {
	Op     string `yaml:"op"`
	Object string `yaml:"object,omitempty"`

	// construct
	Var  string         `yaml:"var,omitempty"`
	Type string         `yaml:"type,omitempty"`
	With map[string]any `yaml:"with,omitempty"`

	// set / get / increment / decrement
	Property string `yaml:"property,omitempty"`
	Value    any    `yaml:"value,omitempty"`

	// connect / disconnect / emit
	Signal     string `yaml:"signal,omitempty"`
	As         string `yaml:"as,omitempty"`
	Connection string `yaml:"connection,omitempty"`
	Args       []any  `yaml:"args,omitempty"`

	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion is a post-run check. Kind selects the check:
//
//	property     — Object's Property equals Equals
//	refcount     — Object's reference count equals Count
//	signal_count — the connection named As fired Count times
//	trace_order  — the journal's event kinds equal Kinds, in order
//	string       — Object's String() equals Equals
type Assertion struct {
	Kind     string   `yaml:"kind"`
	Object   string   `yaml:"object,omitempty"`
	Property string   `yaml:"property,omitempty"`
	As       string   `yaml:"as,omitempty"`
	Equals   any      `yaml:"equals,omitempty"`
	Count    int      `yaml:"count,omitempty"`
	Kinds    []string `yaml:"kinds,omitempty"`
}

// LoadScenario reads a YAML scenario from disk. A types_file reference is
// resolved relative to the scenario file and inlined.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.TypesFile != "" {
		if sc.Types != "" {
			return nil, fmt.Errorf("scenario %s: types and types_file are mutually exclusive", path)
		}
		cueSrc, err := os.ReadFile(filepath.Join(filepath.Dir(path), sc.TypesFile))
		if err != nil {
			return nil, fmt.Errorf("read types_file: %w", err)
		}
		sc.Types = string(cueSrc)
		sc.TypesFile = ""
	}
	return sc, nil
}

// ParseScenario decodes a YAML scenario and validates its shape.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario has no name")
	}
	seen := make(map[string]bool, len(sc.Objects))
	for _, decl := range sc.Objects {
		if decl.Var == "" || decl.Type == "" {
			return nil, fmt.Errorf("object declaration needs var and type")
		}
		if seen[decl.Var] {
			return nil, fmt.Errorf("duplicate object var %q", decl.Var)
		}
		seen[decl.Var] = true
	}
	for idx, step := range sc.Steps {
		if step.Op == "" {
			return nil, fmt.Errorf("step %d has no op", idx)
		}
	}
	return &sc, nil
}
