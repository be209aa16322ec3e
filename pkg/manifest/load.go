package manifest

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/arbor/pkg/schema"
)

// Load reads and validates a manifest file. YAML and JSON are both accepted
// (JSON is a YAML subset). Unknown fields are rejected so typos surface at
// bootstrap instead of silently dropping behavior.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest's structural invariants, collecting every
// problem found before reporting.
func (m *Manifest) Validate() error {
	var problems []string

	if m.Name == "" {
		problems = append(problems, "manifest name is required")
	}

	seen := make(map[string]bool)
	for i := range m.Commands {
		cmd := &m.Commands[i]
		if cmd.Name == "" {
			problems = append(problems, fmt.Sprintf("command #%d: name is required", i))
			continue
		}
		if seen[cmd.Name] {
			problems = append(problems, fmt.Sprintf("command %q: duplicate name", cmd.Name))
		}
		seen[cmd.Name] = true

		problems = append(problems, cmd.validate(m.Sources)...)
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid manifest: %d problems:\n- %s",
			len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}

func (c *CommandSpec) validate(sources map[string]string) []string {
	var problems []string

	switch c.Kind() {
	case CommandInternal:
		if c.Source != "" || c.MethodName != "" {
			problems = append(problems, fmt.Sprintf(
				"command %q: source/methodName are only valid for external-method commands", c.Name))
		}
	case CommandExternalMethod:
		if c.Source == "" {
			problems = append(problems, fmt.Sprintf("command %q: external-method requires a source", c.Name))
		} else if _, ok := sources[c.Source]; !ok {
			problems = append(problems, fmt.Sprintf(
				"command %q: source %q is not declared in sources", c.Name, c.Source))
		}
		if c.MethodName == "" {
			problems = append(problems, fmt.Sprintf("command %q: external-method requires a methodName", c.Name))
		}
	default:
		problems = append(problems, fmt.Sprintf(
			"command %q: unknown commandType %q (expected %q or %q)",
			c.Name, c.Type, CommandInternal, CommandExternalMethod))
	}

	for _, name := range sortedParamNames(c.Parameters, nil) {
		spec := c.Parameters[name]
		if _, err := schema.ParseType(spec.Type); err != nil {
			problems = append(problems, fmt.Sprintf("command %q, parameter %q: %v", c.Name, name, err))
		}
		if spec.Pattern != "" {
			if _, err := regexp.Compile(spec.Pattern); err != nil {
				problems = append(problems, fmt.Sprintf(
					"command %q, parameter %q: invalid pattern: %v", c.Name, name, err))
			}
		}
	}

	if c.SideEffects != nil {
		problems = append(problems, c.SideEffects.validate(c)...)
	}

	return problems
}

func (se *SideEffects) validate(c *CommandSpec) []string {
	var problems []string

	for _, rule := range se.SetState {
		if rule.Key == "" {
			problems = append(problems, fmt.Sprintf("command %q: setState rule missing key", c.Name))
		}
		if rule.FromResult != "" {
			// Extraction semantics are an open extension point. Reject
			// instead of guessing.
			problems = append(problems, fmt.Sprintf(
				"command %q: setState %q: fromResult extraction is not implemented", c.Name, rule.Key))
		}
		if rule.FromParam != "" && rule.Template != "" {
			problems = append(problems, fmt.Sprintf(
				"command %q: setState %q: fromParam and template are mutually exclusive", c.Name, rule.Key))
		}
		if rule.FromParam != "" {
			if _, ok := c.Parameters[rule.FromParam]; !ok {
				problems = append(problems, fmt.Sprintf(
					"command %q: setState %q: fromParam %q is not a declared parameter",
					c.Name, rule.Key, rule.FromParam))
			}
		}
	}

	for _, rule := range se.ClearStateIf {
		if rule.Key == "" || rule.FromParam == "" {
			problems = append(problems, fmt.Sprintf(
				"command %q: clearStateIf rules require both key and fromParam", c.Name))
			continue
		}
		if _, ok := c.Parameters[rule.FromParam]; !ok {
			problems = append(problems, fmt.Sprintf(
				"command %q: clearStateIf %q: fromParam %q is not a declared parameter",
				c.Name, rule.Key, rule.FromParam))
		}
	}

	return problems
}

// sortedParamNames returns parameter names in deterministic order,
// optionally filtered.
func sortedParamNames(params map[string]ParamSpec, keep func(ParamSpec) bool) []string {
	names := make([]string, 0, len(params))
	for name, spec := range params {
		if keep == nil || keep(spec) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
