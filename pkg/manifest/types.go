package manifest

import "gopkg.in/yaml.v3"

// CommandType discriminates how a command executes.
const (
	// CommandInternal executes purely by template rendering.
	CommandInternal = "internal"
	// CommandExternalMethod executes by invoking an exported function of a
	// resolved source module.
	CommandExternalMethod = "external-method"
)

// Manifest is the static catalog of commands and global configuration.
// It is consumed, never produced, by the interpreter and is immutable
// after load.
type Manifest struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Prompt      string `yaml:"prompt,omitempty" json:"prompt,omitempty"`

	// StateDefaults seeds the session state before the persisted snapshot
	// is overlaid.
	StateDefaults map[string]any `yaml:"stateDefaults,omitempty" json:"stateDefaults,omitempty"`

	// Sources maps logical source names to module locators. Locators are
	// opaque keys bound to loaders in the registry; the interpreter never
	// does filesystem path arithmetic on them.
	Sources map[string]string `yaml:"sources,omitempty" json:"sources,omitempty"`

	// Commands is the ordered catalog. Names are unique.
	Commands []CommandSpec `yaml:"commands" json:"commands"`
}

// CommandSpec describes one command's parameters and behavior.
type CommandSpec struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Type is CommandInternal or CommandExternalMethod. Empty defaults to
	// internal.
	Type string `yaml:"commandType,omitempty" json:"commandType,omitempty"`

	Parameters map[string]ParamSpec `yaml:"parameters,omitempty" json:"parameters,omitempty"`

	// Source and MethodName are required iff Type is external-method.
	Source     string `yaml:"source,omitempty" json:"source,omitempty"`
	MethodName string `yaml:"methodName,omitempty" json:"methodName,omitempty"`

	// SuccessOutput is a template rendered against the validated args
	// (plus the handler result for external commands).
	SuccessOutput string `yaml:"successOutput,omitempty" json:"successOutput,omitempty"`

	SideEffects *SideEffects `yaml:"sideEffects,omitempty" json:"sideEffects,omitempty"`

	// Exit marks session-terminating commands (e.g. "quit").
	Exit bool `yaml:"exit,omitempty" json:"exit,omitempty"`

	// paramOrder preserves the manifest's parameter declaration order,
	// which positional binding depends on. Go maps do not keep it.
	paramOrder []string
}

// UnmarshalYAML decodes the spec and captures the declaration order of the
// parameters mapping.
func (c *CommandSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain CommandSpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = CommandSpec(p)

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "parameters" {
			continue
		}
		pnode := node.Content[i+1]
		for j := 0; j+1 < len(pnode.Content); j += 2 {
			c.paramOrder = append(c.paramOrder, pnode.Content[j].Value)
		}
	}
	return nil
}

// SetParamOrder overrides the declaration order, for manifests constructed
// in code rather than decoded from YAML.
func (c *CommandSpec) SetParamOrder(names ...string) {
	c.paramOrder = names
}

// ParamOrder returns parameter names in declaration order. When the spec was
// built in code without SetParamOrder, names are sorted for determinism.
func (c *CommandSpec) ParamOrder() []string {
	if len(c.paramOrder) > 0 {
		return c.paramOrder
	}
	return sortedParamNames(c.Parameters, nil)
}

// Kind returns the effective command type, defaulting to internal.
func (c *CommandSpec) Kind() string {
	if c.Type == "" {
		return CommandInternal
	}
	return c.Type
}

// RequiredParams returns the names of required parameters in declaration
// order. Positional arguments bind to exactly this sequence.
func (c *CommandSpec) RequiredParams() []string {
	var names []string
	for _, name := range c.ParamOrder() {
		if c.Parameters[name].Required {
			names = append(names, name)
		}
	}
	return names
}

// ParamSpec is one parameter's contract.
type ParamSpec struct {
	// Type is one of the primitive names or a "|"-delimited union.
	// Empty means "any".
	Type     string `yaml:"type,omitempty" json:"type,omitempty"`
	Required bool   `yaml:"required,omitempty" json:"required,omitempty"`
	Default  any    `yaml:"default,omitempty" json:"default,omitempty"`

	// RuntimeFallback names a state key substituted when the argument is
	// absent. It takes precedence over Default.
	RuntimeFallback string `yaml:"runtimeFallback,omitempty" json:"runtimeFallback,omitempty"`

	// Numeric constraints.
	Min *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty" json:"max,omitempty"`

	// String constraints.
	MinLength *int   `yaml:"minLength,omitempty" json:"minLength,omitempty"`
	MaxLength *int   `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	Pattern   string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// Enum restricts the value to a literal set, for any type.
	Enum []any `yaml:"enum,omitempty" json:"enum,omitempty"`

	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// SideEffects are the declared state mutations applied after a successful
// execution.
type SideEffects struct {
	SetState     []SetStateRule     `yaml:"setState,omitempty" json:"setState,omitempty" mapstructure:"setState"`
	ClearState   []string           `yaml:"clearState,omitempty" json:"clearState,omitempty" mapstructure:"clearState"`
	ClearStateIf []ClearStateIfRule `yaml:"clearStateIf,omitempty" json:"clearStateIf,omitempty" mapstructure:"clearStateIf"`
}

// SetStateRule computes a value for a state key from exactly one of:
// the originating command argument named by FromParam, a rendered Template
// (evaluated against the args plus "result"), or FromResult.
//
// FromResult is a deliberately stubbed extension point: the field parses so
// existing manifests remain readable, but validation rejects it until an
// extraction semantics is decided.
type SetStateRule struct {
	Key        string `yaml:"key" json:"key" mapstructure:"key"`
	FromParam  string `yaml:"fromParam,omitempty" json:"fromParam,omitempty" mapstructure:"fromParam"`
	Template   string `yaml:"template,omitempty" json:"template,omitempty" mapstructure:"template"`
	FromResult string `yaml:"fromResult,omitempty" json:"fromResult,omitempty" mapstructure:"fromResult"`
}

// ClearStateIfRule deletes Key only when the argument named by FromParam
// equals the key's current stored value. The guard prevents an unrelated
// invocation from wiping state it does not own.
type ClearStateIfRule struct {
	Key       string `yaml:"key" json:"key" mapstructure:"key"`
	FromParam string `yaml:"fromParam" json:"fromParam" mapstructure:"fromParam"`
}

// Command finds a CommandSpec by name.
func (m *Manifest) Command(name string) (*CommandSpec, bool) {
	for i := range m.Commands {
		if m.Commands[i].Name == name {
			return &m.Commands[i], true
		}
	}
	return nil, false
}
