package domain

// Command is the canonical parsed invocation, independent of the input
// grammar that produced it. Argument values may still be raw strings
// before ParamSpec-driven coercion.
type Command struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// NewCommand creates a command with an initialized argument map.
func NewCommand(name string) *Command {
	return &Command{
		Name: name,
		Args: make(map[string]any),
	}
}
