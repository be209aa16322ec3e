package dsl

import "github.com/aretw0/arbor/pkg/manifest"

// CommandBuilder provides a fluent API for configuring one command.
type CommandBuilder struct {
	spec       manifest.CommandSpec
	params     map[string]manifest.ParamSpec
	paramOrder []string
}

// Describe sets the command description.
func (c *CommandBuilder) Describe(text string) *CommandBuilder {
	c.spec.Description = text
	return c
}

// External marks the command as external-method, dispatching to the named
// exported function of the given source.
func (c *CommandBuilder) External(source, method string) *CommandBuilder {
	c.spec.Type = manifest.CommandExternalMethod
	c.spec.Source = source
	c.spec.MethodName = method
	return c
}

// Param declares a parameter. Declaration order defines positional binding.
func (c *CommandBuilder) Param(name string, p *ParamBuilder) *CommandBuilder {
	if c.params == nil {
		c.params = make(map[string]manifest.ParamSpec)
	}
	if _, exists := c.params[name]; !exists {
		c.paramOrder = append(c.paramOrder, name)
	}
	c.params[name] = p.spec
	return c
}

// Output sets the success output template.
func (c *CommandBuilder) Output(template string) *CommandBuilder {
	c.spec.SuccessOutput = template
	return c
}

// Exit marks the command as session-terminating.
func (c *CommandBuilder) Exit() *CommandBuilder {
	c.spec.Exit = true
	return c
}

// SetStateFrom records a side effect copying the named argument into a
// state key after successful execution.
func (c *CommandBuilder) SetStateFrom(key, fromParam string) *CommandBuilder {
	c.effects().SetState = append(c.effects().SetState,
		manifest.SetStateRule{Key: key, FromParam: fromParam})
	return c
}

// SetStateTemplate records a side effect setting a state key to a rendered
// template. The template sees the validated arguments plus "result".
func (c *CommandBuilder) SetStateTemplate(key, template string) *CommandBuilder {
	c.effects().SetState = append(c.effects().SetState,
		manifest.SetStateRule{Key: key, Template: template})
	return c
}

// ClearState records unconditional deletion of state keys after success.
func (c *CommandBuilder) ClearState(keys ...string) *CommandBuilder {
	c.effects().ClearState = append(c.effects().ClearState, keys...)
	return c
}

// ClearStateIf records guarded deletion: the key is removed only when the
// named argument equals its current stored value.
func (c *CommandBuilder) ClearStateIf(key, fromParam string) *CommandBuilder {
	c.effects().ClearStateIf = append(c.effects().ClearStateIf,
		manifest.ClearStateIfRule{Key: key, FromParam: fromParam})
	return c
}

func (c *CommandBuilder) effects() *manifest.SideEffects {
	if c.spec.SideEffects == nil {
		c.spec.SideEffects = &manifest.SideEffects{}
	}
	return c.spec.SideEffects
}

func (c *CommandBuilder) finish() manifest.CommandSpec {
	spec := c.spec
	if len(c.params) > 0 {
		spec.Parameters = c.params
		spec.SetParamOrder(c.paramOrder...)
	}
	return spec
}
