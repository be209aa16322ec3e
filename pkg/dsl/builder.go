package dsl

import (
	"github.com/aretw0/arbor/pkg/manifest"
)

// Builder accumulates a manifest under construction.
type Builder struct {
	m        manifest.Manifest
	commands []*CommandBuilder
}

// New creates a builder for a named contract.
func New(name string) *Builder {
	return &Builder{m: manifest.Manifest{Name: name}}
}

// Describe sets the contract description.
func (b *Builder) Describe(text string) *Builder {
	b.m.Description = text
	return b
}

// Prompt sets the interactive prompt template.
func (b *Builder) Prompt(template string) *Builder {
	b.m.Prompt = template
	return b
}

// StateDefault seeds a session state key. A nil value declares the key
// without giving it a value, which runtime fallbacks treat as absent.
func (b *Builder) StateDefault(key string, value any) *Builder {
	if b.m.StateDefaults == nil {
		b.m.StateDefaults = make(map[string]any)
	}
	b.m.StateDefaults[key] = value
	return b
}

// Source maps a logical source name to a module locator.
func (b *Builder) Source(name, locator string) *Builder {
	if b.m.Sources == nil {
		b.m.Sources = make(map[string]string)
	}
	b.m.Sources[name] = locator
	return b
}

// Command starts a new command definition. Commands appear in the catalog
// in the order they are defined.
func (b *Builder) Command(name string) *CommandBuilder {
	cb := &CommandBuilder{spec: manifest.CommandSpec{Name: name}}
	b.commands = append(b.commands, cb)
	return cb
}

// Build assembles and validates the manifest. Validation failures carry
// every problem found, matching what loading the same contract from a
// file would report.
func (b *Builder) Build() (*manifest.Manifest, error) {
	m := b.m
	m.Commands = make([]manifest.CommandSpec, 0, len(b.commands))
	for _, cb := range b.commands {
		m.Commands = append(m.Commands, cb.finish())
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// MustBuild is Build for static contracts where a failure is a programming
// error. It panics on invalid input.
func (b *Builder) MustBuild() *manifest.Manifest {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}
