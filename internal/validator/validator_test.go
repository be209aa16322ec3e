package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/arbor/pkg/manifest"
)

func load(t *testing.T, yaml string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(yaml))
	require.NoError(t, err)
	return m
}

func TestLint_CleanManifest(t *testing.T) {
	m := load(t, `
name: demo
stateDefaults:
  model: null
sources:
  textgen: builtin/textgen
commands:
  - name: use
    parameters:
      model: {type: string, required: true}
    successOutput: "Using {{model}}."
    sideEffects:
      setState:
        - {key: model, fromParam: model}
  - name: generate
    commandType: external-method
    source: textgen
    methodName: Sample
    parameters:
      model: {type: string, required: true, runtimeFallback: model}
    successOutput: "{{result}}"
`)

	assert.Empty(t, validator.Lint(m))
}

func TestLint_UnusedSource(t *testing.T) {
	m := load(t, `
name: demo
sources:
  textgen: builtin/textgen
  idle: builtin/idle
commands:
  - name: gen
    commandType: external-method
    source: textgen
    methodName: Sample
`)

	warnings := validator.Lint(m)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `source "idle" is declared but no command uses it`)
}

func TestLint_OrphanRuntimeFallback(t *testing.T) {
	m := load(t, `
name: demo
commands:
  - name: gen
    parameters:
      model: {type: string, required: true, runtimeFallback: model}
`)

	warnings := validator.Lint(m)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `runtimeFallback "model" is never seeded`)
}

func TestLint_FallbackSatisfiedBySetState(t *testing.T) {
	m := load(t, `
name: demo
commands:
  - name: use
    parameters:
      model: {type: string, required: true}
    sideEffects:
      setState:
        - {key: model, fromParam: model}
  - name: gen
    parameters:
      model: {type: string, required: true, runtimeFallback: model}
`)

	assert.Empty(t, validator.Lint(m))
}

func TestLint_TemplateProblems(t *testing.T) {
	m := load(t, `
name: demo
commands:
  - name: greet
    parameters:
      name: {type: string, required: true}
    successOutput: "Hello, {{nmae}}! From {{name|shout}}."
`)

	warnings := validator.Lint(m)
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], `successOutput references "nmae"`)
	assert.Contains(t, warnings[1], `unknown filter "shout"`)
}

func TestLint_ResultAllowedForExternalOnly(t *testing.T) {
	m := load(t, `
name: demo
sources:
  gen: builtin/gen
commands:
  - name: external
    commandType: external-method
    source: gen
    methodName: Run
    successOutput: "{{result}}"
  - name: internal
    successOutput: "{{result}}"
`)

	warnings := validator.Lint(m)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `command "internal"`)
	assert.Contains(t, warnings[0], `references "result"`)
}

func TestLint_SetStateTemplate(t *testing.T) {
	m := load(t, `
name: demo
commands:
  - name: open
    parameters:
      path: {type: string, required: true}
    sideEffects:
      setState:
        - {key: doc, template: "{{paht|basename}}"}
`)

	warnings := validator.Lint(m)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `setState "doc" template references "paht"`)
}

func TestLint_BadDefault(t *testing.T) {
	m := load(t, `
name: demo
commands:
  - name: gen
    parameters:
      words: {type: integer, default: many}
`)

	warnings := validator.Lint(m)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `default many does not satisfy type integer`)
}

func TestLint_RequiredWithDefault(t *testing.T) {
	m := load(t, `
name: demo
commands:
  - name: gen
    parameters:
      words: {type: integer, required: true, default: 50}
`)

	warnings := validator.Lint(m)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "can never be reported missing")
}
