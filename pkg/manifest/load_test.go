package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
name: demo
description: Demo catalog
prompt: "demo> "
stateDefaults:
  model: default.mdl
sources:
  files: builtin/files
commands:
  - name: greet
    commandType: internal
    parameters:
      name:
        type: string
        required: true
    successOutput: "Hello, {{name}}!"
  - name: copy
    commandType: external-method
    source: files
    methodName: Copy
    parameters:
      src:
        type: string
        required: true
      dst:
        type: string
        required: true
  - name: use
    commandType: internal
    parameters:
      model:
        type: string
        required: true
    successOutput: "Using {{model}}"
    sideEffects:
      setState:
        - key: model
          fromParam: model
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	m, err := Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, "demo", m.Name)
	assert.Equal(t, "demo> ", m.Prompt)
	assert.Equal(t, "default.mdl", m.StateDefaults["model"])
	assert.Len(t, m.Commands, 3)

	cmd, ok := m.Command("copy")
	require.True(t, ok)
	assert.Equal(t, CommandExternalMethod, cmd.Kind())
	assert.Equal(t, "files", cmd.Source)
	assert.Equal(t, "Copy", cmd.MethodName)

	_, ok = m.Command("missing")
	assert.False(t, ok)
}

func TestLoad_ParamOrderPreserved(t *testing.T) {
	m, err := Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	cmd, ok := m.Command("copy")
	require.True(t, ok)
	// src is declared before dst; map iteration must not reorder them.
	assert.Equal(t, []string{"src", "dst"}, cmd.RequiredParams())
	assert.Equal(t, []string{"src", "dst"}, cmd.ParamOrder())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("name: x\nbogus: true\ncommands: []\n"))
	assert.Error(t, err)
}

func TestValidate_CollectsProblems(t *testing.T) {
	_, err := Parse([]byte(`
name: broken
commands:
  - name: a
    commandType: external-method
  - name: a
    commandType: internal
  - name: b
    commandType: teleport
`))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "requires a source")
	assert.Contains(t, msg, "requires a methodName")
	assert.Contains(t, msg, "duplicate name")
	assert.Contains(t, msg, "unknown commandType")
}

func TestValidate_ExternalSourceMustExist(t *testing.T) {
	_, err := Parse([]byte(`
name: broken
commands:
  - name: fetch
    commandType: external-method
    source: nowhere
    methodName: Fetch
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `source "nowhere" is not declared`)
}

func TestValidate_BadParamType(t *testing.T) {
	_, err := Parse([]byte(`
name: broken
commands:
  - name: a
    parameters:
      x:
        type: decimal
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestValidate_BadPattern(t *testing.T) {
	_, err := Parse([]byte(`
name: broken
commands:
  - name: a
    parameters:
      x:
        type: string
        pattern: "["
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestValidate_FromResultRejected(t *testing.T) {
	_, err := Parse([]byte(`
name: broken
commands:
  - name: a
    sideEffects:
      setState:
        - key: out
          fromResult: path
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fromResult extraction is not implemented")
}

func TestValidate_SideEffectParamReferences(t *testing.T) {
	_, err := Parse([]byte(`
name: broken
commands:
  - name: a
    parameters:
      x:
        type: string
    sideEffects:
      setState:
        - key: k
          fromParam: ghost
      clearStateIf:
        - key: k
          fromParam: phantom
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `fromParam "ghost" is not a declared parameter`)
	assert.Contains(t, err.Error(), `fromParam "phantom" is not a declared parameter`)
}
