package dsl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/dsl"
	"github.com/aretw0/arbor/pkg/manifest"
)

func TestBuilder_ProducesValidManifest(t *testing.T) {
	b := dsl.New("textgen-cli").
		Describe("A text generation shell").
		Prompt("{{model}}> ").
		StateDefault("model", nil).
		Source("textgen", "builtin/textgen")

	b.Command("use").
		Param("model", dsl.String().Required()).
		Output("Now using {{model}}.").
		SetStateFrom("model", "model")

	b.Command("generate").
		External("textgen", "Sample").
		Param("model", dsl.String().Required().Fallback("model")).
		Param("words", dsl.Integer().Default(50).Min(1).Max(500))

	b.Command("quit").Exit().Output("Bye.")

	m, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "textgen-cli", m.Name)
	assert.Equal(t, "{{model}}> ", m.Prompt)
	require.Len(t, m.Commands, 3)

	gen, ok := m.Command("generate")
	require.True(t, ok)
	assert.Equal(t, manifest.CommandExternalMethod, gen.Kind())
	assert.Equal(t, "textgen", gen.Source)
	assert.Equal(t, "Sample", gen.MethodName)
	assert.Equal(t, []string{"model", "words"}, gen.ParamOrder())
	assert.Equal(t, []string{"model"}, gen.RequiredParams())

	words := gen.Parameters["words"]
	require.NotNil(t, words.Min)
	assert.Equal(t, float64(1), *words.Min)
	assert.Equal(t, 50, words.Default)
}

func TestBuilder_ValidationFailure(t *testing.T) {
	b := dsl.New("broken")
	b.Command("gen").External("missing", "Run")

	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `source "missing" is not declared`)
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	b := dsl.New("")
	assert.Panics(t, func() { b.MustBuild() })
}

func TestBuilder_SideEffects(t *testing.T) {
	b := dsl.New("docs")
	b.Command("open").
		Param("path", dsl.String().Required()).
		SetStateTemplate("doc", "{{path|basename}}").
		ClearState("preview")
	b.Command("close").
		Param("doc", dsl.String().Required()).
		ClearStateIf("doc", "doc")

	m, err := b.Build()
	require.NoError(t, err)

	open, _ := m.Command("open")
	require.NotNil(t, open.SideEffects)
	require.Len(t, open.SideEffects.SetState, 1)
	assert.Equal(t, "{{path|basename}}", open.SideEffects.SetState[0].Template)
	assert.Equal(t, []string{"preview"}, open.SideEffects.ClearState)

	closeCmd, _ := m.Command("close")
	require.Len(t, closeCmd.SideEffects.ClearStateIf, 1)
	assert.Equal(t, "doc", closeCmd.SideEffects.ClearStateIf[0].FromParam)
}

func TestBuilder_DrivesInterpreter(t *testing.T) {
	b := dsl.New("demo").StateDefault("model", nil)
	b.Command("use").
		Param("model", dsl.String().Required()).
		Output("Now using {{model}}.").
		SetStateFrom("model", "model")
	b.Command("which").
		Param("model", dsl.String().Required().Fallback("model")).
		Output("Current model: {{model}}")

	interp, err := arbor.NewFromManifest(b.MustBuild())
	require.NoError(t, err)

	ctx := context.Background()
	res, err := interp.Dispatch(ctx, "s1", "use gpt2")
	require.NoError(t, err)
	require.Empty(t, res.Error)

	res, err = interp.Dispatch(ctx, "s1", "which")
	require.NoError(t, err)
	assert.Equal(t, "Current model: gpt2", res.Output)
}
