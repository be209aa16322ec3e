package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/manifest"
	"github.com/aretw0/arbor/pkg/registry"
)

func testInterpreter(t *testing.T) *arbor.Interpreter {
	t.Helper()

	modelSpec := manifest.CommandSpec{
		Name:        "generate",
		Description: "Generate text with the active model.",
		Type:        manifest.CommandExternalMethod,
		Source:      "textgen",
		MethodName:  "Generate",
		Parameters: map[string]manifest.ParamSpec{
			"model": {Type: "string", Required: true, RuntimeFallback: "model"},
			"words": {Type: "integer", Default: 10},
		},
	}
	modelSpec.SetParamOrder("model", "words")

	useSpec := manifest.CommandSpec{
		Name: "use",
		Parameters: map[string]manifest.ParamSpec{
			"model": {Type: "string", Required: true},
		},
		SuccessOutput: "Using {{model}}",
		SideEffects: &manifest.SideEffects{
			SetState: []manifest.SetStateRule{{Key: "model", FromParam: "model"}},
		},
	}
	useSpec.SetParamOrder("model")

	contract := &manifest.Manifest{
		Name:    "textgen",
		Sources: map[string]string{"textgen": "builtin/textgen"},
		Commands: []manifest.CommandSpec{useSpec, modelSpec},
	}
	require.NoError(t, contract.Validate())

	interp, err := arbor.NewFromManifest(contract)
	require.NoError(t, err)
	interp.BindModule("builtin/textgen", registry.Module{
		"Generate": func(ctx context.Context, args map[string]any) (any, error) {
			return map[string]any{"model": args["model"]}, nil
		},
	})
	return interp
}

func TestBuildTool_SchemaFromSpec(t *testing.T) {
	interp := testInterpreter(t)
	spec, ok := interp.Contract().Command("generate")
	require.True(t, ok)

	tool := buildTool(spec)
	assert.Equal(t, "generate", tool.Name)
	assert.Equal(t, "Generate text with the active model.", tool.Description)
	assert.Contains(t, tool.InputSchema.Properties, "session")
	assert.Contains(t, tool.InputSchema.Properties, "model")
	assert.Contains(t, tool.InputSchema.Properties, "words")
	assert.Contains(t, tool.InputSchema.Required, "model")
	assert.NotContains(t, tool.InputSchema.Required, "words")
}

func callTool(t *testing.T, s *Server, command string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	handler := s.makeHandler(command)
	req := mcp.CallToolRequest{}
	req.Params.Name = command
	req.Params.Arguments = args

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	return result
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return tc.Text
}

func TestHandler_DispatchesThroughSession(t *testing.T) {
	s := NewServer(testInterpreter(t))

	result := callTool(t, s, "use", map[string]any{"model": "alice.mdl", "session": "agent-1"})
	assert.False(t, result.IsError)
	assert.Equal(t, "Using alice.mdl", textContent(t, result))

	// Same session: the model side effect feeds the runtime fallback.
	result = callTool(t, s, "generate", map[string]any{"session": "agent-1"})
	assert.False(t, result.IsError)
	assert.Contains(t, textContent(t, result), "alice.mdl")

	// Different session: no model selected yet.
	result = callTool(t, s, "generate", map[string]any{"session": "agent-2"})
	assert.True(t, result.IsError)
}

func TestHandler_ValidationErrorIsToolError(t *testing.T) {
	s := NewServer(testInterpreter(t))

	result := callTool(t, s, "use", map[string]any{})
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), `parameter "model"`)
}
