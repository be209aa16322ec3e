package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/adapters/httpapi"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/registry"
)

const apiManifest = `
name: textgen
stateDefaults:
  model: null
sources:
  textgen: builtin/textgen
commands:
  - name: use
    description: Select the active model.
    parameters:
      model:
        type: string
        required: true
    successOutput: "Now using {{model}}"
    sideEffects:
      setState:
        - key: model
          fromParam: model
  - name: generate
    commandType: external-method
    source: textgen
    methodName: Generate
    parameters:
      model:
        type: string
        required: true
        runtimeFallback: model
      words:
        type: integer
        default: 25
        min: 1
        max: 500
`

func newTestServer(t *testing.T, opts ...httpapi.Option) *httptest.Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contract.yaml")
	require.NoError(t, os.WriteFile(path, []byte(apiManifest), 0644))

	interp, err := arbor.New(path)
	require.NoError(t, err)
	interp.BindModule("builtin/textgen", registry.Module{
		"Generate": func(ctx context.Context, args map[string]any) (any, error) {
			return "generated with " + args["model"].(string), nil
		},
	})

	srv := httptest.NewServer(httpapi.NewHandler(interp, opts...))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func TestDispatch_RawInput(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/dispatch", `{"session":"s1","input":"use(\"alice.mdl\")"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Now using alice.mdl", body["output"])
	assert.Nil(t, body["error"])
}

func TestDispatch_StructuredCommand(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/dispatch",
		`{"session":"s1","command":{"name":"generate","args":{"model":"bob.mdl"}}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "generated with bob.mdl", body["output"])
}

func TestDispatch_SessionStateCarriesOver(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := postJSON(t, srv.URL+"/dispatch", `{"session":"s2","input":"use(\"carol.mdl\")"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := postJSON(t, srv.URL+"/dispatch", `{"session":"s2","input":"generate"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "generated with carol.mdl", body["output"])
}

func TestDispatch_ValidationErrorInResult(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/dispatch", `{"session":"s3","input":"generate(words=9000)"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	errMsg, _ := body["error"].(string)
	assert.Contains(t, errMsg, `parameter "model"`)
	assert.Contains(t, errMsg, `parameter "words"`)
}

func TestDispatch_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"MalformedJSON", `{`},
		{"MissingSession", `{"input":"generate"}`},
		{"BothForms", `{"session":"s","input":"x","command":{"name":"generate"}}`},
		{"NeitherForm", `{"session":"s"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postJSON(t, srv.URL+"/dispatch", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCommands_Catalog(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/commands")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Name     string `json:"name"`
		Commands []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"commands"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "textgen", body.Name)
	require.Len(t, body.Commands, 2)
	assert.Equal(t, "use", body.Commands[0].Name)
	assert.Equal(t, "internal", body.Commands[0].Type)
	assert.Equal(t, "external-method", body.Commands[1].Type)
}

func TestSessions_ListAndDelete(t *testing.T) {
	srv := newTestServer(t)

	postJSON(t, srv.URL+"/dispatch", `{"session":"alpha","input":"use(\"a.mdl\")"}`)

	resp, err := http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	var listed map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	assert.Contains(t, listed["sessions"], "alpha")

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/sessions/alpha", nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOpenAPI_GeneratedFromManifest(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/openapi.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))

	info, _ := doc["info"].(map[string]any)
	require.NotNil(t, info)
	assert.Equal(t, "textgen", info["title"])

	paths, _ := doc["paths"].(map[string]any)
	require.NotNil(t, paths)
	assert.Contains(t, paths, "/dispatch")
	assert.Contains(t, paths, "/commands")

	components, _ := doc["components"].(map[string]any)
	require.NotNil(t, components)
	schemas, _ := components["schemas"].(map[string]any)
	assert.Contains(t, schemas, "GenerateArgs")
	assert.Contains(t, schemas, "Result")
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	// Instrumented dispatches flow into the registry exposed on /metrics.
	_ = runtime.NewMetrics(reg)
	srv := newTestServer(t, httpapi.WithMetricsRegistry(reg))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
