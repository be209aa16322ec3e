// Package httpapi exposes an Interpreter over HTTP: a dispatch endpoint,
// manifest introspection, session management and operational endpoints.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/parser"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/manifest"
)

// Server handles HTTP requests against an Interpreter.
type Server struct {
	interp   *arbor.Interpreter
	logger   *slog.Logger
	registry *prometheus.Registry
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a structured logger for request handling.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRegistry exposes the given registry on /metrics.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// NewHandler creates the HTTP handler for the interpreter.
func NewHandler(interp *arbor.Interpreter, opts ...Option) http.Handler {
	s := &Server{
		interp: interp,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post("/dispatch", s.Dispatch)
	r.Get("/commands", s.Commands)
	r.Get("/sessions", s.Sessions)
	r.Delete("/sessions/{id}", s.DeleteSession)
	r.Get("/openapi.json", s.OpenAPI)
	r.Get("/swagger", s.Swagger)
	r.Get("/healthz", s.Health)
	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// DispatchRequest is the POST /dispatch body. Exactly one of Input (a
// raw invocation in any supported grammar) or Command (the structured
// form) must be set.
type DispatchRequest struct {
	Session string         `json:"session"`
	Input   string         `json:"input,omitempty"`
	Command map[string]any `json:"command,omitempty"`
}

// Dispatch handles POST /dispatch.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	var body DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("dispatch: invalid request body", "err", err)
		return
	}
	if body.Session == "" {
		http.Error(w, "session is required", http.StatusBadRequest)
		return
	}
	if (body.Input == "") == (body.Command == nil) {
		http.Error(w, "exactly one of input or command is required", http.StatusBadRequest)
		return
	}

	var result *domain.Result
	var err error
	if body.Command != nil {
		var cmd *domain.Command
		cmd, err = parser.FromObject(body.Command)
		if err == nil {
			result, err = s.interp.DispatchCommand(r.Context(), body.Session, cmd)
		} else {
			// Malformed structured commands are client errors, reported
			// in the uniform Result shape.
			result, err = domain.Failure(err.Error()), nil
		}
	} else {
		result, err = s.interp.Dispatch(r.Context(), body.Session, body.Input)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		s.logger.Error("dispatch failed", "session", body.Session, "err", err)
		return
	}

	writeJSON(w, s.logger, result)
}

// CommandInfo is one entry of the GET /commands response.
type CommandInfo struct {
	Name        string                        `json:"name"`
	Description string                        `json:"description,omitempty"`
	Type        string                        `json:"type"`
	Parameters  map[string]manifest.ParamSpec `json:"parameters,omitempty"`
	Exit        bool                          `json:"exit,omitempty"`
}

// Commands handles GET /commands: the manifest's command catalog, the
// data a client needs to build forms or completions.
func (s *Server) Commands(w http.ResponseWriter, r *http.Request) {
	contract := s.interp.Contract()
	infos := make([]CommandInfo, 0, len(contract.Commands))
	for i := range contract.Commands {
		cmd := &contract.Commands[i]
		infos = append(infos, CommandInfo{
			Name:        cmd.Name,
			Description: cmd.Description,
			Type:        cmd.Kind(),
			Parameters:  cmd.Parameters,
			Exit:        cmd.Exit,
		})
	}
	writeJSON(w, s.logger, map[string]any{
		"name":     contract.Name,
		"commands": infos,
	})
}

// Sessions handles GET /sessions.
func (s *Server) Sessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.interp.Sessions().List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, s.logger, map[string]any{"sessions": ids})
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.interp.Sessions().Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrContextNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{"status": "ok"})
}

// Swagger serves a minimal Swagger UI page over /openapi.json.
func (s *Server) Swagger(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(swaggerHTML))
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Arbor API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.json',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
