// Package mcp exposes a manifest's commands as MCP tools, so agent
// infrastructure can call them over stdio or SSE.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/manifest"
)

// Server wraps an Interpreter and exposes it as an MCP server, one tool
// per manifest command.
type Server struct {
	interp    *arbor.Interpreter
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP server instance over the interpreter.
func NewServer(interp *arbor.Interpreter, opts ...Option) *Server {
	name := interp.Contract().Name
	if name == "" {
		name = "arbor"
	}
	s := &Server{
		interp:    interp,
		mcpServer: server.NewMCPServer(name+"-mcp", strings.TrimSpace(arbor.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	contract := s.interp.Contract()
	for i := range contract.Commands {
		cmd := &contract.Commands[i]
		s.mcpServer.AddTool(buildTool(cmd), s.makeHandler(cmd.Name))
	}
}

// buildTool maps a command spec onto an MCP tool declaration. Every tool
// carries a session argument so callers can keep independent contexts.
func buildTool(cmd *manifest.CommandSpec) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(cmd.Description),
		mcp.WithString("session",
			mcp.Description("Session ID carrying state between calls. Defaults to \"mcp\".")),
	}

	for _, name := range cmd.ParamOrder() {
		pspec := cmd.Parameters[name]
		opts = append(opts, paramOption(name, pspec))
	}
	return mcp.NewTool(cmd.Name, opts...)
}

func paramOption(name string, pspec manifest.ParamSpec) mcp.ToolOption {
	var inner []mcp.PropertyOption
	if pspec.Description != "" {
		inner = append(inner, mcp.Description(pspec.Description))
	}
	if pspec.Required {
		inner = append(inner, mcp.Required())
	}

	// Union and exotic types degrade to untyped properties; the engine
	// coerces and validates on dispatch anyway.
	switch pspec.Type {
	case "string", "buffer", "enum":
		if len(pspec.Enum) > 0 {
			values := make([]string, 0, len(pspec.Enum))
			for _, v := range pspec.Enum {
				values = append(values, fmt.Sprintf("%v", v))
			}
			inner = append(inner, mcp.Enum(values...))
		}
		return mcp.WithString(name, inner...)
	case "integer", "number":
		if pspec.Min != nil {
			inner = append(inner, mcp.Min(*pspec.Min))
		}
		if pspec.Max != nil {
			inner = append(inner, mcp.Max(*pspec.Max))
		}
		return mcp.WithNumber(name, inner...)
	case "boolean":
		return mcp.WithBoolean(name, inner...)
	case "array":
		return mcp.WithArray(name, inner...)
	case "object":
		return mcp.WithObject(name, inner...)
	default:
		return mcp.WithString(name, inner...)
	}
}

func (s *Server) makeHandler(command string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw := request.GetArguments()

		sessionID := "mcp"
		args := make(map[string]any, len(raw))
		for k, v := range raw {
			if k == "session" {
				if id, ok := v.(string); ok && id != "" {
					sessionID = id
				}
				continue
			}
			args[k] = v
		}

		result, err := s.interp.DispatchCommand(ctx, sessionID, &domain.Command{Name: command, Args: args})
		if err != nil {
			s.logger.Error("mcp dispatch failed", "command", command, "err", err)
			return nil, err
		}
		if result.Error != "" {
			return mcp.NewToolResultError(result.Error), nil
		}

		if text, ok := result.Output.(string); ok {
			return mcp.NewToolResultText(text), nil
		}
		if result.Output == nil {
			return mcp.NewToolResultText("ok"), nil
		}
		jsonBytes, err := json.Marshal(result.Output)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("unencodable output: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("arbor://contract", "Current Command Contract",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.interp.Contract())
		if err != nil {
			return nil, fmt.Errorf("failed to encode contract: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "arbor://contract",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
