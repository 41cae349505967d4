// Package mcp exposes the concierge as a Model Context Protocol server, so
// any MCP-speaking assistant can drive discovery runs and answer the
// approval prompts on the user's behalf.
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

	"github.com/tablescout/tablescout"
	"github.com/tablescout/tablescout/internal/logging"
	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/runner"
)

// listURI is the resource address of the curated list.
const listURI = "tablescout://list"

// Concierge is the engine surface the MCP tools drive. The root tablescout
// package satisfies it.
type Concierge interface {
	SubmitUtterance(ctx context.Context, sessionID, text string) (*domain.Outcome, error)
	SubmitDecision(ctx context.Context, sessionID, response string) (*domain.Outcome, error)
	Inspect(ctx context.Context, sessionID string) (*domain.RunState, error)
	Entries(ctx context.Context) ([]domain.ListEntry, error)
}

// ListResponse is the structured result of the view_list tool.
type ListResponse struct {
	Entries []domain.ListEntry `json:"entries"`
	Count   int                `json:"count"`
}

// Server wraps the concierge and exposes it as an MCP server.
type Server struct {
	concierge Concierge
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the server log destination.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates the MCP server and registers the tool set.
func NewServer(c Concierge, opts ...Option) *Server {
	s := &Server{
		concierge: c,
		mcpServer: server.NewMCPServer("tablescout-mcp", strings.TrimSpace(tablescout.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio runs the server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE runs the server over SSE on the given port until the context is
// canceled, then shuts down gracefully.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening", "transport", "sse", "addr", addr)
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
	// TOOL: submit_utterance
	utteranceTool := mcp.NewTool("submit_utterance",
		mcp.WithDescription("Start or continue a concierge run with a user message. "+
			"Discovery runs suspend with a proposal that must be answered via submit_decision."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Durable session identifier; reuse it to resume the same conversation")),
		mcp.WithString("text", mcp.Required(), mcp.Description("The user's message")),
		mcp.WithOutputSchema[domain.Outcome](),
	)
	s.mcpServer.AddTool(utteranceTool, mcp.NewStructuredToolHandler(s.handleUtterance))

	// TOOL: submit_decision
	decisionTool := mcp.NewTool("submit_decision",
		mcp.WithDescription("Answer the pending proposal of a suspended run. "+
			"Accepts the approval grammar: yes, no, 1 and 3, all but 2, why 2, retry, terminate."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session whose run is awaiting a decision")),
		mcp.WithString("response", mcp.Required(), mcp.Description("The decision text")),
		mcp.WithOutputSchema[domain.Outcome](),
	)
	s.mcpServer.AddTool(decisionTool, mcp.NewStructuredToolHandler(s.handleDecision))

	// TOOL: inspect_session
	inspectTool := mcp.NewTool("inspect_session",
		mcp.WithDescription("Snapshot of a session's durable run state: phase, proposal, errors."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to inspect")),
		mcp.WithOutputSchema[domain.RunState](),
	)
	s.mcpServer.AddTool(inspectTool, mcp.NewStructuredToolHandler(s.handleInspect))

	// TOOL: view_list
	listTool := mcp.NewTool("view_list",
		mcp.WithDescription("The curated restaurant list as it stands."),
		mcp.WithOutputSchema[ListResponse](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleViewList))
}

func (s *Server) handleUtterance(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (domain.Outcome, error) {
	sessionID, _ := args["session_id"].(string)
	text, _ := args["text"].(string)
	if sessionID == "" {
		return domain.Outcome{}, fmt.Errorf("session_id is required")
	}

	clean, err := runner.SanitizeInput(text)
	if err != nil {
		s.logger.Warn("utterance rejected", "error", err, "size", len(text))
		return domain.Outcome{}, fmt.Errorf("input rejected: %w", err)
	}

	outcome, err := s.concierge.SubmitUtterance(ctx, sessionID, clean)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("submit utterance: %w", err)
	}
	return *outcome, nil
}

func (s *Server) handleDecision(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (domain.Outcome, error) {
	sessionID, _ := args["session_id"].(string)
	response, _ := args["response"].(string)
	if sessionID == "" {
		return domain.Outcome{}, fmt.Errorf("session_id is required")
	}

	clean, err := runner.SanitizeInput(response)
	if err != nil {
		s.logger.Warn("decision rejected", "error", err, "size", len(response))
		return domain.Outcome{}, fmt.Errorf("input rejected: %w", err)
	}

	outcome, err := s.concierge.SubmitDecision(ctx, sessionID, clean)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("submit decision: %w", err)
	}
	return *outcome, nil
}

func (s *Server) handleInspect(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (domain.RunState, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return domain.RunState{}, fmt.Errorf("session_id is required")
	}

	state, err := s.concierge.Inspect(ctx, sessionID)
	if err != nil {
		return domain.RunState{}, fmt.Errorf("inspect session: %w", err)
	}
	return *state, nil
}

func (s *Server) handleViewList(ctx context.Context, _ mcp.CallToolRequest, _ map[string]interface{}) (ListResponse, error) {
	entries, err := s.concierge.Entries(ctx)
	if err != nil {
		return ListResponse{}, fmt.Errorf("fetch list: %w", err)
	}
	if entries == nil {
		entries = []domain.ListEntry{}
	}
	return ListResponse{Entries: entries, Count: len(entries)}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: tablescout://list
	s.mcpServer.AddResource(mcp.NewResource(listURI, "Curated Restaurant List",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		entries, err := s.concierge.Entries(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch list: %w", err)
		}
		jsonBytes, _ := json.Marshal(entries)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      listURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
