// Package mcp exposes the coaching engine to AI hosts over the Model
// Context Protocol: tools for driving a session, a resource describing
// the workflow graph, and stdio or SSE transports.
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
	"github.com/mitchellh/mapstructure"

	"github.com/cairnlabs/cairn"
	"github.com/cairnlabs/cairn/internal/logging"
	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/ports"
	"github.com/cairnlabs/cairn/pkg/runner"
	"github.com/cairnlabs/cairn/pkg/session"
	"github.com/google/uuid"
)

// Tool argument shapes. mcp-go hands handlers an untyped map; decoding
// into a struct keeps key names in one place.
type sessionArgs struct {
	SessionID string `mapstructure:"session_id"`
}

type messageArgs struct {
	SessionID string `mapstructure:"session_id"`
	Message   string `mapstructure:"message"`
}

func toolArgs[T any](raw map[string]any) (T, error) {
	var out T
	if err := mapstructure.Decode(raw, &out); err != nil {
		return out, fmt.Errorf("bad tool arguments: %w", err)
	}
	return out, nil
}

// TurnResponse aligns with the HTTP adapter's message response and gives
// MCP hosts the new replies without re-reading the whole session.
type TurnResponse struct {
	Session  *domain.Session `json:"session" jsonschema_description:"The updated session snapshot"`
	Replies  []domain.Turn   `json:"replies" jsonschema_description:"Responder turns produced by this message"`
	Complete bool            `json:"complete" jsonschema_description:"True once the strategy brief is complete"`
}

// Server wraps the coaching engine and exposes it as an MCP Server.
type Server struct {
	engine    ports.Orchestrator
	manager   *session.Manager
	docs      ports.DocumentStore
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithDocumentStore enables the get_document tool.
func WithDocumentStore(docs ports.DocumentStore) Option {
	return func(s *Server) {
		s.docs = docs
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Orchestrator, manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:  engine,
		manager: manager,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("cairn-mcp", strings.TrimSpace(cairn.Version))
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

		s.logger.Info("shutdown signal received, stopping MCP server")
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

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: start_session
	startTool := mcp.NewTool("start_session",
		mcp.WithDescription("Start or resume a coaching session. If session_id is omitted, a fresh id is generated."),
		mcp.WithString("session_id", mcp.Description("The session to resume (optional)")),
		mcp.WithOutputSchema[domain.Session](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStartSession))

	// TOOL: coach_message
	messageTool := mcp.NewTool("coach_message",
		mcp.WithDescription("Send one user message to the coaching session and run a full turn."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session to address")),
		mcp.WithString("message", mcp.Required(), mcp.Description("The user message")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(messageTool, mcp.NewStructuredToolHandler(s.handleCoachMessage))

	// TOOL: get_session
	getTool := mcp.NewTool("get_session",
		mcp.WithDescription("Fetch the current session snapshot: phase, completeness, history."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session to fetch")),
		mcp.WithOutputSchema[domain.Session](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGetSession))

	// TOOL: get_document
	documentTool := mcp.NewTool("get_document",
		mcp.WithDescription("Fetch the strategy brief assembled so far for a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session whose brief to fetch")),
		mcp.WithOutputSchema[domain.Document](),
	)
	s.mcpServer.AddTool(documentTool, mcp.NewStructuredToolHandler(s.handleGetDocument))

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the workflow graph definition for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.engine.Inspect())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleStartSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Session, error) {
	in, err := toolArgs[sessionArgs](args)
	if err != nil {
		return domain.Session{}, err
	}
	id := strings.TrimSpace(in.SessionID)
	if id == "" {
		id = uuid.NewString()
	}

	sess, err := s.manager.LoadOrStart(ctx, id)
	if err != nil {
		return domain.Session{}, fmt.Errorf("start failed: %w", err)
	}
	return *sess, nil
}

func (s *Server) handleCoachMessage(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnResponse, error) {
	in, err := toolArgs[messageArgs](args)
	if err != nil {
		return TurnResponse{}, err
	}
	id := in.SessionID
	text := strings.TrimSpace(in.Message)
	if text == "" {
		return TurnResponse{}, fmt.Errorf("message must not be empty")
	}

	clean, err := runner.SanitizeInput(text)
	if err != nil {
		s.logger.Warn("MCP message rejected", "session_id", id, "error", err, "size", len(text))
		return TurnResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	var updated domain.Session
	var replies []domain.Turn
	err = s.manager.WithLock(ctx, id, func(ctx context.Context) error {
		stored, err := s.manager.Store().Load(ctx, id)
		if err != nil {
			return err
		}
		mark := len(stored.Turns)
		next, err := s.engine.HandleMessage(ctx, *stored, clean)
		if err != nil {
			return err
		}
		if err := s.manager.Store().Save(ctx, id, &next); err != nil {
			return err
		}
		updated = next
		replies = next.Turns[mark:]
		return nil
	})
	if err != nil {
		return TurnResponse{}, fmt.Errorf("message failed: %w", err)
	}

	return TurnResponse{
		Session:  &updated,
		Replies:  replies,
		Complete: updated.Phase == domain.PhaseComplete,
	}, nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Session, error) {
	in, err := toolArgs[sessionArgs](args)
	if err != nil {
		return domain.Session{}, err
	}
	sess, err := s.manager.Load(ctx, in.SessionID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("session %q: %w", in.SessionID, err)
	}
	return *sess, nil
}

func (s *Server) handleGetDocument(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Document, error) {
	if s.docs == nil {
		return domain.Document{}, fmt.Errorf("document storage not configured")
	}
	in, err := toolArgs[sessionArgs](args)
	if err != nil {
		return domain.Document{}, err
	}
	doc, err := s.docs.Load(ctx, in.SessionID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("document for %q: %w", in.SessionID, err)
	}
	return *doc, nil
}

func (s *Server) registerResources() {
	// EXPOSE: cairn://graph
	s.mcpServer.AddResource(mcp.NewResource("cairn://graph", "Workflow Graph Definition",
		mcp.WithMIMEType("application/json"),
	), s.readGraphResource)
}

func (s *Server) readGraphResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.engine.Inspect())
	if err != nil {
		return nil, fmt.Errorf("failed to inspect graph: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "cairn://graph",
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
