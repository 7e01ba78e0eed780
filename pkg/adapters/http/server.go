// Package http exposes the coaching engine as a REST API. Every
// session-mutating route is serialized through the session manager so
// concurrent clients cannot interleave writes to one conversation.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cairnlabs/cairn/internal/logging"
	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/ports"
	"github.com/cairnlabs/cairn/pkg/runner"
	"github.com/cairnlabs/cairn/pkg/session"
)

// Server handles the REST routes. Construct it through NewHandler.
type Server struct {
	engine  ports.Orchestrator
	manager *session.Manager
	docs    ports.DocumentStore
	streams *StreamManager
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDocumentStore enables the GET /sessions/{id}/document route.
func WithDocumentStore(docs ports.DocumentStore) Option {
	return func(s *Server) {
		s.docs = docs
	}
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine ports.Orchestrator, manager *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		engine:  engine,
		manager: manager,
		streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/graph", s.handleGraph)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/", s.handleListSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/messages", s.handleMessage)
			r.Post("/phase", s.handleForcePhase)
			r.Get("/document", s.handleGetDocument)
			r.Get("/events", s.handleEvents)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type createSessionRequest struct {
	ID string `json:"id"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type phaseRequest struct {
	Phase string `json:"phase"`
}

// handleCreateSession handles POST /sessions. The body may carry an id to
// resume; an empty or missing id mints a fresh one. Idempotent: creating
// an existing session returns it unchanged.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id := strings.TrimSpace(body.ID)
	if id == "" {
		id = uuid.NewString()
	}

	sess, err := s.manager.LoadOrStart(r.Context(), id)
	if err != nil {
		http.Error(w, fmt.Sprintf("Session error: %v", err), http.StatusInternalServerError)
		s.logger.Error("session create failed", "session_id", id, "error", err)
		return
	}

	s.writeJSON(w, http.StatusCreated, sess)
}

// handleListSessions handles GET /sessions.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.manager.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// handleGetSession handles GET /sessions/{id}.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, err := s.manager.Load(r.Context(), sessionID)
	if err != nil {
		s.respondSessionError(w, sessionID, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

// handleDeleteSession handles DELETE /sessions/{id}.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.manager.Delete(r.Context(), sessionID); err != nil {
		s.respondSessionError(w, sessionID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMessage handles POST /sessions/{id}/messages: one full coaching
// turn. Load, run the graph, save, all under the session lock so a slow
// turn never races a second client.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var body messageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(body.Message)
	if text == "" {
		http.Error(w, "Message must not be empty", http.StatusBadRequest)
		return
	}

	clean, err := runner.SanitizeInput(text)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid input: %v", err), http.StatusBadRequest)
		s.logger.Warn("message rejected", "session_id", sessionID, "error", err, "size", len(text))
		return
	}

	var updated domain.Session
	err = s.manager.WithLock(r.Context(), sessionID, func(ctx context.Context) error {
		stored, err := s.manager.Store().Load(ctx, sessionID)
		if err != nil {
			return err
		}
		next, err := s.engine.HandleMessage(ctx, *stored, clean)
		if err != nil {
			return err
		}
		if err := s.manager.Store().Save(ctx, sessionID, &next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		s.respondSessionError(w, sessionID, err)
		return
	}

	s.broadcastUpdate(updated)
	s.writeJSON(w, http.StatusOK, updated)
}

// handleForcePhase handles POST /sessions/{id}/phase: a manual phase
// override, e.g. a user who wants to skip ahead to planning.
func (s *Server) handleForcePhase(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var body phaseRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	phase, err := domain.ParsePhase(strings.TrimSpace(body.Phase))
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid phase: %v", err), http.StatusBadRequest)
		return
	}

	var updated domain.Session
	err = s.manager.WithLock(r.Context(), sessionID, func(ctx context.Context) error {
		stored, err := s.manager.Store().Load(ctx, sessionID)
		if err != nil {
			return err
		}
		stored.ForcePhase(phase)
		if err := s.manager.Store().Save(ctx, sessionID, stored); err != nil {
			return err
		}
		updated = *stored
		return nil
	})
	if err != nil {
		s.respondSessionError(w, sessionID, err)
		return
	}

	s.broadcastUpdate(updated)
	s.writeJSON(w, http.StatusOK, updated)
}

// handleGetDocument handles GET /sessions/{id}/document.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if s.docs == nil {
		http.Error(w, "Document storage not configured", http.StatusServiceUnavailable)
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	doc, err := s.docs.Load(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			http.Error(w, fmt.Sprintf("No brief for session %q yet", sessionID), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Document error: %v", err), http.StatusInternalServerError)
		s.logger.Error("document load failed", "session_id", sessionID, "error", err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

// handleGraph handles GET /graph.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Inspect())
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleEvents handles GET /sessions/{id}/events (SSE). Clients receive a
// compact progress event after every completed turn or phase override.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe(sessionID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// sessionEvent is the SSE payload: enough for a dashboard to track
// progress without polling the full session.
type sessionEvent struct {
	SessionID    string       `json:"session_id"`
	Phase        domain.Phase `json:"phase"`
	Stage        string       `json:"stage,omitempty"`
	ActiveAgent  string       `json:"active_agent,omitempty"`
	Completeness float64      `json:"completeness"`
	Turns        int          `json:"turns"`
}

func (s *Server) broadcastUpdate(sess domain.Session) {
	payload, err := json.Marshal(sessionEvent{
		SessionID:    sess.ID,
		Phase:        sess.Phase,
		Stage:        sess.Stage,
		ActiveAgent:  sess.ActiveAgent,
		Completeness: sess.Completeness(),
		Turns:        len(sess.Turns),
	})
	if err != nil {
		return
	}
	s.streams.Broadcast(sess.ID, string(payload))
}

func (s *Server) respondSessionError(w http.ResponseWriter, sessionID string, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Error(w, fmt.Sprintf("Session %q not found", sessionID), http.StatusNotFound)
		return
	}
	http.Error(w, fmt.Sprintf("Session error: %v", err), http.StatusInternalServerError)
	s.logger.Error("session operation failed", "session_id", sessionID, "error", err)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
