package runtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/cairnlabs/cairn/internal/synthesis"
	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/ports"
	"github.com/cairnlabs/cairn/pkg/signal"
)

const (
	// maxRetries bounds graph cycles per inbound message; routing turns
	// terminal once the counter exceeds it.
	maxRetries = 5

	// completenessTarget is the percentage at which the loop decision ends
	// the graph and the session moves to the complete phase.
	completenessTarget = 95.0

	// synthesizerAgent labels the reply turns the synthesize node appends.
	synthesizerAgent = "coach"

	fallbackReply = "I hit a snag processing that. Give me the short version of where you stand and we will pick the thread back up."
)

// Engine executes the workflow graph: one inbound user message runs the
// node cycle to completion and returns the updated session. The engine
// holds no per-session state; everything lives on the Session value.
type Engine struct {
	responders map[string]ports.Responder
	docs       ports.DocumentStore
	extractor  *signal.Extractor
	synth      *synthesis.Engine
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDocumentStore attaches the external document store read by the
// progress_update node. Without one the node is a no-op.
func WithDocumentStore(store ports.DocumentStore) EngineOption {
	return func(e *Engine) {
		e.docs = store
	}
}

// WithExtractor swaps the signal extractor, e.g. for a custom table.
func WithExtractor(x *signal.Extractor) EngineOption {
	return func(e *Engine) {
		if x != nil {
			e.extractor = x
		}
	}
}

// NewEngine creates the graph executor over the given responders keyed by
// id. The map is copied; later mutation by the caller has no effect.
func NewEngine(responders map[string]ports.Responder, opts ...EngineOption) *Engine {
	e := &Engine{
		responders: make(map[string]ports.Responder, len(responders)),
		extractor:  signal.NewExtractor(signal.DefaultTable()),
		synth:      synthesis.New(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for id, r := range responders {
		e.responders[id] = r
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start mints a fresh session in the discovery phase.
func (e *Engine) Start(sessionID string) domain.Session {
	e.logger.Debug("session started", "session_id", sessionID)
	return domain.NewSession(sessionID)
}

// HandleMessage is the single turn-ingestion entry point: append the user
// turn, reset the per-message counters, and run the graph once to end.
// Errors recovered along the way ride on the session's error record; the
// returned error is reserved for a context that was already dead on entry.
func (e *Engine) HandleMessage(ctx context.Context, s domain.Session, text string) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return s, err
	}

	s = s.Clone()
	s.AppendTurn(domain.RoleUser, text, "")
	s.Retries = 0
	s.Error = nil
	s.Decision = nil

	return e.run(ctx, s), nil
}

// run executes the node cycle until the loop decision or the dispatcher
// ends it. Retries bounds the cycle count, so this always terminates.
func (e *Engine) run(ctx context.Context, s domain.Session) domain.Session {
	for {
		s = e.runProgressUpdate(ctx, s)
		s = e.runDispatch(ctx, s)

		decision := *s.Decision
		if decision.IsTerminal() {
			return e.end(ctx, s, decision.Reason)
		}

		switch decision.Target {
		case domain.TargetSynthesize:
			// The finish candidate skips the specialist branch.
		case domain.ResponderProgress:
			s = e.runResponder(ctx, s, domain.NodeBuildProgress, decision.Target)
		default:
			s = e.runResponder(ctx, s, domain.NodeRespond, decision.Target)
		}

		s = e.runSynthesize(ctx, s)

		if reason, done := e.loopDecision(s); done {
			return e.end(ctx, s, reason)
		}
		s.Retries++
		e.logger.Debug("looping", "session_id", s.ID, "retries", s.Retries)
	}
}

// runProgressUpdate refreshes the Completeness Map from the document store.
// Out-of-band completions merge in; the store never unchecks a section the
// session already considers done. Store failures are logged and skipped.
func (e *Engine) runProgressUpdate(ctx context.Context, s domain.Session) domain.Session {
	e.emitNodeEnter(ctx, s, domain.NodeProgressUpdate)
	defer e.emitNodeLeave(ctx, s, domain.NodeProgressUpdate, "")

	if e.docs == nil {
		return s
	}

	doc, err := e.docs.Load(ctx, s.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			e.logger.Warn("document refresh skipped", "session_id", s.ID, "err", err)
		}
		return s
	}

	for _, sec := range doc.Sections {
		if sec.Done {
			s.SetSection(sec.Key, true)
		} else if _, known := s.Sections[sec.Key]; !known {
			s.SetSection(sec.Key, false)
		}
	}
	return s
}

// runDispatch scores the candidates, stores the decision on the session and
// applies any recommended phase transition before the specialist runs.
func (e *Engine) runDispatch(ctx context.Context, s domain.Session) domain.Session {
	e.emitNodeEnter(ctx, s, domain.NodeDispatch)

	sig := e.extractor.Extract(s.Turns)
	rec := recommendPhase(s, sig)
	decision := decide(s, sig, rec)
	s.Decision = &decision

	e.logger.Info("dispatch",
		"session_id", s.ID,
		"target", decision.Target,
		"priority", decision.Priority,
		"reason", decision.Reason,
	)

	if !decision.IsTerminal() && rec != nil && *rec != s.Phase {
		e.logger.Info("phase transition", "session_id", s.ID, "from", s.Phase, "to", *rec)
		s.Phase = *rec
		s.UpdatedAt = time.Now().UTC()
	}

	e.emitNodeLeave(ctx, s, domain.NodeDispatch, decision.Target)
	return s
}

// runResponder executes the specialist branch. The responder contract says
// failures come back as a fallback turn plus error record, never as an
// error value; the guard below covers implementations that break it and
// context cancellation surfacing through the call.
func (e *Engine) runResponder(ctx context.Context, s domain.Session, node, id string) domain.Session {
	e.emitNodeEnter(ctx, s, node)
	defer e.emitNodeLeave(ctx, s, node, "")

	r, ok := e.responders[id]
	if !ok {
		e.logger.Error("responder missing", "session_id", s.ID, "responder", id)
		s.RecordError(domain.ErrorResponderFailure, node, domain.ErrUnknownResponder.Error()+": "+id)
		s.AppendTurn(domain.RoleResponder, fallbackReply, id)
		s.Retries++
		return s
	}

	e.emitResponderCall(ctx, s, id)
	out, err := r.Process(ctx, s.Clone(), s.LastUserText())
	e.emitResponderReturn(ctx, s, id, err != nil || out.Error != nil)

	if err != nil {
		e.logger.Error("responder failed", "session_id", s.ID, "responder", id, "err", err)
		s.RecordError(domain.ErrorResponderFailure, node, err.Error())
		s.AppendTurn(domain.RoleResponder, fallbackReply, id)
		s.Retries++
		return s
	}

	if out.Error != nil {
		e.logger.Warn("responder recovered internally",
			"session_id", s.ID,
			"responder", id,
			"kind", out.Error.Kind,
			"err", out.Error.Message,
		)
		out.Retries++
	}
	return out
}

// runSynthesize renders the user-facing reply from the session state and
// the cycle's decision.
func (e *Engine) runSynthesize(ctx context.Context, s domain.Session) domain.Session {
	e.emitNodeEnter(ctx, s, domain.NodeSynthesize)
	defer e.emitNodeLeave(ctx, s, domain.NodeSynthesize, "")

	reply := e.synth.Synthesize(s, *s.Decision)
	s.AppendTurn(domain.RoleResponder, reply, synthesizerAgent)
	return s
}

// loopDecision is the single place that converts session state into
// termination.
func (e *Engine) loopDecision(s domain.Session) (string, bool) {
	switch {
	case s.Error != nil:
		return "error record present", true
	case s.Completeness() >= completenessTarget:
		return "completeness target reached", true
	case s.Retries > maxRetries:
		return "retry limit exceeded", true
	}
	return "", false
}

func (e *Engine) end(ctx context.Context, s domain.Session, reason string) domain.Session {
	e.emitNodeEnter(ctx, s, domain.NodeEnd)

	if s.Completeness() >= completenessTarget {
		s.Phase = domain.PhaseComplete
		s.UpdatedAt = time.Now().UTC()
	}
	e.logger.Info("graph ended",
		"session_id", s.ID,
		"reason", reason,
		"phase", s.Phase,
		"completeness", s.Completeness(),
	)

	e.emitNodeLeave(ctx, s, domain.NodeEnd, "")
	return s
}

func (e *Engine) emitNodeEnter(ctx context.Context, s domain.Session, node string) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: eventBase(domain.EventNodeEnter, s.ID),
		Node:      node,
	})
}

func (e *Engine) emitNodeLeave(ctx context.Context, s domain.Session, node, target string) {
	if e.hooks.OnNodeLeave == nil {
		return
	}
	e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
		EventBase:    eventBase(domain.EventNodeLeave, s.ID),
		Node:         node,
		Target:       target,
		Completeness: s.Completeness(),
	})
}

func (e *Engine) emitResponderCall(ctx context.Context, s domain.Session, id string) {
	if e.hooks.OnResponderCall == nil {
		return
	}
	e.hooks.OnResponderCall(ctx, &domain.ResponderEvent{
		EventBase: eventBase(domain.EventResponderCall, s.ID),
		Responder: id,
	})
}

func (e *Engine) emitResponderReturn(ctx context.Context, s domain.Session, id string, isError bool) {
	if e.hooks.OnResponderReturn == nil {
		return
	}
	e.hooks.OnResponderReturn(ctx, &domain.ResponderEvent{
		EventBase: eventBase(domain.EventResponderReturn, s.ID),
		Responder: id,
		IsError:   isError,
	})
}

func eventBase(t domain.EventType, sessionID string) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now().UTC(),
		Type:      t,
		SessionID: sessionID,
	}
}

// Inspect describes the fixed graph for visualization and introspection.
func (e *Engine) Inspect() []domain.GraphNode {
	return []domain.GraphNode{
		{
			Name:    domain.NodeProgressUpdate,
			Purpose: "refresh the completeness map from the document store",
			Targets: []string{domain.NodeDispatch},
		},
		{
			Name:    domain.NodeDispatch,
			Purpose: "score candidates and pick the next responder",
			Targets: []string{domain.NodeRespond, domain.NodeBuildProgress, domain.NodeSynthesize, domain.NodeEnd},
			EdgeLabels: map[string]string{
				domain.NodeRespond:       "specialist selected",
				domain.NodeBuildProgress: "progress-builder selected",
				domain.NodeSynthesize:    "finish candidate",
				domain.NodeEnd:           "error or retry limit",
			},
		},
		{
			Name:    domain.NodeRespond,
			Purpose: "run the selected specialist responder",
			Targets: []string{domain.NodeSynthesize},
		},
		{
			Name:    domain.NodeBuildProgress,
			Purpose: "rebuild and save the strategy document",
			Targets: []string{domain.NodeSynthesize},
		},
		{
			Name:    domain.NodeSynthesize,
			Purpose: "render the coach reply from session state",
			Targets: []string{domain.NodeProgressUpdate, domain.NodeEnd},
			EdgeLabels: map[string]string{
				domain.NodeProgressUpdate: "loop",
				domain.NodeEnd:            "error, completeness target or retry limit",
			},
		},
		{
			Name:    domain.NodeEnd,
			Purpose: "terminal node",
		},
	}
}
