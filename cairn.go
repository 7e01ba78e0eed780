package cairn

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/cairnlabs/cairn/internal/runtime"
	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/ports"
	"github.com/cairnlabs/cairn/pkg/responders"
	"github.com/cairnlabs/cairn/pkg/signal"
)

// Engine is the high-level entry point for the Cairn library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime *runtime.Engine

	responderSet map[string]ports.Responder
	overrides    []ports.Responder
	model        ports.ChatModel
	docs         ports.DocumentStore
	extractor    *signal.Extractor
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
}

var _ ports.Orchestrator = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithChatModel backs the default specialists with a language model.
// Without it they fall back to their deterministic built-in coaching.
// Ignored when WithResponders replaces the default set.
func WithChatModel(model ports.ChatModel) Option {
	return func(e *Engine) {
		e.model = model
	}
}

// WithDocumentStore persists the strategy brief the conversation builds.
func WithDocumentStore(docs ports.DocumentStore) Option {
	return func(e *Engine) {
		e.docs = docs
	}
}

// WithSignalTable swaps the keyword table driving signal extraction.
func WithSignalTable(table signal.Table) Option {
	return func(e *Engine) {
		e.extractor = signal.NewExtractor(table)
	}
}

// WithResponder adds or replaces a single responder, keyed by its ID.
// Applied on top of the default set (or the WithResponders set).
func WithResponder(r ports.Responder) Option {
	return func(e *Engine) {
		e.overrides = append(e.overrides, r)
	}
}

// WithResponders replaces the default responder set entirely.
func WithResponders(set map[string]ports.Responder) Option {
	return func(e *Engine) {
		e.responderSet = set
	}
}

// New initializes a new Cairn Engine. With no options it runs fully
// offline: built-in specialist coaching, no persistence.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	set := make(map[string]ports.Responder)
	if eng.responderSet == nil {
		set = responders.Default(eng.model, eng.docs, responders.WithLogger(eng.logger))
	} else {
		for id, r := range eng.responderSet {
			set[id] = r
		}
	}
	for _, r := range eng.overrides {
		if r == nil {
			return nil, errors.New("nil responder")
		}
		set[r.ID()] = r
	}
	if len(set) == 0 {
		return nil, errors.New("at least one responder is required")
	}
	eng.responderSet = set

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithDocumentStore(eng.docs),
	}
	if eng.extractor != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithExtractor(eng.extractor))
	}

	eng.runtime = runtime.NewEngine(set, runtimeOpts...)
	return eng, nil
}

// Start mints a fresh session in the discovery phase. An empty id gets
// a generated UUID.
func (e *Engine) Start(sessionID string) domain.Session {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return e.runtime.Start(sessionID)
}

// HandleMessage appends the user turn and runs the workflow graph once,
// returning the updated session including the new responder Turn(s).
// The engine holds no state between calls; callers own persistence.
func (e *Engine) HandleMessage(ctx context.Context, s domain.Session, text string) (domain.Session, error) {
	return e.runtime.HandleMessage(ctx, s, text)
}

// Inspect describes the workflow graph nodes for introspection tools.
func (e *Engine) Inspect() []domain.GraphNode {
	return e.runtime.Inspect()
}

// Responders returns the wired responder ids, sorted.
func (e *Engine) Responders() []string {
	ids := make([]string, 0, len(e.responderSet))
	for id := range e.responderSet {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
