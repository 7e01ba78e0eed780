package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/ports"
	"github.com/cairnlabs/cairn/pkg/session"
)

// Runner drives the coaching loop: read a message, run the engine,
// persist, print the responder turns. It uses an IOHandler strategy to
// abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler on
	// Input/Output is created on first use.
	Handler IOHandler

	// Logger is used for internal debug logging. If nil, a no-op
	// logger is used.
	Logger *slog.Logger

	// Manager persists the session between turns. If nil, the
	// conversation is ephemeral.
	Manager *session.Manager

	// SessionID names the session to resume or create. Required when
	// Manager is set.
	SessionID string

	// Input and Output back the default TextHandler. They default to
	// Stdin/Stdout.
	Input  io.Reader
	Output io.Writer

	// Renderer is passed to the default TextHandler.
	Renderer ContentRenderer

	engine  ports.Orchestrator
	initial *domain.Session
}

// NewRunner creates a Runner with default Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the coaching loop until the brief is complete, the input
// stream ends, or the context is cancelled. Cancellation is a clean
// exit: the session is saved and nil is returned.
func (r *Runner) Run(ctx context.Context) error {
	if r.engine == nil {
		return errors.New("runner requires an engine")
	}

	handler := r.resolveHandler()

	s, err := r.resolveSession(ctx)
	if err != nil {
		return err
	}

	switch {
	case len(s.Turns) > 0:
		handler.SystemOutput(ctx, fmt.Sprintf("Resuming session %s: phase %s, %d turns so far.", s.ID, s.Phase, len(s.Turns)))
	case s.ID != "":
		handler.SystemOutput(ctx, fmt.Sprintf("Session %s started. Describe the strategic challenge you want to work through.", s.ID))
	default:
		handler.SystemOutput(ctx, "New coaching session. Describe the strategic challenge you want to work through.")
	}

	for {
		if s.Phase == domain.PhaseComplete {
			handler.SystemOutput(ctx, "Strategy brief complete. Well done.")
			return nil
		}

		text, err := handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				handler.SystemOutput(context.Background(), r.goodbye(s))
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			handler.SystemOutput(ctx, r.goodbye(s))
			return nil
		}

		mark := len(s.Turns)
		s, err = r.engine.HandleMessage(ctx, s, text)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				r.saveSession(context.Background(), s)
				return nil
			}
			return fmt.Errorf("engine error: %w", err)
		}

		if err := r.saveSession(ctx, s); err != nil {
			return fmt.Errorf("critical persistence error: %w", err)
		}

		if s.Error != nil {
			r.Logger.Debug("turn finished with error record",
				"session_id", s.ID,
				"kind", s.Error.Kind,
				"node", s.Error.Node)
		}

		if err := handler.Output(ctx, s.Turns[mark:]); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
}

// resolveHandler ensures a valid IOHandler is set. The handler is
// memoized so repeated Run calls reuse one input pump.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	th := NewTextHandler(r.Input, r.Output)
	th.Renderer = r.Renderer
	r.Handler = th
	return th
}

func (r *Runner) resolveSession(ctx context.Context) (domain.Session, error) {
	if r.initial != nil {
		return *r.initial, nil
	}
	if r.Manager != nil && r.SessionID != "" {
		s, err := r.Manager.LoadOrStart(ctx, r.SessionID)
		if err != nil {
			return domain.Session{}, fmt.Errorf("failed to open session %q: %w", r.SessionID, err)
		}
		return *s, nil
	}
	return r.engine.Start(r.SessionID), nil
}

func (r *Runner) saveSession(ctx context.Context, s domain.Session) error {
	if r.Manager == nil || s.ID == "" {
		return nil
	}
	if err := r.Manager.Save(ctx, s.ID, &s); err != nil {
		return err
	}
	r.Logger.Debug("session saved", "session_id", s.ID, "phase", s.Phase)
	return nil
}

func (r *Runner) goodbye(s domain.Session) string {
	if r.Manager != nil && s.ID != "" {
		return fmt.Sprintf("Session saved. Resume anytime with --session %s.", s.ID)
	}
	return "Goodbye."
}
