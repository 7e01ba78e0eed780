package runner

import (
	"io"
	"log/slog"

	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/ports"
	"github.com/cairnlabs/cairn/pkg/session"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithEngine configures the coaching engine. Required.
func WithEngine(engine ports.Orchestrator) Option {
	return func(r *Runner) {
		r.engine = engine
	}
}

// WithManager configures the session manager for persistence.
func WithManager(m *session.Manager) Option {
	return func(r *Runner) {
		r.Manager = m
	}
}

// WithSessionID sets the session to resume or create.
// This is required if WithManager is used.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithRenderer configures the content renderer (e.g. TUI, Markdown).
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) {
		r.Renderer = renderer
	}
}

// WithIO sets the reader and writer backing the default TextHandler.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *Runner) {
		if in != nil {
			r.Input = in
		}
		if out != nil {
			r.Output = out
		}
	}
}

// WithInitialSession starts the loop from an in-memory session instead
// of loading one. Used by tests and embedding hosts.
func WithInitialSession(s *domain.Session) Option {
	return func(r *Runner) {
		r.initial = s
	}
}
