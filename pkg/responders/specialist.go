package responders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/cairnlabs/cairn/internal/logging"
	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/ports"
)

// promptTurnWindow bounds how much history a specialist prompt carries.
const promptTurnWindow = 6

const specialistFallback = "I could not work through that properly. Tell me again, in a sentence or two, what you are trying to decide."

// config holds cross-responder construction options.
type config struct {
	logger *slog.Logger
}

// Option configures a responder.
type Option func(*config)

// WithLogger sets the responder's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newConfig(opts []Option) config {
	c := config{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Specialist is one coaching perspective bound to its sections of the
// brief. All four built-ins share this machinery and differ only in
// persona and section ownership.
type Specialist struct {
	id        string
	primary   string
	secondary string
	system    string
	builtin   func(s domain.Session, latest string) string
	model     ports.ChatModel
	logger    *slog.Logger
}

var _ ports.Responder = (*Specialist)(nil)

type specialistSpec struct {
	id        string
	primary   string
	secondary string
	system    string
	builtin   func(s domain.Session, latest string) string
}

func newSpecialist(spec specialistSpec, model ports.ChatModel, opts ...Option) *Specialist {
	c := newConfig(opts)
	return &Specialist{
		id:        spec.id,
		primary:   spec.primary,
		secondary: spec.secondary,
		system:    spec.system,
		builtin:   spec.builtin,
		model:     model,
		logger:    c.logger,
	}
}

// ID returns the responder id used by dispatch.
func (r *Specialist) ID() string {
	return r.id
}

// Process runs the specialist against the session. Model failures stay
// inside: the session comes back with a fallback turn and an error record,
// never an error value.
func (r *Specialist) Process(ctx context.Context, s domain.Session, latest string) (domain.Session, error) {
	s.ActiveAgent = r.id

	output, err := r.generate(ctx, s, latest)
	if err != nil {
		r.logger.Error("specialist generation failed", "responder", r.id, "session_id", s.ID, "err", err)
		s.AppendTurn(domain.RoleResponder, specialistFallback, r.id)
		s.RecordError(domain.ErrorResponderFailure, domain.NodeRespond, fmt.Sprintf("%s: %v", r.id, err))
		return s, nil
	}

	s.AppendTurn(domain.RoleResponder, output, r.id)
	s.LastOutput = output
	s.Stage = r.id + "_completed"
	r.advanceSections(&s)
	return s, nil
}

func (r *Specialist) generate(ctx context.Context, s domain.Session, latest string) (string, error) {
	if r.model == nil {
		return r.builtin(s, latest), nil
	}

	out, err := r.model.CompleteWithSystem(ctx, r.system, r.prompt(s, latest))
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("model returned empty output")
	}
	return out, nil
}

// advanceSections flips the primary section on the first pass and the
// secondary on a later one, and leaves a gap note for whatever in this
// specialist's lane is still open.
func (r *Specialist) advanceSections(s *domain.Session) {
	switch {
	case !s.Sections[r.primary]:
		s.SetSection(r.primary, true)
	case r.secondary != "" && !s.Sections[r.secondary]:
		s.SetSection(r.secondary, true)
	}

	if r.secondary != "" && !s.Sections[r.secondary] {
		s.AddGap(r.secondary, fmt.Sprintf("%s still open after a %s pass", domain.SectionTitle(r.secondary), r.id))
	}
}

// prompt assembles the deterministic model prompt: session facts first,
// then the recent conversation, then the message being answered.
func (r *Specialist) prompt(s domain.Session, latest string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Phase: %s\n", s.Phase)
	fmt.Fprintf(&b, "Brief completeness: %.0f%%\n", s.Completeness())
	if open := s.IncompleteSections(); len(open) > 0 {
		fmt.Fprintf(&b, "Open sections: %s\n", strings.Join(open, ", "))
	}

	if len(s.Context) > 0 {
		keys := make([]string, 0, len(s.Context))
		for k := range s.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("Background:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %v\n", k, s.Context[k])
		}
	}

	turns := s.Turns
	if len(turns) > promptTurnWindow {
		turns = turns[len(turns)-promptTurnWindow:]
	}
	if len(turns) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, t := range turns {
			who := string(t.Role)
			if t.Agent != "" {
				who = t.Agent
			}
			fmt.Fprintf(&b, "  %s: %s\n", who, t.Content)
		}
	}

	fmt.Fprintf(&b, "Respond to: %s\n", latest)
	return b.String()
}

// clip shortens user text for embedding into built-in phrasing.
func clip(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	cut := strings.LastIndex(text[:max], " ")
	if cut <= 0 {
		cut = max
	}
	return text[:cut] + "..."
}
