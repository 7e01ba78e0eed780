// Package synthesis renders the user-facing coach reply from the session
// state and the cycle's dispatch decision. Rendering is deterministic:
// the same context always produces the same reply.
package synthesis

import (
	"strings"

	"github.com/cairnlabs/cairn/pkg/domain"
)

// Kind is the reply classification. Classification is a fixed decision
// list, first match wins.
type Kind string

const (
	KindCompletion Kind = "completion"
	KindSummary    Kind = "summary"
	KindQuestion   Kind = "question"
	KindInsight    Kind = "insight"
	KindGuidance   Kind = "guidance"
)

// wordCap is the body length ceiling in words. Appends (question, progress
// note) are allowed on top and never exceed one sentence or line each.
const wordCap = 200

// Context is the per-reply bag derived from Session + DispatchDecision.
type Context struct {
	Responder    string
	RawOutput    string
	Completeness float64
	// Prev is the completeness at dispatch time, before the specialist ran.
	// The milestone note fires when the two straddle a boundary.
	Prev             float64
	Phase            domain.Phase
	TurnIndex        int
	Intent           string
	Incomplete       []string
	NextFocus        string
	Clarification    bool
	CompletionSignal bool
}

// Engine renders replies. Stateless, safe for concurrent use.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// Synthesize builds the reply: classified body, optional follow-up
// question, optional milestone progress note.
func (e *Engine) Synthesize(s domain.Session, d domain.DispatchDecision) string {
	c := buildContext(s, d)
	kind := classify(c)

	var b strings.Builder
	b.WriteString(enforceWordCap(renderBody(kind, c), wordCap))

	if q, ok := followUp(kind, c); ok {
		b.WriteString("\n\n")
		b.WriteString(q)
	}
	if note, ok := progressNote(c); ok {
		b.WriteString("\n\n")
		b.WriteString(note)
	}
	return b.String()
}

func buildContext(s domain.Session, d domain.DispatchDecision) Context {
	incomplete := s.IncompleteSections()
	next := ""
	if len(incomplete) > 0 {
		next = incomplete[0]
	}
	return Context{
		Responder:        s.ActiveAgent,
		RawOutput:        strings.TrimSpace(s.LastOutput),
		Completeness:     s.Completeness(),
		Prev:             d.Context.Completeness,
		Phase:            s.Phase,
		TurnIndex:        d.Context.TurnIndex,
		Intent:           intentPhrase(d.Context.Signals),
		Incomplete:       incomplete,
		NextFocus:        next,
		Clarification:    d.Context.Signals["clarification"] > 0,
		CompletionSignal: d.Context.Signals["completion"] > 0,
	}
}

// classify picks the reply kind. Order matters: the list is evaluated top
// to bottom and the first rule that fires wins.
func classify(c Context) Kind {
	switch {
	case c.Completeness >= 90:
		return KindCompletion
	case c.Completeness >= 70 || c.CompletionSignal:
		return KindSummary
	case c.TurnIndex < 3 || c.Clarification || len(c.Incomplete) > 3:
		return KindQuestion
	case len(c.RawOutput) > 20 && insightBearing(c.Responder):
		return KindInsight
	}
	return KindGuidance
}

// insightBearing reports whether the responder's output is worth quoting
// back as an insight. The discovery and progress responders are excluded:
// their output is either a question or a document rebuild.
func insightBearing(id string) bool {
	switch id {
	case domain.ResponderAnalogy, domain.ResponderLogic, domain.ResponderExecution:
		return true
	}
	return false
}

// followUp returns the phase-appropriate question, filtered for leading
// phrasing and false dichotomies. A reply gets a question only early in
// the conversation, on a clarification request, or for the question and
// guidance kinds, and never once the brief is nearly done.
func followUp(kind Kind, c Context) (string, bool) {
	if kind == KindCompletion || c.Completeness >= 80 {
		return "", false
	}
	if c.TurnIndex >= 2 && !c.Clarification && kind != KindQuestion && kind != KindGuidance {
		return "", false
	}

	list := phaseQuestions[c.Phase]
	if len(list) == 0 {
		return "", false
	}
	return filterQuestion(list[c.TurnIndex%len(list)]), true
}
