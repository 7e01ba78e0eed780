package domain

import (
	"sort"
	"time"
)

// Role identifies the author of a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleResponder Role = "responder"
)

// Turn is one message in a session's history. Immutable once appended:
// turns are never mutated or removed, only appended in order.
type Turn struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	Agent   string    `json:"agent,omitempty"` // responder id, empty for user turns
	At      time.Time `json:"at"`
}

// Gap is a free-text note about a document section that still needs work.
type Gap struct {
	Section    string    `json:"section"`
	Note       string    `json:"note"`
	DetectedAt time.Time `json:"detected_at"`
}

// Session represents the current snapshot of one coaching conversation.
// It is owned exclusively by the engine for the duration of one turn and
// persisted to the external store between turns.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Turns is the ordered, append-only conversation history.
	Turns []Turn `json:"turns"`

	// Phase is the coarse stage of the conversation.
	Phase Phase `json:"phase"`

	// ActiveAgent names the last responder that ran, empty for none.
	ActiveAgent string `json:"active_agent,omitempty"`

	// LastOutput holds the last raw responder output before synthesis.
	LastOutput string `json:"last_output,omitempty"`

	// Sections is the Completeness Map: named document sections to done
	// flags. Seeded with the baseline keys; unknown keys are created on
	// first write and count toward the percentage like any other.
	Sections map[string]bool `json:"sections"`

	// Gaps holds ordered free-text notes about open sections.
	Gaps []Gap `json:"gaps,omitempty"`

	// Context carries arbitrary user-supplied key/value pairs (industry,
	// company size, preferences). The engine reads it for prompts only.
	Context map[string]any `json:"context,omitempty"`

	// Stage is the processing-stage label, e.g. "vision_completed".
	Stage string `json:"stage,omitempty"`

	// Error is the typed error record; nil while healthy.
	Error *ErrorRecord `json:"error,omitempty"`

	// Retries counts graph loop-backs and recovered errors for the current
	// inbound message. Reset when a new user message arrives; routing
	// terminates once it exceeds 5.
	Retries int `json:"retries"`

	// Decision is the routing decision of the current cycle. Ephemeral:
	// refreshed by every dispatch run and never persisted.
	Decision *DispatchDecision `json:"-"`
}

// NewSession creates a clean session in the discovery phase with the
// baseline sections all open.
func NewSession(id string) Session {
	now := time.Now().UTC()
	sections := make(map[string]bool, 8)
	for _, key := range BaselineSections() {
		sections[key] = false
	}
	return Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		Phase:     PhaseDiscovery,
		Sections:  sections,
		Context:   make(map[string]any),
	}
}

// Clone returns a deep copy of the session. Maps and slices are copied so
// the clone can be mutated without the original observing any write.
func (s Session) Clone() Session {
	out := s

	out.Turns = make([]Turn, len(s.Turns))
	copy(out.Turns, s.Turns)

	out.Sections = make(map[string]bool, len(s.Sections))
	for k, v := range s.Sections {
		out.Sections[k] = v
	}

	out.Context = make(map[string]any, len(s.Context))
	for k, v := range s.Context {
		out.Context[k] = v
	}

	out.Gaps = make([]Gap, len(s.Gaps))
	copy(out.Gaps, s.Gaps)

	if s.Error != nil {
		errCopy := *s.Error
		out.Error = &errCopy
	}
	if s.Decision != nil {
		decCopy := *s.Decision
		out.Decision = &decCopy
	}
	return out
}

// AppendTurn appends one message to the history and bumps UpdatedAt.
func (s *Session) AppendTurn(role Role, content, agent string) {
	s.Turns = append(s.Turns, Turn{
		Role:    role,
		Content: content,
		Agent:   agent,
		At:      time.Now().UTC(),
	})
	s.UpdatedAt = time.Now().UTC()
}

// SetSection flips one Completeness Map key and bumps UpdatedAt. Unknown
// keys are created on first write; there is no closed schema.
func (s *Session) SetSection(key string, done bool) {
	if s.Sections == nil {
		s.Sections = make(map[string]bool)
	}
	s.Sections[key] = done
	s.UpdatedAt = time.Now().UTC()
}

// Completeness returns the overall progress percentage:
// 100 x (count of true values) / (count of all keys), recomputed on demand
// and never cached. An empty map counts as zero progress.
func (s Session) Completeness() float64 {
	if len(s.Sections) == 0 {
		return 0
	}
	done := 0
	for _, v := range s.Sections {
		if v {
			done++
		}
	}
	return 100 * float64(done) / float64(len(s.Sections))
}

// IncompleteSections returns the open section keys: baseline keys first in
// document order, then any ad hoc keys sorted, so output is deterministic.
func (s Session) IncompleteSections() []string {
	var out []string
	seen := make(map[string]bool, len(s.Sections))
	for _, key := range BaselineSections() {
		if done, ok := s.Sections[key]; ok {
			seen[key] = true
			if !done {
				out = append(out, key)
			}
		}
	}
	var extra []string
	for key, done := range s.Sections {
		if !seen[key] && !done {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// ForcePhase moves the session into the given phase and clears the active
// responder so the next dispatch starts fresh.
func (s *Session) ForcePhase(p Phase) {
	s.Phase = p
	s.ActiveAgent = ""
	s.UpdatedAt = time.Now().UTC()
}

// RecordError attaches a typed error record. Attach, don't throw: callers
// keep returning the session and routing converts the record into an end.
func (s *Session) RecordError(kind ErrorKind, node, message string) {
	s.Error = &ErrorRecord{
		Kind:    kind,
		Message: message,
		Node:    node,
		At:      time.Now().UTC(),
	}
	s.UpdatedAt = time.Now().UTC()
}

// AddGap appends a free-text gap note for a section.
func (s *Session) AddGap(section, note string) {
	s.Gaps = append(s.Gaps, Gap{
		Section:    section,
		Note:       note,
		DetectedAt: time.Now().UTC(),
	})
}

// TurnIndex returns the number of user turns so far. The synthesis rules
// treat low indexes as "early conversation".
func (s Session) TurnIndex() int {
	n := 0
	for _, t := range s.Turns {
		if t.Role == RoleUser {
			n++
		}
	}
	return n
}

// LastUserTurns returns up to n most recent user turns, oldest first.
func (s Session) LastUserTurns(n int) []Turn {
	if n <= 0 {
		return nil
	}
	var users []Turn
	for _, t := range s.Turns {
		if t.Role == RoleUser {
			users = append(users, t)
		}
	}
	if len(users) > n {
		users = users[len(users)-n:]
	}
	return users
}

// LastUserText returns the content of the most recent user turn, or "".
func (s Session) LastUserText() string {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == RoleUser {
			return s.Turns[i].Content
		}
	}
	return ""
}
