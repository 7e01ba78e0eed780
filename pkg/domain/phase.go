package domain

import "fmt"

// Phase is the coarse-grained stage of a coaching conversation.
// Sessions move forward only; regression is never proposed automatically.
type Phase string

const (
	PhaseDiscovery Phase = "discovery"
	PhaseReasoning Phase = "reasoning"
	PhasePlanning  Phase = "planning"
	PhaseReview    Phase = "review"
	PhaseComplete  Phase = "complete"
)

// Phases lists all phases in conversation order.
func Phases() []Phase {
	return []Phase{PhaseDiscovery, PhaseReasoning, PhasePlanning, PhaseReview, PhaseComplete}
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	switch p {
	case PhaseDiscovery, PhaseReasoning, PhasePlanning, PhaseReview, PhaseComplete:
		return true
	}
	return false
}

// Next returns the phase that follows p. Complete is a sink.
func (p Phase) Next() Phase {
	switch p {
	case PhaseDiscovery:
		return PhaseReasoning
	case PhaseReasoning:
		return PhasePlanning
	case PhasePlanning:
		return PhaseReview
	case PhaseReview:
		return PhaseComplete
	}
	return PhaseComplete
}

// ParsePhase converts a string into a Phase, or fails with ErrInvalidPhase.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhase, s)
	}
	return p, nil
}
