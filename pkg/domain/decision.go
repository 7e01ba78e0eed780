package domain

// Dispatch targets that are not responder ids.
const (
	// TargetSynthesize skips the specialist branch and renders a reply from
	// the current state (the finish candidate resolves here).
	TargetSynthesize = "synthesize"

	// TargetEnd terminates the workflow graph for this message.
	TargetEnd = "end"
)

// DispatchDecision is the routing choice produced once per graph cycle:
// which responder (or termination) runs next. Ephemeral; consumed by the
// workflow graph and the synthesis engine, never persisted.
type DispatchDecision struct {
	// Target is a responder id, TargetSynthesize, or TargetEnd.
	Target string `json:"target"`

	// Reason is a human-readable justification naming the candidate's
	// purpose, score, phase and completeness. Audit logging only, never
	// control flow.
	Reason string `json:"reason"`

	// Priority is >= 1; 3 marks urgent or foundational work.
	Priority int `json:"priority"`

	Context DecisionContext `json:"context"`
}

// DecisionContext is the structured bag that rode along with the decision:
// enough to audit the scoring without replaying it.
type DecisionContext struct {
	Phase            Phase              `json:"phase"`
	RecommendedPhase Phase              `json:"recommended_phase,omitempty"`
	Signals          map[string]int     `json:"signals,omitempty"`
	Scores           map[string]float64 `json:"scores,omitempty"`
	TurnIndex        int                `json:"turn_index"`
	Urgency          float64            `json:"urgency"`
	Confidence       float64            `json:"confidence"`
	Completeness     float64            `json:"completeness"`
}

// IsTerminal reports whether the decision ends the graph outright.
func (d DispatchDecision) IsTerminal() bool {
	return d.Target == TargetEnd
}
