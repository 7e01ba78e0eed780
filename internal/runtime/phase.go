package runtime

import (
	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/signal"
)

// recommendPhase evaluates the forward transition rules against the
// session's section flags and the signals of the current window. It
// returns nil when no rule fires. Transitions only ever move forward;
// rewinding a session is an explicit caller action via ForcePhase.
func recommendPhase(s domain.Session, sig signal.Result) *domain.Phase {
	switch s.Phase {
	case domain.PhaseDiscovery:
		if s.Sections[domain.SectionPurpose] && sig.Has(signal.CategoryStrategy) {
			p := domain.PhaseReasoning
			return &p
		}
	case domain.PhaseReasoning:
		if s.Sections[domain.SectionCaseStudies] && s.Sections[domain.SectionLogicCheck] && sig.Has(signal.CategoryExecution) {
			p := domain.PhasePlanning
			return &p
		}
	}
	return nil
}
