package runtime

import (
	"fmt"

	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/signal"
)

// finishCandidate is the synthetic candidate that routes straight to the
// synthesize node instead of a responder.
const finishCandidate = "finish"

const (
	finishOutrightThreshold = 0.4
	repeatScoreCeiling      = 0.8
	alternativeFloor        = 0.3
	urgentPriorityThreshold = 0.7
)

// profile describes how one candidate is scored: which signal categories
// feed it, which phase it belongs to, and which document section it owns.
type profile struct {
	id      string
	purpose string

	weights      map[signal.Category]float64
	naturalPhase domain.Phase
	phaseBonus   float64
	section      string
	sectionBonus float64
}

// profiles returns the candidate table in tie-break order. Scores are a
// linear combination, so the table is the whole scoring policy.
func profiles() []profile {
	return []profile{
		{
			id:      domain.ResponderVision,
			purpose: "clarify purpose and aspiration",
			weights: map[signal.Category]float64{
				signal.CategoryPurpose:     0.40,
				signal.CategoryWhy:         0.35,
				signal.CategoryStakeholder: 0.20,
			},
			naturalPhase: domain.PhaseDiscovery,
			phaseBonus:   0.50,
			section:      domain.SectionPurpose,
			sectionBonus: 0.60,
		},
		{
			id:      domain.ResponderAnalogy,
			purpose: "ground the strategy in comparable cases",
			weights: map[signal.Category]float64{
				signal.CategoryComparison: 0.40,
				signal.CategoryStrategy:   0.25,
			},
			naturalPhase: domain.PhaseReasoning,
			phaseBonus:   0.45,
			section:      domain.SectionCaseStudies,
			sectionBonus: 0.50,
		},
		{
			id:      domain.ResponderLogic,
			purpose: "stress-test the strategy's reasoning",
			weights: map[signal.Category]float64{
				signal.CategoryLogic:    0.40,
				signal.CategoryStrategy: 0.20,
				signal.CategoryQuestion: 0.20,
			},
			naturalPhase: domain.PhaseReasoning,
			phaseBonus:   0.45,
			section:      domain.SectionLogicCheck,
			sectionBonus: 0.55,
		},
		{
			id:      domain.ResponderExecution,
			purpose: "turn the strategy into concrete action",
			weights: map[signal.Category]float64{
				signal.CategoryExecution: 0.40,
				signal.CategoryProcess:   0.30,
			},
			naturalPhase: domain.PhasePlanning,
			phaseBonus:   0.50,
			section:      domain.SectionActionPlan,
			sectionBonus: 0.55,
		},
		{
			id:      domain.ResponderProgress,
			purpose: "rebuild the strategy document",
			weights: map[signal.Category]float64{
				signal.CategoryProcess:    0.20,
				signal.CategoryCompletion: 0.20,
			},
			naturalPhase: domain.PhaseReview,
			phaseBonus:   0.40,
		},
	}
}

func (p profile) score(s domain.Session, sig signal.Result) float64 {
	total := 0.0
	for cat, weight := range p.weights {
		total += weight * float64(sig.Count(cat))
	}
	if p.naturalPhase == s.Phase {
		total += p.phaseBonus
	}
	if p.section != "" && !s.Sections[p.section] {
		total += p.sectionBonus
	}
	if total > 1.0 {
		total = 1.0
	}
	return total
}

// finishScore rewards sessions past 70% completeness and explicit wrap-up
// language. Below 70% the completeness term contributes nothing.
func finishScore(completeness float64, sig signal.Result) float64 {
	total := 0.0
	if completeness > 70 {
		total += (completeness - 70) / 30 * 0.6
	}
	total += 0.30 * float64(sig.Count(signal.CategoryCompletion))
	if total > 1.0 {
		total = 1.0
	}
	return total
}

// decide picks the next target for the session. Pure: same session, signals
// and recommendation always yield the same decision.
func decide(s domain.Session, sig signal.Result, rec *domain.Phase) domain.DispatchDecision {
	completeness := s.Completeness()

	if s.Error != nil {
		return terminalDecision(s, "error state", completeness)
	}
	if s.Retries > maxRetries {
		return terminalDecision(s, "retry limit exceeded", completeness)
	}

	cands := profiles()
	scores := make(map[string]float64, len(cands)+1)
	for _, c := range cands {
		scores[c.id] = c.score(s, sig)
	}
	scores[finishCandidate] = finishScore(completeness, sig)

	selected, selectedScore := top(cands, scores)

	// A clearly winning finish bypasses diversification entirely.
	finished := selected.id == finishCandidate && selectedScore > finishOutrightThreshold

	if !finished && selected.id == s.ActiveAgent && selectedScore < repeatScoreCeiling {
		if alt, altScore, ok := runnerUp(cands, scores, selected.id); ok && altScore > alternativeFloor {
			selected, selectedScore = alt, altScore
		}
	}

	priority := 1
	if (selected.id == domain.ResponderVision && !s.Sections[domain.SectionPurpose]) || sig.Urgency > urgentPriorityThreshold {
		priority = 3
	}
	if selected.id == finishCandidate && completeness < 80 {
		priority = 1
	}

	target := selected.id
	if target == finishCandidate {
		target = domain.TargetSynthesize
	}

	ctx := domain.DecisionContext{
		Phase:        s.Phase,
		Signals:      sig.Summary(),
		Scores:       scores,
		TurnIndex:    s.TurnIndex(),
		Urgency:      sig.Urgency,
		Confidence:   sig.Confidence,
		Completeness: completeness,
	}
	if rec != nil {
		ctx.RecommendedPhase = *rec
	}

	return domain.DispatchDecision{
		Target:   target,
		Reason:   fmt.Sprintf("%s (score %.2f, phase %s, completeness %.0f%%)", selected.purpose, selectedScore, s.Phase, completeness),
		Priority: priority,
		Context:  ctx,
	}
}

// terminalDecision is the short-circuit for error state and exhausted
// retries. Signals are never computed for it.
func terminalDecision(s domain.Session, reason string, completeness float64) domain.DispatchDecision {
	return domain.DispatchDecision{
		Target:   domain.TargetEnd,
		Reason:   reason,
		Priority: 1,
		Context: domain.DecisionContext{
			Phase:        s.Phase,
			TurnIndex:    s.TurnIndex(),
			Completeness: completeness,
		},
	}
}

// top returns the maximum-scoring candidate, ties resolved by table order
// with finish last.
func top(cands []profile, scores map[string]float64) (profile, float64) {
	best := cands[0]
	bestScore := scores[best.id]
	for _, c := range cands[1:] {
		if scores[c.id] > bestScore {
			best = c
			bestScore = scores[c.id]
		}
	}
	if scores[finishCandidate] > bestScore {
		return profile{id: finishCandidate, purpose: "wrap up, the strategy is nearly complete"}, scores[finishCandidate]
	}
	return best, bestScore
}

// runnerUp returns the best non-finish candidate other than excluded.
func runnerUp(cands []profile, scores map[string]float64, exclude string) (profile, float64, bool) {
	var best profile
	bestScore := -1.0
	found := false
	for _, c := range cands {
		if c.id == exclude {
			continue
		}
		if scores[c.id] > bestScore {
			best = c
			bestScore = scores[c.id]
			found = true
		}
	}
	return best, bestScore, found
}
