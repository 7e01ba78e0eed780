package runtime

import (
	"strings"
	"testing"

	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/signal"
)

func extract(turns ...string) signal.Result {
	var history []domain.Turn
	for _, text := range turns {
		history = append(history, domain.Turn{Role: domain.RoleUser, Content: text})
	}
	return signal.NewExtractor(signal.DefaultTable()).Extract(history)
}

func TestDecide_EmptySessionRoutesToVision(t *testing.T) {
	// Scenario: brand-new session in discovery. The extractor's empty-history
	// bias toward purpose must land on the vision responder.
	s := domain.NewSession("s1")
	sig := extract()

	d := decide(s, sig, nil)

	if d.Target != domain.ResponderVision {
		t.Fatalf("expected vision, got %s", d.Target)
	}
	if !strings.Contains(d.Reason, "purpose") {
		t.Errorf("justification should name purpose, got: %s", d.Reason)
	}
	if d.Priority != 3 {
		t.Errorf("foundational discovery work should carry priority 3, got %d", d.Priority)
	}
}

func TestDecide_ComparisonLanguageRoutesToAnalogy(t *testing.T) {
	// Scenario: reasoning phase, discovery section done, user asks for
	// comparable companies. Vision must not win again.
	s := domain.NewSession("s1")
	s.Phase = domain.PhaseReasoning
	s.SetSection(domain.SectionPurpose, true)
	sig := extract("I want an approach like other successful companies")

	d := decide(s, sig, nil)

	if d.Target != domain.ResponderAnalogy {
		t.Fatalf("expected analogy, got %s (scores %v)", d.Target, d.Context.Scores)
	}
}

func TestDecide_ErrorStateEndsRouting(t *testing.T) {
	s := domain.NewSession("s1")
	s.RecordError(domain.ErrorResponderFailure, "respond", "boom")

	d := decide(s, extract("launch the plan"), nil)

	if d.Target != domain.TargetEnd {
		t.Fatalf("expected end, got %s", d.Target)
	}
	if d.Reason != "error state" {
		t.Errorf("unexpected reason: %s", d.Reason)
	}
}

func TestDecide_RetryLimitEndsRoutingRegardlessOfSignals(t *testing.T) {
	s := domain.NewSession("s1")
	s.Retries = 6

	d := decide(s, extract("urgent, we must launch and execute the strategy today"), nil)

	if d.Target != domain.TargetEnd {
		t.Fatalf("expected end, got %s", d.Target)
	}
	if d.Reason != "retry limit exceeded" {
		t.Errorf("unexpected reason: %s", d.Reason)
	}
}

func TestDecide_AntiRepetitionPrefersRunnerUp(t *testing.T) {
	// Vision ran last turn and scores only its phase bonus now. The
	// second-best candidate clears the floor, so diversification kicks in.
	s := domain.NewSession("s1")
	s.ActiveAgent = domain.ResponderVision
	s.SetSection(domain.SectionPurpose, true)
	s.SetSection(domain.SectionLogicCheck, true)
	s.SetSection(domain.SectionActionPlan, true)

	d := decide(s, signal.Result{}, nil)

	if d.Target == domain.ResponderVision {
		t.Fatalf("vision repeated despite low score (scores %v)", d.Context.Scores)
	}
	if d.Target != domain.ResponderAnalogy {
		t.Errorf("expected analogy as runner-up, got %s", d.Target)
	}
}

func TestDecide_AntiRepetitionKeepsTopWithoutAlternative(t *testing.T) {
	// Every alternative scores at or below the floor, so the repeat stands.
	s := domain.NewSession("s1")
	s.ActiveAgent = domain.ResponderVision
	s.SetSection(domain.SectionPurpose, true)
	s.SetSection(domain.SectionCaseStudies, true)
	s.SetSection(domain.SectionLogicCheck, true)
	s.SetSection(domain.SectionActionPlan, true)

	d := decide(s, signal.Result{}, nil)

	if d.Target != domain.ResponderVision {
		t.Fatalf("expected vision to repeat, got %s (scores %v)", d.Target, d.Context.Scores)
	}
}

func TestDecide_StrongRepeatIsAllowed(t *testing.T) {
	// A repeat above the ceiling needs no diversification.
	s := domain.NewSession("s1")
	s.ActiveAgent = domain.ResponderVision

	d := decide(s, extract("our purpose and mission give the direction"), nil)

	if d.Target != domain.ResponderVision {
		t.Fatalf("expected vision, got %s (scores %v)", d.Target, d.Context.Scores)
	}
}

func TestDecide_FinishWinsPastThreshold(t *testing.T) {
	// Seven of eight sections done plus wrap-up language: the finish
	// candidate clears 0.4 and routes to synthesize.
	s := domain.NewSession("s1")
	for _, key := range domain.BaselineSections() {
		s.SetSection(key, true)
	}
	s.SetSection(domain.SectionActionPlan, false)
	s.Phase = domain.PhaseReview

	sig := signal.Result{Matches: map[signal.Category][]string{
		signal.CategoryCompletion: {"wrap up"},
	}}
	d := decide(s, sig, nil)

	if d.Target != domain.TargetSynthesize {
		t.Fatalf("expected synthesize, got %s (scores %v)", d.Target, d.Context.Scores)
	}
	if d.Priority != 1 {
		t.Errorf("finish above 80%% completeness without urgency should stay priority 1, got %d", d.Priority)
	}
}

func TestDecide_FinishPriorityCappedBelowEightyPercent(t *testing.T) {
	// Urgent wrap-up language on a half-done brief: finish may win, but it
	// never carries priority 3 until the brief is nearly complete.
	s := domain.NewSession("s1")
	for _, key := range []string{domain.SectionPurpose, domain.SectionWhereToPlay, domain.SectionHowToWin, domain.SectionCapability} {
		s.SetSection(key, true)
	}
	s.Phase = domain.PhaseComplete

	sig := signal.Result{
		Matches: map[signal.Category][]string{
			signal.CategoryCompletion: {"done", "wrap up"},
		},
		Urgency: 0.9,
	}
	d := decide(s, sig, nil)

	if d.Target != domain.TargetSynthesize {
		t.Fatalf("expected synthesize, got %s (scores %v)", d.Target, d.Context.Scores)
	}
	if d.Priority != 1 {
		t.Errorf("expected priority forced to 1, got %d", d.Priority)
	}
}

func TestDecide_UrgencyRaisesPriority(t *testing.T) {
	s := domain.NewSession("s1")
	s.Phase = domain.PhasePlanning
	s.SetSection(domain.SectionPurpose, true)

	sig := signal.Result{
		Matches: map[signal.Category][]string{
			signal.CategoryExecution: {"launch"},
		},
		Urgency: 0.9,
	}
	d := decide(s, sig, nil)

	if d.Target != domain.ResponderExecution {
		t.Fatalf("expected execution, got %s", d.Target)
	}
	if d.Priority != 3 {
		t.Errorf("expected priority 3 on urgency, got %d", d.Priority)
	}
}

func TestDecide_ScoresAreCappedAtOne(t *testing.T) {
	s := domain.NewSession("s1")
	sig := extract("our purpose and mission and north star and direction and big picture")

	d := decide(s, sig, nil)

	for id, score := range d.Context.Scores {
		if score < 0 || score > 1 {
			t.Errorf("score for %s out of range: %f", id, score)
		}
	}
}

func TestDecide_ContextCarriesAudit(t *testing.T) {
	s := domain.NewSession("s1")
	s.AppendTurn(domain.RoleUser, "why does our strategy matter?", "")
	rec := domain.PhaseReasoning

	d := decide(s, extract("why does our strategy matter?"), &rec)

	if d.Context.Phase != domain.PhaseDiscovery {
		t.Errorf("context phase = %s", d.Context.Phase)
	}
	if d.Context.RecommendedPhase != domain.PhaseReasoning {
		t.Errorf("recommended phase not carried: %s", d.Context.RecommendedPhase)
	}
	if d.Context.TurnIndex != 1 {
		t.Errorf("turn index = %d", d.Context.TurnIndex)
	}
	if len(d.Context.Scores) != 6 {
		t.Errorf("expected 6 scored candidates, got %d", len(d.Context.Scores))
	}
	if d.Context.Completeness != 0 {
		t.Errorf("completeness = %f", d.Context.Completeness)
	}
}
