package synthesis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_FirstMatchWins(t *testing.T) {
	tests := []struct {
		name string
		c    Context
		want Kind
	}{
		{"completion at ninety", Context{Completeness: 90}, KindCompletion},
		{"summary at seventy", Context{Completeness: 70, TurnIndex: 5}, KindSummary},
		{"summary on completion signal", Context{Completeness: 10, CompletionSignal: true, TurnIndex: 5}, KindSummary},
		{"question early in conversation", Context{Completeness: 40, TurnIndex: 2}, KindQuestion},
		{"question on clarification", Context{Completeness: 40, TurnIndex: 8, Clarification: true}, KindQuestion},
		{"question on many open sections", Context{Completeness: 40, TurnIndex: 8, Incomplete: []string{"a", "b", "c", "d"}}, KindQuestion},
		{"insight from analogy output", Context{Completeness: 40, TurnIndex: 8, Responder: domain.ResponderAnalogy, RawOutput: "a comparable company did exactly this"}, KindInsight},
		{"insight needs substance", Context{Completeness: 40, TurnIndex: 8, Responder: domain.ResponderLogic, RawOutput: "too short"}, KindGuidance},
		{"vision output is not insight", Context{Completeness: 40, TurnIndex: 8, Responder: domain.ResponderVision, RawOutput: "a long enough output that is still not insight"}, KindGuidance},
		{"guidance as the default", Context{Completeness: 40, TurnIndex: 8}, KindGuidance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.c))
		})
	}
}

func TestEnforceWordCap_UnderCapUnchanged(t *testing.T) {
	text := "Two short sentences. Nothing to trim here."
	assert.Equal(t, text, enforceWordCap(text, 200))
}

func TestEnforceWordCap_CutsAtSentenceBoundary(t *testing.T) {
	// Twenty sentences of thirteen words each: 260 words. The last full
	// sentence inside the 200-word window ends at word 195.
	sentence := "one two three four five six seven eight nine ten eleven twelve thirteen."
	var parts []string
	for i := 0; i < 20; i++ {
		parts = append(parts, sentence)
	}
	text := strings.Join(parts, " ")

	out := enforceWordCap(text, 200)

	words := strings.Fields(out)
	require.LessOrEqual(t, len(words), 200)
	assert.Len(t, words, 195)
	assert.True(t, strings.HasSuffix(out, "."), "must end on a sentence boundary")
	assert.False(t, strings.HasSuffix(out, "..."), "no hard cut when a boundary exists")
}

func TestEnforceWordCap_HardCutWithoutBoundary(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 250))

	out := enforceWordCap(text, 200)

	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Len(t, strings.Fields(out), 200)
}

func TestEnforceWordCap_BoundaryInsideQuotes(t *testing.T) {
	lead := strings.TrimSpace(strings.Repeat("word ", 150))
	text := lead + ` ending with "a quote." ` + strings.TrimSpace(strings.Repeat("tail ", 100))

	out := enforceWordCap(text, 200)

	assert.True(t, strings.HasSuffix(out, `"a quote."`))
}

func TestFilterQuestion_BiasedOpenerRewritten(t *testing.T) {
	for _, q := range []string{
		"Don't you think growth matters most?",
		"Surely the board will approve this?",
		"Obviously you need more funding, right?",
	} {
		assert.Equal(t, genericQuestion, filterQuestion(q), q)
	}
}

func TestFilterQuestion_DichotomyRewritten(t *testing.T) {
	got := filterQuestion("Should we expand into Europe or focus on the home market?")
	assert.Equal(t, "What factors influence expand into Europe?", got)
}

func TestFilterQuestion_OpenQuestionUntouched(t *testing.T) {
	q := "What would success look like three years from now?"
	assert.Equal(t, q, filterQuestion(q))
}

func TestFilterQuestion_OrOutsideQuestionUntouched(t *testing.T) {
	q := "Walk me through the trade-offs, growth or margin included."
	assert.Equal(t, q, filterQuestion(q))
}

func TestFollowUp_Rules(t *testing.T) {
	base := Context{Phase: domain.PhaseDiscovery, Completeness: 40, TurnIndex: 5}

	t.Run("never for completion", func(t *testing.T) {
		c := base
		c.Completeness = 95
		_, ok := followUp(KindCompletion, c)
		assert.False(t, ok)
	})

	t.Run("suppressed near done", func(t *testing.T) {
		c := base
		c.Completeness = 80
		_, ok := followUp(KindGuidance, c)
		assert.False(t, ok)
	})

	t.Run("early turns always ask", func(t *testing.T) {
		c := base
		c.TurnIndex = 1
		q, ok := followUp(KindInsight, c)
		require.True(t, ok)
		assert.True(t, strings.HasSuffix(q, "?"))
	})

	t.Run("clarification always asks", func(t *testing.T) {
		c := base
		c.Clarification = true
		_, ok := followUp(KindSummary, c)
		assert.True(t, ok)
	})

	t.Run("question and guidance kinds ask", func(t *testing.T) {
		for _, kind := range []Kind{KindQuestion, KindGuidance} {
			_, ok := followUp(kind, base)
			assert.True(t, ok, string(kind))
		}
	})

	t.Run("late insight stays silent", func(t *testing.T) {
		_, ok := followUp(KindInsight, base)
		assert.False(t, ok)
	})
}

func TestProgressNote_MilestoneCrossing(t *testing.T) {
	tests := []struct {
		name string
		prev float64
		now  float64
		want string
	}{
		{"crosses 25", 20, 30, "25%"},
		{"lands exactly on 25", 24, 25, "25%"},
		{"highest milestone wins", 40, 95, "90%"},
		{"no movement", 30, 30, ""},
		{"already past", 26, 40, ""},
		{"backwards never fires", 60, 40, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note, ok := progressNote(Context{Prev: tt.prev, Completeness: tt.now})
			if tt.want == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Contains(t, note, tt.want)
			assert.NotContains(t, note, "\n", "note must stay on one line")
		})
	}
}

func TestIntentPhrase(t *testing.T) {
	assert.Equal(t, "your strategy", intentPhrase(nil))
	assert.Equal(t, "comparable cases", intentPhrase(map[string]int{"comparison": 3, "why": 1}))
	// Ties resolve in category table order.
	assert.Equal(t, "purpose and direction", intentPhrase(map[string]int{"purpose": 2, "logic": 2}))
}

func TestRenderBody_FocusFallback(t *testing.T) {
	body := renderBody(KindGuidance, Context{Phase: domain.PhaseDiscovery})
	assert.Contains(t, body, "the open sections")
	assert.NotContains(t, body, "{")
}

func TestRenderBody_AllTemplatesResolve(t *testing.T) {
	c := Context{
		Responder:  domain.ResponderLogic,
		RawOutput:  "the assumptions hold together",
		Intent:     "the reasoning",
		NextFocus:  domain.SectionLogicCheck,
		Incomplete: []string{domain.SectionLogicCheck},
	}
	for kind, byPhase := range bodyTemplates {
		for phase := range byPhase {
			c.Phase = phase
			body := renderBody(kind, c)
			assert.NotEmpty(t, body, "%s/%s", kind, phase)
			assert.NotContains(t, body, "{", "%s/%s left a placeholder", kind, phase)
			assert.NotContains(t, body, "}", "%s/%s left a placeholder", kind, phase)
		}
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	e := New()
	s := domain.NewSession("s1")
	s.AppendTurn(domain.RoleUser, "where do we start?", "")
	d := domain.DispatchDecision{
		Target:  domain.ResponderVision,
		Context: domain.DecisionContext{TurnIndex: 1, Completeness: 0},
	}

	first := e.Synthesize(s, d)
	second := e.Synthesize(s, d)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestSynthesize_EarlyTurnAsksQuestion(t *testing.T) {
	e := New()
	s := domain.NewSession("s1")
	s.AppendTurn(domain.RoleUser, "where do we start?", "")
	d := domain.DispatchDecision{
		Target:  domain.ResponderVision,
		Context: domain.DecisionContext{TurnIndex: 1, Completeness: 0},
	}

	reply := e.Synthesize(s, d)

	assert.Contains(t, reply, "?")
	lines := strings.Split(reply, "\n\n")
	require.GreaterOrEqual(t, len(lines), 2, "question should be its own paragraph")
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], "?"))
}

func TestSynthesize_CompletionNeverAsks(t *testing.T) {
	e := New()
	s := domain.NewSession("s1")
	s.AppendTurn(domain.RoleUser, "we are done", "")
	for _, key := range domain.BaselineSections() {
		s.SetSection(key, true)
	}
	s.Phase = domain.PhaseComplete
	d := domain.DispatchDecision{
		Target:  domain.TargetSynthesize,
		Context: domain.DecisionContext{TurnIndex: 1, Completeness: 100},
	}

	reply := e.Synthesize(s, d)

	assert.False(t, strings.HasSuffix(strings.TrimSpace(reply), "?"))
}

func TestSynthesize_MilestoneNoteAppended(t *testing.T) {
	e := New()
	s := domain.NewSession("s1")
	s.AppendTurn(domain.RoleUser, "progress check", "")
	s.SetSection(domain.SectionPurpose, true)
	s.SetSection(domain.SectionWhereToPlay, true)

	// Dispatch saw 12.5%, the specialist then finished a second section.
	d := domain.DispatchDecision{
		Target:  domain.ResponderVision,
		Context: domain.DecisionContext{TurnIndex: 4, Completeness: 12.5},
	}

	reply := e.Synthesize(s, d)

	assert.Contains(t, reply, "25%")
}

func TestSynthesize_BodyStaysUnderCap(t *testing.T) {
	e := New()
	s := domain.NewSession("s1")
	s.AppendTurn(domain.RoleUser, "tell me", "")
	s.ActiveAgent = domain.ResponderAnalogy
	s.LastOutput = strings.TrimSpace(strings.Repeat("insight ", 300))
	s.Phase = domain.PhaseReasoning
	for _, key := range []string{
		domain.SectionPurpose, domain.SectionWhereToPlay, domain.SectionHowToWin,
		domain.SectionCapability, domain.SectionSystems,
	} {
		s.SetSection(key, true)
	}
	d := domain.DispatchDecision{
		Target:  domain.ResponderAnalogy,
		Context: domain.DecisionContext{TurnIndex: 6, Completeness: 62.5},
	}

	reply := e.Synthesize(s, d)

	body := strings.Split(reply, "\n\n")[0]
	assert.LessOrEqual(t, len(strings.Fields(body)), 200)
}

func TestSynthesize_SummaryNamesNextFocus(t *testing.T) {
	e := New()
	s := domain.NewSession("s1")
	s.AppendTurn(domain.RoleUser, "status", "")
	s.Phase = domain.PhaseReview
	for _, key := range domain.BaselineSections() {
		s.SetSection(key, true)
	}
	s.SetSection(domain.SectionActionPlan, false)
	d := domain.DispatchDecision{
		Target:  domain.TargetSynthesize,
		Context: domain.DecisionContext{TurnIndex: 9, Completeness: 87.5},
	}

	reply := e.Synthesize(s, d)

	assert.Contains(t, reply, fmt.Sprintf("%.0f%%", 87.5))
	assert.Contains(t, reply, domain.SectionTitle(domain.SectionActionPlan))
}
