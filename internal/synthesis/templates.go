package synthesis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/signal"
)

// bodyTemplates maps kind x phase to a body template. Placeholders:
// {focus}, {completeness}, {open}, {intent}, {output}, {responder}.
var bodyTemplates = map[Kind]map[domain.Phase]string{
	KindCompletion: {
		domain.PhaseDiscovery: "Remarkably, your brief already has substance in every section, from purpose through action plan. Treat today's notes as refinement rather than groundwork.",
		domain.PhaseReasoning: "The reasoning work has paid off. Your strategy brief is essentially complete, and the logic holds together from purpose to plan.",
		domain.PhasePlanning:  "Your action plan closes the loop. The brief is essentially complete, and each section now supports the others.",
		domain.PhaseReview:    "The review confirms it: your strategy brief is complete. The choices you made and the plan to deliver them line up.",
		domain.PhaseComplete:  "Your strategy brief stands complete. Revisit it when the market shifts, and treat the action plan as a living commitment rather than a finished artifact.",
	},
	KindSummary: {
		domain.PhaseDiscovery: "Here is where things stand: the brief is {completeness}% complete, with the foundations largely in place. {open} sections still need attention, starting with {focus}.",
		domain.PhaseReasoning: "Taking stock: {completeness}% of the brief is done. Your focus on {intent} is the right instinct, and the remaining work centers on {focus}.",
		domain.PhasePlanning:  "You are {completeness}% of the way there. The strategic choices are made, and what remains is mostly about {focus}.",
		domain.PhaseReview:    "The brief sits at {completeness}% complete. A final pass over {focus} would close the largest remaining gap.",
		domain.PhaseComplete:  "The brief sits at {completeness}%, which is close enough to call done. Anything further on {focus} is polish.",
	},
	KindQuestion: {
		domain.PhaseDiscovery: "Before going deeper into {intent}, I want to understand the ambition itself. A strategy only coheres once the purpose behind it is explicit.",
		domain.PhaseReasoning: "There is a gap worth probing in how the pieces connect. Strong strategies survive the question of why this particular approach should win.",
		domain.PhasePlanning:  "The direction is set, so the useful pressure now is on specifics. Plans earn trust through named owners and dates.",
		domain.PhaseReview:    "Most of the structure is in place, which makes this the right moment to test it rather than extend it.",
		domain.PhaseComplete:  "The brief is effectively done, so any remaining questions are about how you will keep it honest in practice.",
	},
	KindInsight: {
		domain.PhaseDiscovery: "One angle from the {responder} lens: {output}",
		domain.PhaseReasoning: "Testing your thinking: {output}",
		domain.PhasePlanning:  "On making this executable: {output}",
		domain.PhaseReview:    "Looking across the whole brief: {output}",
		domain.PhaseComplete:  "A closing observation: {output}",
	},
	KindGuidance: {
		domain.PhaseDiscovery: "Let's build the foundation first. Focus on {focus}: write one sentence on what winning looks like and who it serves.",
		domain.PhaseReasoning: "The next move is to pressure-test your approach against {focus}. Comparable cases will sharpen what is distinctive about yours.",
		domain.PhasePlanning:  "Turn the choices into commitments. {focus} is the natural next section: name the first three actions and who owns them.",
		domain.PhaseReview:    "Work through the open items one at a time, starting with {focus}. {open} sections remain.",
		domain.PhaseComplete:  "Nothing structural remains. Keep the brief where the team can see it and revisit {focus} as results come in.",
	},
}

// phaseQuestions are the follow-up candidates per phase. Picked by turn
// index so the same context always yields the same question.
var phaseQuestions = map[domain.Phase][]string{
	domain.PhaseDiscovery: {
		"What would success look like three years from now?",
		"Who benefits most if this strategy works?",
		"What is driving the need for a new strategy right now?",
	},
	domain.PhaseReasoning: {
		"Which assumption, if wrong, would hurt this strategy most?",
		"What evidence would convince a skeptic that this approach can win?",
		"What does the closest comparable company's path teach you?",
	},
	domain.PhasePlanning: {
		"What is the first visible milestone, and who owns it?",
		"What capability gap would slow execution the most?",
		"How will you know within ninety days that the plan is working?",
	},
	domain.PhaseReview: {
		"Which section of the brief feels weakest to you right now?",
		"What feedback from your team would change this plan?",
		"What would make you revisit these choices before the year is out?",
	},
	domain.PhaseComplete: {
		"How will you keep the strategy honest as conditions change?",
	},
}

func renderBody(kind Kind, c Context) string {
	tmpl := bodyTemplates[kind][c.Phase]
	if tmpl == "" {
		tmpl = bodyTemplates[KindGuidance][domain.PhaseDiscovery]
	}

	focus := "the open sections"
	if c.NextFocus != "" {
		focus = domain.SectionTitle(c.NextFocus)
	}

	return strings.NewReplacer(
		"{focus}", focus,
		"{completeness}", fmt.Sprintf("%.0f", c.Completeness),
		"{open}", strconv.Itoa(len(c.Incomplete)),
		"{intent}", c.Intent,
		"{output}", c.RawOutput,
		"{responder}", c.Responder,
	).Replace(tmpl)
}

// progressNote fires only when the reply straddles a milestone: previous
// completeness below it, current at or above. Highest milestone wins.
func progressNote(c Context) (string, bool) {
	for _, m := range []float64{90, 75, 50, 25} {
		if c.Prev < m && c.Completeness >= m {
			return fmt.Sprintf("Progress note: your strategy brief just crossed %.0f%% complete.", m), true
		}
	}
	return "", false
}

// intentPhrase summarizes the dominant signal category as a short phrase
// for the templates. Ties resolve in category table order.
func intentPhrase(signals map[string]int) string {
	best := ""
	bestCount := 0
	for _, cat := range signal.Categories() {
		if n := signals[string(cat)]; n > bestCount {
			best = string(cat)
			bestCount = n
		}
	}

	switch best {
	case string(signal.CategoryPurpose):
		return "purpose and direction"
	case string(signal.CategoryWhy):
		return "the underlying motivation"
	case string(signal.CategoryStrategy):
		return "the strategic approach"
	case string(signal.CategoryComparison):
		return "comparable cases"
	case string(signal.CategoryLogic):
		return "the reasoning"
	case string(signal.CategoryExecution):
		return "execution"
	case string(signal.CategoryStakeholder):
		return "your stakeholders"
	case string(signal.CategoryProcess):
		return "process and cadence"
	case string(signal.CategoryQuestion):
		return "open questions"
	case string(signal.CategoryClarification):
		return "clarifying the picture"
	case string(signal.CategoryCompletion):
		return "wrapping up"
	}
	return "your strategy"
}
