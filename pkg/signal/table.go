package signal

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is one intent bucket the extractor can report on.
type Category string

const (
	CategoryPurpose       Category = "purpose"
	CategoryWhy           Category = "why"
	CategoryStrategy      Category = "strategy"
	CategoryComparison    Category = "comparison"
	CategoryLogic         Category = "logic"
	CategoryExecution     Category = "execution"
	CategoryStakeholder   Category = "stakeholder"
	CategoryProcess       Category = "process"
	CategoryQuestion      Category = "question"
	CategoryClarification Category = "clarification"
	CategoryCompletion    Category = "completion"
)

// Categories lists every known category. Aggregate categories are scanned
// over the last three user turns; turn-local categories (question,
// clarification, completion) only over the most recent one.
func Categories() []Category {
	return []Category{
		CategoryPurpose, CategoryWhy, CategoryStrategy, CategoryComparison,
		CategoryLogic, CategoryExecution, CategoryStakeholder, CategoryProcess,
		CategoryQuestion, CategoryClarification, CategoryCompletion,
	}
}

// TurnLocal reports whether the category is evaluated against only the most
// recent user turn.
func (c Category) TurnLocal() bool {
	switch c {
	case CategoryQuestion, CategoryClarification, CategoryCompletion:
		return true
	}
	return false
}

// Table holds the signal vocabulary: per-category substring patterns plus
// the keyword lists behind the urgency and confidence scores. Patterns are
// matched case-insensitively.
type Table struct {
	Patterns    map[Category][]string `yaml:"categories"`
	Urgency     []string              `yaml:"urgency"`
	Confidence  []string              `yaml:"confidence"`
	Uncertainty []string              `yaml:"uncertainty"`
}

// DefaultTable returns a fresh copy of the built-in vocabulary.
func DefaultTable() Table {
	return Table{
		Patterns: map[Category][]string{
			CategoryPurpose: {
				"purpose", "mission", "north star", "direction", "big picture",
				"what we stand for", "want to build", "want to create", "our goal",
			},
			CategoryWhy: {
				"why", "reason", "because", "motivation", "root cause", "driving",
			},
			CategoryStrategy: {
				"strategy", "strategic", "approach", "positioning", "focus on",
				"how should we", "play to win", "differentiate",
			},
			CategoryComparison: {
				"like other", "similar to", "compare", "competitor", "benchmark",
				"case stud", "example of", "companies", "industry leader",
			},
			CategoryLogic: {
				"logic", "consistent", "contradiction", "assumption", "evidence",
				"make sense", "follows", "reasoning", "hold up",
			},
			CategoryExecution: {
				"execute", "implement", "roll out", "launch", "timeline",
				"action", "start doing", "resource", "budget", "deliver",
			},
			CategoryStakeholder: {
				"team", "board", "investor", "customer", "employee", "partner",
				"stakeholder", "leadership",
			},
			CategoryProcess: {
				"process", "step", "workflow", "procedure", "how do we proceed",
				"next step", "in what order",
			},
			CategoryQuestion: {
				"?", "how ", "what ", "when ", "where ", "which ", "who ",
			},
			CategoryClarification: {
				"clarify", "what do you mean", "explain", "confused",
				"don't understand", "unclear", "can you rephrase",
			},
			CategoryCompletion: {
				"done", "finish", "complete", "wrap up", "that's all",
				"ready to", "summarize", "final version",
			},
		},
		Urgency: []string{
			"urgent", "asap", "immediately", "deadline", "right away",
			"today", "running out of time",
		},
		Confidence: []string{
			"definitely", "sure", "confident", "certain", "absolutely",
			"clearly", "committed",
		},
		Uncertainty: []string{
			"maybe", "not sure", "unsure", "perhaps", "confused",
			"i think", "might", "possibly",
		},
	}
}

// LoadTable reads a YAML rules file and merges it over the default table.
// Categories present in the file replace the default patterns for that
// category; absent categories keep the built-ins. Same for the keyword
// lists. Unknown category names are kept verbatim so projects can extend
// the vocabulary alongside custom candidates.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	var overlay Table
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Table{}, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	table := DefaultTable()
	for cat, patterns := range overlay.Patterns {
		table.Patterns[cat] = patterns
	}
	if len(overlay.Urgency) > 0 {
		table.Urgency = overlay.Urgency
	}
	if len(overlay.Confidence) > 0 {
		table.Confidence = overlay.Confidence
	}
	if len(overlay.Uncertainty) > 0 {
		table.Uncertainty = overlay.Uncertainty
	}
	return table, nil
}

// normalize lowercases every pattern once so extraction can lower the turn
// text a single time per turn.
func (t Table) normalize() Table {
	out := Table{
		Patterns:    make(map[Category][]string, len(t.Patterns)),
		Urgency:     lowerAll(t.Urgency),
		Confidence:  lowerAll(t.Confidence),
		Uncertainty: lowerAll(t.Uncertainty),
	}
	for cat, patterns := range t.Patterns {
		out.Patterns[cat] = lowerAll(patterns)
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
