package signal

import (
	"strings"

	"github.com/cairnlabs/cairn/pkg/domain"
)

// aggregateWindow is how many trailing user turns feed aggregate categories.
// Turn-local categories only look at the most recent user turn.
const aggregateWindow = 3

// Result is one extraction pass over recent user turns. No side effects;
// derived entirely from the turns and the table.
type Result struct {
	// Matches holds the matched pattern fragments per category.
	Matches map[Category][]string

	// Urgency is 0.3 per urgency keyword occurrence, capped to [0,1].
	Urgency float64

	// Confidence starts at 0.5, +0.2 per confidence keyword, -0.2 per
	// uncertainty keyword, clamped to [0,1].
	Confidence float64
}

// Count returns the number of matched fragments for a category.
func (r Result) Count(c Category) int {
	return len(r.Matches[c])
}

// Has reports whether the category matched at least once.
func (r Result) Has(c Category) bool {
	return len(r.Matches[c]) > 0
}

// Summary flattens the match counts for audit contexts.
func (r Result) Summary() map[string]int {
	out := make(map[string]int, len(r.Matches))
	for cat, frags := range r.Matches {
		if len(frags) > 0 {
			out[string(cat)] = len(frags)
		}
	}
	return out
}

// Extractor scans user turns against a signal table.
type Extractor struct {
	table Table
}

// NewExtractor builds an extractor for the given table. Patterns are
// normalized once here.
func NewExtractor(table Table) *Extractor {
	return &Extractor{table: table.normalize()}
}

// Extract scans the session history. Aggregate categories see the last
// three user turns, turn-local categories only the latest one. An empty
// user history yields a default result biased toward the purpose category,
// so a brand-new session routes to the vision responder.
func (e *Extractor) Extract(turns []domain.Turn) Result {
	users := lastUserTurns(turns, aggregateWindow)
	if len(users) == 0 {
		return Result{
			Matches:    map[Category][]string{CategoryPurpose: {"new conversation"}},
			Urgency:    0,
			Confidence: 0.5,
		}
	}

	res := Result{Matches: make(map[Category][]string)}

	lowered := make([]string, len(users))
	for i, t := range users {
		lowered[i] = strings.ToLower(t.Content)
	}
	latest := lowered[len(lowered)-1]

	for cat, patterns := range e.table.Patterns {
		window := lowered
		if cat.TurnLocal() {
			window = []string{latest}
		}
		for _, text := range window {
			for _, pattern := range patterns {
				if pattern != "" && strings.Contains(text, pattern) {
					res.Matches[cat] = append(res.Matches[cat], strings.TrimSpace(pattern))
				}
			}
		}
	}

	res.Urgency = clamp01(0.3 * float64(countMatches(lowered, e.table.Urgency)))
	res.Confidence = clamp01(0.5 +
		0.2*float64(countMatches(lowered, e.table.Confidence)) -
		0.2*float64(countMatches(lowered, e.table.Uncertainty)))

	return res
}

func lastUserTurns(turns []domain.Turn, n int) []domain.Turn {
	var users []domain.Turn
	for _, t := range turns {
		if t.Role == domain.RoleUser {
			users = append(users, t)
		}
	}
	if len(users) > n {
		users = users[len(users)-n:]
	}
	return users
}

func countMatches(texts, keywords []string) int {
	n := 0
	for _, text := range texts {
		for _, kw := range keywords {
			if kw != "" && strings.Contains(text, kw) {
				n++
			}
		}
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
