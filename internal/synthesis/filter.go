package synthesis

import (
	"fmt"
	"strings"
	"unicode"
)

// biasedOpeners flag leading phrasing. A coaching question should open the
// floor, not steer the answer.
var biasedOpeners = []string{
	"don't you think",
	"don't you want",
	"wouldn't you agree",
	"wouldn't it be better",
	"isn't it obvious",
	"isn't it true",
	"shouldn't you",
	"surely",
	"obviously",
	"clearly",
}

const genericQuestion = "What feels most important to explore next?"

// filterQuestion rewrites questions that would steer the user: a biased
// opener collapses to the generic open question, and an "X or Y?" choice
// becomes an open question about X.
func filterQuestion(q string) string {
	lower := strings.ToLower(strings.TrimSpace(q))
	for _, opener := range biasedOpeners {
		if strings.HasPrefix(lower, opener) {
			return genericQuestion
		}
	}
	if subject, ok := dichotomySubject(q); ok {
		return fmt.Sprintf("What factors influence %s?", subject)
	}
	return q
}

// dichotomySubject extracts the first option from an "X or Y?" question,
// stripped of its interrogative lead-in.
func dichotomySubject(q string) (string, bool) {
	trimmed := strings.TrimSpace(q)
	if !strings.HasSuffix(trimmed, "?") {
		return "", false
	}
	idx := strings.Index(strings.ToLower(trimmed), " or ")
	if idx < 0 {
		return "", false
	}

	subject := strings.TrimSuffix(strings.TrimSpace(trimmed[:idx]), ",")
	for _, lead := range []string{
		"do you prefer ",
		"do you want ",
		"would you rather ",
		"should we ",
		"should you ",
		"should it be ",
		"is it ",
		"is this ",
		"are you ",
		"will you ",
	} {
		if strings.HasPrefix(strings.ToLower(subject), lead) {
			subject = subject[len(lead):]
			break
		}
	}
	if subject == "" {
		return "", false
	}
	return lowerFirst(subject), true
}

func lowerFirst(s string) string {
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// enforceWordCap truncates text to at most max words, preferring the last
// sentence boundary within the window. With no boundary in range the cut
// is hard and marked with an ellipsis.
func enforceWordCap(text string, max int) string {
	words := strings.Fields(text)
	if len(words) <= max {
		return text
	}

	head := words[:max]
	for i := len(head) - 1; i >= 0; i-- {
		if endsSentence(head[i]) {
			return strings.Join(head[:i+1], " ")
		}
	}
	return strings.Join(head, " ") + "..."
}

func endsSentence(word string) bool {
	trimmed := strings.TrimRight(word, `"')]`)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
