package middleware

import (
	"context"
	"regexp"

	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/ports"
)

type redactionMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that redacts pattern matches
// from the stored transcript: turn content, gap notes, and the raw responder
// output. Unlike NewPIIMiddleware this matches the TEXT, not key names, so
// it is the right tool for emails, phone numbers, or account IDs that people
// type mid-conversation. Redaction is lossy: once saved, the matched spans
// are gone from the stored form.
func NewRedactionMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactionMiddleware) Save(ctx context.Context, sessionID string, s *domain.Session) error {
	// Clone deep-copies Turns and Gaps, so rewriting their strings leaves
	// the engine's session untouched.
	cloned := s.Clone()
	for i := range cloned.Turns {
		cloned.Turns[i].Content = m.redact(cloned.Turns[i].Content)
	}
	for i := range cloned.Gaps {
		cloned.Gaps[i].Note = m.redact(cloned.Gaps[i].Note)
	}
	cloned.LastOutput = m.redact(cloned.LastOutput)

	return m.next.Save(ctx, sessionID, &cloned)
}

func (m *redactionMiddleware) redact(text string) string {
	for _, p := range m.patterns {
		text = p.ReplaceAllString(text, "***")
	}
	return text
}

func (m *redactionMiddleware) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *redactionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
