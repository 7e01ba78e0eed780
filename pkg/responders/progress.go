package responders

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/ports"
)

// ProgressBuilder rebuilds the strategy brief from session state and
// writes it through the document store. It owns no sections itself; the
// brief's done flags mirror the Completeness Map at render time.
type ProgressBuilder struct {
	docs   ports.DocumentStore
	logger *slog.Logger
}

var _ ports.Responder = (*ProgressBuilder)(nil)

// NewProgress builds the progress-builder step. A nil store is allowed:
// the brief is still rendered and summarized, just not persisted.
func NewProgress(docs ports.DocumentStore, opts ...Option) *ProgressBuilder {
	c := newConfig(opts)
	return &ProgressBuilder{docs: docs, logger: c.logger}
}

// ID returns the responder id used by dispatch.
func (p *ProgressBuilder) ID() string {
	return domain.ResponderProgress
}

// Process renders the brief, saves it, and reports the section status back
// into the conversation. A store failure is logged and skipped; the
// in-memory session stays authoritative.
func (p *ProgressBuilder) Process(ctx context.Context, s domain.Session, latest string) (domain.Session, error) {
	s.ActiveAgent = domain.ResponderProgress

	doc := p.render(s)
	if p.docs != nil {
		if err := p.docs.Save(ctx, doc); err != nil {
			p.logger.Warn("brief save skipped", "session_id", s.ID, "err", err)
		}
	}

	summary := p.summary(s)
	s.AppendTurn(domain.RoleResponder, summary, domain.ResponderProgress)
	s.LastOutput = summary
	s.Stage = domain.ResponderProgress + "_completed"
	return s, nil
}

// render assembles the document: baseline sections in order, ad hoc keys
// after, each carrying its latest gap note while open.
func (p *ProgressBuilder) render(s domain.Session) *domain.Document {
	doc := domain.NewDocument(s.ID)
	doc.Title = fmt.Sprintf("Strategy Brief (%s)", s.ID)

	for _, key := range sectionOrder(s) {
		done := s.Sections[key]
		body := ""
		if done {
			body = "Addressed in the coaching conversation."
		} else if note := lastGap(s, key); note != "" {
			body = note
		}
		doc.Upsert(key, "", body, done)
	}
	return doc
}

func (p *ProgressBuilder) summary(s domain.Session) string {
	total := len(s.Sections)
	open := s.IncompleteSections()
	done := total - len(open)

	if len(open) == 0 {
		return fmt.Sprintf("Your strategy brief is fully drafted: all %d sections are complete.", total)
	}

	titles := make([]string, len(open))
	for i, key := range open {
		titles[i] = domain.SectionTitle(key)
	}
	return fmt.Sprintf(
		"Brief updated: %d of %d sections complete. Still open: %s.",
		done, total, strings.Join(titles, ", "),
	)
}

// sectionOrder walks the session's keys baseline-first, ad hoc after, the
// same ordering IncompleteSections uses.
func sectionOrder(s domain.Session) []string {
	var out []string
	seen := make(map[string]bool, len(s.Sections))
	for _, key := range domain.BaselineSections() {
		if _, ok := s.Sections[key]; ok {
			out = append(out, key)
			seen[key] = true
		}
	}
	var extra []string
	for key := range s.Sections {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		out = append(out, extra...)
	}
	return out
}

func lastGap(s domain.Session, key string) string {
	for i := len(s.Gaps) - 1; i >= 0; i-- {
		if s.Gaps[i].Section == key {
			return s.Gaps[i].Note
		}
	}
	return ""
}
