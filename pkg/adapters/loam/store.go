// Package loam provides a document store over a loam markdown repository.
// Each brief is one markdown file: frontmatter for status, prose for the
// sections. The files stay hand-editable; edits to a section body survive
// the round trip.
package loam

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/loam"
	"github.com/cairnlabs/cairn/pkg/domain"
)

// Store implements ports.DocumentStore on a loam repository.
type Store struct {
	repo *loam.TypedRepository[DocumentMeta]
}

// New creates a store over an existing typed repository.
func New(repo *loam.TypedRepository[DocumentMeta]) *Store {
	return &Store{repo: repo}
}

// Open initializes a loam repository at dir and returns a store over it.
// If dir is empty, it defaults to ".cairn/documents".
func Open(dir string) (*Store, error) {
	if dir == "" {
		dir = filepath.Join(".cairn", "documents")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to ensure document directory: %w", err)
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	repo, err := loam.Init(absPath, loam.WithVersioning(false))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[DocumentMeta](repo)), nil
}

// Save renders the document to markdown and writes it through loam,
// replacing any previous version.
func (s *Store) Save(ctx context.Context, doc *domain.Document) error {
	meta := DocumentMeta{
		SessionID: doc.SessionID,
		Title:     doc.Title,
		UpdatedAt: doc.UpdatedAt.UTC().Format(time.RFC3339),
		Sections:  make([]SectionStatus, 0, len(doc.Sections)),
	}
	for _, sec := range doc.Sections {
		meta.Sections = append(meta.Sections, SectionStatus{
			Key:   sec.Key,
			Title: sec.Title,
			Done:  sec.Done,
		})
	}

	err := s.repo.Save(ctx, &loam.DocumentModel[DocumentMeta]{
		ID:      doc.SessionID,
		Content: renderBrief(doc),
		Data:    meta,
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", doc.SessionID, err)
	}
	return nil
}

// Load reads the markdown brief back into a document. The section list
// and status come from the frontmatter; bodies are re-read from the
// markdown so hand edits are picked up.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Document, error) {
	doc, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		// Loam does not expose a typed not-found error; distinguish a
		// missing brief from a broken repository by listing.
		if !s.exists(ctx, sessionID) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", sessionID, err)
	}

	out := &domain.Document{
		SessionID: doc.Data.SessionID,
		Title:     doc.Data.Title,
	}
	if out.SessionID == "" {
		out.SessionID = sessionID
	}
	if doc.Data.UpdatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, doc.Data.UpdatedAt); err == nil {
			out.UpdatedAt = ts
		}
	}

	bodies := parseBodies(doc.Content)
	for _, st := range doc.Data.Sections {
		title := st.Title
		if title == "" {
			title = domain.SectionTitle(st.Key)
		}
		out.Sections = append(out.Sections, domain.DocSection{
			Key:   st.Key,
			Title: title,
			Body:  bodies[title],
			Done:  st.Done,
		})
	}
	return out, nil
}

func (s *Store) exists(ctx context.Context, sessionID string) bool {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return false
	}
	for _, d := range docs {
		if trimExtension(d.ID) == sessionID || d.Data.SessionID == sessionID {
			return true
		}
	}
	return false
}

// renderBrief writes the document as plain markdown, one ## heading per
// section. parseBodies reads the same shape back.
func renderBrief(doc *domain.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	for _, sec := range doc.Sections {
		fmt.Fprintf(&b, "## %s\n\n", sec.Title)
		if body := strings.TrimSpace(sec.Body); body != "" {
			b.WriteString(body)
			b.WriteString("\n\n")
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// parseBodies splits markdown content into per-heading bodies keyed by
// the heading text.
func parseBodies(content string) map[string]string {
	bodies := make(map[string]string)
	var current string
	var buf []string

	flush := func() {
		if current != "" {
			bodies[current] = strings.TrimSpace(strings.Join(buf, "\n"))
		}
		buf = buf[:0]
	}
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "## ") {
			flush()
			current = strings.TrimSpace(strings.TrimPrefix(line, "## "))
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return bodies
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
