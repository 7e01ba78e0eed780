package memory

import (
	"context"
	"sync"

	"github.com/cairnlabs/cairn/pkg/domain"
)

// DocStore implements ports.DocumentStore in memory.
// Safe for concurrent use.
type DocStore struct {
	data map[string]domain.Document
	mu   sync.RWMutex
}

// NewDocStore creates a new in-memory document store.
func NewDocStore() *DocStore {
	return &DocStore{
		data: make(map[string]domain.Document),
	}
}

// Save persists the document, replacing any previous version.
func (s *DocStore) Save(ctx context.Context, doc *domain.Document) error {
	copied := copyDocument(doc)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[doc.SessionID] = copied
	return nil
}

// Load retrieves the document for a session.
func (s *DocStore) Load(ctx context.Context, sessionID string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}

	ret := copyDocument(&doc)
	return &ret, nil
}

func copyDocument(doc *domain.Document) domain.Document {
	out := *doc
	out.Sections = make([]domain.DocSection, len(doc.Sections))
	copy(out.Sections, doc.Sections)
	return out
}
