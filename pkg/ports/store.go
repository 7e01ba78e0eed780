package ports

import (
	"context"

	"github.com/cairnlabs/cairn/pkg/domain"
)

// SessionStore defines the interface for persisting coaching sessions.
// This allows long-running conversations to survive process restarts.
type SessionStore interface {
	// Save persists the session for a given session ID.
	Save(ctx context.Context, sessionID string, s *domain.Session) error

	// Load retrieves the session for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}

// DocumentStore defines the interface for the strategy brief a session
// assembles. The engine only re-reads section status from it; writing is
// the progress-builder's job. Last write wins per session.
type DocumentStore interface {
	// Load retrieves the document for a session.
	// Returns domain.ErrDocumentNotFound if none has been written yet.
	Load(ctx context.Context, sessionID string) (*domain.Document, error)

	// Save persists the document, replacing any previous version.
	Save(ctx context.Context, doc *domain.Document) error
}
