package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cairnlabs/cairn/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DocStore implements ports.DocumentStore using Redis, one JSON value per
// session keyed by session id.
type DocStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type DocOption func(*DocStore)

// WithDocTTL sets the expiration for documents. Zero means no expiration.
func WithDocTTL(ttl time.Duration) DocOption {
	return func(s *DocStore) {
		s.ttl = ttl
	}
}

// WithDocPrefix sets the key prefix for documents.
func WithDocPrefix(prefix string) DocOption {
	return func(s *DocStore) {
		s.prefix = prefix
	}
}

// NewDocStore creates a Redis document store from an existing client.
func NewDocStore(client *backend.Client, opts ...DocOption) *DocStore {
	store := &DocStore{
		client: client,
		prefix: "cairn:document:",
		ttl:    0,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Save persists the document, replacing any previous version.
func (s *DocStore) Save(ctx context.Context, doc *domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+doc.SessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save document to redis: %w", err)
	}
	return nil
}

// Load retrieves the document for a session.
func (s *DocStore) Load(ctx context.Context, sessionID string) (*domain.Document, error) {
	val, err := s.client.Get(ctx, s.prefix+sessionID).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document from redis: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return &doc, nil
}
