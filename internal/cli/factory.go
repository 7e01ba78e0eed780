package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	backend "github.com/redis/go-redis/v9"

	"github.com/cairnlabs/cairn"
	"github.com/cairnlabs/cairn/pkg/adapters/file"
	"github.com/cairnlabs/cairn/pkg/adapters/genai"
	cairnloam "github.com/cairnlabs/cairn/pkg/adapters/loam"
	"github.com/cairnlabs/cairn/pkg/adapters/memory"
	cairnredis "github.com/cairnlabs/cairn/pkg/adapters/redis"
	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/persistence/middleware"
	"github.com/cairnlabs/cairn/pkg/ports"
	"github.com/cairnlabs/cairn/pkg/session"
	"github.com/cairnlabs/cairn/pkg/signal"
)

// Stores bundles the persistence backends behind one --store selection.
type Stores struct {
	Sessions ports.SessionStore
	Docs     ports.DocumentStore
	Locker   ports.DistributedLocker

	closers []func() error
}

// Close releases backend connections. Safe to call on a nil receiver.
func (s *Stores) Close() error {
	if s == nil {
		return nil
	}
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Manager builds a session manager over the selected backends. The
// distributed locker is only present for redis, where multiple replicas
// may share the store.
func (s *Stores) Manager(logger *slog.Logger) *session.Manager {
	opts := []session.Option{session.WithLogger(logger)}
	if s.Locker != nil {
		opts = append(opts, session.WithLocker(s.Locker))
	}
	return session.NewManager(s.Sessions, opts...)
}

// NewStores builds the persistence layer for the selected backend.
//
//	memory: in-process stores, gone at exit. Used by tests and demos.
//	file:   JSON sessions plus a loam markdown document repository under
//	        the data dir, so briefs stay hand-editable.
//	redis:  sessions, documents and a distributed locker sharing one
//	        client. CAIRN_REDIS_PASSWORD supplies the password.
//
// The session store is wrapped with the at-rest middleware configured in
// the environment before anything reaches the backend.
func NewStores(opts RunOptions) (*Stores, error) {
	s := &Stores{}

	switch opts.Store {
	case "", "memory":
		s.Sessions = memory.NewStore()
		s.Docs = memory.NewDocStore()

	case "file":
		s.Sessions = file.New(filepath.Join(opts.DataDir, "sessions"))
		docs, err := cairnloam.Open(filepath.Join(opts.DataDir, "documents"))
		if err != nil {
			return nil, fmt.Errorf("failed to open document repository: %w", err)
		}
		s.Docs = docs

	case "redis":
		client := backend.NewClient(&backend.Options{
			Addr:     opts.RedisAddr,
			Password: os.Getenv("CAIRN_REDIS_PASSWORD"),
		})
		s.Sessions = cairnredis.NewFromClient(client)
		s.Docs = cairnredis.NewDocStore(client)
		s.Locker = cairnredis.NewLocker(client, "cairn:")
		s.closers = append(s.closers, client.Close)

	default:
		return nil, fmt.Errorf("unknown store backend %q (expected memory, file or redis)", opts.Store)
	}

	wrapped, err := wrapSessionStore(s.Sessions)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Sessions = wrapped
	return s, nil
}

// wrapSessionStore applies the at-rest middleware configured in the
// environment. CAIRN_SESSION_KEY enables envelope encryption: a comma
// separated list of hex keys, first active, the rest accepted as rotation
// fallbacks on load. CAIRN_REDACT_PATTERNS scrubs matching transcript
// text before it is written; CAIRN_MASK_CONTEXT_KEYS masks Context values
// whose key names match. Scrubbing runs first so the ciphertext never
// contains the unredacted form.
func wrapSessionStore(store ports.SessionStore) (ports.SessionStore, error) {
	var mws []middleware.Middleware

	if raw := os.Getenv("CAIRN_REDACT_PATTERNS"); raw != "" {
		patterns := strings.Split(raw, ",")
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				return nil, fmt.Errorf("invalid CAIRN_REDACT_PATTERNS entry %q: %w", p, err)
			}
		}
		mws = append(mws, middleware.NewRedactionMiddleware(patterns))
	}

	if raw := os.Getenv("CAIRN_MASK_CONTEXT_KEYS"); raw != "" {
		patterns := strings.Split(raw, ",")
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				return nil, fmt.Errorf("invalid CAIRN_MASK_CONTEXT_KEYS entry %q: %w", p, err)
			}
		}
		mws = append(mws, middleware.NewPIIMiddleware(patterns))
	}

	if raw := os.Getenv("CAIRN_SESSION_KEY"); raw != "" {
		config, err := parseSessionKeys(raw)
		if err != nil {
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(config))
	}

	if len(mws) == 0 {
		return store, nil
	}
	return middleware.Chain(store, mws...), nil
}

func parseSessionKeys(raw string) (middleware.EncryptionConfig, error) {
	parts := strings.Split(raw, ",")
	keys := make([][]byte, 0, len(parts))
	for _, p := range parts {
		key, err := hex.DecodeString(strings.TrimSpace(p))
		if err != nil {
			return middleware.EncryptionConfig{}, fmt.Errorf("CAIRN_SESSION_KEY is not hex encoded: %w", err)
		}
		if len(key) != 32 {
			return middleware.EncryptionConfig{}, fmt.Errorf("CAIRN_SESSION_KEY must decode to 32 bytes, got %d", len(key))
		}
		keys = append(keys, key)
	}
	return middleware.EncryptionConfig{ActiveKey: keys[0], FallbackKeys: keys[1:]}, nil
}

// NewEngine builds the coaching engine from CLI options: rules file,
// chat model, document store, and lifecycle hooks. ctx is only used for
// model client construction. Extra hooks (for example the metrics
// collector) are merged with the debug hooks.
func NewEngine(ctx context.Context, opts RunOptions, logger *slog.Logger, docs ports.DocumentStore, extraHooks ...domain.LifecycleHooks) (*cairn.Engine, error) {
	engineOpts := []cairn.Option{
		cairn.WithLogger(logger),
		cairn.WithDocumentStore(docs),
	}

	hooks := domain.LifecycleHooks{}
	if opts.Debug {
		hooks = createDebugHooks(logger)
	}
	for _, h := range extraHooks {
		hooks = mergeHooks(hooks, h)
	}
	engineOpts = append(engineOpts, cairn.WithLifecycleHooks(hooks))

	if opts.RulesPath != "" {
		table, err := signal.LoadTable(opts.RulesPath)
		if err != nil {
			return nil, err
		}
		engineOpts = append(engineOpts, cairn.WithSignalTable(table))
	}

	if opts.Model != "" {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("--model %q requires GEMINI_API_KEY", opts.Model)
		}
		model, err := genai.New(ctx, apiKey, genai.WithModel(opts.Model))
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		engineOpts = append(engineOpts, cairn.WithChatModel(model))
	}

	engine, err := cairn.New(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}
