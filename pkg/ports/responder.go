package ports

import (
	"context"

	"github.com/cairnlabs/cairn/pkg/domain"
)

// Responder is one specialist unit the dispatch scorer can select. Four
// implementations cover the built-in specialists, plus one progress-builder
// step; hosts may register additional ones.
//
// Process receives the session value and the latest user text and returns a
// new session version with a responder Turn appended, ActiveAgent set to the
// responder's id, Stage set to "<id>_completed", and any Completeness Map
// keys the responder considers done flipped to true. Implementations must
// not let internal failures escape: on failure they still append a fallback
// Turn and record the error on the session instead of returning it. The
// error return exists to guard third-party implementations that break this
// contract; the engine converts it into an error record, never a panic.
type Responder interface {
	// ID returns the stable identifier used by dispatch decisions.
	ID() string

	// Process runs the specialist for one turn.
	Process(ctx context.Context, s domain.Session, latestUserText string) (domain.Session, error)
}

// ChatModel is the language-generation dependency a responder calls to
// phrase its reply. Injected at construction; implementations wrap an
// external API and are treated as synchronous, cancellable calls with no
// internal retry.
type ChatModel interface {
	// Complete sends a bare prompt and returns the completion.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteWithSystem sends a prompt under a system instruction.
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
