package runner

import (
	"context"

	"github.com/cairnlabs/cairn/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (structured) modes.
type IOHandler interface {
	// Output presents the responder turns produced by one engine step.
	Output(ctx context.Context, turns []domain.Turn) error

	// Input reads the next user message.
	Input(ctx context.Context) (string, error)

	// SystemOutput reports loop-level notices (session resumed, brief
	// complete, shutting down) outside the conversation itself.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms responder markdown before display.
// This allows TUI rendering (markdown to ANSI) without coupling this package.
type ContentRenderer func(string) (string, error)
