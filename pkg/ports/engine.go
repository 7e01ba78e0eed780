package ports

import (
	"context"

	"github.com/cairnlabs/cairn/pkg/domain"
)

// Orchestrator is the engine surface the front ends (HTTP, MCP, runner)
// program against. The engine itself holds no state between turns; callers
// own session persistence through a SessionStore or session.Manager.
type Orchestrator interface {
	// Start mints a fresh session. An empty id lets the engine choose one.
	Start(id string) domain.Session

	// HandleMessage appends the user turn and runs the workflow graph once,
	// returning the updated session including the new responder Turn(s).
	HandleMessage(ctx context.Context, s domain.Session, text string) (domain.Session, error)

	// Inspect describes the workflow graph nodes for introspection tools.
	Inspect() []domain.GraphNode
}
