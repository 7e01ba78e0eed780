/*
Package domain contains the core domain models for the Cairn coaching engine.

It defines the fundamental entities of a coaching conversation: the Session
and its append-only Turns, the conversation Phase, the per-section progress
flags, the per-turn Dispatch Decision, and the strategy Document the
conversation produces. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Session: Captures the runtime snapshot of one conversation (turns,
    phase, section progress, error record, retry counter).
  - Turn: One message in the conversation, user or responder, immutable
    once appended.
  - DispatchDecision: The per-turn routing choice produced by the scorer
    and consumed by the workflow graph.
  - Document: The strategy brief assembled section by section as the
    conversation progresses.
*/
package domain
