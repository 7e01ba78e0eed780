package domain

import (
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrDocumentNotFound is returned when no strategy document exists for a session.
var ErrDocumentNotFound = errors.New("document not found")

// ErrUnknownResponder is returned when a dispatch decision names a responder
// that was never registered with the engine.
var ErrUnknownResponder = errors.New("unknown responder")

// ErrInvalidPhase is returned when a phase string does not name a known phase.
var ErrInvalidPhase = errors.New("invalid phase")

// ErrorKind classifies an engine-internal failure. Errors are attached to
// the session's error record rather than thrown across the workflow graph.
type ErrorKind string

const (
	// ErrorResponderFailure marks a specialist call that failed internally.
	// The responder boundary recovers locally with a fallback turn; the
	// record makes the failure terminal for routing.
	ErrorResponderFailure ErrorKind = "responder_failure"

	// ErrorRoutingTerminal marks a deliberate end decision (exhausted
	// retries or a pre-existing error record). Not a failure; it appears in
	// dispatch reasons and is never attached to a session by the engine.
	ErrorRoutingTerminal ErrorKind = "routing_terminal"

	// ErrorStoreUnavailable marks a document-store read/write failure.
	// Non-fatal: the engine logs it and proceeds with in-memory state.
	ErrorStoreUnavailable ErrorKind = "store_unavailable"
)

// ErrorRecord is the typed "attach, don't throw" error carried on a Session.
type ErrorRecord struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Node    string    `json:"node"`
	At      time.Time `json:"at"`
}
