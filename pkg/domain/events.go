package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter       EventType = "node_enter"
	EventNodeLeave       EventType = "node_leave"
	EventResponderCall   EventType = "responder_call"
	EventResponderReturn EventType = "responder_return"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// NodeEvent represents entry or exit from a workflow graph node.
type NodeEvent struct {
	EventBase
	Node string `json:"node"`
	// Target is the dispatch target when leaving the dispatch node, else "".
	Target string `json:"target,omitempty"`
	// Completeness is the session's progress percentage at leave time.
	// Zero on enter events.
	Completeness float64 `json:"completeness,omitempty"`
}

// ResponderEvent represents one specialist invocation.
type ResponderEvent struct {
	EventBase
	Responder string `json:"responder"`
	IsError   bool   `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability. All hooks are
// optional; nil hooks are skipped.
type LifecycleHooks struct {
	OnNodeEnter       func(context.Context, *NodeEvent)
	OnNodeLeave       func(context.Context, *NodeEvent)
	OnResponderCall   func(context.Context, *ResponderEvent)
	OnResponderReturn func(context.Context, *ResponderEvent)
}
