/*
Package cairn is a strategy-coaching conversation engine. It orchestrates a
panel of specialist responders that interview a user about a strategic
problem, track which sections of a strategy brief the conversation has
covered, and assemble the brief as the dialogue progresses.

# Concept

Cairn treats a coaching conversation as repeated runs of a small fixed
workflow graph. Each user message flows through the same pipeline: refresh
progress, pick the best next responder, let it speak, synthesize the reply,
and decide whether to loop or wait for the user. The engine is stateless
between messages; the session snapshot is the only carrier of conversation
state, which makes every front end (CLI, HTTP, MCP) a thin shell around the
same core.

# Key Features

  - Deterministic orchestration: responder choice is a scored, auditable
    decision, not a model call.
  - Hexagonal architecture: stores, chat models and front ends are
    adapters behind small interfaces.
  - Durable sessions: built-in memory, file and redis stores; briefs can
    live in hand-editable markdown.
  - Graceful degradation: a failing or absent language model degrades to
    built-in coaching, never to a dead conversation.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/cairnlabs/cairn"
	)

	func main() {
		engine, err := cairn.New()
		if err != nil {
			log.Fatal(err)
		}

		s := engine.Start("session-123")

		for _, msg := range []string{
			"We deliver solar kits to off-grid farms.",
			"Our edge is a dealer network nobody else has.",
		} {
			s, err = engine.HandleMessage(context.Background(), s, msg)
			if err != nil {
				log.Fatal(err)
			}
			last := s.Turns[len(s.Turns)-1]
			fmt.Printf("[%s] %s\n", last.Agent, last.Content)
		}
	}
*/
package cairn
