/*
Package runner implements the interactive coaching loop.

It bridges the stateless engine and a terminal (or any line-oriented
transport): read a user message, hand it to the engine, persist the
updated session, print the responder turns, repeat until the strategy
brief is complete or the input stream ends.

# Key Components

  - Runner: the loop itself. Owns session resolution and persistence.
  - IOHandler: pluggable interaction strategy (text for humans, JSON
    lines for host programs that embed the coach).
  - SanitizeInput: the input policy every front end applies before a
    message reaches the engine.

# Usage

	r := runner.NewRunner(
		runner.WithEngine(engine),
		runner.WithManager(manager),
		runner.WithSessionID("user-1"),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
