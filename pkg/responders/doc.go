/*
Package responders provides the built-in specialist responders: vision,
analogy, logic and execution, plus the progress-builder that writes the
strategy brief.

Each specialist owns up to two sections of the brief and advances them as
it runs: the primary section on its first pass, the secondary on a later
one. Specialists accept an optional ChatModel; without one they fall back
to deterministic built-in phrasing, which keeps the engine fully usable
offline and in tests.

Failures never cross the responder boundary as errors. A specialist that
cannot produce output appends a fallback turn and attaches the error
record instead, leaving termination to the workflow graph.
*/
package responders
