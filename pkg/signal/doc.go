/*
Package signal turns recent user turns into categorized intent signals.

Extraction is deliberately keyword-based: a Table maps each Category to a
list of case-insensitive substring patterns, and the Extractor reports which
patterns matched in a sliding window of user turns, plus two scalar scores
(urgency, confidence). The Table is a value the engine receives at
construction, so a project can swap the keyword heuristics for a proper
classifier without touching the dispatch scorer's math.
*/
package signal
