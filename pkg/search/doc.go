// Package search implements hybrid retrieval over the email graph.
//
// A search runs in two stages: vector-similarity seeds (scored, tagged
// direct_match) and bounded graph expansion (score 0.0, tagged with the
// relation that discovered each document). Expansion follows a fixed
// precedence - threads, then cases, then people - and a document is only
// ever reported once, under the context type of its first discovery.
//
// Filters compose into a parameter-bound store predicate; see Filters.
package search
