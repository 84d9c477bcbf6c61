// Package graph derives typed relationship edges from ingested documents.
//
// The Resolver deduplicates Person and Case records by natural key (email
// address, external case reference), resolving-or-creating on demand. The
// store stays the source of truth: the in-memory cache only short-circuits
// repeat lookups within a run, and every cache miss re-queries the store
// before creating, so resolution is stable across independent runs.
//
// The Builder walks a document batch and creates THREAD_MEMBER, REPLIES_TO,
// INVOLVES, and RELATED_TO_CASE edges. Edge creation is idempotent: running
// the builder twice over the same batch creates no duplicates.
package graph
