// Package enrich derives email metadata with deterministic heuristics.
//
// Enrichment fills sender category, case reference, content tags, priority,
// and language from the email's addresses and text. Values already present
// on a document are never overwritten; enrichment is a best-effort fallback
// for fields the source system did not supply.
package enrich
