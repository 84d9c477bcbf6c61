// Package mailgraph builds and queries a knowledge graph of law-firm email.
//
// Emails are ingested as documents: validated, enriched with deterministic
// metadata heuristics, embedded, and stored as graph nodes. A construction
// pass then links documents to each other and to resolved Person and Case
// entities through typed relationships. Retrieval combines vector
// similarity with bounded multi-hop graph expansion, returning a single
// ranked list where every entry is tagged with how it was found.
//
// The Client type is the main entry point; its surface is split into
// focused interfaces (Ingestor, GraphBuilder, Retriever, GraphAdmin) so
// consumers can depend on only what they use.
package mailgraph
