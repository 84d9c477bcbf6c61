// Package store provides the graph database abstraction for mailgraph.
//
// The GraphStore interface reduces the underlying database to the primitives
// the retrieval core needs: record creation, natural-key lookup, typed
// relationship creation, vector similarity search, and predicate queries.
// The Neo4j implementation expresses every operation as parameterized Cypher;
// no caller-supplied value is ever interpolated into query text.
//
// Predicates are composed from fixed query fragments plus a parameter map
// (see Predicate), so values containing quotes or control characters cannot
// alter query semantics.
package store
