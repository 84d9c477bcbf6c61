// Package checkpoint persists an ingest ledger in an embedded BadgerDB.
//
// The ledger records which source emails have already been ingested, keyed
// by their external message identifier, so re-running an import over the
// same mailbox skips documents instead of duplicating them. Entries carry
// the stored document id and the ingestion timestamp.
package checkpoint
