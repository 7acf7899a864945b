// Package repositories implements SQLite persistence for bands.
//
// [BandRepository] handles CRUD with atomic sequence generation for human-readable ordering, soft deletes via
// deleted_at timestamps, and the case-insensitive matching predicates the name resolver queries. Deleted rows are
// excluded from every query.
//
// Sequence numbers give a stable tiebreak when two bands share a lowercased name. The [NextSequence] function
// atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
