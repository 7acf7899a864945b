// Package tasks runs long band operations with real-time progress reporting.
//
// # Operations
//
//  1. [Importer.Import] : Bulk band import
//     - Reads a CSV (name,country,genres,followers) or JSON array file
//     - Creates each band through the store, skipping duplicates and invalid rows
//     - Returns per-row failures alongside created/skipped counts
//
//  2. [BatchResolver.Run] : Resolve many queries
//     - Fans queries out to a fixed worker pool behind a token-bucket limiter
//     - Returns one report per query in input order
//
// # Progress Reporting
//
// Both operations accept a send-only channel of [ProgressUpdate]. Updates use select with default so a slow or
// absent reader never blocks the operation. Pass nil to disable reporting.
package tasks
