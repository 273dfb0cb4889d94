// Package tasks runs jobs that need many API calls, with real-time progress reporting.
//
// # Operations
//
//  1. [Engine.BulkExport] : export watchlists to disk
//     - Lists the user's watchlists when no ids are given
//     - Fetches each watchlist (and its QR code for Markdown) behind a rate limiter
//     - Writes files from a worker pool and finishes with export_manifest.json
//
//  2. [Engine.ImportMovies] : import catalog entries by external id
//     - Deduplicates ids
//     - Calls the admin import endpoint from a worker pool sharing one limiter
//     - Reports each success or failure; one failure never aborts the run
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking, so a slow reader only misses updates.
package tasks
