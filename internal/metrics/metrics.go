// Package metrics holds the process-wide atomic counters exposed by
// the diagnostics dashboard and reset via its API.
package metrics

import "sync/atomic"

var (
	// OpenArchives is the number of archive handles currently held open
	// (by the cache or by one-shot callers that have not yet closed).
	OpenArchives atomic.Int64

	// TotalOpened is the total count of archives opened since startup.
	TotalOpened atomic.Int64

	// TotalClosed is the total count of archives closed since startup.
	TotalClosed atomic.Int64

	// TotalCacheHits is the count of archive cache lookups that reused
	// an already-open handle.
	TotalCacheHits atomic.Int64

	// TotalCacheMisses is the count of archive cache lookups that had
	// to open a new handle.
	TotalCacheMisses atomic.Int64

	// TotalListed is the number of entries listed across all archives.
	TotalListed atomic.Int64

	// TotalExtracted is the number of entries successfully extracted.
	TotalExtracted atomic.Int64

	// TotalExtractedBytes is the number of payload bytes written during
	// extraction.
	TotalExtractedBytes atomic.Int64

	// TotalExtractTimeNanos is cumulative wall time spent extracting.
	TotalExtractTimeNanos atomic.Int64

	// TotalErrors is the count of operations that failed.
	TotalErrors atomic.Int64
)

// Reset zeroes every cumulative counter; OpenArchives, which tracks
// handles currently open, is left unchanged. Used by the dashboard's
// /reset route.
func Reset() {
	TotalOpened.Store(0)
	TotalClosed.Store(0)
	TotalCacheHits.Store(0)
	TotalCacheMisses.Store(0)
	TotalListed.Store(0)
	TotalExtracted.Store(0)
	TotalExtractedBytes.Store(0)
	TotalExtractTimeNanos.Store(0)
	TotalErrors.Store(0)
}
