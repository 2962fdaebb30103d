// Package batch implements the orchestration layer for Themis: a bounded
// worker pool that pulls case data for each input ID, runs it through the
// configured classifier, and streams per-ID result records to the aggregator.
// Per-ID failures are isolated; only a credential rejection aborts a run.
package batch

import "errors"

// Batch-level errors. ErrBatchTooLarge rejects oversized input before any
// processing starts; ErrAborted wraps the terminal cause when a run is cut
// short (already-emitted records remain valid).
var (
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")
	ErrAborted       = errors.New("batch aborted")
)
