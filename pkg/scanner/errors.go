package scanner

import "errors"

// --- Exported Error Variables ---
// Errors raised by the pool and the walker themselves. Per-file failures use
// the kinds in package collect.

var (
	// ErrConfigValidation indicates options that failed validation in NewPool or NewScanner.
	ErrConfigValidation = errors.New("invalid scanner configuration")

	// ErrInvalidWorkerCount indicates a pool size below one.
	// It is always returned wrapped together with ErrConfigValidation.
	ErrInvalidWorkerCount = errors.New("worker count must be at least 1")

	// ErrWorkerPanic indicates that a worker recovered from a panic while processing a path.
	// The worker keeps running; the result carrying this error is fatal to the scan.
	ErrWorkerPanic = errors.New("worker panicked")

	// ErrPoolClosed is returned by Dispatch and Collect once Close has been called.
	ErrPoolClosed = errors.New("worker pool is closed")
)
