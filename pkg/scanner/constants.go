package scanner

import "time"

// Defaults applied by the configuration layer and by NewPool when an option is left unset.
const (
	// DefaultConcurrency determines the default number of workers. 0 means runtime.NumCPU().
	DefaultConcurrency = 0
	// DefaultQueueDepth is the capacity of each worker's inbound queue.
	DefaultQueueDepth = 64
	// DefaultCollectTimeout bounds a single blocking wait for results while the walker drains.
	DefaultCollectTimeout = 250 * time.Millisecond
	// DefaultFollowSymlinks is the default for following symbolic links.
	DefaultFollowSymlinks = false
	// DefaultSkipVendored is the default for skipping vendored directories.
	DefaultSkipVendored = false
	// DefaultKeepDuplicates is the default collection policy (set semantics).
	DefaultKeepDuplicates = false
)

// IgnoreFileName is read from the root of every scanned directory. It uses gitignore syntax.
const IgnoreFileName = ".datescanignore"

// maxSymlinkDepth caps how many symlinked directories the walker follows on one branch.
const maxSymlinkDepth = 40
