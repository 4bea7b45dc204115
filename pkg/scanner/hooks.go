package scanner

import "github.com/stackvity/datescan/pkg/collect"

// Status is the outcome of a single path during a scan.
type Status string

// Constants representing the defined file statuses.
const (
	StatusCollected   Status = "collected"
	StatusEmpty       Status = "empty"
	StatusUndecodable Status = "undecodable"
	StatusSkipped     Status = "skipped"
	StatusFailed      Status = "failed"
)

// Hooks receives progress callbacks from the walker. All calls come from the
// goroutine running the scan. Returned errors are logged and otherwise ignored.
type Hooks interface {
	OnPathVisited(path string) error
	OnFileStatus(path string, status Status, message string) error
	OnScanComplete(agg *collect.Aggregate) error
}

// NoOpHooks provides a default, do-nothing implementation of the Hooks interface.
type NoOpHooks struct{}

// OnPathVisited implements the Hooks interface. It performs no action.
func (NoOpHooks) OnPathVisited(string) error { return nil }

// OnFileStatus implements the Hooks interface. It performs no action.
func (NoOpHooks) OnFileStatus(string, Status, string) error { return nil }

// OnScanComplete implements the Hooks interface. It performs no action.
func (NoOpHooks) OnScanComplete(*collect.Aggregate) error { return nil }

// StatusFunc adapts a function to Hooks. Only OnFileStatus is forwarded.
type StatusFunc func(path string, status Status, message string)

// OnPathVisited implements the Hooks interface.
func (f StatusFunc) OnPathVisited(string) error { return nil }

// OnFileStatus implements the Hooks interface.
func (f StatusFunc) OnFileStatus(path string, status Status, message string) error {
	f(path, status, message)
	return nil
}

// OnScanComplete implements the Hooks interface.
func (f StatusFunc) OnScanComplete(*collect.Aggregate) error { return nil }
