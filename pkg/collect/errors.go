package collect

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/stackvity/datescan/pkg/encoding"
)

// --- Exported Error Variables ---
// These are the kinds a scan error can have. Callers check them with errors.Is.

var (
	// ErrPermissionDenied indicates inadequate permission opening a file or directory.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrPathNotFound indicates that no file or directory exists at the path.
	ErrPathNotFound = errors.New("path does not exist")

	// ErrIO indicates any other I/O failure.
	ErrIO = errors.New("general I/O error")

	// ErrPathIsDirectory indicates a directory path passed where a regular file was expected.
	// The walker treats it as "recurse instead"; from a worker it is fatal.
	ErrPathIsDirectory = errors.New("path is a directory")

	// ErrUndecodableContent indicates binary or otherwise non-text content.
	// The file is skipped and never aborts a scan.
	ErrUndecodableContent = errors.New("content is not decodable text")
)

// ScanError is a typed failure for a single path. It matches both its Kind
// and its underlying cause with errors.Is.
type ScanError struct {
	Path string
	Kind error
	Err  error
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.Err == nil || e.Err == e.Kind {
		return fmt.Sprintf("%s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause.
func (e *ScanError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewScanError builds a ScanError of the given kind.
func NewScanError(path string, kind, cause error) *ScanError {
	return &ScanError{Path: path, Kind: kind, Err: cause}
}

// Classify wraps a filesystem error for path into a ScanError with the matching kind.
// Errors that are already ScanErrors are returned unchanged.
func Classify(path string, err error) error {
	if err == nil {
		return nil
	}
	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return err
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NewScanError(path, ErrPathNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return NewScanError(path, ErrPermissionDenied, err)
	case errors.Is(err, encoding.ErrUndecodable):
		return NewScanError(path, ErrUndecodableContent, err)
	default:
		return NewScanError(path, ErrIO, err)
	}
}

// IsRecoverable reports whether err is handled locally by the walker
// (a directory to recurse into, or undecodable content to skip).
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrPathIsDirectory) || errors.Is(err, ErrUndecodableContent)
}
