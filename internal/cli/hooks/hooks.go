package hooks

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/stackvity/datescan/pkg/collect"
	"github.com/stackvity/datescan/pkg/scanner"
)

// ProgressBar defines the interface needed to interact with the progress bar.
// *progressbar.ProgressBar satisfies it.
type ProgressBar interface {
	Add(num int) error
	Describe(description string)
	Close() error
}

// NoOpProgressBar provides a default null implementation.
type NoOpProgressBar struct{}

// Add implements ProgressBar.
func (NoOpProgressBar) Add(int) error { return nil }

// Describe implements ProgressBar.
func (NoOpProgressBar) Describe(string) {}

// Close implements ProgressBar.
func (NoOpProgressBar) Close() error { return nil }

// NewSpinner returns an indeterminate progress spinner drawing to w.
func NewSpinner(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// CLIHooks implements scanner.Hooks, bridging scan events to the CLI's
// logging and progress spinner.
type CLIHooks struct {
	logger         *slog.Logger
	verboseEnabled bool
	progressBar    ProgressBar
	mu             sync.Mutex // Protects progressBar and files
	files          int
}

// NewCLIHooks creates a new CLIHooks instance. Pass nil for progBar when no
// spinner is wanted; a NoOpProgressBar is used then.
func NewCLIHooks(logger *slog.Logger, verboseEnabled bool, progBar ProgressBar) *CLIHooks {
	if progBar == nil {
		progBar = NoOpProgressBar{}
	}
	return &CLIHooks{
		logger:         logger,
		verboseEnabled: verboseEnabled,
		progressBar:    progBar,
	}
}

// OnPathVisited implements scanner.Hooks.
func (h *CLIHooks) OnPathVisited(path string) error {
	if h.verboseEnabled {
		h.logger.Debug("Path visited", slog.String("path", path))
	}
	return nil
}

// OnFileStatus implements scanner.Hooks. Every terminal status advances the spinner.
func (h *CLIHooks) OnFileStatus(path string, status scanner.Status, message string) error {
	if status == scanner.StatusFailed {
		h.logger.Error("File processing failed", slog.String("path", path), slog.String("error", message))
	} else if h.verboseEnabled {
		attrs := []any{slog.String("path", path), slog.String("status", string(status))}
		if message != "" {
			attrs = append(attrs, slog.String("message", message))
		}
		h.logger.Debug("File status updated", attrs...)
	}

	if status == scanner.StatusSkipped {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.files++
	_ = h.progressBar.Add(1)
	return nil
}

// OnScanComplete implements scanner.Hooks.
func (h *CLIHooks) OnScanComplete(agg *collect.Aggregate) error {
	stats := agg.Stats()
	h.logger.Debug("Scan of one input finished",
		slog.Int("files", agg.Count()),
		slog.Int("dispatched", stats.Dispatched),
		slog.Int("undecodable", stats.Undecodable),
	)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.progressBar.Describe(fmt.Sprintf("Scanned %d files", h.files))
	return nil
}

// Finish closes the progress bar. It is called once after every input has been scanned.
func (h *CLIHooks) Finish() {
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = h.progressBar.Close()
}
