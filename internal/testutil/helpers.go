package testutil

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateDummyFile creates a file with the given content at path, ensuring parent directories exist.
func CreateDummyFile(t *testing.T, path string, content string) {
	t.Helper()
	fullPath := filepath.Clean(path)
	dir := filepath.Dir(fullPath)
	err := os.MkdirAll(dir, 0755)
	require.NoError(t, err, "Failed to create directory %s for dummy file", dir)
	err = os.WriteFile(fullPath, []byte(content), 0644)
	require.NoError(t, err, "Failed to write dummy file %s", fullPath)
}

// CreateDummyDir ensures a directory exists at the given path, creating parents if needed.
func CreateDummyDir(t *testing.T, path string) {
	t.Helper()
	err := os.MkdirAll(filepath.Clean(path), 0755)
	require.NoError(t, err, "Failed to create dummy directory %s", path)
}

// CreateTree writes structure below root. Keys are slash separated relative
// paths; a key ending in "/" creates an empty directory.
func CreateTree(t *testing.T, root string, structure map[string]string) {
	t.Helper()
	for rel, content := range structure {
		fullPath := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			CreateDummyDir(t, fullPath)
			continue
		}
		CreateDummyFile(t, fullPath, content)
	}
}

// LogBuffer is a goroutine-safe buffer for capturing slog output in tests.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything written so far.
func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// NewTestLogger returns a debug-level text handler writing to a fresh LogBuffer.
func NewTestLogger() (slog.Handler, *LogBuffer) {
	buf := &LogBuffer{}
	return slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}), buf
}
