//go:build linux || darwin

package scanner_test

import (
	"context"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvity/datescan/internal/testutil"
	"github.com/stackvity/datescan/pkg/scanner"
)

func TestScanTree_SkipsNamedPipes(t *testing.T) {
	root := t.TempDir()
	testutil.CreateTree(t, root, map[string]string{"a.txt": "Posted March 3, 2013"})
	pipe := filepath.Join(root, "pipe")
	if err := syscall.Mkfifo(pipe, 0o644); err != nil {
		t.Skipf("mkfifo unsupported: %v", err)
	}

	skipped := map[string]string{}
	hooks := scanner.StatusFunc(func(path string, status scanner.Status, message string) {
		if status == scanner.StatusSkipped {
			skipped[path] = message
		}
	})
	pool, err := scanner.NewPool(2)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.Run("inside a tree", func(t *testing.T) {
		agg, err := scanner.ScanTree(ctx, pool, root, hooks)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(root, "a.txt")}, aggPaths(agg))
		assert.Equal(t, 1, agg.Stats().Dispatched)
		assert.Equal(t, "not a regular file", skipped[pipe])
	})

	t.Run("as the root", func(t *testing.T) {
		agg, err := scanner.ScanTree(ctx, pool, pipe, hooks)
		require.NoError(t, err)
		assert.True(t, agg.IsEmpty())
		assert.Equal(t, 0, agg.Stats().Dispatched)
	})

	closed := make(chan error, 1)
	go func() { closed <- pool.Close() }()
	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("pool close blocked after scanning a tree with a named pipe")
	}
}
