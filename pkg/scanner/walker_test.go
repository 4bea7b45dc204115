package scanner_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stackvity/datescan/internal/testutil"
	"github.com/stackvity/datescan/pkg/collect"
	"github.com/stackvity/datescan/pkg/dates"
	"github.com/stackvity/datescan/pkg/scanner"
)

func aggPaths(agg *collect.Aggregate) []string {
	var out []string
	for f := range agg.All() {
		out = append(out, f.Path())
	}
	return out
}

func TestScanTree_OrdersByDates(t *testing.T) {
	root := t.TempDir()
	testutil.CreateTree(t, root, map[string]string{
		"a.txt": "Released March 1, 2000.",
		"b.txt": "No dates in here.",
		"c.txt": "Drafted January 1, 1990 and revised Feb. 2nd, 1995.",
	})
	pool := newTestPool(t, 2)

	agg, err := scanner.ScanTree(context.Background(), pool, root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "c.txt"), filepath.Join(root, "a.txt")}, aggPaths(agg))
	assert.Equal(t, collect.Stats{Dispatched: 3, Collected: 2, Empty: 1}, agg.Stats())

	oldest, _ := agg.Oldest()
	assert.Equal(t, []dates.Date{
		dates.MustNew(1, dates.January, 1990),
		dates.MustNew(2, dates.February, 1995),
	}, oldest.Dates().Slice())
}

func TestScanTree_AccountsForEveryFile(t *testing.T) {
	testCases := []struct {
		workers    int
		queueDepth int
	}{
		{1, 1},
		{3, 1},
		{8, 64},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("workers=%d,depth=%d", tc.workers, tc.queueDepth), func(t *testing.T) {
			fsys := fstest.MapFS{}
			wantCollected := 0
			for i := range 120 {
				name := fmt.Sprintf("d%d/sub%d/f%03d.txt", i%4, i%3, i)
				switch i % 5 {
				case 0:
					fsys[name] = &fstest.MapFile{Data: []byte("nothing")}
				case 1:
					fsys[name] = &fstest.MapFile{Data: append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 16)...)}
				default:
					fsys[name] = &fstest.MapFile{Data: []byte(fmt.Sprintf("June %d, %d", i%28+1, 1900+i))}
					wantCollected++
				}
			}
			pool := newTestPool(t, tc.workers, scanner.WithFileSystem(fsys), scanner.WithQueueDepth(tc.queueDepth))

			agg, err := scanner.ScanTree(context.Background(), pool, ".", nil)
			require.NoError(t, err)

			stats := agg.Stats()
			assert.Equal(t, 120, stats.Dispatched)
			assert.Equal(t, wantCollected, stats.Collected)
			assert.Equal(t, 24, stats.Empty)
			assert.Equal(t, 24, stats.Undecodable)
			assert.Equal(t, stats.Dispatched, stats.Collected+stats.Empty+stats.Undecodable)
			assert.Equal(t, wantCollected, agg.Count())
			assert.Equal(t, 0, pool.Pending())
		})
	}
}

func TestScanTree_PoolIsReusable(t *testing.T) {
	root := t.TempDir()
	testutil.CreateTree(t, root, map[string]string{"a.txt": "July 4, 1976", "b.txt": "none"})
	pool := newTestPool(t, 2)

	for range 3 {
		agg, err := scanner.ScanTree(context.Background(), pool, root, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, agg.Count())
	}
	assert.Equal(t, 6, pool.Dispatched())
}

func TestScanTree_SkipsBinarySiblings(t *testing.T) {
	root := t.TempDir()
	testutil.CreateTree(t, root, map[string]string{
		"logo.png": "\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR",
		"note.txt": "Seen August 8, 2008",
	})
	handler, logs := testutil.NewTestLogger()
	pool := newTestPool(t, 2, scanner.WithLogger(handler))

	agg, err := scanner.ScanTree(context.Background(), pool, root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "note.txt")}, aggPaths(agg))
	assert.Equal(t, 1, agg.Stats().Undecodable)
	assert.Contains(t, logs.String(), "Skipping undecodable file")
}

func TestScanTree_InvalidDatesAreNotErrors(t *testing.T) {
	root := t.TempDir()
	testutil.CreateTree(t, root, map[string]string{
		"fake.txt": "The deadline was Octember 40, 2000.",
		"real.txt": "The deadline was October 4, 2000.",
	})
	pool := newTestPool(t, 2)

	agg, err := scanner.ScanTree(context.Background(), pool, root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "real.txt")}, aggPaths(agg))
	assert.Equal(t, collect.Stats{Dispatched: 2, Collected: 1, Empty: 1}, agg.Stats())
}

func TestScanTree_RootIsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "single.txt")
	testutil.CreateDummyFile(t, file, "Filed September 9, 1999")
	pool := newTestPool(t, 1)

	agg, err := scanner.ScanTree(context.Background(), pool, file, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{file}, aggPaths(agg))
}

func TestScanTree_EmptyDirectory(t *testing.T) {
	pool := newTestPool(t, 1)
	agg, err := scanner.ScanTree(context.Background(), pool, t.TempDir(), nil)
	require.NoError(t, err)
	assert.True(t, agg.IsEmpty())
	assert.Equal(t, collect.Stats{}, agg.Stats())
}

func TestScanTree_RootNotFound(t *testing.T) {
	pool := newTestPool(t, 1)
	_, err := scanner.ScanTree(context.Background(), pool, filepath.Join(t.TempDir(), "missing"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, collect.ErrPathNotFound))
}

func TestScanTree_IOErrorAborts(t *testing.T) {
	mapfs := fstest.MapFS{"bad.txt": {Data: []byte("x")}, "good.txt": {Data: []byte("x")}}
	rootInfo, err := fs.Stat(mapfs, ".")
	require.NoError(t, err)
	fileInfo, err := fs.Stat(mapfs, "bad.txt")
	require.NoError(t, err)
	entries, err := mapfs.ReadDir(".")
	require.NoError(t, err)

	root := "root"
	fsys := new(testutil.MockFileSystem)
	fsys.On("Stat", root).Return(rootInfo, nil)
	fsys.On("ReadFile", filepath.Join(root, scanner.IgnoreFileName)).Return(nil, fs.ErrNotExist)
	fsys.On("ReadDir", root).Return(entries, nil)
	fsys.On("Stat", mock.Anything).Return(fileInfo, nil)
	fsys.On("ReadFile", filepath.Join(root, "bad.txt")).Return(nil, errors.New("disk failure"))
	fsys.On("ReadFile", filepath.Join(root, "good.txt")).Return([]byte("October 10, 2010"), nil).Maybe()

	pool := newTestPool(t, 2, scanner.WithFileSystem(fsys))
	_, err = scanner.ScanTree(context.Background(), pool, root, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, collect.ErrIO))
	assert.Contains(t, err.Error(), "disk failure")
}

func TestScanTree_WorkerPanicAborts(t *testing.T) {
	root := t.TempDir()
	testutil.CreateTree(t, root, map[string]string{"boom.txt": "boom", "ok.txt": "May 1, 2001"})
	pool := newTestPool(t, 2, scanner.WithExtractor(panicExtractor{}))

	_, err := scanner.ScanTree(context.Background(), pool, root, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, scanner.ErrWorkerPanic))
}

func TestScanTree_ContextCancelled(t *testing.T) {
	root := t.TempDir()
	testutil.CreateTree(t, root, map[string]string{"a.txt": "May 1, 2001"})
	pool := newTestPool(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := scanner.ScanTree(ctx, pool, root, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanTree_Hooks(t *testing.T) {
	root := t.TempDir()
	testutil.CreateTree(t, root, map[string]string{
		"a.txt": "November 11, 1918",
		"b.txt": "nothing",
	})
	a, b := filepath.Join(root, "a.txt"), filepath.Join(root, "b.txt")

	hooks := new(testutil.MockHooks)
	hooks.On("OnPathVisited", a).Return(nil).Once()
	hooks.On("OnPathVisited", b).Return(nil).Once()
	hooks.On("OnFileStatus", a, scanner.StatusCollected, "1 dates").Return(nil).Once()
	hooks.On("OnFileStatus", b, scanner.StatusEmpty, "").Return(nil).Once()
	hooks.On("OnScanComplete", mock.MatchedBy(func(agg *collect.Aggregate) bool {
		return agg.Count() == 1
	})).Return(errors.New("hook broke")).Once()

	handler, logs := testutil.NewTestLogger()
	pool := newTestPool(t, 2, scanner.WithLogger(handler))
	agg, err := scanner.ScanTree(context.Background(), pool, root, hooks)
	require.NoError(t, err, "hook failures never abort a scan")
	assert.Equal(t, 1, agg.Count())
	assert.Contains(t, logs.String(), "Event hook OnScanComplete failed")
	hooks.AssertExpectations(t)
}

func TestScanTree_Symlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	testutil.CreateTree(t, root, map[string]string{"plain.txt": "March 3, 2003"})
	testutil.CreateTree(t, outside, map[string]string{
		"target.txt":     "January 1, 1901",
		"linked/sub.txt": "January 1, 1902",
	})
	if err := os.Symlink(filepath.Join(outside, "target.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(outside, "linked"), filepath.Join(root, "linkdir")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "gone.txt"), filepath.Join(root, "broken.txt")))

	t.Run("skipped by default", func(t *testing.T) {
		var skipped []string
		hooks := scanner.StatusFunc(func(path string, status scanner.Status, _ string) {
			if status == scanner.StatusSkipped {
				skipped = append(skipped, filepath.Base(path))
			}
		})
		pool := newTestPool(t, 2)
		agg, err := scanner.ScanTree(context.Background(), pool, root, hooks)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(root, "plain.txt")}, aggPaths(agg))
		assert.ElementsMatch(t, []string{"broken.txt", "link.txt", "linkdir"}, skipped)
	})

	t.Run("cycles are entered once", func(t *testing.T) {
		loop := t.TempDir()
		testutil.CreateTree(t, loop, map[string]string{"d/a.txt": "December 1, 1999"})
		require.NoError(t, os.Symlink("..", filepath.Join(loop, "d", "up")))

		skipped := map[string]string{}
		sc, err := scanner.NewScanner(scanner.Options{
			Concurrency:    2,
			FollowSymlinks: true,
			Logger:         discardHandler(),
			Hooks: scanner.StatusFunc(func(path string, status scanner.Status, message string) {
				if status == scanner.StatusSkipped {
					skipped[path] = message
				}
			}),
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = sc.Close() })

		agg, err := sc.Scan(context.Background(), loop)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(loop, "d", "a.txt")}, aggPaths(agg))
		assert.Equal(t, collect.Stats{Dispatched: 1, Collected: 1}, agg.Stats())
		assert.Equal(t, "directory already scanned", skipped[filepath.Join(loop, "d", "up")])
	})

	t.Run("followed when enabled", func(t *testing.T) {
		sc, err := scanner.NewScanner(scanner.Options{
			Concurrency:    2,
			FollowSymlinks: true,
			Logger:         discardHandler(),
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = sc.Close() })

		agg, err := sc.Scan(context.Background(), root)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(root, "link.txt"),
			filepath.Join(root, "linkdir", "sub.txt"),
			filepath.Join(root, "plain.txt"),
		}, aggPaths(agg), "the broken link is skipped")
	})
}
