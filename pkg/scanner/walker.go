package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-enry/go-enry/v2"
	"github.com/stackvity/datescan/pkg/collect"
)

// walkConfig is the part of Options that shapes traversal.
type walkConfig struct {
	ignorePatterns []string
	followSymlinks bool
	skipVendored   bool
	collectTimeout time.Duration
}

// walker traverses one root, dispatching files to a pool and reconciling the
// results it gets back. A walker is used for a single scan.
type walker struct {
	pool    *Pool
	fsys    collect.FileSystem
	hooks   Hooks
	logger  *slog.Logger
	cfg     walkConfig
	ignore  *ignoreMatcher
	root    string
	expect  int // dispatched files whose result still counts
	receive int // results buffered so far
	records []collect.FileDates
	stats   collect.Stats
	seen    map[string]struct{} // real directories entered, tracked while following symlinks
}

// ScanTree walks root, dispatching every regular file to pool, and returns the
// sorted aggregate of all files with at least one date. A root that is a regular
// file is dispatched directly. Files without dates and undecodable files are
// left out; any other failure aborts the scan and is returned.
//
// ScanTree must not run concurrently with another scan on the same pool. On
// error the pool may still hold stale results; close it instead of reusing it.
func ScanTree(ctx context.Context, pool *Pool, root string, hooks Hooks) (*collect.Aggregate, error) {
	return scanTree(ctx, pool, root, hooks, walkConfig{collectTimeout: DefaultCollectTimeout})
}

func scanTree(ctx context.Context, pool *Pool, root string, hooks Hooks, cfg walkConfig) (*collect.Aggregate, error) {
	if hooks == nil {
		hooks = NoOpHooks{}
	}
	w := &walker{
		pool:   pool,
		fsys:   pool.fsys,
		hooks:  hooks,
		logger: slog.New(pool.handler).With(slog.String("component", "walker")),
		cfg:    cfg,
		root:   root,
	}
	return w.run(ctx)
}

func (w *walker) run(ctx context.Context) (*collect.Aggregate, error) {
	w.logger.Info("Starting scan", slog.String("path", w.root), slog.Int("workers", w.pool.Workers()))
	start := time.Now()

	info, err := w.fsys.Stat(w.root)
	if err != nil {
		return nil, w.fail(collect.Classify(w.root, err))
	}
	if info.IsDir() {
		w.ignore, err = newIgnoreMatcher(w.fsys, w.root, w.cfg.ignorePatterns)
		if err != nil {
			return nil, w.fail(fmt.Errorf("failed to initialize ignore patterns: %w", err))
		}
		w.logger.Debug("Ignore patterns loaded", slog.Int("count", w.ignore.count))
		w.enterDir(w.root)
		if err := w.walkDir(ctx, w.root, nil, 0); err != nil {
			return nil, w.fail(err)
		}
	} else {
		w.visited(w.root)
		if !info.Mode().IsRegular() {
			w.logger.Warn("Skipping root that is not a regular file", slog.String("path", w.root), slog.String("mode", info.Mode().String()))
			w.status(w.root, StatusSkipped, "not a regular file")
		} else if err := w.dispatch(w.root); err != nil {
			return nil, w.fail(err)
		}
	}

	if err := w.drain(ctx); err != nil {
		return nil, w.fail(err)
	}

	agg := collect.NewAggregate(w.records, w.stats)
	w.logger.Info("Scan completed",
		slog.String("path", w.root),
		slog.Duration("duration", time.Since(start)),
		slog.Int("dispatched", w.stats.Dispatched),
		slog.Int("collected", w.stats.Collected),
		slog.Int("empty", w.stats.Empty),
		slog.Int("undecodable", w.stats.Undecodable),
	)
	if hookErr := w.hooks.OnScanComplete(agg); hookErr != nil {
		w.logger.Warn("Event hook OnScanComplete failed", slog.String("error", hookErr.Error()))
	}
	return agg, nil
}

func (w *walker) fail(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		w.logger.Info("Scan cancelled", slog.String("path", w.root), slog.String("reason", err.Error()))
		return err
	}
	w.logger.Error("Scan aborted", slog.String("path", w.root), slog.String("error", err.Error()))
	return err
}

// walkDir visits the entries of dir in lexical order. rel holds the components of dir below the root.
func (w *walker) walkDir(ctx context.Context, dir string, rel []string, symlinkDepth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := w.fsys.ReadDir(dir)
	if err != nil {
		return collect.Classify(dir, err)
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := entry.Name()
		path := filepath.Join(dir, name)
		parts := append(rel[:len(rel):len(rel)], name)
		if len(parts) == 1 && name == IgnoreFileName {
			continue
		}
		w.visited(path)

		isDir := entry.IsDir()
		regular := entry.Type().IsRegular()
		depth := symlinkDepth
		if entry.Type()&fs.ModeSymlink != 0 {
			if !w.cfg.followSymlinks {
				w.logger.Debug("Skipping symbolic link", slog.String("path", path))
				w.status(path, StatusSkipped, "symbolic link")
				continue
			}
			target, err := w.fsys.Stat(path)
			if err != nil {
				w.logger.Warn("Skipping broken symbolic link", slog.String("path", path), slog.String("error", err.Error()))
				w.status(path, StatusSkipped, "broken symbolic link")
				continue
			}
			isDir = target.IsDir()
			regular = target.Mode().IsRegular()
			if isDir {
				depth++
				if depth > maxSymlinkDepth {
					w.logger.Warn("Symbolic link depth exceeded", slog.String("path", path), slog.Int("limit", maxSymlinkDepth))
					w.status(path, StatusSkipped, "symbolic link depth exceeded")
					continue
				}
			}
		}

		if w.ignore.Match(parts, isDir) {
			w.logger.Debug("Path ignored", slog.String("path", path), slog.Bool("isDir", isDir))
			w.status(path, StatusSkipped, "ignored by pattern")
			continue
		}
		if w.cfg.skipVendored && isVendored(parts, isDir) {
			w.logger.Debug("Path vendored", slog.String("path", path), slog.Bool("isDir", isDir))
			w.status(path, StatusSkipped, "vendored")
			continue
		}

		if isDir {
			if !w.enterDir(path) {
				w.logger.Debug("Skipping directory already scanned", slog.String("path", path))
				w.status(path, StatusSkipped, "directory already scanned")
				continue
			}
			if err := w.walkDir(ctx, path, parts, depth); err != nil {
				return err
			}
			continue
		}
		if !regular {
			w.logger.Debug("Skipping non-regular file", slog.String("path", path), slog.String("type", entry.Type().String()))
			w.status(path, StatusSkipped, "not a regular file")
			continue
		}
		if err := w.dispatch(path); err != nil {
			return err
		}
	}
	return nil
}

// enterDir records the real directory behind path and reports whether it is new.
// Without symlink following every directory is reached once, so nothing is tracked.
func (w *walker) enterDir(path string) bool {
	if !w.cfg.followSymlinks {
		return true
	}
	if w.seen == nil {
		w.seen = make(map[string]struct{})
	}
	key := filepath.Clean(path)
	if resolver, ok := w.fsys.(collect.PathResolver); ok {
		if real, err := resolver.RealPath(path); err == nil {
			key = real
		} else {
			w.logger.Debug("Could not resolve directory", slog.String("path", path), slog.String("error", err.Error()))
		}
	}
	if _, dup := w.seen[key]; dup {
		return false
	}
	w.seen[key] = struct{}{}
	return true
}

func isVendored(parts []string, isDir bool) bool {
	rel := strings.Join(parts, "/")
	if isDir {
		rel += "/"
	}
	return enry.IsVendor(rel)
}

// dispatch hands path to the pool and then drains whatever results are ready.
func (w *walker) dispatch(path string) error {
	w.logger.Debug("Dispatching file", slog.String("path", path))
	if err := w.pool.Dispatch(path); err != nil {
		return err
	}
	w.expect++
	w.stats.Dispatched++
	for {
		res, ok := w.pool.TryCollect()
		if !ok {
			return nil
		}
		if err := w.reconcile(res); err != nil {
			return err
		}
	}
}

// drain blocks until every dispatched file is accounted for.
func (w *walker) drain(ctx context.Context) error {
	for w.receive < w.expect {
		res, ok, err := w.pool.Collect(ctx, w.cfg.collectTimeout)
		if err != nil {
			return err
		}
		if !ok {
			w.logger.Debug("Waiting for results", slog.Int("pending", w.expect-w.receive))
			continue
		}
		if err := w.reconcile(res); err != nil {
			return err
		}
	}
	return nil
}

// reconcile accounts for one result. Only fatal results return an error.
func (w *walker) reconcile(res Result) error {
	switch {
	case res.Err == nil && res.Record.Dates().IsEmpty():
		w.expect--
		w.stats.Empty++
		w.status(res.Path, StatusEmpty, "")
	case res.Err == nil:
		w.records = append(w.records, res.Record)
		w.receive++
		w.stats.Collected++
		w.status(res.Path, StatusCollected, fmt.Sprintf("%d dates", res.Record.Dates().Len()))
	case errors.Is(res.Err, collect.ErrUndecodableContent):
		w.expect--
		w.stats.Undecodable++
		w.logger.Warn("Skipping undecodable file", slog.String("path", res.Path), slog.String("error", res.Err.Error()))
		w.status(res.Path, StatusUndecodable, res.Err.Error())
	default:
		w.status(res.Path, StatusFailed, res.Err.Error())
		return res.Err
	}
	return nil
}

func (w *walker) visited(path string) {
	if hookErr := w.hooks.OnPathVisited(path); hookErr != nil {
		w.logger.Warn("Event hook OnPathVisited failed", slog.String("path", path), slog.String("error", hookErr.Error()))
	}
}

func (w *walker) status(path string, status Status, message string) {
	if hookErr := w.hooks.OnFileStatus(path, status, message); hookErr != nil {
		w.logger.Warn("Event hook OnFileStatus failed", slog.String("path", path), slog.String("error", hookErr.Error()))
	}
}
