// Package scanner runs concurrent date scans over files and directory trees.
//
// A Pool owns a fixed number of workers that each run the single-file
// pipeline from package collect. ScanTree walks a root, feeds the pool in
// round-robin order and reconciles results until every dispatched file is
// accounted for. Scanner bundles both behind validated Options.
package scanner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stackvity/datescan/pkg/collect"
)

// Scanner owns a pool and the walk options applied to every root it scans.
type Scanner struct {
	opts   Options
	pool   *Pool
	logger *slog.Logger
}

// NewScanner validates opts and starts the worker pool.
// The caller must Close the scanner to stop the workers.
func NewScanner(opts Options) (*Scanner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := slog.New(opts.Logger).With(slog.String("component", "scanner"))
	workers := opts.Workers()
	if opts.Concurrency == 0 {
		logger.Debug("Concurrency auto-detected", slog.Int("count", workers))
	}
	pool, err := NewPool(workers, opts.poolOptions()...)
	if err != nil {
		return nil, err
	}
	return &Scanner{opts: opts, pool: pool, logger: logger}, nil
}

// Pool returns the scanner's worker pool.
func (s *Scanner) Pool() *Pool { return s.pool }

// Scan scans a single root.
func (s *Scanner) Scan(ctx context.Context, root string) (*collect.Aggregate, error) {
	return scanTree(ctx, s.pool, root, s.opts.Hooks, walkConfig{
		ignorePatterns: s.opts.IgnorePatterns,
		followSymlinks: s.opts.FollowSymlinks,
		skipVendored:   s.opts.SkipVendored,
		collectTimeout: s.opts.CollectTimeout,
	})
}

// ScanAll scans every root in order and merges the results. It stops at the first failing root.
func (s *Scanner) ScanAll(ctx context.Context, roots ...string) (*collect.Aggregate, error) {
	aggs := make([]*collect.Aggregate, 0, len(roots))
	for _, root := range roots {
		agg, err := s.Scan(ctx, root)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
		aggs = append(aggs, agg)
	}
	merged := collect.Merge(aggs...)
	s.logger.Debug("Merged scan results", slog.Int("roots", len(roots)), slog.Int("files", merged.Count()))
	return merged, nil
}

// Close stops the worker pool.
func (s *Scanner) Close() error {
	return s.pool.Close()
}
