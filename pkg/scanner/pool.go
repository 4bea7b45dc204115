package scanner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stackvity/datescan/pkg/collect"
	"github.com/stackvity/datescan/pkg/dates"
	"github.com/stackvity/datescan/pkg/encoding"
)

// Result is what a worker reports for one dispatched path.
// Exactly one of Record and Err is meaningful.
type Result struct {
	Path   string
	Record collect.FileDates
	Err    error
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithFileSystem sets the filesystem workers read from. The default is collect.OSFileSystem.
func WithFileSystem(fsys collect.FileSystem) PoolOption {
	return func(p *Pool) {
		if fsys != nil {
			p.fsys = fsys
		}
	}
}

// WithExtractor sets the date extractor. The default is dates.DefaultRecognizer().
func WithExtractor(extractor dates.DateExtractor) PoolOption {
	return func(p *Pool) {
		if extractor != nil {
			p.fileOpts.Extractor = extractor
		}
	}
}

// WithDecoder sets the content decoder. The default is a strict UTF-8 charset handler.
func WithDecoder(decoder encoding.Decoder) PoolOption {
	return func(p *Pool) {
		if decoder != nil {
			p.fileOpts.Decoder = decoder
		}
	}
}

// WithKeepDuplicates selects list semantics for per-file collections.
func WithKeepDuplicates(keep bool) PoolOption {
	return func(p *Pool) { p.fileOpts.KeepDuplicates = keep }
}

// WithQueueDepth sets the capacity of each worker's inbound queue.
func WithQueueDepth(depth int) PoolOption {
	return func(p *Pool) { p.queueDepth = depth }
}

// WithLogger sets the logging backend.
func WithLogger(handler slog.Handler) PoolOption {
	return func(p *Pool) {
		if handler != nil {
			p.handler = handler
		}
	}
}

// Pool is a fixed set of long-lived workers. Each worker owns a bounded inbound
// queue; all of them report into one shared unbounded result queue.
//
// Dispatch, TryCollect and Collect are meant to be driven by a single goroutine
// (the walker). Close may be called from anywhere.
type Pool struct {
	fsys       collect.FileSystem
	fileOpts   collect.FileOptions
	queueDepth int
	handler    slog.Handler
	logger     *slog.Logger

	mu         sync.Mutex // guards inbound, cursor, dispatched and closed
	inbound    []chan string
	cursor     int
	dispatched int
	closed     bool

	results   *resultQueue
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewPool starts workers goroutines and returns the running pool.
func NewPool(workers int, opts ...PoolOption) (*Pool, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: %w (got %d)", ErrConfigValidation, ErrInvalidWorkerCount, workers)
	}
	p := &Pool{
		fsys:       collect.OSFileSystem{},
		queueDepth: DefaultQueueDepth,
		handler:    slog.NewTextHandler(io.Discard, nil),
		results:    newResultQueue(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.queueDepth < 0 {
		return nil, fmt.Errorf("%w: queue depth must not be negative (got %d)", ErrConfigValidation, p.queueDepth)
	}
	if p.fileOpts.Extractor == nil {
		p.fileOpts.Extractor = dates.DefaultRecognizer()
	}
	if p.fileOpts.Decoder == nil {
		p.fileOpts.Decoder = encoding.NewCharsetHandler("")
	}
	p.logger = slog.New(p.handler).With(slog.String("component", "pool"))

	p.inbound = make([]chan string, workers)
	p.logger.Debug("Starting worker pool", slog.Int("workers", workers), slog.Int("queueDepth", p.queueDepth))
	for i := range p.inbound {
		p.inbound[i] = make(chan string, p.queueDepth)
		p.wg.Add(1)
		go p.runWorker(i, p.inbound[i])
	}
	return p, nil
}

// Workers returns the number of workers.
func (p *Pool) Workers() int { return len(p.inbound) }

// Dispatched returns how many paths have been dispatched since the pool started.
func (p *Pool) Dispatched() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dispatched
}

// Dispatch hands path to the next worker in round-robin order. It blocks only
// while that worker's inbound queue is full.
func (p *Pool) Dispatch(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	worker := p.cursor
	p.cursor = (p.cursor + 1) % len(p.inbound)
	p.inbound[worker] <- path
	p.dispatched++
	return nil
}

// TryCollect returns a ready result without waiting.
func (p *Pool) TryCollect() (Result, bool) {
	return p.results.tryPop()
}

// Collect waits up to timeout for the next result. ok is false when the timeout
// elapsed first. A timeout <= 0 waits until ctx is done. It returns ctx.Err() on
// cancellation and ErrPoolClosed once the pool has been closed.
func (p *Pool) Collect(ctx context.Context, timeout time.Duration) (res Result, ok bool, err error) {
	return p.results.pop(ctx, timeout)
}

// Pending returns the number of results waiting to be collected.
func (p *Pool) Pending() int { return p.results.len() }

// Close stops accepting work, waits for every worker to finish its queue and
// exit, and then discards any uncollected results. It is safe to call more than once.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		for _, ch := range p.inbound {
			close(ch)
		}
		p.mu.Unlock()

		p.wg.Wait()
		p.results.close()
		p.logger.Debug("Worker pool closed", slog.Int("dispatched", p.Dispatched()))
	})
	return nil
}

func (p *Pool) runWorker(id int, inbound <-chan string) {
	defer p.wg.Done()
	logger := p.logger.With(slog.Int("workerID", id))
	logger.Debug("Worker started")
	for path := range inbound {
		if !p.results.push(p.process(logger, path)) {
			logger.Debug("Result dropped after close", slog.String("path", path))
		}
	}
	logger.Debug("Worker shutting down (queue closed)")
}

// process runs the single-file pipeline, converting a panic into an ErrWorkerPanic result.
func (p *Pool) process(logger *slog.Logger, path string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered in worker", slog.String("path", path), slog.Any("panicValue", r))
			res = Result{Path: path, Err: collect.NewScanError(path, ErrWorkerPanic, fmt.Errorf("%v", r))}
		}
	}()
	logger.Debug("Processing file", slog.String("path", path))
	record, err := collect.FromFile(p.fsys, path, p.fileOpts)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	return Result{Path: path, Record: record}
}
