package scanner

import (
	"context"
	"sync"
	"time"
)

// resultQueue is an unbounded many-producer, single-consumer queue.
// push never blocks, so workers can't stall on a slow consumer.
type resultQueue struct {
	mu     sync.Mutex
	items  []Result
	closed bool
	notify chan struct{} // capacity 1; signalled after every push and on close
}

func newResultQueue() *resultQueue {
	return &resultQueue{notify: make(chan struct{}, 1)}
}

// push appends r and reports whether it was accepted. Results pushed after close are dropped.
func (q *resultQueue) push(r Result) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, r)
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// tryPop removes the oldest result without waiting.
func (q *resultQueue) tryPop() (Result, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Result{}, false
	}
	r := q.items[0]
	q.items[0] = Result{}
	q.items = q.items[1:]
	return r, true
}

// pop waits up to timeout for a result. A timeout <= 0 waits until ctx is done.
// It returns ErrPoolClosed once the queue is closed and empty.
func (q *resultQueue) pop(ctx context.Context, timeout time.Duration) (Result, bool, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	for {
		if r, ok := q.tryPop(); ok {
			return r, true, nil
		}
		if q.isClosed() {
			return Result{}, false, ErrPoolClosed
		}
		select {
		case <-q.notify:
		case <-expired:
			return Result{}, false, nil
		case <-ctx.Done():
			return Result{}, false, ctx.Err()
		}
	}
}

func (q *resultQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *resultQueue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// close discards pending results and wakes any waiting consumer.
func (q *resultQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.items = nil
	close(q.notify)
}
