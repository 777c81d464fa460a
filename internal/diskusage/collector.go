package diskusage

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Progress is a snapshot of running totals during an analysis.
type Progress struct {
	// Files is the number of regular files measured so far.
	Files int64
	// Directories is the number of directories entered so far.
	Directories int64
	// Bytes is the cumulative apparent size measured so far.
	Bytes uint64
	// Errors is the number of absorbed failures so far.
	Errors int64
}

// counters tracks progress across every walk of one analysis.
// Fields are updated concurrently by fastwalk callbacks and analyzer workers.
type counters struct {
	files atomic.Int64
	dirs  atomic.Int64
	bytes atomic.Uint64
	errs  atomic.Int64
}

func (c *counters) snapshot() Progress {
	return Progress{
		Files:       c.files.Load(),
		Directories: c.dirs.Load(),
		Bytes:       c.bytes.Load(),
		Errors:      c.errs.Load(),
	}
}

// tally accumulates the usage of a single subtree.
type tally struct {
	size atomic.Uint64

	mu    sync.Mutex // Protects cause
	cause error
}

func (t *tally) add(n uint64) {
	addAtomic(&t.size, n)
}

// fail records err as the first cause if none was recorded yet.
func (t *tally) fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cause == nil {
		t.cause = err
	}
}

func (t *tally) usage() Usage {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Usage{
		Size:       t.size.Load(),
		Incomplete: t.cause != nil,
		Cause:      t.cause,
	}
}

// addSaturating returns a+b, clamped to math.MaxUint64.
func addSaturating(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}

	return a + b
}

// addAtomic performs a saturating add on v.
func addAtomic(v *atomic.Uint64, n uint64) {
	for {
		old := v.Load()
		if v.CompareAndSwap(old, addSaturating(old, n)) {
			return
		}
	}
}

// startProgressReporter invokes hook on each tick until ctx is done.
// The returned function stops the reporter and waits for it to exit.
func startProgressReporter(ctx context.Context, c *counters, hook func(Progress), interval time.Duration) func() {
	if hook == nil {
		return func() {}
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(c.snapshot())
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
