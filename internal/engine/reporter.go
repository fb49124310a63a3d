// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"log/slog"
	"sync"

	"github.com/pdiddy/batchconv/internal/worklist"
	"github.com/pdiddy/batchconv/pkg/types"
)

// reporter applies worker outcomes to the work list from a single
// goroutine. Workers only append to an unbounded queue, so a slow observer
// delays the reporter but never a worker.
type reporter struct {
	list     *worklist.List
	observer Observer
	logger   *slog.Logger

	mu      sync.Mutex
	queue   []types.Outcome
	closed  bool
	wake    chan struct{}
	pending sync.WaitGroup
	done    chan struct{}

	// Owned by the loop goroutine; read only after close.
	converted int
	failed    int
}

func newReporter(list *worklist.List, obs Observer, logger *slog.Logger) *reporter {
	r := &reporter{
		list:     list,
		observer: obs,
		logger:   logger,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go r.loop()
	return r
}

// report enqueues an outcome and returns without waiting for it to be
// applied.
func (r *reporter) report(o types.Outcome) {
	r.pending.Add(1)
	r.mu.Lock()
	r.queue = append(r.queue, o)
	r.mu.Unlock()
	r.signal()
}

// flush waits until every reported outcome has been applied.
func (r *reporter) flush() {
	r.pending.Wait()
}

// close stops the loop after the queued outcomes are applied.
func (r *reporter) close() {
	r.mu.Lock()
	already := r.closed
	r.closed = true
	r.mu.Unlock()
	if !already {
		r.signal()
	}
	<-r.done
}

func (r *reporter) signal() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *reporter) loop() {
	defer close(r.done)
	for range r.wake {
		r.mu.Lock()
		batch, closed := r.queue, r.closed
		r.queue = nil
		r.mu.Unlock()

		for _, o := range batch {
			r.apply(o)
			r.pending.Done()
		}
		if closed {
			r.mu.Lock()
			empty := len(r.queue) == 0
			r.mu.Unlock()
			if empty {
				return
			}
			r.signal()
		}
	}
}

func (r *reporter) apply(o types.Outcome) {
	if o.Success {
		r.list.Remove(o.Item.ID)
		r.converted++
		r.logger.Info("converted", "path", o.Item.Path, "output", o.OutputPath,
			"charset", o.Charset, "duration", o.Duration)
	} else {
		r.list.Annotate(o.Item.ID, o.Message)
		r.failed++
		r.logger.Warn("conversion failed", "path", o.Item.Path, "error", o.Message)
	}
	r.observer.OnOutcome(o)
}
