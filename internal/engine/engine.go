// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine runs batch conversions over a shared work list.
//
// A run repeatedly snapshots the list and processes the snapshot as a wave
// of concurrent workers bounded by a permit count. Each worker reads its
// file through the charset reader, converts the text, and writes the
// result. Outcomes are handed to a single reporter goroutine, which removes
// converted items from the list and annotates failed ones. Items appended
// while a run is active are picked up by the next wave; an item is
// attempted at most once per run, so failed items stay in the list until
// the caller starts another run.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/batchconv/internal/charset"
	"github.com/pdiddy/batchconv/internal/convert"
	"github.com/pdiddy/batchconv/internal/logging"
	"github.com/pdiddy/batchconv/internal/worklist"
	"github.com/pdiddy/batchconv/pkg/types"
)

// active is set while any run is in progress in this process.
var active atomic.Bool

// TextReader reads a file and decodes it to UTF-8.
type TextReader interface {
	Read(ctx context.Context, path string) (charset.Text, error)
}

// Options configures an Engine.
type Options struct {
	// Concurrency is the permit count. Zero or less selects DefaultConcurrency.
	Concurrency int

	// LockFile, when non-empty, names a file lock that a run must hold in
	// addition to the in-process guard.
	LockFile string

	Logger   *slog.Logger
	Observer Observer
}

// Engine converts the files of a work list.
type Engine struct {
	reader      TextReader
	conv        convert.Converter
	concurrency int
	lockFile    string
	logger      *slog.Logger
	observer    Observer
}

// New returns an engine reading with reader and converting with conv.
func New(reader TextReader, conv convert.Converter, opts Options) *Engine {
	n := opts.Concurrency
	if n <= 0 {
		n = DefaultConcurrency()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	obs := opts.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	return &Engine{
		reader:      reader,
		conv:        conv,
		concurrency: n,
		lockFile:    opts.LockFile,
		logger:      logger.With("component", "engine"),
		observer:    obs,
	}
}

// DefaultConcurrency returns max(1, GOMAXPROCS-2), leaving headroom for
// the caller's own goroutines.
func DefaultConcurrency() int {
	n := runtime.GOMAXPROCS(0) - 2
	if n < 1 {
		return 1
	}
	return n
}

// Concurrency returns the engine's permit count.
func (e *Engine) Concurrency() int {
	return e.concurrency
}

// Run converts every item of list with the rule set configID and returns
// when no item remains that has not been attempted in this run. outputDir
// empty means files are overwritten in place; otherwise each file is
// written to outputDir under its base name.
//
// If another run is already active, Run returns immediately with
// RunResult.Ignored set and a nil error. Item failures never make Run
// fail; they are reported as outcomes and left in the list. Run returns an
// error only when ctx is cancelled or the run lock cannot be checked.
func (e *Engine) Run(ctx context.Context, list *worklist.List, configID, outputDir string) (types.RunResult, error) {
	res := types.RunResult{ConfigID: configID, OutputDir: outputDir}

	if !active.CompareAndSwap(false, true) {
		e.logger.Debug("run already active, ignoring")
		res.Ignored = true
		return res, nil
	}
	defer active.Store(false)

	unlock, ok, err := e.acquireLock()
	if err != nil {
		return res, err
	}
	if !ok {
		e.logger.Info("run lock held by another process, ignoring", "lock_file", e.lockFile)
		res.Ignored = true
		return res, nil
	}
	defer unlock()

	res.ID = uuid.New()
	res.Started = time.Now().UTC()
	log := e.logger.With("run_id", res.ID.String())
	log.Info("run started", "config_id", configID, "output_dir", outputDir, "concurrency", e.concurrency)
	e.observer.OnRunStart(res)

	rep := newReporter(list, e.observer, log)
	attempted := make(map[uuid.UUID]struct{})

	var runErr error
	for {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		wave := pending(list.Snapshot(), attempted)
		if len(wave) == 0 {
			break
		}
		res.Waves++
		log.Debug("wave started", "wave", res.Waves, "items", len(wave))
		e.observer.OnWaveStart(res.Waves, len(wave))

		stale, err := e.runWave(ctx, list, wave, configID, outputDir, rep)
		res.Stale += stale
		if err != nil {
			runErr = err
			break
		}
	}

	rep.close()
	res.Converted, res.Failed = rep.converted, rep.failed
	res.Finished = time.Now().UTC()
	log.Info("run finished",
		"waves", res.Waves, "converted", res.Converted, "failed", res.Failed,
		"stale", res.Stale, "elapsed", res.Elapsed())
	e.observer.OnRunDone(res)
	return res, runErr
}

// pending returns the snapshot items not yet attempted in this run and
// marks them attempted.
func pending(snapshot []types.WorkItem, attempted map[uuid.UUID]struct{}) []types.WorkItem {
	var out []types.WorkItem
	for _, it := range snapshot {
		if _, seen := attempted[it.ID]; seen {
			continue
		}
		attempted[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}

// runWave processes one snapshot and returns once every worker has
// finished and every outcome has been applied to the list.
func (e *Engine) runWave(ctx context.Context, list *worklist.List, wave []types.WorkItem, configID, outputDir string, rep *reporter) (int, error) {
	sem := semaphore.NewWeighted(int64(e.concurrency))

	var (
		wg      sync.WaitGroup
		stale   atomic.Int64
		errOnce sync.Once
		waveErr error
	)
	for _, item := range wave {
		wg.Add(1)
		go func(item types.WorkItem) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				errOnce.Do(func() { waveErr = fmt.Errorf("acquiring worker permit: %w", err) })
				return
			}
			defer sem.Release(1)

			if !list.Contains(item.ID) {
				stale.Add(1)
				return
			}
			if out, ok := e.process(ctx, item, configID, outputDir); ok {
				rep.report(out)
			}
		}(item)
	}
	wg.Wait()
	rep.flush()
	return int(stale.Load()), waveErr
}

// acquireLock takes the cross-process run lock when one is configured.
func (e *Engine) acquireLock() (unlock func(), ok bool, err error) {
	if e.lockFile == "" {
		return func() {}, true, nil
	}
	if err := os.MkdirAll(filepath.Dir(e.lockFile), 0o755); err != nil {
		return nil, false, fmt.Errorf("creating lock directory: %w", err)
	}
	lock := flock.New(e.lockFile)
	ok, err = lock.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("acquiring run lock %s: %w", e.lockFile, err)
	}
	if !ok {
		return nil, false, nil
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			e.logger.Warn("releasing run lock", "lock_file", e.lockFile, "error", err)
		}
	}, true, nil
}
