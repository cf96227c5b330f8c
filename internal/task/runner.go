// Package task runs detached background units of work. A spawned task
// has its own panic boundary and no result channel back to the spawner:
// outcomes are observable only through side effects (progress messages,
// logs).
package task

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Runner spawns fire-and-forget goroutines. With a concurrency limit,
// excess tasks queue inside their own goroutine so the caller still
// returns immediately.
type Runner struct {
	logger *slog.Logger
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
}

// New creates a runner. maxConcurrent <= 0 means unbounded.
func New(logger *slog.Logger, maxConcurrent int64) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{logger: logger}
	if maxConcurrent > 0 {
		r.sem = semaphore.NewWeighted(maxConcurrent)
	}
	return r
}

// Go runs fn detached. The caller never blocks on or learns the
// outcome; panics are recovered and logged. The context passed to fn is
// background-scoped: a task outlives the request that spawned it.
func (r *Runner) Go(name string, fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("background task panicked", "task", name, "panic", rec)
			}
		}()

		ctx := context.Background()
		if r.sem != nil {
			if err := r.sem.Acquire(ctx, 1); err != nil {
				r.logger.Error("failed to acquire task slot", "task", name, "error", err)
				return
			}
			defer r.sem.Release(1)
		}

		fn(ctx)
	}()
}

// Wait blocks until every spawned task has finished. Used by tests and
// shutdown paths; callers of Go never need it.
func (r *Runner) Wait() {
	r.wg.Wait()
}
