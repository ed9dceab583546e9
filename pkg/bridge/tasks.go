package bridge

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Reporter receives the errors of work that runs after the caller has been answered.
type Reporter interface {
	Report(ctx context.Context, operation string, err error)
}

// ReporterFunc adapts a function to a Reporter.
type ReporterFunc func(ctx context.Context, operation string, err error)

// Report implements Reporter.
func (f ReporterFunc) Report(ctx context.Context, operation string, err error) {
	f(ctx, operation, err)
}

// Tasks runs background work detached from the request that started it. At most maxConcurrent tasks run at
// once; further tasks wait for a slot without blocking the caller.
type Tasks struct {
	sem      *semaphore.Weighted
	reporter Reporter
	wg       sync.WaitGroup
}

// NewTasks creates a task runner reporting failures to reporter.
func NewTasks(maxConcurrent int64, reporter Reporter) *Tasks {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Tasks{
		sem:      semaphore.NewWeighted(maxConcurrent),
		reporter: reporter,
	}
}

// Go runs fn in the background. The context keeps the values of ctx but is never cancelled with it, so the
// task outlives the request.
func (t *Tasks) Go(ctx context.Context, operation string, fn func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		if err := t.sem.Acquire(ctx, 1); err != nil {
			t.report(ctx, operation, fmt.Errorf("error acquiring task slot: %w", err))
			return
		}
		defer t.sem.Release(1)

		defer func() {
			if rec := recover(); rec != nil {
				t.report(ctx, operation, fmt.Errorf("panic: %v", rec))
			}
		}()

		if err := fn(ctx); err != nil {
			t.report(ctx, operation, err)
		}
	}()
}

// Wait blocks until every started task has finished.
func (t *Tasks) Wait() {
	t.wg.Wait()
}

func (t *Tasks) report(ctx context.Context, operation string, err error) {
	if t.reporter != nil {
		t.reporter.Report(ctx, operation, err)
	}
}
