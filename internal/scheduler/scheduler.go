// Package scheduler fans collection tasks out over a bounded worker
// pool and gathers their transactions.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	"github.com/jfiorezelogos/lg-logistica-backend/internal/domain/transaction"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/guru"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/logger"
)

// Task is one unit of collection work: a product slice over a window,
// labeled for progress reporting.
type Task struct {
	Label  string
	Params guru.FetchParams
}

// Fetcher is what the scheduler drives; satisfied by *guru.Client.
type Fetcher interface {
	FetchWithRetry(ctx context.Context, p guru.FetchParams) ([]transaction.Transaction, error)
}

// TaskFailure records a task whose slice yielded nothing because the
// fetch was abandoned, not because there were no sales.
type TaskFailure struct {
	Label string
	Err   error
}

// ProgressFunc is called once per finished task with the task's label
// and the running done/total counts.
type ProgressFunc func(label string, done, total int)

// Scheduler runs tasks concurrently up to a configured width.
type Scheduler struct {
	fetcher        Fetcher
	maxConcurrency int
	log            *logger.Logger
}

func New(fetcher Fetcher, maxConcurrency int, log *logger.Logger) *Scheduler {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Scheduler{fetcher: fetcher, maxConcurrency: maxConcurrency, log: log}
}

// Run executes all tasks and returns their transactions in one slice,
// plus the failures of tasks whose fetch was abandoned. Each task is
// isolated: an abandoned task does not affect its siblings. Order of
// the combined result follows task completion, not submission; callers
// that need determinism sort downstream.
func (s *Scheduler) Run(ctx context.Context, tasks []Task, progress ProgressFunc) ([]transaction.Transaction, []TaskFailure) {
	if len(tasks) == 0 {
		return nil, nil
	}

	width := s.maxConcurrency
	if len(tasks) < width {
		width = len(tasks)
	}

	var (
		mu       sync.Mutex
		all      []transaction.Transaction
		failures []TaskFailure
		done     atomic.Int64
	)

	p := pool.New().WithMaxGoroutines(width)
	for _, task := range tasks {
		task := task
		p.Go(func() {
			txs, err := s.fetcher.FetchWithRetry(ctx, task.Params)

			mu.Lock()
			all = append(all, txs...)
			if err != nil {
				failures = append(failures, TaskFailure{Label: task.Label, Err: err})
			}
			mu.Unlock()

			n := int(done.Add(1))
			s.log.Debugw("task finished", "label", task.Label, "rows", len(txs), "done", n, "total", len(tasks))
			if progress != nil {
				progress(task.Label, n, len(tasks))
			}
		})
	}
	p.Wait()

	return all, failures
}
