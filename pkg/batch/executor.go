// Package batch provides bounded-concurrency execution of independent
// units of work with wall-clock timing.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Job is a single asynchronous unit of work. A Job must be safe to run
// concurrently with other jobs in the same batch.
type Job[T any] func(ctx context.Context) (T, error)

// Result holds the outcome of one batch run.
type Result[T any] struct {
	// Values are the successful job results, in completion order.
	Values []T

	// Errors are the failures, one per failed job. A failed job does not
	// affect its siblings; the batch always runs to completion.
	Errors []error

	// Elapsed is the wall-clock duration from first dispatch until the
	// last job settled.
	Elapsed time.Duration
}

// ErrorCount returns the number of failed jobs.
func (r Result[T]) ErrorCount() int {
	return len(r.Errors)
}

// Run executes jobs with at most limit in flight at once. Workers pull from
// a shared queue, so a new job starts as soon as any in-flight job settles.
// Every job is started exactly once and Run returns only after all jobs have
// settled (succeeded or failed). There is no fail-fast and no per-job
// timeout; ctx is passed through to each job as-is.
//
// A limit below 1 is treated as 1. A limit above len(jobs) never has more
// than len(jobs) jobs in flight, since workers without queued work exit.
func Run[T any](ctx context.Context, jobs []Job[T], limit int) Result[T] {
	if limit < 1 {
		limit = 1
	}
	workers := limit
	if workers > len(jobs) {
		workers = len(jobs)
	}

	var (
		mu     sync.Mutex
		values = make([]T, 0, len(jobs))
		errs   []error
	)

	start := time.Now()

	queue := make(chan Job[T], len(jobs))
	for _, job := range jobs {
		queue <- job
	}
	close(queue)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				value, err := job(ctx)

				mu.Lock()
				if err != nil {
					errs = append(errs, err)
				} else {
					values = append(values, value)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	elapsed := time.Since(start)

	if len(errs) > 0 {
		log.Warn().
			Int("errors", len(errs)).
			Int("jobs", len(jobs)).
			Int("concurrency", limit).
			Dur("elapsed", elapsed).
			Msg("Batch completed with errors")
	}

	return Result[T]{
		Values:  values,
		Errors:  errs,
		Elapsed: elapsed,
	}
}
