// Package jobs runs background work whose results are applied on the owner's goroutine
package jobs

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/remeh/sizedwaitgroup"
)

// ErrClosed is returned by callers that could not order work on a closed queue
var ErrClosed = errors.New("job queue closed")

// Job is a unit of background work
//   - Run executes on a worker goroutine and must not touch shared state
//   - Finish executes on the goroutine that calls Queue.Pump, with Run's error
type Job interface {
	Run() error
	Finish(err error)
}

type result struct {
	job Job
	err error
}

// Queue runs jobs with bounded parallelism and defers their Finish phase
// Finish is the only synchronization point between workers and the owner
type Queue struct {
	workers sizedwaitgroup.SizedWaitGroup
	all     sync.WaitGroup

	mu   sync.Mutex
	done []result

	pending atomic.Int64
	closed  atomic.Bool
}

// NewQueue creates a queue running at most workers jobs at once
// workers <= 0 selects runtime.NumCPU()
func NewQueue(workers int) *Queue {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Queue{
		workers: sizedwaitgroup.New(workers),
	}
}

// Order schedules job; returns false if the queue is closed
func (q *Queue) Order(job Job) bool {
	if q.closed.Load() {
		return false
	}

	q.pending.Add(1)
	q.all.Add(1)
	go func() {
		defer q.all.Done()

		q.workers.Add()
		err := q.run(job)
		q.workers.Done()

		q.mu.Lock()
		q.done = append(q.done, result{job: job, err: err})
		q.mu.Unlock()
	}()
	return true
}

// run converts a panicking job into an error so Finish still runs
func (q *Queue) run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run()
}

// Pump runs Finish for every completed job on the calling goroutine
// Non-blocking; returns the number of jobs finished
func (q *Queue) Pump() int {
	q.mu.Lock()
	done := q.done
	q.done = nil
	q.mu.Unlock()

	for _, r := range done {
		r.job.Finish(r.err)
		q.pending.Add(-1)
	}
	return len(done)
}

// Wait blocks until every ordered job has run, then pumps
func (q *Queue) Wait() int {
	q.all.Wait()
	return q.Pump()
}

// Pending returns jobs ordered but not yet finished
func (q *Queue) Pending() int {
	return int(q.pending.Load())
}

// Close rejects new jobs and drains the ones in flight
// Idempotent
func (q *Queue) Close() {
	if q.closed.CompareAndSwap(false, true) {
		q.Wait()
	}
}
