// Package pool implements the fixed-size worker pool that drains a
// queue.Queue, matching the wp_start/wp_add_task/wp_finish shape exercised
// in original_source/mtgf/test/tWorkerPool.cpp and the lifecycle idioms the
// teacher's runner package tests (start/stop, join-on-shutdown).
package pool

import (
	"sync"

	"github/sabouaram/getfile/queue"
)

// poison is the sentinel that tells a worker to exit. Modeled as a
// dedicated item variant (task-or-shutdown), rather than a magic pointer
// value, as spec's design notes call for in a language with typed sums.
type item[T any] struct {
	task   T
	poison bool
}

// WorkFunc is invoked once per dequeued task, given the task and whatever
// per-worker data Start's factory produced (or globalData directly, if no
// factory was given).
type WorkFunc[T any] func(task T, workerData any)

// CreateWorkerDataFunc builds a worker's local data from the data shared by
// the whole pool. Returning nil is fine if a worker needs no local state
// beyond globalData.
type CreateWorkerDataFunc func(globalData any) any

// DestroyWorkerDataFunc releases what CreateWorkerDataFunc built, invoked
// sequentially from the controlling goroutine during Finish.
type DestroyWorkerDataFunc func(workerData any, globalData any)

// Pool is a fixed-N set of worker goroutines draining a shared queue.
type Pool[T any] struct {
	q          *queue.Queue[item[T]]
	numWorkers int
	workerData []any
	wg         sync.WaitGroup
}

// Start launches numWorkers goroutines, each running work for every task
// dequeued until a poison pill arrives. If createWorkerData is non-nil, it
// is called once per worker (from that worker's own goroutine) to build
// that worker's local data; otherwise every worker shares globalData
// directly.
func Start[T any](numWorkers int, work WorkFunc[T], createWorkerData CreateWorkerDataFunc, globalData any) *Pool[T] {
	p := &Pool[T]{
		q:          queue.New[item[T]](),
		numWorkers: numWorkers,
		workerData: make([]any, numWorkers),
	}
	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		i := i
		go func() {
			defer p.wg.Done()
			var data any
			if createWorkerData != nil {
				data = createWorkerData(globalData)
			} else {
				data = globalData
			}
			p.workerData[i] = data
			for {
				it := p.q.Dequeue()
				if it.poison {
					return
				}
				work(it.task, data)
			}
		}()
	}
	return p
}

// AddTask enqueues a task for some worker to run.
func (p *Pool[T]) AddTask(task T) {
	p.q.Enqueue(item[T]{task: task})
}

// Finish enqueues exactly numWorkers poison pills, waits for every worker
// to exit, then — from the calling goroutine, sequentially — invokes
// destroyWorkerData for each worker's local data. Every task enqueued
// before Finish is called is guaranteed to have been started by some
// worker by the time Finish returns.
func (p *Pool[T]) Finish(destroyWorkerData DestroyWorkerDataFunc, globalData any) {
	pills := make([]item[T], p.numWorkers)
	for i := range pills {
		pills[i] = item[T]{poison: true}
	}
	p.q.EnqueueMany(pills)
	p.wg.Wait()

	if destroyWorkerData != nil {
		for _, data := range p.workerData {
			destroyWorkerData(data, globalData)
		}
	}
}
