package concurrent

import (
	"sync"
)

type JobFunc[T any, G any] func(job T) G

// WorkerFactory builds the job function of one worker. state owned by a single worker
// (a connection, a buffer) lives in the returned closure.
type WorkerFactory[T any, G any] func(workerId int) JobFunc[T, G]

type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan T
	results    chan G
	wg         sync.WaitGroup
}

func NewWorkerPool[T any, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan T, jobQueueSize),
		results:    make(chan G, jobQueueSize),
	}
}

func (wp *WorkerPool[T, G]) worker(jobFunc JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- jobFunc(job)
	}
}

// Start runs numWorkers workers that all share jobFunc.
func (wp *WorkerPool[T, G]) Start(jobFunc JobFunc[T, G]) {
	wp.StartWithFactory(func(int) JobFunc[T, G] { return jobFunc })
}

// StartWithFactory runs numWorkers workers, worker i uses newWorker(i).
func (wp *WorkerPool[T, G]) StartWithFactory(newWorker WorkerFactory[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(newWorker(i))
	}
}

// Wait blocks until every worker returned, then closes the results channel.
// Close must have been called, otherwise the workers never stop.
func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) AddJob(job T) {
	wp.jobQueue <- job
}

func (wp *WorkerPool[T, G]) CollectResults() chan G {
	return wp.results
}

// Close signals that no more jobs will be added.
func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
}
