package commonroad

import (
	"sync"
)

type jobFunc[T any, G any] func(job T) G

// workerPool runs jobs on fixed number of goroutines. Results come in order of completion
type workerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan T
	results    chan G
	wg         sync.WaitGroup
}

func newWorkerPool[T any, G any](numWorkers, jobQueueSize int) *workerPool[T, G] {
	return &workerPool[T, G]{
		numWorkers: max(numWorkers, 1),
		jobQueue:   make(chan T, jobQueueSize),
		results:    make(chan G, jobQueueSize),
	}
}

func (wp *workerPool[T, G]) worker(fn jobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- fn(job)
	}
}

func (wp *workerPool[T, G]) start(fn jobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(fn)
	}
}

func (wp *workerPool[T, G]) addJob(job T) {
	wp.jobQueue <- job
}

// wait closes job queue and closes results once every worker is done
func (wp *workerPool[T, G]) wait() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.results)
}

func (wp *workerPool[T, G]) collectResults() chan G {
	return wp.results
}
