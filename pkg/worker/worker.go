package worker

import (
	"sync"
)

// Task is one unit of work executed by the pool.
type Task = func()

// Pool is a bounded worker pool: at most size tasks run concurrently, the
// rest wait. Used by the broadcast fan-out so one slow recipient (or its
// retry backoff) never blocks the others.
type Pool struct {
	size   int
	jobs   chan Task
	wg     sync.WaitGroup
	runWg  sync.WaitGroup
	closed sync.Once
}

// NewPool starts size worker goroutines immediately.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{
		size: size,
		jobs: make(chan Task),
	}
	p.runWg.Add(size)
	for i := 0; i < size; i++ {
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.runWg.Done()
	for task := range p.jobs {
		task()
		p.wg.Done()
	}
}

// Submit queues a task. Blocks while every worker is busy, which naturally
// bounds in-flight work.
func (p *Pool) Submit(task Task) {
	p.wg.Add(1)
	p.jobs <- task
}

// Wait blocks until every submitted task has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Close stops the workers after queued tasks drain. The pool cannot be
// reused afterwards.
func (p *Pool) Close() {
	p.closed.Do(func() {
		close(p.jobs)
	})
	p.runWg.Wait()
}
