package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type queued struct {
	index int
	job   Job
}

type finished struct {
	index  int
	result Result
}

// Pool runs jobs on a fixed number of workers and hands results back in
// submission order
type Pool struct {
	workers   int
	jobQueue  chan queued
	results   chan finished
	collected chan map[int]Result
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu        sync.Mutex
	submitted int
	started   bool
}

// NewPool creates a pool whose jobs run under a child of parent
func NewPool(parent context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool{
		workers:   workers,
		jobQueue:  make(chan queued, workers*2),
		results:   make(chan finished, workers*2),
		collected: make(chan map[int]Result, 1),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start starts the workers and the result collector
func (p *Pool) Start() {
	p.mu.Lock()
	p.started = true
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.collect()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case q, ok := <-p.jobQueue:
			if !ok {
				return
			}
			r := q.job.Execute(p.ctx)
			select {
			case p.results <- finished{index: q.index, result: r}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// collect drains results while jobs are still being submitted, so a full
// results buffer never blocks the workers
func (p *Pool) collect() {
	slots := make(map[int]Result)
	for f := range p.results {
		slots[f.index] = f.result
	}
	p.collected <- slots
}

// Submit queues a job. It returns false when the pool was shut down or
// its context cancelled before the job could be queued.
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	index := p.submitted
	p.submitted++
	p.mu.Unlock()

	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- queued{index: index, job: job}:
		return true
	}
}

// Wait closes the queue, waits for every queued job and returns the
// results in submission order. Jobs that never ran are left out.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()

	p.mu.Lock()
	n, started := p.submitted, p.started
	p.mu.Unlock()

	var slots map[int]Result
	if started {
		slots = <-p.collected
	}
	p.cancel()

	results := make([]Result, 0, len(slots))
	for i := 0; i < n; i++ {
		if r, ok := slots[i]; ok && r != nil {
			results = append(results, r)
		}
	}
	return results
}

// Shutdown cancels in-flight jobs and stops the workers
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
