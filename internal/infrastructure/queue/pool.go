package queue

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

const channelBuffer = 256

var (
	// ErrPoolClosed is returned by Submit once the pool has stopped.
	ErrPoolClosed = errors.New("queue: pool closed")
	// ErrJobPanicked is returned by Submit when fn panicked.
	ErrJobPanicked = errors.New("queue: job panicked")
)

// Pool runs CPU-bound jobs on a fixed set of worker goroutines so that
// expensive work (password hashing) cannot occupy every request goroutine.
type Pool struct {
	jobs    chan *job
	quit    chan struct{}
	workers int
	log     zerolog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

type job struct {
	ctx  context.Context
	fn   func()
	done chan struct{}
	// err is set before done is closed when fn did not run to completion.
	err error
}

// NewPool creates a Pool with numWorkers workers.
// If numWorkers <= 0, one worker per CPU is used.
func NewPool(numWorkers int, log zerolog.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{
		jobs:    make(chan *job, channelBuffer),
		quit:    make(chan struct{}),
		workers: numWorkers,
		log:     log,
	}
}

// Start launches the worker goroutines. Workers exit when ctx is cancelled or
// Stop is called. Calling Start more than once has no effect.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.runWorker(ctx, i)
		}
		p.log.Debug().Int("workers", p.workers).Msg("worker pool started")
	})
}

// Stop signals all workers to exit and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() { close(p.quit) })
	p.wg.Wait()
}

// Submit queues fn and blocks until it has run or ctx is done. A job whose
// caller gave up before a worker picked it up is skipped, and Submit reports
// the context error rather than nil.
func (p *Pool) Submit(ctx context.Context, fn func()) error {
	j := &job{ctx: ctx, fn: fn, done: make(chan struct{})}

	select {
	case p.jobs <- j:
	case <-p.quit:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-j.done:
		return j.err
	case <-p.quit:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Depth reports the number of jobs waiting for a worker.
func (p *Pool) Depth() int {
	return len(p.jobs)
}

// Workers reports the configured worker count.
func (p *Pool) Workers() int {
	return p.workers
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.quit:
			return
		case j := <-p.jobs:
			if err := j.ctx.Err(); err != nil {
				p.log.Debug().Int("worker_id", id).Msg("skipping abandoned job")
				j.err = err
				close(j.done)
				continue
			}
			p.run(id, j)
		}
	}
}

func (p *Pool) run(id int, j *job) {
	defer close(j.done)
	defer func() {
		if r := recover(); r != nil {
			j.err = ErrJobPanicked
			p.log.Error().Interface("panic", r).Int("worker_id", id).Msg("job panicked")
		}
	}()
	j.fn()
}
