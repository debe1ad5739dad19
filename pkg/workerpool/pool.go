// Package workerpool provides a bounded goroutine pool with backpressure.
//
// When every worker is busy and the queue is full, Submit returns
// ErrPoolFull at once so the caller can fall back (the checkout flow sends
// the confirmation mail inline in that case):
//
//	err := pool.Submit("order-confirmation", func(ctx context.Context) error {
//	    return notifier.OrderConfirmation(ctx, order)
//	})
//	if err != nil {
//	    // run it on the request goroutine instead
//	}
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

var ErrPoolFull = errors.New("workerpool: pool is full")

var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Task is a unit of background work.
type Task func(ctx context.Context) error

type job struct {
	name string
	task Task
}

// Pool is a bounded goroutine pool.
type Pool struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
	jobs   chan job
	wg     sync.WaitGroup
}

// New starts size workers with a queue of 2×size.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(chan job, size*2),
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(name string, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobs <- job{name: name, task: task}:
		return nil
	default:
		metrics.PoolTasks.WithLabelValues(name, "rejected").Inc()
		return ErrPoolFull
	}
}

// SubmitWait blocks until the task is queued or ctx is done.
func (p *Pool) SubmitWait(ctx context.Context, name string, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobs <- job{name: name, task: task}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish or for
// ctx to expire, whichever comes first. Safe to call more than once.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		p.run(j)
	}
}

func (p *Pool) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			metrics.PoolTasks.WithLabelValues(j.name, "panic").Inc()
			logger.Error("workerpool: task panicked", "task", j.name, "panic", fmt.Sprint(r))
		}
	}()

	if err := j.task(p.ctx); err != nil {
		metrics.PoolTasks.WithLabelValues(j.name, "failed").Inc()
		logger.Error("workerpool: task failed", "task", j.name, "error", err)
		return
	}
	metrics.PoolTasks.WithLabelValues(j.name, "ok").Inc()
}
