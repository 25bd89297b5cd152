// Released under an MIT license. See LICENSE.

// Package pool provides the worker goroutines that run detached futures.
package pool

import (
	"sync"
)

// T (pool) runs jobs on a fixed number of long lived workers.
type T struct {
	sync.Mutex
	closed   bool
	requestq chan func()
	wg       sync.WaitGroup
}

type pool = T

// New starts n workers.
func New(n int) *T {
	if n < 1 {
		n = 1
	}

	p := &T{requestq: make(chan func())}

	p.wg.Add(n)

	for i := 0; i < n; i++ {
		go p.service()
	}

	return p
}

// Close stops accepting jobs and waits for queued jobs to finish.
func (p *pool) Close() {
	p.Lock()
	if p.closed {
		p.Unlock()

		return
	}

	p.closed = true
	close(p.requestq)
	p.Unlock()

	p.wg.Wait()
}

// Submit hands job to an idle worker. When every worker is busy the job
// gets a goroutine of its own so that a job waiting on another job cannot
// starve the pool. Submit returns false if the pool is closed.
func (p *pool) Submit(job func()) bool {
	p.Lock()
	defer p.Unlock()

	if p.closed {
		return false
	}

	select {
	case p.requestq <- job:
	default:
		p.wg.Add(1)

		go func() {
			defer p.wg.Done()

			job()
		}()
	}

	return true
}

func (p *pool) service() {
	defer p.wg.Done()

	for job := range p.requestq {
		job()
	}
}
