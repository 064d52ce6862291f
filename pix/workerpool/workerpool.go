// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides a persistent, reusable worker pool for
// parallel execution. Unlike per-call goroutine spawning, a Pool is
// created once, sized by the run-time worker count, and reused across
// many operations, eliminating spawn overhead between passes.
//
// Usage:
//
//	pool := workerpool.New(8)
//	defer pool.Close()
//
//	err := pool.Run(pool.NumWorkers(), func(worker int) {
//	    // cooperative work keyed by worker index
//	})
package workerpool

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a persistent worker pool. Workers are spawned once at creation
// and reused until Close.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
}

// workItem is a single unit handed to a pool worker.
type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

// New creates a pool with the given number of workers, spawned
// immediately. numWorkers <= 0 selects GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		// Buffer enough for all workers to have pending work
		workC: make(chan workItem, numWorkers*2),
	}

	for range numWorkers {
		go p.worker()
	}

	return p
}

// worker is the main loop for each persistent worker goroutine.
func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close shuts down the pool. All pending work completes first. Calling
// Close multiple times is safe.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// Run executes fn concurrently on members team members, passing each its
// member index in [0, members), and blocks until every member returns.
// members is clamped to the pool size so that every member occupies its
// own pool worker; fn may therefore rendezvous on a shared Barrier sized
// to the team.
//
// A panic inside any member is recovered and funneled through a single
// reporting path: Run returns the first one as an error, and callers must
// discard the run's partial state rather than merge it. The funnel only
// fires once the panicking member has unwound, so a barrier-coupled team
// must not let a panic escape past its rendezvous point silently: fn
// should Abort the shared Barrier before re-raising (a deferred recover
// that poisons and re-panics), and treat a false Wait as the signal to
// stop. Otherwise the survivors block forever and Run never returns.
func (p *Pool) Run(members int, fn func(worker int)) error {
	if members < 1 {
		members = 1
	}
	if members > p.numWorkers {
		members = p.numWorkers
	}

	var (
		failOnce sync.Once
		failErr  error
	)
	wrapped := func(worker int) {
		defer func() {
			if r := recover(); r != nil {
				failOnce.Do(func() {
					failErr = fmt.Errorf("worker %d: %v", worker, r)
				})
			}
		}()
		fn(worker)
	}

	var wg sync.WaitGroup
	wg.Add(members)

	if p.closed.Load() {
		// The pool goroutines are gone; fall back to bare goroutines so
		// team semantics (all members running concurrently) still hold.
		for w := range members {
			go func() {
				defer wg.Done()
				wrapped(w)
			}()
		}
		wg.Wait()
		return failErr
	}

	for w := range members {
		p.workC <- workItem{
			fn:      func() { wrapped(w) },
			barrier: &wg,
		}
	}
	wg.Wait()
	return failErr
}
