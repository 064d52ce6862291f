// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

package pix

import (
	"sync"
	"sync/atomic"
)

// Counters accumulates per-search-index match counts. It is created
// zeroed, incremented monotonically during a run, and read once at the
// end. Accumulation is commutative, so any interleaving of increments
// yields the same final sums.
//
// Concurrent writers must use either AtomicInc for every match or a
// private plain slice handed to Merge exactly once; mixing unsynchronized
// Inc calls with concurrency is a data race.
type Counters struct {
	counts []uint64
	mu     sync.Mutex
}

// NewCounters creates a zeroed counter array of n slots, one per
// search-list index.
func NewCounters(n int) *Counters {
	return &Counters{counts: make([]uint64, n)}
}

// Len returns the number of slots.
func (c *Counters) Len() int {
	return len(c.counts)
}

// Inc increments slot i without synchronization. Only for a single-owner
// caller: the sequential executor, or a merge target that is otherwise
// quiescent.
func (c *Counters) Inc(i int) {
	c.counts[i]++
}

// AtomicInc increments slot i with an atomic add, immediately visible to
// all workers.
func (c *Counters) AtomicInc(i int) {
	atomic.AddUint64(&c.counts[i], 1)
}

// Merge adds a worker-local count array into the shared slots under the
// merge lock. Each worker calls Merge at most once, after its own work is
// complete.
func (c *Counters) Merge(local []uint64) {
	c.mu.Lock()
	for i, v := range local {
		c.counts[i] += v
	}
	c.mu.Unlock()
}

// Count returns the final count for slot i.
func (c *Counters) Count(i int) uint64 {
	return c.counts[i]
}

// Counts returns the backing count slice. Callers must not retain it
// across a run.
func (c *Counters) Counts() []uint64 {
	return c.counts
}

// Equal reports whether two counter arrays hold identical totals.
func (c *Counters) Equal(other *Counters) bool {
	if len(c.counts) != len(other.counts) {
		return false
	}
	for i := range c.counts {
		if c.counts[i] != other.counts[i] {
			return false
		}
	}
	return true
}
