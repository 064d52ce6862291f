// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import "sync"

// Barrier is a reusable synchronization point for a fixed number of
// parties. Each call to Wait blocks until all parties have called it,
// then every party is released and the barrier resets for the next cycle.
//
// The release of cycle k happens-before any party returns from its cycle-k
// Wait, so writes made before the barrier are visible to every party after
// it.
type Barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	parties int
	arrived int
	cycle   uint64
	aborted bool
}

// NewBarrier creates a barrier for the given number of parties.
// parties < 1 is treated as 1, which makes Wait a no-op.
func NewBarrier(parties int) *Barrier {
	if parties < 1 {
		parties = 1
	}
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Parties returns the number of parties the barrier waits for.
func (b *Barrier) Parties() int {
	return b.parties
}

// Wait blocks until all parties have reached the barrier, then releases
// them and begins a new cycle. It reports whether the release was a
// normal rendezvous; false means the barrier was aborted and the caller
// must stop participating (its team is short a party and can never
// complete another cycle).
func (b *Barrier) Wait() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.aborted {
		return false
	}
	cycle := b.cycle
	b.arrived++
	if b.arrived == b.parties {
		b.arrived = 0
		b.cycle++
		b.cond.Broadcast()
		return true
	}
	for cycle == b.cycle && !b.aborted {
		b.cond.Wait()
	}
	return !b.aborted
}

// Abort poisons the barrier: every party currently blocked in Wait is
// released with a false result, and every later Wait returns false
// immediately. A team member that fails mid-cycle calls Abort so the
// surviving members drain instead of waiting for a party that will never
// arrive. Abort is permanent.
func (b *Barrier) Abort() {
	b.mu.Lock()
	b.aborted = true
	b.cond.Broadcast()
	b.mu.Unlock()
}
