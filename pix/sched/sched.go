// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

// Package sched abstracts how a loop's iteration space [0, n) is
// distributed across a fixed set of workers.
//
// A Config names a policy kind plus an optional chunk size and is
// immutable: baked configurations are plain Config literals injected at
// executor construction, matrix configurations are parsed once from
// run-time input with Parse before a run starts. Either way the executing
// loop only ever sees a Plan.
//
// A Plan hands out iteration chunks through a single method, so any
// thread-pool implementation can consume one: each worker repeatedly calls
// Next with its own worker index until ok is false. Every index in [0, n)
// is claimed exactly once across all workers.
package sched

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// Kind selects an iteration-scheduling policy.
type Kind uint8

const (
	// Static assigns contiguous chunks to workers round-robin, fixed at
	// plan creation. No runtime rebalancing, no shared claiming state.
	Static Kind = iota

	// Dynamic lets idle workers claim the next unclaimed chunk on
	// demand. Claim order is nondeterministic; callers rely on
	// commutative merging for reproducible results.
	Dynamic

	// Guided claims chunks that start near remaining/workers and shrink
	// geometrically toward the chunk floor, trading claim overhead
	// against load balance.
	Guided

	// Auto delegates distribution to the implementation's heuristic and
	// ignores any chunk parameter.
	Auto
)

var kindNames = [...]string{"static", "dynamic", "guided", "auto"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Config is an immutable scheduling policy selection. Chunk <= 0 means the
// policy default: n/workers for Static, 1 for Dynamic and the Guided
// floor. Auto ignores Chunk entirely.
type Config struct {
	Kind  Kind
	Chunk int
}

func (c Config) String() string {
	if c.Chunk > 0 {
		return fmt.Sprintf("%s,%d", c.Kind, c.Chunk)
	}
	return c.Kind.String()
}

// Parse reads a "kind" or "kind,chunk" policy string, e.g. "dynamic,64".
// This is the matrix-mode entry point: run-time configuration is parsed
// once, before any loop executes.
func Parse(s string) (Config, error) {
	name, chunkStr, hasChunk := strings.Cut(strings.TrimSpace(s), ",")
	var cfg Config
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "static":
		cfg.Kind = Static
	case "dynamic":
		cfg.Kind = Dynamic
	case "guided":
		cfg.Kind = Guided
	case "auto":
		cfg.Kind = Auto
	default:
		return Config{}, fmt.Errorf("unknown schedule kind %q", name)
	}
	if hasChunk {
		chunk, err := strconv.Atoi(strings.TrimSpace(chunkStr))
		if err != nil || chunk < 1 {
			return Config{}, fmt.Errorf("invalid chunk size %q", chunkStr)
		}
		cfg.Chunk = chunk
	}
	return cfg, nil
}

// Plan partitions an iteration space across workers. Next returns the
// next chunk [start, end) for the calling worker, with ok false once the
// worker's share is exhausted. Next is safe for concurrent use as long as
// each worker index is used by a single goroutine.
type Plan interface {
	Next(worker int) (start, end int, ok bool)
}

// Plan creates a plan distributing [0, n) across the given worker count.
func (c Config) Plan(n, workers int) Plan {
	if workers < 1 {
		workers = 1
	}
	switch c.Kind {
	case Dynamic:
		chunk := c.Chunk
		if chunk < 1 {
			chunk = 1
		}
		return &dynamicPlan{n: n, chunk: chunk}
	case Guided:
		floor := c.Chunk
		if floor < 1 {
			floor = 1
		}
		return &guidedPlan{n: n, workers: workers, floor: floor}
	case Auto:
		return newAutoPlan(n, workers)
	default:
		return newStaticPlan(n, workers, c.Chunk)
	}
}

// staticPlan assigns chunk k (covering [k*chunk, (k+1)*chunk)) to worker
// k%workers. Each worker walks its own chunk sequence without touching
// shared state, so the assignment is fixed at creation.
type staticPlan struct {
	n       int
	chunk   int
	workers int
	next    []int // per-worker next chunk index
}

func newStaticPlan(n, workers, chunk int) *staticPlan {
	if chunk < 1 {
		chunk = n / workers
		if chunk < 1 {
			chunk = 1
		}
	}
	p := &staticPlan{n: n, chunk: chunk, workers: workers, next: make([]int, workers)}
	for w := range p.next {
		p.next[w] = w
	}
	return p
}

func (p *staticPlan) Next(worker int) (int, int, bool) {
	k := p.next[worker]
	start := k * p.chunk
	if start >= p.n {
		return 0, 0, false
	}
	p.next[worker] = k + p.workers
	return start, min(start+p.chunk, p.n), true
}

// dynamicPlan hands out fixed-size chunks from a shared atomic cursor in
// claim order.
type dynamicPlan struct {
	n      int
	chunk  int
	cursor atomic.Int64
}

func (p *dynamicPlan) Next(int) (int, int, bool) {
	start := int(p.cursor.Add(int64(p.chunk))) - p.chunk
	if start >= p.n {
		return 0, 0, false
	}
	return start, min(start+p.chunk, p.n), true
}

// guidedPlan claims max(remaining/workers, floor) iterations per grab via
// a CAS loop, so chunks shrink as the space drains.
type guidedPlan struct {
	n       int
	workers int
	floor   int
	cursor  atomic.Int64
}

func (p *guidedPlan) Next(int) (int, int, bool) {
	for {
		start := int(p.cursor.Load())
		if start >= p.n {
			return 0, 0, false
		}
		chunk := (p.n - start) / p.workers
		if chunk < p.floor {
			chunk = p.floor
		}
		end := min(start+chunk, p.n)
		if p.cursor.CompareAndSwap(int64(start), int64(end)) {
			return start, end, true
		}
	}
}

// autoPlan gives each worker one even contiguous block, split the way the
// Go runtime's parallel-for splits: block w is [w*n/workers, (w+1)*n/workers).
type autoPlan struct {
	n       int
	workers int
	done    []bool
}

func newAutoPlan(n, workers int) *autoPlan {
	return &autoPlan{n: n, workers: workers, done: make([]bool, workers)}
}

func (p *autoPlan) Next(worker int) (int, int, bool) {
	if p.done[worker] {
		return 0, 0, false
	}
	p.done[worker] = true
	start := worker * p.n / p.workers
	end := (worker + 1) * p.n / p.workers
	if start >= end {
		return 0, 0, false
	}
	return start, end, true
}
