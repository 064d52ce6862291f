// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

// Package process implements the transform-and-search executors.
//
// Every executor reproduces the output of Sequential exactly: the same
// transformed grid and the same match counters, for any worker count,
// scheduling policy, chunk size, or merge strategy. Parallelism is
// extracted only where the dependency structure allows it: across
// independent rows (RowParallel, TaskPerRow), or inside the per-pixel
// search loops of a strictly-ordered row (Phased, Tiled).
package process

import (
	"errors"
	"fmt"
	"time"

	"github.com/ajroetker/go-pixscan/pix"
)

// MergeKind selects how per-worker match counts reach the shared
// counters.
type MergeKind uint8

const (
	// MergeLocal gives each worker a private zeroed count array,
	// accumulated without synchronization and added into the shared
	// counters in one locked pass after the worker's work is complete.
	MergeLocal MergeKind = iota

	// MergeAtomic increments the shared counter slot with an atomic add
	// at the moment of each match.
	MergeAtomic
)

func (m MergeKind) String() string {
	switch m {
	case MergeAtomic:
		return "atomic"
	case MergeLocal:
		return "local"
	}
	return fmt.Sprintf("merge(%d)", uint8(m))
}

// ParseMerge reads a merge strategy name ("atomic" or "local").
func ParseMerge(s string) (MergeKind, error) {
	switch s {
	case "atomic":
		return MergeAtomic, nil
	case "local":
		return MergeLocal, nil
	}
	return 0, fmt.Errorf("unknown merge strategy %q", s)
}

// Executor runs one full transform-and-search pass over a grid, mutating
// the grid's pixels in place and accumulating match counts into c.
type Executor interface {
	Name() string
	Process(g *pix.Grid, s *pix.SearchList, c *pix.Counters) error
}

// Result carries the outputs of a timed run. The transformed pixels live
// in the grid that was passed in.
type Result struct {
	Counters *pix.Counters
	Elapsed  time.Duration
}

// Run allocates zeroed counters, executes ex over the grid and search
// list, and reports the counters together with the wall-clock duration of
// the pass. On error no partial counters are returned.
func Run(ex Executor, g *pix.Grid, s *pix.SearchList) (Result, error) {
	c := pix.NewCounters(s.Len())
	start := time.Now()
	if err := ex.Process(g, s, c); err != nil {
		return Result{}, fmt.Errorf("%s: %w", ex.Name(), err)
	}
	return Result{Counters: c, Elapsed: time.Since(start)}, nil
}

func validate(g *pix.Grid, s *pix.SearchList, c *pix.Counters) error {
	if g == nil {
		return errors.New("nil grid")
	}
	if s == nil {
		return errors.New("nil search list")
	}
	if c == nil {
		return errors.New("nil counters")
	}
	if c.Len() != s.Len() {
		return fmt.Errorf("counters sized %d for %d search targets", c.Len(), s.Len())
	}
	return nil
}

// Sequential is the single-threaded reference executor. Its output is the
// oracle every concurrent executor is verified against.
type Sequential struct{}

func (Sequential) Name() string { return "seq" }

func (Sequential) Process(g *pix.Grid, s *pix.SearchList, c *pix.Counters) error {
	if err := validate(g, s, c); err != nil {
		return err
	}
	for r := range g.Rows() {
		pix.ProcessRow(g.Row(r), s, c.Inc)
	}
	return nil
}
