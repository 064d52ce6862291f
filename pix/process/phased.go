// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"

	"github.com/ajroetker/go-pixscan/pix"
	"github.com/ajroetker/go-pixscan/pix/sched"
	"github.com/ajroetker/go-pixscan/pix/workerpool"
)

// Phase is one stage of the per-pixel barrier-synchronized cycle.
type Phase uint8

const (
	// CapturePre copies the untransformed pixel into scalars shared with
	// the search workers. Single owner.
	CapturePre Phase = iota

	// SearchPre scans the captured pre-transform value against each
	// worker's share of the search list. All workers.
	SearchPre

	// Transform applies bleed, greyscale and XOR to the real pixel.
	// Single owner.
	Transform

	// CapturePost copies the transformed pixel into the shared scalars.
	// Single owner.
	CapturePost

	// SearchPost scans the captured post-transform value. All workers.
	SearchPost
)

func (ph Phase) String() string {
	switch ph {
	case CapturePre:
		return "capture-pre"
	case SearchPre:
		return "search-pre"
	case Transform:
		return "transform"
	case CapturePost:
		return "capture-post"
	case SearchPost:
		return "search-post"
	}
	return "phase(?)"
}

// Phased handles strictly-ordered input, typically a single-row grid,
// where row ownership cannot extract any parallelism. One persistent team
// runs the whole image; per pixel the team steps through the five-phase
// cycle with a full barrier after each phase, so the transform stays
// serialized while the two independent search scans run in parallel.
//
// Worker 0 is the designated owner of the single-owner phases.
type Phased struct {
	Pool  *workerpool.Pool
	Sched sched.Config
	Merge MergeKind
}

func (e *Phased) Name() string { return "phased" }

func (e *Phased) Process(g *pix.Grid, s *pix.SearchList, c *pix.Counters) error {
	if err := validate(g, s, c); err != nil {
		return err
	}
	if e.Pool == nil {
		return errors.New("nil pool")
	}
	return phaseCycle(e.Pool, e.Sched, e.Merge, g, s, c, s.Len(), func(plan sched.Plan, worker int, px pix.Pixel, hit func(int)) {
		for {
			start, end, ok := plan.Next(worker)
			if !ok {
				return
			}
			s.Scan(px, start, end, hit)
		}
	})
}

// phaseCycle is the engine shared by Phased and Tiled. planN is the size
// of the scheduled index space for the search phases and scan drains one
// worker's share of a phase plan; Phased schedules raw search indices,
// Tiled schedules tile indices.
func phaseCycle(pool *workerpool.Pool, cfg sched.Config, merge MergeKind,
	g *pix.Grid, s *pix.SearchList, c *pix.Counters,
	planN int, scan func(plan sched.Plan, worker int, px pix.Pixel, hit func(int))) error {

	members := pool.NumWorkers()
	bar := workerpool.NewBarrier(members)

	// Written by worker 0 in capture phases, read by everyone in search
	// phases. The barrier between the phases orders the accesses.
	var (
		captured pix.Pixel
		plan     sched.Plan
	)

	return pool.Run(members, func(worker int) {
		// A member that dies mid-cycle leaves the team one party short;
		// poison the barrier so the survivors drain, then let the panic
		// reach Run's funnel.
		defer func() {
			if r := recover(); r != nil {
				bar.Abort()
				panic(r)
			}
		}()

		hit := c.AtomicInc
		var local []uint64
		if merge == MergeLocal {
			local = make([]uint64, s.Len())
			hit = func(i int) { local[i]++ }
		}

		for r := range g.Rows() {
			row := g.Row(r)
			for p := range row {
				for ph := CapturePre; ph <= SearchPost; ph++ {
					switch ph {
					case CapturePre:
						if worker == 0 {
							captured = row[p]
							plan = cfg.Plan(planN, members)
						}
					case SearchPre, SearchPost:
						scan(plan, worker, captured, hit)
					case Transform:
						if worker == 0 {
							pix.Transform(row, p)
						}
					case CapturePost:
						if worker == 0 {
							captured = row[p]
							plan = cfg.Plan(planN, members)
						}
					}
					if !bar.Wait() {
						// Another member failed; drop this worker's partial
						// counts and let Run report the funneled error.
						return
					}
				}
			}
		}

		// Local counts merge exactly once, at the very end of the run.
		if local != nil {
			c.Merge(local)
		}
	})
}
