// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"

	"github.com/ajroetker/go-pixscan/pix"
	"github.com/ajroetker/go-pixscan/pix/sched"
	"github.com/ajroetker/go-pixscan/pix/workerpool"
)

// RowParallel distributes whole rows across the pool under a scheduling
// policy. Each claimed row runs the unmodified sequential per-pixel pass
// on whichever worker owns it, so the within-row left-to-right dependency
// is preserved by sole ownership and no intra-row synchronization is
// needed.
type RowParallel struct {
	Pool  *workerpool.Pool
	Sched sched.Config
	Merge MergeKind
}

func (e *RowParallel) Name() string { return "rows" }

func (e *RowParallel) Process(g *pix.Grid, s *pix.SearchList, c *pix.Counters) error {
	if err := validate(g, s, c); err != nil {
		return err
	}
	if e.Pool == nil {
		return errors.New("nil pool")
	}

	members := min(e.Pool.NumWorkers(), g.Rows())
	plan := e.Sched.Plan(g.Rows(), members)

	return e.Pool.Run(members, func(worker int) {
		hit := c.AtomicInc
		var local []uint64
		if e.Merge == MergeLocal {
			local = make([]uint64, s.Len())
			hit = func(i int) { local[i]++ }
		}

		for {
			start, end, ok := plan.Next(worker)
			if !ok {
				break
			}
			for r := start; r < end; r++ {
				pix.ProcessRow(g.Row(r), s, hit)
			}
		}

		// One locked merge per worker, after its row range is done.
		if local != nil {
			c.Merge(local)
		}
	})
}
