// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

package process

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-pixscan/pix"
)

// TaskPerRow spawns one independent task per row instead of scheduling a
// loop: functionally the same as RowParallel with worker-local merging,
// differing only in how work units are created. There is no scheduling
// policy to configure; the group runs at most Workers tasks at once and
// each task is internally sequential.
type TaskPerRow struct {
	// Workers caps concurrently running row tasks. <= 0 means
	// GOMAXPROCS.
	Workers int
}

func (e *TaskPerRow) Name() string { return "tasks" }

func (e *TaskPerRow) Process(g *pix.Grid, s *pix.SearchList, c *pix.Counters) error {
	if err := validate(g, s, c); err != nil {
		return err
	}

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var eg errgroup.Group
	eg.SetLimit(workers)
	for r := range g.Rows() {
		row := g.Row(r)
		eg.Go(func() error {
			local := make([]uint64, s.Len())
			pix.ProcessRow(row, s, func(i int) { local[i]++ })
			c.Merge(local)
			return nil
		})
	}
	return eg.Wait()
}
