// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"

	"github.com/ajroetker/go-pixscan/pix"
	"github.com/ajroetker/go-pixscan/pix/sched"
	"github.com/ajroetker/go-pixscan/pix/workerpool"
)

// DefaultTileSize is the search-tile width used when Tiled.TileSize is
// unset.
const DefaultTileSize = 1024

// Tiled is the Phased executor with coarser search scheduling: the search
// index space is pre-chunked into fixed-size contiguous tiles and the
// scheduled unit of work is a tile index, each claimed tile running as an
// inner sequential sub-loop. Fewer, larger scheduling decisions; same
// correctness contract as Phased, and the final counters do not depend on
// the tile size.
type Tiled struct {
	Pool     *workerpool.Pool
	Sched    sched.Config
	Merge    MergeKind
	TileSize int
}

func (e *Tiled) Name() string { return "tiled" }

func (e *Tiled) Process(g *pix.Grid, s *pix.SearchList, c *pix.Counters) error {
	if err := validate(g, s, c); err != nil {
		return err
	}
	if e.Pool == nil {
		return errors.New("nil pool")
	}
	tile := e.TileSize
	if tile == 0 {
		tile = DefaultTileSize
	}
	if tile < 1 {
		return fmt.Errorf("tile size %d", tile)
	}

	tiles := (s.Len() + tile - 1) / tile
	return phaseCycle(e.Pool, e.Sched, e.Merge, g, s, c, tiles, func(plan sched.Plan, worker int, px pix.Pixel, hit func(int)) {
		for {
			start, end, ok := plan.Next(worker)
			if !ok {
				return
			}
			for t := start; t < end; t++ {
				lo := t * tile
				s.Scan(px, lo, min(lo+tile, s.Len()), hit)
			}
		}
	})
}
