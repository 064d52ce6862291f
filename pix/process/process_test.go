// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ajroetker/go-pixscan/pix"
	"github.com/ajroetker/go-pixscan/pix/sched"
	"github.com/ajroetker/go-pixscan/pix/workerpool"
)

// fixture builds a deterministic pseudo-random grid and a search list
// that is guaranteed to hit both pre-transform and post-transform values,
// with duplicates.
func fixture(t *testing.T, length, width int) (*pix.Grid, *pix.SearchList) {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	px := make([]pix.Pixel, length)
	for i := range px {
		// Include negative and >255 channels; nothing clamps.
		px[i] = pix.Pixel{
			R: rng.Int31n(700) - 150,
			G: rng.Int31n(700) - 150,
			B: rng.Int31n(700) - 150,
		}
	}

	var targets []pix.Pixel
	for range 8 {
		targets = append(targets, px[rng.Intn(length)]) // pre-transform hits
	}
	transformed := pix.GridFromPixels(px, width)
	for r := range transformed.Rows() {
		row := transformed.Row(r)
		for p := range row {
			pix.Transform(row, p)
		}
	}
	for range 8 {
		targets = append(targets, transformed.At(rng.Intn(transformed.Rows()), rng.Intn(transformed.Width())))
	}
	for range 6 {
		targets = append(targets, pix.Pixel{R: rng.Int31n(700) - 150, G: rng.Int31n(700) - 150, B: rng.Int31n(700) - 150})
	}
	targets = append(targets, targets[0], targets[8]) // duplicates count per index

	return pix.GridFromPixels(px, width), pix.NewSearchList(targets)
}

// oracle runs the sequential reference on a clone and returns the
// expected transformed grid and counters.
func oracle(t *testing.T, g *pix.Grid, s *pix.SearchList) (*pix.Grid, *pix.Counters) {
	t.Helper()
	want := g.Clone()
	c := pix.NewCounters(s.Len())
	if err := (Sequential{}).Process(want, s, c); err != nil {
		t.Fatalf("sequential oracle: %v", err)
	}
	return want, c
}

func checkAgainstOracle(t *testing.T, ex Executor, g *pix.Grid, s *pix.SearchList, wantGrid *pix.Grid, wantCounts *pix.Counters) {
	t.Helper()
	work := g.Clone()
	res, err := Run(ex, work, s)
	if err != nil {
		t.Fatalf("%s: %v", ex.Name(), err)
	}
	if !work.Equal(wantGrid) {
		t.Errorf("%s: transformed grid differs from sequential reference", ex.Name())
	}
	if !res.Counters.Equal(wantCounts) {
		t.Errorf("%s: counters got %v, want %v", ex.Name(), res.Counters.Counts(), wantCounts.Counts())
	}
}

var (
	schedConfigs = []sched.Config{
		{Kind: sched.Static},
		{Kind: sched.Static, Chunk: 1},
		{Kind: sched.Static, Chunk: 3},
		{Kind: sched.Dynamic},
		{Kind: sched.Dynamic, Chunk: 3},
		{Kind: sched.Guided},
		{Kind: sched.Guided, Chunk: 4},
		{Kind: sched.Auto},
	}
	mergeKinds   = []MergeKind{MergeLocal, MergeAtomic}
	workerCounts = []int{1, 2, 3, 8, 16}
)

// TestRowParallelMatchesSequential checks byte-identical output across
// every policy, chunk, merge strategy and worker count.
func TestRowParallelMatchesSequential(t *testing.T) {
	g, s := fixture(t, 23*57+13, 57) // padded partial final row
	wantGrid, wantCounts := oracle(t, g, s)

	for _, workers := range workerCounts {
		pool := workerpool.New(workers)
		for _, cfg := range schedConfigs {
			for _, merge := range mergeKinds {
				name := fmt.Sprintf("w%d/%s/%s", workers, cfg, merge)
				t.Run(name, func(t *testing.T) {
					ex := &RowParallel{Pool: pool, Sched: cfg, Merge: merge}
					checkAgainstOracle(t, ex, g, s, wantGrid, wantCounts)
				})
			}
		}
		pool.Close()
	}
}

func TestTaskPerRowMatchesSequential(t *testing.T) {
	g, s := fixture(t, 23*57+13, 57)
	wantGrid, wantCounts := oracle(t, g, s)

	for _, workers := range workerCounts {
		t.Run(fmt.Sprintf("w%d", workers), func(t *testing.T) {
			checkAgainstOracle(t, &TaskPerRow{Workers: workers}, g, s, wantGrid, wantCounts)
		})
	}
}

// TestPhasedMatchesSequential exercises the barrier-synchronized executor
// on its natural input, a single strictly-ordered row, and on a
// multi-row grid.
func TestPhasedMatchesSequential(t *testing.T) {
	shapes := []struct {
		name          string
		length, width int
	}{
		{"single-row", 200, 0},
		{"multi-row", 4 * 50, 50},
	}
	for _, shape := range shapes {
		g, s := fixture(t, shape.length, shape.width)
		wantGrid, wantCounts := oracle(t, g, s)

		for _, workers := range []int{1, 2, 4, 8} {
			pool := workerpool.New(workers)
			for _, cfg := range schedConfigs {
				for _, merge := range mergeKinds {
					name := fmt.Sprintf("%s/w%d/%s/%s", shape.name, workers, cfg, merge)
					t.Run(name, func(t *testing.T) {
						ex := &Phased{Pool: pool, Sched: cfg, Merge: merge}
						checkAgainstOracle(t, ex, g, s, wantGrid, wantCounts)
					})
				}
			}
			pool.Close()
		}
	}
}

func TestTiledMatchesSequential(t *testing.T) {
	g, s := fixture(t, 200, 0)
	wantGrid, wantCounts := oracle(t, g, s)

	for _, workers := range []int{1, 3, 8} {
		pool := workerpool.New(workers)
		for _, cfg := range schedConfigs {
			t.Run(fmt.Sprintf("w%d/%s", workers, cfg), func(t *testing.T) {
				ex := &Tiled{Pool: pool, Sched: cfg, Merge: MergeLocal, TileSize: 4}
				checkAgainstOracle(t, ex, g, s, wantGrid, wantCounts)
			})
		}
		pool.Close()
	}
}

// TestTileSizeInvariance: the tile-size constant must not affect the
// final counters or grid.
func TestTileSizeInvariance(t *testing.T) {
	g, s := fixture(t, 150, 0)
	wantGrid, wantCounts := oracle(t, g, s)

	pool := workerpool.New(4)
	defer pool.Close()

	for _, tile := range []int{1, 3, 7, 64, 100000} {
		t.Run(fmt.Sprintf("tile%d", tile), func(t *testing.T) {
			ex := &Tiled{Pool: pool, Sched: sched.Config{Kind: sched.Dynamic}, Merge: MergeAtomic, TileSize: tile}
			checkAgainstOracle(t, ex, g, s, wantGrid, wantCounts)
		})
	}
}

// TestConcreteScenario pins the end-to-end oracle from the reference
// trace: one row of three pixels with a single matching search target.
func TestConcreteScenario(t *testing.T) {
	px := []pix.Pixel{{R: 10, G: 20, B: 30}, {R: 40, G: 50, B: 60}, {R: 70, G: 80, B: 90}}
	s := pix.NewSearchList([]pix.Pixel{{R: 10, G: 20, B: 30}})

	pool := workerpool.New(4)
	defer pool.Close()

	executors := []Executor{
		Sequential{},
		&RowParallel{Pool: pool, Sched: sched.Config{Kind: sched.Dynamic}, Merge: MergeLocal},
		&TaskPerRow{Workers: 4},
		&Phased{Pool: pool, Sched: sched.Config{Kind: sched.Static}, Merge: MergeAtomic},
		&Tiled{Pool: pool, Sched: sched.Config{Kind: sched.Guided}, Merge: MergeLocal, TileSize: 2},
	}

	want := []pix.Pixel{{R: 25, G: 25, B: 25}, {R: 39, G: 39, B: 39}, {R: 77, G: 77, B: 77}}
	for _, ex := range executors {
		g := pix.GridFromPixels(px, 0)
		res, err := Run(ex, g, s)
		if err != nil {
			t.Fatalf("%s: %v", ex.Name(), err)
		}
		for p := range want {
			if g.At(0, p) != want[p] {
				t.Errorf("%s: pixel %d got %v, want %v", ex.Name(), p, g.At(0, p), want[p])
			}
		}
		if got := res.Counters.Count(0); got != 1 {
			t.Errorf("%s: match count got %d, want 1", ex.Name(), got)
		}
	}
}

func TestValidation(t *testing.T) {
	g := pix.NewGrid(10, 0)
	s := pix.NewSearchList([]pix.Pixel{{R: 1, G: 1, B: 1}})

	if err := (Sequential{}).Process(g, s, pix.NewCounters(2)); err == nil {
		t.Error("mismatched counters: got nil error")
	}
	if err := (Sequential{}).Process(nil, s, pix.NewCounters(1)); err == nil {
		t.Error("nil grid: got nil error")
	}

	ex := &RowParallel{Sched: sched.Config{Kind: sched.Static}}
	if err := ex.Process(g, s, pix.NewCounters(1)); err == nil {
		t.Error("nil pool: got nil error")
	}

	pool := workerpool.New(2)
	defer pool.Close()
	tiled := &Tiled{Pool: pool, TileSize: -1}
	if err := tiled.Process(g, s, pix.NewCounters(1)); err == nil {
		t.Error("negative tile size: got nil error")
	}

	if _, err := Run(&RowParallel{}, g, s); err == nil {
		t.Error("Run should surface executor errors")
	}
}

// faultyPhased drives the lockstep cycle with a scan that dies partway
// through the run, standing in for any worker-fatal condition.
type faultyPhased struct {
	pool *workerpool.Pool
}

func (e *faultyPhased) Name() string { return "phased" }

func (e *faultyPhased) Process(g *pix.Grid, s *pix.SearchList, c *pix.Counters) error {
	var calls atomic.Int32
	return phaseCycle(e.pool, sched.Config{Kind: sched.Dynamic}, MergeLocal, g, s, c, s.Len(),
		func(plan sched.Plan, worker int, px pix.Pixel, hit func(int)) {
			if calls.Add(1) == 7 {
				panic("target buffer overrun")
			}
			for {
				start, end, ok := plan.Next(worker)
				if !ok {
					return
				}
				s.Scan(px, start, end, hit)
			}
		})
}

// A worker that dies inside the lockstep cycle must terminate the whole
// run, not leave the surviving workers blocked at the barrier. The panic
// surfaces as the run's error and the failed run yields no counters.
func TestPhasedWorkerPanicTerminatesRun(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	g, s := fixture(t, 200, 0)
	res, err := Run(&faultyPhased{pool: pool}, g, s)
	if err == nil {
		t.Fatal("Run: got nil error, want worker panic surfaced")
	}
	if !strings.Contains(err.Error(), "target buffer overrun") {
		t.Errorf("error = %q, want the panic message preserved", err)
	}
	if res.Counters != nil {
		t.Error("Counters: got partial counters from a failed run, want nil")
	}
}

func TestParseMerge(t *testing.T) {
	if m, err := ParseMerge("atomic"); err != nil || m != MergeAtomic {
		t.Errorf("ParseMerge(atomic): got %v, %v", m, err)
	}
	if m, err := ParseMerge("local"); err != nil || m != MergeLocal {
		t.Errorf("ParseMerge(local): got %v, %v", m, err)
	}
	if _, err := ParseMerge("sloppy"); err == nil {
		t.Error("ParseMerge(sloppy): got nil error")
	}
}
