// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

// Command pixscan runs one deterministic transform-and-search pass over a
// raw pixel stream.
//
// Usage:
//
//	pixscan -in image.raw -out result.raw -search targets.raw
//	pixscan -in image.raw -out result.raw -search targets.raw -width 1000 -exec rows -sched dynamic,4
//	pixscan -in image.raw.zst -out result.raw.zst -search targets.raw -exec tiled -merge atomic
//
// The scheduling policy for matrix runs comes from -sched, falling back
// to the PIXSCAN_SCHED environment variable ("kind[,chunk]", as in
// dynamic,64); with neither set, the baked default static policy is used.
// Every executor produces byte-identical output for any -workers value.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sys/cpu"

	"github.com/ajroetker/go-pixscan/pix/process"
	"github.com/ajroetker/go-pixscan/pix/rawio"
	"github.com/ajroetker/go-pixscan/pix/sched"
	"github.com/ajroetker/go-pixscan/pix/workerpool"
)

// schedEnv names the environment variable consulted for matrix-mode runs
// when -sched is not given.
const schedEnv = "PIXSCAN_SCHED"

var (
	inFile     = flag.String("in", "", "Input pixel stream (required)")
	outFile    = flag.String("out", "", "Output pixel stream (required)")
	searchFile = flag.String("search", "", "Search-target pixel stream (required)")
	rowWidth   = flag.Int("width", 0, "Row width to fold the input into (0 = one row)")
	workers    = flag.Int("workers", 0, "Worker count (0 = GOMAXPROCS)")
	execName   = flag.String("exec", "rows", "Executor: seq, rows, tasks, phased or tiled")
	schedFlag  = flag.String("sched", "", "Scheduling policy kind[,chunk] (default $"+schedEnv+" or static)")
	mergeFlag  = flag.String("merge", "local", "Counter merge strategy: atomic or local")
	tileSize   = flag.Int("tile", process.DefaultTileSize, "Search tile size for -exec tiled")
	verbose    = flag.Bool("v", false, "Print run configuration and host capabilities")
)

func main() {
	flag.Parse()

	if *inFile == "" || *outFile == "" || *searchFile == "" {
		fmt.Fprintf(os.Stderr, "Error: -in, -out and -search are required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, baked := scheduleConfig()
	merge, err := process.ParseMerge(*mergeFlag)
	if err != nil {
		fatalf("%v", err)
	}

	pool := workerpool.New(*workers)
	defer pool.Close()

	if *verbose {
		mode := "matrix"
		if baked {
			mode = "baked"
		}
		fmt.Printf("config: exec=%s sched=%s (%s) merge=%s workers=%d gomaxprocs=%d\n",
			*execName, cfg, mode, merge, pool.NumWorkers(), runtime.GOMAXPROCS(0))
		fmt.Printf("host: avx2=%v avx512=%v neon=%v\n",
			cpu.X86.HasAVX2, cpu.X86.HasAVX512F, cpu.ARM64.HasASIMD)
	}

	fmt.Printf("Loading file %s\n", *inFile)
	grid, err := rawio.ReadGrid(*inFile, *rowWidth)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Loaded file with %d pixels, a line length of %d and a line count of %d.\n",
		grid.Len(), grid.Width(), grid.Rows())

	fmt.Printf("Loading file %s\n", *searchFile)
	search, err := rawio.ReadSearchList(*searchFile)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Found %d search term pixels\n", search.Len())

	ex, err := buildExecutor(pool, cfg, merge)
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Println("Processing Bleeding, Greyscale, XOR and Searching")
	res, err := process.Run(ex, grid, search)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Processed in %v\n", res.Elapsed)

	fmt.Printf("Saving file %s\n", *outFile)
	if err := rawio.WriteGrid(*outFile, grid); err != nil {
		fatalf("%v", err)
	}

	fmt.Println("Search Results:")
	if err := rawio.WriteReport(os.Stdout, search, res.Counters); err != nil {
		fatalf("%v", err)
	}
}

// scheduleConfig resolves the scheduling policy: -sched wins, then the
// environment, then the baked static default. The second return reports
// whether the baked default was used.
func scheduleConfig() (sched.Config, bool) {
	src := *schedFlag
	if src == "" {
		src = os.Getenv(schedEnv)
	}
	if src == "" {
		return sched.Config{Kind: sched.Static}, true
	}
	cfg, err := sched.Parse(src)
	if err != nil {
		fatalf("%v", err)
	}
	return cfg, false
}

func buildExecutor(pool *workerpool.Pool, cfg sched.Config, merge process.MergeKind) (process.Executor, error) {
	switch *execName {
	case "seq":
		return process.Sequential{}, nil
	case "rows":
		return &process.RowParallel{Pool: pool, Sched: cfg, Merge: merge}, nil
	case "tasks":
		return &process.TaskPerRow{Workers: pool.NumWorkers()}, nil
	case "phased":
		return &process.Phased{Pool: pool, Sched: cfg, Merge: merge}, nil
	case "tiled":
		return &process.Tiled{Pool: pool, Sched: cfg, Merge: merge, TileSize: *tileSize}, nil
	}
	return nil, fmt.Errorf("unknown executor %q", *execName)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "pixscan: "+format+"\n", args...)
	os.Exit(1)
}
