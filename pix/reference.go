// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

package pix

// ProcessRow runs the reference transform-and-search pass over a single
// row, strictly left to right. For each pixel it scans the search list
// against the untransformed value, applies the transform chain, then scans
// again against the transformed value. hit receives the search index of
// every match, twice per pixel at most per index.
//
// A row depends only on its own pixels and the search list, never on other
// rows, so callers may process distinct rows concurrently as long as each
// row is owned by exactly one goroutine for its duration.
func ProcessRow(row []Pixel, search *SearchList, hit func(i int)) {
	for p := range row {
		search.ScanAll(row[p], hit)
		Transform(row, p)
		search.ScanAll(row[p], hit)
	}
}
