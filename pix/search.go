// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

package pix

// SearchList is an ordered list of target pixel values. Duplicates are
// permitted and order is significant: match counts are reported per index,
// not per distinct value. The list is read-only for the whole of a run.
type SearchList struct {
	targets []Pixel
}

// NewSearchList wraps targets in a SearchList without copying.
func NewSearchList(targets []Pixel) *SearchList {
	return &SearchList{targets: targets}
}

// Len returns the number of targets.
func (s *SearchList) Len() int {
	return len(s.targets)
}

// At returns the target at index i.
func (s *SearchList) At(i int) Pixel {
	return s.targets[i]
}

// Scan tests px against targets[start:end] and calls hit(i) for every
// index whose target equals px on all three channels.
func (s *SearchList) Scan(px Pixel, start, end int, hit func(i int)) {
	for i := start; i < end; i++ {
		if s.targets[i] == px {
			hit(i)
		}
	}
}

// ScanAll tests px against the full list.
func (s *SearchList) ScanAll(px Pixel, hit func(i int)) {
	s.Scan(px, 0, len(s.targets), hit)
}
