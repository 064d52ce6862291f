// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

package pix

// Grid is a rectangular arrangement of pixels backed by a single flat
// slice. Rows are contiguous, so row-level operations work on plain
// sub-slices without copying.
//
// A Grid's shape never changes after creation; a transform pass mutates
// pixel values only.
type Grid struct {
	pixels []Pixel
	rows   int
	width  int
}

// NewGrid creates a zeroed grid holding length pixels folded into rows of
// width pixels. width == 0 means a single row containing everything.
// If width does not divide length evenly, an extra row is added and the
// grid is padded with zero-valued pixels up to a width multiple.
func NewGrid(length, width int) *Grid {
	if width <= 0 {
		return &Grid{
			pixels: make([]Pixel, length),
			rows:   1,
			width:  length,
		}
	}

	rows := length / width
	if length%width != 0 {
		rows++
	}
	return &Grid{
		pixels: make([]Pixel, rows*width),
		rows:   rows,
		width:  width,
	}
}

// GridFromPixels folds px into a grid of the given row width, copying the
// pixels and padding the final row with zeros as NewGrid does.
func GridFromPixels(px []Pixel, width int) *Grid {
	g := NewGrid(len(px), width)
	copy(g.pixels, px)
	return g
}

// Rows returns the number of rows.
func (g *Grid) Rows() int {
	return g.rows
}

// Width returns the number of pixels per row.
func (g *Grid) Width() int {
	return g.width
}

// Len returns the total pixel count including any zero padding.
func (g *Grid) Len() int {
	return len(g.pixels)
}

// Row returns the mutable pixel slice for row r.
func (g *Grid) Row(r int) []Pixel {
	start := r * g.width
	return g.pixels[start : start+g.width]
}

// Pixels returns the flat backing slice, rows concatenated in order.
func (g *Grid) Pixels() []Pixel {
	return g.pixels
}

// At returns the pixel at row r, column p.
func (g *Grid) At(r, p int) Pixel {
	return g.pixels[r*g.width+p]
}

// Clone creates a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	clone := &Grid{
		pixels: make([]Pixel, len(g.pixels)),
		rows:   g.rows,
		width:  g.width,
	}
	copy(clone.pixels, g.pixels)
	return clone
}

// Equal reports whether two grids have the same shape and pixel values.
func (g *Grid) Equal(other *Grid) bool {
	if g.rows != other.rows || g.width != other.width {
		return false
	}
	for i := range g.pixels {
		if g.pixels[i] != other.pixels[i] {
			return false
		}
	}
	return true
}
