// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

// Package pix provides the pixel grid data model and the sequential
// reference semantics of the transform-and-search pass.
//
// A pass walks every row of a Grid independently, left to right. For each
// pixel it counts matches against a SearchList, bleeds the average of up to
// BleedWindow already-transformed pixels to its left into it, collapses it
// to greyscale, XORs each channel with XORValue, and counts matches again
// against the transformed value.
//
// Channel values are deliberately never clamped to a byte range: bleed,
// greyscale and XOR all operate on raw signed 32-bit integers, and negative
// or >255 channels flow through unchanged. Downstream consumers persist the
// raw triples, so every execution strategy in pix/process must reproduce
// this package's output bit for bit.
package pix

// Pixel is a single pixel of three independent signed channels.
// Channels are full int32 values; nothing in a pass clamps them.
type Pixel struct {
	R, G, B int32
}

const (
	// BleedWindow is the maximum number of preceding pixels averaged by
	// the bleed adjustment.
	BleedWindow = 10

	// XORValue is the constant each channel is XORed with after
	// greyscale conversion.
	XORValue = 13
)

// Greyscale replaces all three channels of px with their average,
// truncating toward zero.
func Greyscale(px *Pixel) {
	avg := (px.R + px.G + px.B) / 3
	px.R = avg
	px.G = avg
	px.B = avg
}

// XOR flips each channel of px against val. Channels are treated as raw
// two's-complement values, so negative and out-of-range channels XOR the
// same way as in-range ones.
func XOR(px *Pixel, val int32) {
	px.R ^= val
	px.G ^= val
	px.B ^= val
}

// Bleed applies the left-context adjustment to row[p]: the channel-wise
// average of the min(BleedWindow, p) pixels immediately left of p is
// computed with truncating division, and one third of the difference
// between that average and the current channel is added to it.
//
// The pixels to the left have already been transformed when a row is
// processed in order; Bleed must therefore only be called with every
// column < p finished. p == 0 is the caller's responsibility to skip.
func Bleed(row []Pixel, p int) {
	n := BleedWindow
	start := 0
	if p > n {
		start = p - n
	} else {
		n = p
	}

	var rav, gav, bav int32
	for i := start; i < p; i++ {
		rav += row[i].R
		gav += row[i].G
		bav += row[i].B
	}
	rav /= int32(n)
	gav /= int32(n)
	bav /= int32(n)

	row[p].R += (rav - row[p].R) / 3
	row[p].G += (gav - row[p].G) / 3
	row[p].B += (bav - row[p].B) / 3
}

// Transform runs the in-place transform chain for column p of row:
// bleed (skipped at p == 0), greyscale, then XOR with XORValue.
func Transform(row []Pixel, p int) {
	if p > 0 {
		Bleed(row, p)
	}
	Greyscale(&row[p])
	XOR(&row[p], XORValue)
}
