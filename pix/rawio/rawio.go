// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

// Package rawio reads and writes flat pixel-triple streams.
//
// A stream is a sequence of 12-byte records, three little-endian signed
// 32-bit channels per pixel, with no header. Streams whose length is not
// a record multiple carry trailing garbage which is ignored on read.
// Paths ending in ".zst" are transparently zstd-compressed.
package rawio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/ajroetker/go-pixscan/pix"
)

// pixelSize is the on-disk size of one pixel record.
const pixelSize = 12

// zstExt marks transparently compressed streams.
const zstExt = ".zst"

// ReadGrid loads a pixel stream and folds it into rows of width pixels,
// padding the final row with zero pixels when width does not divide the
// stream length. width 0 loads everything as a single row.
func ReadGrid(path string, width int) (*pix.Grid, error) {
	px, err := readPixels(path)
	if err != nil {
		return nil, fmt.Errorf("read grid %s: %w", path, err)
	}
	return pix.GridFromPixels(px, width), nil
}

// ReadSearchList loads a pixel stream as an ordered list of search
// targets.
func ReadSearchList(path string) (*pix.SearchList, error) {
	px, err := readPixels(path)
	if err != nil {
		return nil, fmt.Errorf("read search list %s: %w", path, err)
	}
	return pix.NewSearchList(px), nil
}

// WriteGrid writes the grid's pixels, padding included, as a flat stream
// identical in shape to the stream it was loaded from.
func WriteGrid(path string, g *pix.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write grid %s: %w", path, err)
	}

	var w io.Writer = f
	var enc *zstd.Encoder
	if strings.HasSuffix(path, zstExt) {
		enc, err = zstd.NewWriter(f, zstd.WithEncoderConcurrency(1))
		if err != nil {
			f.Close()
			return fmt.Errorf("write grid %s: %w", path, err)
		}
		w = enc
	}

	bw := bufio.NewWriter(w)
	var rec [pixelSize]byte
	for _, px := range g.Pixels() {
		binary.LittleEndian.PutUint32(rec[0:], uint32(px.R))
		binary.LittleEndian.PutUint32(rec[4:], uint32(px.G))
		binary.LittleEndian.PutUint32(rec[8:], uint32(px.B))
		if _, err := bw.Write(rec[:]); err != nil {
			f.Close()
			return fmt.Errorf("write grid %s: %w", path, err)
		}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write grid %s: %w", path, err)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			f.Close()
			return fmt.Errorf("write grid %s: %w", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write grid %s: %w", path, err)
	}
	return nil
}

func readPixels(path string) ([]pix.Pixel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, zstExt) {
		dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		r = dec
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decodePixels(raw), nil
}

func decodePixels(raw []byte) []pix.Pixel {
	px := make([]pix.Pixel, len(raw)/pixelSize)
	for i := range px {
		off := i * pixelSize
		px[i].R = int32(binary.LittleEndian.Uint32(raw[off:]))
		px[i].G = int32(binary.LittleEndian.Uint32(raw[off+4:]))
		px[i].B = int32(binary.LittleEndian.Uint32(raw[off+8:]))
	}
	return px
}
