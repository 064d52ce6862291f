// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

package rawio

import (
	"strings"
	"testing"

	"github.com/ajroetker/go-pixscan/pix"
)

func TestWriteReportFormat(t *testing.T) {
	s := pix.NewSearchList([]pix.Pixel{
		{R: 10, G: 20, B: 30},
		{R: 5, G: 100, B: 255},
		{R: -5, G: 1000, B: 0},
	})
	c := pix.NewCounters(3)
	c.Inc(0)
	c.Inc(0)
	c.Inc(2)

	var sb strings.Builder
	if err := WriteReport(&sb, s, c); err != nil {
		t.Fatal(err)
	}

	want := "** ( 10, 20, 30) = 2\n" +
		"** (  5,100,255) = 0\n" +
		"** (  -5,1000,  0) = 1\n"
	if sb.String() != want {
		t.Errorf("report:\ngot:\n%swant:\n%s", sb.String(), want)
	}
}

func TestChannelField(t *testing.T) {
	tests := []struct {
		in   int32
		want string
	}{
		{0, "  0"},
		{9, "  9"},
		{10, " 10"},
		{99, " 99"},
		{100, "100"},
		{255, "255"},
		{1000, "1000"},
		{-5, "  -5"},
		{-50, "  -50"},
	}
	for _, tt := range tests {
		if got := channelField(tt.in); got != tt.want {
			t.Errorf("channelField(%d): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
