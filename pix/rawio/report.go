// Copyright 2026 The go-pixscan Authors. SPDX-License-Identifier: Apache-2.0

package rawio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/ajroetker/go-pixscan/pix"
)

// WriteReport writes the textual search report: one line per search-list
// entry, in list order, each channel space-padded to three places.
//
//	** ( 10, 20, 30) = 4
func WriteReport(w io.Writer, s *pix.SearchList, c *pix.Counters) error {
	bw := bufio.NewWriter(w)
	for i := range s.Len() {
		t := s.At(i)
		fmt.Fprintf(bw, "** (%s,%s,%s) = %d\n",
			channelField(t.R), channelField(t.G), channelField(t.B), c.Count(i))
	}
	return bw.Flush()
}

// channelField space-pads a channel value to three places: one leading
// space below 100, another below 10. Negative and four-digit values fall
// outside the fixed-width scheme and print at their natural width after
// the same padding rule.
func channelField(v int32) string {
	var pad string
	if v < 100 {
		pad = " "
	}
	if v < 10 {
		pad += " "
	}
	return pad + strconv.FormatInt(int64(v), 10)
}
