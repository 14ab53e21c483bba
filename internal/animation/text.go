// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kortschak/ledglyph/glyph"
)

// Text writes a text rendering of the frames in stream to w. Each frame is
// preceded by its index and each row is written with '#' for a lit LED and
// '.' for an unlit LED.
func Text(w io.Writer, stream []byte, size int) error {
	if size < 1 || size > 8 {
		return fmt.Errorf("%w: %d", glyph.ErrWidthUnsupported, size)
	}
	frames, err := glyph.Split(stream, size)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	line := make([]byte, size+1)
	line[size] = '\n'
	for i, f := range frames {
		fmt.Fprintf(bw, "frame %d:\n", i)
		for _, row := range f {
			for x := range size {
				if row&(1<<(size-1-x)) != 0 {
					line[x] = '#'
				} else {
					line[x] = '.'
				}
			}
			bw.Write(line)
		}
	}
	return bw.Flush()
}
