// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glyph

import (
	"fmt"
	"strings"
)

// Mode is an animation playback mode.
type Mode int

const (
	// Next shows each glyph in full, one after another.
	Next Mode = iota
	// Scroll slides all glyphs across the display as a marquee.
	Scroll
)

func (m Mode) String() string {
	switch m {
	case Next:
		return "next"
	case Scroll:
		return "scroll"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText implements the encoding.TextMarshaler interface.
func (m Mode) MarshalText() ([]byte, error) {
	switch m {
	case Next, Scroll:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// Mode names are case-insensitive.
func (m *Mode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "next":
		*m = Next
	case "scroll":
		*m = Scroll
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, text)
	}
	return nil
}

// Frames returns the animation frame stream for the glyphs in the given
// mode. All glyphs must have the same height. In Scroll mode the glyph
// width must be between 1 and 8.
//
// The returned stream holds height bytes per frame, with frames in
// playback order and rows top to bottom within each frame.
func Frames(glyphs []Glyph, mode Mode) ([]byte, error) {
	err := validate(glyphs, mode)
	if err != nil {
		return nil, err
	}
	switch mode {
	case Next:
		return next(glyphs), nil
	case Scroll:
		return scroll(glyphs), nil
	default:
		panic("unreachable")
	}
}

// FrameCount returns the number of frames that Frames would return for
// the provided glyphs and mode.
func FrameCount(glyphs []Glyph, mode Mode) (int, error) {
	err := validate(glyphs, mode)
	if err != nil {
		return 0, err
	}
	if mode == Next {
		return len(glyphs), nil
	}
	// Each glyph contributes its width plus a spacer column, and the
	// trailing blank is exactly consumed by the final window.
	return len(glyphs) * (int(glyphs[0].width) + 1), nil
}

// validate checks that glyphs can be rendered in mode.
func validate(glyphs []Glyph, mode Mode) error {
	if mode != Next && mode != Scroll {
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
	if len(glyphs) == 0 {
		return ErrNoGlyphs
	}
	first := glyphs[0]
	for i, g := range glyphs[1:] {
		if g.height != first.height {
			return fmt.Errorf("%w: glyph %d has height %d, want %d", ErrHeightMismatch, i+1, g.height, first.height)
		}
	}
	if mode == Scroll && (first.width == 0 || first.width > 8) {
		return fmt.Errorf("%w: %d", ErrWidthUnsupported, first.width)
	}
	return nil
}

// next concatenates the glyph rows.
func next(glyphs []Glyph) []byte {
	var n int
	for _, g := range glyphs {
		n += len(g.bitmap)
	}
	frames := make([]byte, 0, n)
	for _, g := range glyphs {
		frames = append(frames, g.bitmap...)
	}
	return frames
}

// scroll builds a reel of all glyphs separated by a single blank column
// and followed by a full glyph width of blank, and then returns every
// width-wide window over the reel stepping one column at a time.
func scroll(glyphs []Glyph) []byte {
	height := int(glyphs[0].height)
	width := int(glyphs[0].width)

	reel := make([][]bool, height)
	length := len(glyphs)*(width+1) + width - 1
	for r := range reel {
		reel[r] = make([]bool, 0, length)
	}
	for _, g := range glyphs {
		for r, v := range g.bitmap {
			for b := width - 1; b >= 0; b-- {
				reel[r] = append(reel[r], bit(v, b))
			}
			reel[r] = append(reel[r], false)
		}
	}
	for r := range reel {
		reel[r] = append(reel[r], make([]bool, width-1)...)
	}

	n := len(reel[0]) - (width - 1)
	frames := make([]byte, 0, n*height)
	for i := 0; i < n; i++ {
		for _, row := range reel {
			frames = append(frames, pack(row[i:i+width]))
		}
	}
	return frames
}

// pack returns the bits packed into a byte with the first bit most
// significant.
func pack(bits []bool) byte {
	var v byte
	for _, b := range bits {
		v <<= 1
		if b {
			v |= 1
		}
	}
	return v
}

// Split returns the frames held in stream for a display with the given
// number of rows. The returned frames share the stream's backing array.
func Split(stream []byte, height int) ([][]byte, error) {
	if height <= 0 {
		return nil, fmt.Errorf("%w: invalid height %d", ErrTruncatedStream, height)
	}
	if len(stream)%height != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrTruncatedStream, len(stream), height)
	}
	frames := make([][]byte, 0, len(stream)/height)
	for len(stream) != 0 {
		frames = append(frames, stream[:height:height])
		stream = stream[height:]
	}
	return frames, nil
}
