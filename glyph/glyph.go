// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package glyph provides square bitmap glyphs and the construction of LED
// matrix animation frame streams from them.
//
// A glyph row is a single byte with the leftmost pixel held in bit
// width-1. A frame stream is a flat sequence of rows, height rows per
// frame, suitable for writing directly to a display driver.
package glyph

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrDimensionMismatch is returned when the number of bitmap rows
	// does not match the glyph size.
	ErrDimensionMismatch = errors.New("bitmap row count does not match size")

	// ErrHeightMismatch is returned when glyphs with different heights
	// are rendered together.
	ErrHeightMismatch = errors.New("glyph heights differ")

	// ErrNoGlyphs is returned when no glyphs are provided for rendering.
	ErrNoGlyphs = errors.New("no glyphs")

	// ErrUnknownMode is returned for an invalid animation mode.
	ErrUnknownMode = errors.New("unknown animation mode")

	// ErrWidthUnsupported is returned when a glyph width cannot be
	// packed into a single byte frame row.
	ErrWidthUnsupported = errors.New("unsupported glyph width")

	// ErrRowTooWide is returned when a row string has more than 8 digits
	// or more digits than its glyph is wide.
	ErrRowTooWide = errors.New("binary string too wide")

	// ErrInvalidDigit is returned when a row string holds a character
	// other than '0' or '1'.
	ErrInvalidDigit = errors.New("invalid binary digit")

	// ErrCharacterNotFound is returned when a glyph is requested for a
	// character that has no bitmap data.
	ErrCharacterNotFound = errors.New("bitmap not found for character")

	// ErrTruncatedStream is returned when a frame stream does not hold
	// a whole number of frames.
	ErrTruncatedStream = errors.New("truncated frame stream")
)

// Glyph is an immutable square bitmap.
type Glyph struct {
	width  uint8
	height uint8
	bitmap []byte
}

// New returns a Glyph of the given size. The bitmap must hold exactly size
// rows; each row is already packed into a byte. The bitmap is copied.
func New(size uint8, bitmap []byte) (Glyph, error) {
	if len(bitmap) != int(size) {
		return Glyph{}, fmt.Errorf("%w: %d rows for size %d", ErrDimensionMismatch, len(bitmap), size)
	}
	return Glyph{
		width:  size,
		height: size,
		bitmap: slices.Clone(bitmap),
	}, nil
}

// Width returns the number of pixel columns in the glyph.
func (g Glyph) Width() uint8 { return g.width }

// Height returns the number of pixel rows in the glyph.
func (g Glyph) Height() uint8 { return g.height }

// Bitmap returns a copy of the glyph's rows.
func (g Glyph) Bitmap() []byte { return slices.Clone(g.bitmap) }

// Pixel returns whether the pixel at column x and row y is lit. Column 0
// is the leftmost pixel. Out of range coordinates are unlit.
func (g Glyph) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= int(g.width) || y >= len(g.bitmap) {
		return false
	}
	return bit(g.bitmap[y], int(g.width)-1-x)
}

// bit returns whether bit n of v is set. Bits beyond the byte are unset.
func bit(v byte, n int) bool {
	if n >= 8 {
		return false
	}
	return v&(1<<n) != 0
}
