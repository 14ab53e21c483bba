// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glyph

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNew(t *testing.T) {
	for size := 0; size <= 255; size++ {
		g, err := New(uint8(size), make([]byte, size))
		if err != nil {
			t.Errorf("unexpected error for size %d: %v", size, err)
			continue
		}
		if g.Width() != uint8(size) || g.Height() != uint8(size) {
			t.Errorf("unexpected dimensions for size %d: got:%dx%d", size, g.Width(), g.Height())
		}

		_, err = New(uint8(size), make([]byte, size+1))
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("unexpected error for size %d with %d rows: got:%v want:%v", size, size+1, err, ErrDimensionMismatch)
		}
		if size == 0 {
			continue
		}
		_, err = New(uint8(size), make([]byte, size-1))
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("unexpected error for size %d with %d rows: got:%v want:%v", size, size-1, err, ErrDimensionMismatch)
		}
	}
}

func TestGlyphImmutable(t *testing.T) {
	bitmap := []byte{0x01, 0x02, 0x03}
	g, err := New(3, bitmap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x01, 0x02, 0x03}
	if !cmp.Equal(g.Bitmap(), want) {
		t.Errorf("unexpected bitmap:\n--- want:\n+++ got:\n%s", cmp.Diff(want, g.Bitmap()))
	}

	bitmap[0] = 0xff
	got := g.Bitmap()
	got[1] = 0xff
	if !cmp.Equal(g.Bitmap(), want) {
		t.Errorf("bitmap mutated through alias:\n--- want:\n+++ got:\n%s", cmp.Diff(want, g.Bitmap()))
	}
}

func TestPixel(t *testing.T) {
	g, err := New(3, []byte{0b100, 0b010, 0b001})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [3][3]bool{
		{true, false, false},
		{false, true, false},
		{false, false, true},
	}
	for y := range want {
		for x := range want[y] {
			if got := g.Pixel(x, y); got != want[y][x] {
				t.Errorf("unexpected pixel at (%d,%d): got:%t want:%t", x, y, got, want[y][x])
			}
		}
	}
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 3}} {
		if g.Pixel(p[0], p[1]) {
			t.Errorf("unexpected lit pixel outside glyph at %v", p)
		}
	}
}
