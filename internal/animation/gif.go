// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"

	"golang.org/x/image/draw"

	"github.com/kortschak/ledglyph/glyph"
)

// DefaultPalette is a two color palette with a black background at index 0
// and a red LED foreground at index 1.
var DefaultPalette = color.Palette{
	color.Black,
	color.RGBA{R: 0xff, A: 0xff},
}

// GIF returns an animated GIF presenting the frames of stream, a frame
// stream of size×size frames. Each LED is drawn as a scale×scale block.
// The delay between frames is in 100ths of a second. The provided palette
// must have at least two colors, which will be indexed by fg and bg to
// provide the lit and unlit LED colors. The animation loops forever.
func GIF(stream []byte, size, scale, delay int, pal color.Palette, fg, bg byte) (*gif.GIF, error) {
	if size < 1 || size > 8 {
		return nil, fmt.Errorf("%w: %d", glyph.ErrWidthUnsupported, size)
	}
	if scale < 1 {
		return nil, fmt.Errorf("invalid scale: %d", scale)
	}
	if int(fg) >= len(pal) || int(bg) >= len(pal) {
		return nil, fmt.Errorf("color index not in palette: fg=%d bg=%d len=%d", fg, bg, len(pal))
	}
	frames, err := glyph.Split(stream, size)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, errors.New("no frames")
	}

	bound := image.Rect(0, 0, size*scale, size*scale)
	g := &gif.GIF{
		Image: make([]*image.Paletted, 0, len(frames)),
		Delay: make([]int, 0, len(frames)),
		Config: image.Config{
			ColorModel: pal,
			Width:      bound.Dx(),
			Height:     bound.Dy(),
		},
		BackgroundIndex: bg,
	}
	for i, f := range frames {
		src, err := Frame(f, size, pal, fg, bg)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		dst := image.NewPaletted(bound, pal)
		draw.NearestNeighbor.Scale(dst, bound, src, src.Bounds(), draw.Src, nil)
		g.Image = append(g.Image, dst)
		g.Delay = append(g.Delay, delay)
	}
	return g, nil
}

// Frame returns a size×size paletted image of a single frame. Lit LEDs
// use the palette index fg and unlit LEDs use bg.
func Frame(rows []byte, size int, pal color.Palette, fg, bg byte) (*image.Paletted, error) {
	if size < 0 || size > 0xff {
		return nil, fmt.Errorf("%w: %d", glyph.ErrWidthUnsupported, size)
	}
	f, err := glyph.New(uint8(size), rows)
	if err != nil {
		return nil, err
	}
	img := image.NewPaletted(image.Rect(0, 0, size, size), pal)
	for y := range size {
		for x := range size {
			idx := bg
			if f.Pixel(x, y) {
				idx = fg
			}
			img.SetColorIndex(x, y, idx)
		}
	}
	return img, nil
}

// WriteGIF writes the GIF preview of stream to w.
func WriteGIF(w io.Writer, stream []byte, size, scale, delay int) error {
	g, err := GIF(stream, size, scale, delay, DefaultPalette, 1, 0)
	if err != nil {
		return err
	}
	return gif.EncodeAll(w, g)
}
