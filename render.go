// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bbrks/wrap/v2"

	"github.com/kortschak/ledglyph/dict"
	"github.com/kortschak/ledglyph/glyph"
	"github.com/kortschak/ledglyph/internal/access"
	"github.com/kortschak/ledglyph/internal/animation"
	"github.com/kortschak/ledglyph/internal/config"
	"github.com/kortschak/ledglyph/internal/slogext"
	"github.com/kortschak/ledglyph/internal/state"
)

// renderer renders text into an animation stream and writes it to its
// sinks.
type renderer struct {
	text string
	size uint8
	mode glyph.Mode

	out     access.Sink
	outName string

	// preview, if not nil, receives a GIF
	// rendering of the animation.
	preview access.Sink
	scale   int
	delay   int

	// store is the path to the render archive.
	// No archiving is done if store is empty.
	store string

	log    *slog.Logger
	stdout io.Writer
}

// run renders the receiver's text using the dictionary for its size found
// in dir. If watch is true, the text is re-rendered each time the
// dictionary changes until ctx is cancelled.
func (r *renderer) run(ctx context.Context, dir string, watch bool) error {
	path, err := dict.Find(dir, r.size)
	if err != nil {
		return err
	}
	d, err := dict.Load(path)
	if err != nil {
		return err
	}
	err = r.render(ctx, d)
	if err != nil || !watch {
		return err
	}

	format, err := dict.FormatOf(path)
	if err != nil {
		return err
	}
	w, err := config.NewWatcher(path, -1, r.log)
	if err != nil {
		return err
	}
	defer w.Close()
	r.log.LogAttrs(ctx, slog.LevelInfo, "watching dictionary", slog.String("path", path))
	return w.Run(ctx, func(b []byte) error {
		d, err := dict.Parse(b, format)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return r.render(ctx, d)
	})
}

// render renders the receiver's text with the glyphs in d.
func (r *renderer) render(ctx context.Context, d *dict.Dictionary) error {
	if d.Size() != r.size {
		return fmt.Errorf("%w: dictionary %q has size %d, want %d", glyph.ErrDimensionMismatch, d.Meta.Name, d.Size(), r.size)
	}
	glyphs, err := d.Text(r.text)
	if err != nil {
		return err
	}
	stream, err := glyph.Frames(glyphs, r.mode)
	if err != nil {
		return err
	}
	err = r.out.Write(stream)
	if err != nil {
		return err
	}
	frames := len(stream) / int(r.size)
	r.log.LogAttrs(ctx, slog.LevelInfo, "rendered",
		slog.String("text", r.text),
		slog.Any("mode", slogext.Stringer{Stringer: r.mode}),
		slog.Int("frames", frames),
		slog.Any("stream", slogext.Bytes{Data: stream, Limit: 64}),
	)

	if r.preview != nil {
		var buf bytes.Buffer
		err = animation.WriteGIF(&buf, stream, int(r.size), r.scale, r.delay)
		if err != nil {
			return fmt.Errorf("preview: %w", err)
		}
		err = r.preview.Write(buf.Bytes())
		if err != nil {
			return fmt.Errorf("preview: %w", err)
		}
	}

	if r.store != "" {
		db, err := state.Open(r.store, r.log)
		if err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		_, _, err = db.Put(ctx, state.Render{
			Text:   r.text,
			Size:   r.size,
			Mode:   r.mode,
			Frames: stream,
		})
		cerr := db.Close()
		if err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		if cerr != nil {
			return fmt.Errorf("archive: %w", cerr)
		}
	}

	fmt.Fprintf(r.stdout, "wrote %d frames (%d bytes) to %s\n", frames, len(stream), r.outName)
	return nil
}

// printInfo writes a description of the animation held in src to w.
func printInfo(w io.Writer, src access.Source, size int) error {
	if size < 1 || size > 8 {
		return fmt.Errorf("%w: %d", glyph.ErrWidthUnsupported, size)
	}
	stream, err := src.Read()
	if err != nil {
		return err
	}
	frames, err := glyph.Split(stream, size)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "size: %[1]dx%[1]d\nbytes: %d\nframes: %d\n", size, len(stream), len(frames))
	return animation.Text(w, stream, size)
}

// printList writes the metadata and characters of the dictionary for the
// given size found in dir to w.
func printList(w io.Writer, dir string, size uint8) error {
	path, err := dict.Find(dir, size)
	if err != nil {
		return err
	}
	d, err := dict.Load(path)
	if err != nil {
		return err
	}
	chars := d.Chars()
	quoted := make([]string, len(chars))
	for i, c := range chars {
		quoted[i] = strconv.Quote(c)
	}
	wrapper := wrap.NewWrapper()
	wrapper.StripTrailingNewline = true
	fmt.Fprintf(w, "name: %s\nsize: %dx%d\nbit order: %s\nversion: %d\ncharacters: %d\n%s\n",
		d.Meta.Name, d.Meta.Width, d.Meta.Height, d.Meta.BitOrder, d.Meta.Version,
		len(chars), wrapper.Wrap(strings.Join(quoted, " "), 72),
	)
	return nil
}

// printHistory writes the renders held in the archive at path to w.
// Renders with a zero size have their frame count reported as invalid.
func printHistory(ctx context.Context, w io.Writer, path string, log *slog.Logger) error {
	db, err := state.Open(path, log)
	if err != nil {
		return err
	}
	defer db.Close()
	renders, err := db.List(ctx)
	if err != nil {
		return err
	}
	for _, r := range renders {
		frames := "invalid"
		if r.Size != 0 {
			frames = strconv.Itoa(len(r.Frames) / int(r.Size))
		}
		fmt.Fprintf(w, "%s %s %[3]dx%[3]d %s %q\n",
			r.Created.UTC().Format(time.RFC3339), r.Mode, r.Size, frames, r.Text)
	}
	return nil
}
