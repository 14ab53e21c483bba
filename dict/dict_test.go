// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dict

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kortschak/ledglyph/glyph"
)

func TestLoad(t *testing.T) {
	for _, name := range []string{"bitmap-3X3.json", "bitmap-3X3.yaml"} {
		t.Run(name, func(t *testing.T) {
			d, err := Load(filepath.Join("testdata", name))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			wantMeta := Meta{Name: "slashes", Width: 3, Height: 3, BitOrder: "msb", Version: 1}
			if d.Meta != wantMeta {
				t.Errorf("unexpected metadata:\n--- want:\n+++ got:\n%s", cmp.Diff(wantMeta, d.Meta))
			}
			wantChars := []string{" ", "-", "/", "\\"}
			if !cmp.Equal(wantChars, d.Chars()) {
				t.Errorf("unexpected characters:\n--- want:\n+++ got:\n%s", cmp.Diff(wantChars, d.Chars()))
			}

			glyphs, err := d.Text(`\/`)
			if err != nil {
				t.Fatalf("unexpected error making glyphs: %v", err)
			}
			got, err := glyph.Frames(glyphs, glyph.Scroll)
			if err != nil {
				t.Fatalf("unexpected error making frames: %v", err)
			}
			want := []byte{4, 2, 1, 0, 4, 2, 0, 0, 5, 0, 1, 2, 1, 2, 4, 2, 4, 0, 4, 0, 0, 0, 0, 0}
			if !cmp.Equal(want, got) {
				t.Errorf("unexpected frames:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
			}
		})
	}
}

var textErrorTests = []struct {
	text string
	want error
}{
	{text: "/?", want: glyph.ErrCharacterNotFound},
	{text: "s", want: glyph.ErrDimensionMismatch},
	{text: "-w", want: glyph.ErrRowTooWide},
	{text: "-n", want: glyph.ErrRowTooWide},
	{text: "x/", want: glyph.ErrInvalidDigit},
	{text: "x?", want: glyph.ErrInvalidDigit},
	{text: "\xff", want: nil},
}

func TestTextErrors(t *testing.T) {
	// Dictionaries built in code are not validated, so glyph
	// errors are found when the text is rendered.
	d := &Dictionary{
		Meta: Meta{Name: "broken", Width: 3, Height: 3, BitOrder: "msb", Version: 1},
		Glyphs: map[string][]string{
			"-": {"000", "111", "000"},
			"/": {"001", "010", "100"},
			"s": {"111", "100"},
			"w": {"000000000", "010", "100"},
			"n": {"1000", "010", "100"},
			"x": {"101", "0x0", "101"},
		},
	}
	for _, test := range textErrorTests {
		t.Run(test.text, func(t *testing.T) {
			glyphs, err := d.Text(test.text)
			if err == nil {
				t.Fatalf("expected error")
			}
			if test.want != nil && !errors.Is(err, test.want) {
				t.Errorf("unexpected error: got:%v want:%v", err, test.want)
			}
			if glyphs != nil {
				t.Errorf("unexpected partial glyphs: %v", glyphs)
			}
		})
	}
}

func TestBitOrder(t *testing.T) {
	d := &Dictionary{
		Meta: Meta{Name: "lsb", Width: 3, Height: 3, BitOrder: "lsb", Version: 1},
		Glyphs: map[string][]string{
			"L": {"100", "100", "111"},
		},
	}
	err := d.Validate()
	if err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	got, err := d.Rows('L')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0b001, 0b001, 0b111}
	if !cmp.Equal(want, got) {
		t.Errorf("unexpected rows:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
	}
}

var parseErrorTests = []struct {
	name     string
	data     string
	wantPath []string
	wantErr  error
}{
	{
		name:     "no_name",
		data:     `{"meta":{"name":"","width":3,"height":3,"bit_order":"msb","version":1},"glyphs":{}}`,
		wantPath: []string{"meta", "name"},
	},
	{
		name:     "too_wide",
		data:     `{"meta":{"name":"n","width":9,"height":9,"bit_order":"msb","version":1},"glyphs":{}}`,
		wantPath: []string{"meta", "width"},
	},
	{
		name:     "not_square",
		data:     `{"meta":{"name":"n","width":3,"height":4,"bit_order":"msb","version":1},"glyphs":{}}`,
		wantPath: []string{"meta", "height"},
	},
	{
		name:     "bad_bit_order",
		data:     `{"meta":{"name":"n","width":3,"height":3,"bit_order":"middle","version":1},"glyphs":{}}`,
		wantPath: []string{"meta", "bit_order"},
	},
	{
		name:     "long_key",
		data:     `{"meta":{"name":"n","width":1,"height":1,"bit_order":"msb","version":1},"glyphs":{"ab":["1"]}}`,
		wantPath: []string{"glyphs", "ab"},
	},
	{
		name:     "short_glyph",
		data:     `{"meta":{"name":"n","width":3,"height":3,"bit_order":"msb","version":1},"glyphs":{"a":["111","100"]}}`,
		wantPath: []string{"glyphs", "a"},
		wantErr:  glyph.ErrDimensionMismatch,
	},
	{
		name:     "tall_glyph",
		data:     `{"meta":{"name":"n","width":2,"height":2,"bit_order":"msb","version":1},"glyphs":{"a":["11","10","01"]}}`,
		wantPath: []string{"glyphs", "a"},
		wantErr:  glyph.ErrDimensionMismatch,
	},
	{
		name:     "row_wider_than_glyph",
		data:     `{"meta":{"name":"n","width":3,"height":3,"bit_order":"msb","version":1},"glyphs":{"-":["000","111","000"],"a":["1000","11111","000"]}}`,
		wantPath: []string{"glyphs", "a"},
		wantErr:  glyph.ErrRowTooWide,
	},
	{
		name:     "lsb_row_wider_than_glyph",
		data:     `{"meta":{"name":"n","width":3,"height":3,"bit_order":"lsb","version":1},"glyphs":{"a":["0001","000","000"]}}`,
		wantPath: []string{"glyphs", "a"},
		wantErr:  glyph.ErrRowTooWide,
	},
	{
		name:     "invalid_digit",
		data:     `{"meta":{"name":"n","width":3,"height":3,"bit_order":"msb","version":1},"glyphs":{"x":["101","0x0","101"]}}`,
		wantPath: []string{"glyphs", "x"},
		wantErr:  glyph.ErrInvalidDigit,
	},
}

func TestParseErrors(t *testing.T) {
	for _, test := range parseErrorTests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.data), JSON)
			if !errors.Is(err, ErrSchema) {
				t.Fatalf("unexpected error: got:%v want:%v", err, ErrSchema)
			}
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("unexpected error type: %T", err)
			}
			if !slices.ContainsFunc(schemaErr.Paths, func(p []string) bool { return slices.Equal(p, test.wantPath) }) {
				t.Errorf("missing path %q in %q", test.wantPath, schemaErr.Paths)
			}
			if test.wantErr != nil && !errors.Is(err, test.wantErr) {
				t.Errorf("unexpected error: got:%v want:%v", err, test.wantErr)
			}
		})
	}

	_, err := Parse([]byte(`{"meta":{},"glyphs":{},"extra":true}`), JSON)
	if err == nil {
		t.Error("expected error for unknown field")
	}
	_, err = Parse([]byte("meta: [\n"), YAML)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestFind(t *testing.T) {
	got, err := Find("testdata", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join("testdata", "bitmap-3X3.json")
	if got != want {
		t.Errorf("unexpected path: got:%q want:%q", got, want)
	}

	_, err = Find("testdata", 5)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected error: got:%v want:%v", err, fs.ErrNotExist)
	}

	if runtime.GOOS != "linux" {
		t.Skip("data directory search depends on XDG environment variables")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "share"))
	t.Setenv("XDG_DATA_DIRS", filepath.Join(home, "system"))
	dir := filepath.Join(home, "system", DataDir)
	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		t.Fatalf("failed to make data dir: %v", err)
	}
	want = filepath.Join(dir, "bitmap-4X4.yaml")
	err = os.WriteFile(want, nil, 0o644)
	if err != nil {
		t.Fatalf("failed to write dictionary: %v", err)
	}
	got, err = Find("", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("unexpected path: got:%q want:%q", got, want)
	}
}
