// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dict provides glyph dictionaries mapping characters to square
// bitmaps described by rows of binary digit strings.
//
// A dictionary is a JSON or YAML document of the form
//
//	{
//		"meta": {
//			"name": "block",
//			"width": 5,
//			"height": 5,
//			"bit_order": "msb",
//			"version": 1
//		},
//		"glyphs": {
//			"A": ["01110", "10001", "11111", "10001", "10001"],
//			...
//		}
//	}
//
// With "msb" bit order the first digit of a row is the leftmost pixel and
// the most significant bit. With "lsb" bit order the first digit is the
// least significant bit.
package dict

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/kortschak/ledglyph/glyph"
	"github.com/kortschak/ledglyph/internal/config"
)

// Dictionary is a glyph dictionary.
type Dictionary struct {
	Meta   Meta                `json:"meta" yaml:"meta"`
	Glyphs map[string][]string `json:"glyphs" yaml:"glyphs"`
}

// Meta is the dictionary metadata.
type Meta struct {
	Name     string `json:"name" yaml:"name"`
	Width    uint8  `json:"width" yaml:"width"`
	Height   uint8  `json:"height" yaml:"height"`
	BitOrder string `json:"bit_order" yaml:"bit_order"`
	Version  uint8  `json:"version" yaml:"version"`
}

// Format is a dictionary encoding format.
type Format int

const (
	JSON Format = iota
	YAML
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatOf returns the dictionary format implied by the path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return 0, fmt.Errorf("unknown dictionary format: %s", path)
	}
}

// Schema is the CUE schema for a valid dictionary. Glyph row counts, row
// widths and digits depend on the metadata and are checked by Validate.
const Schema = `
{
	meta: {
		name:      !=""
		width:     uint8 & >=1 & <=8
		height:    uint8 & >=1 & <=8
		bit_order: "msb" | "lsb"
		version:   uint8
	}
	glyphs: close({[=~"^.$"]: [...string]})
}
`

// ErrSchema is returned when a dictionary does not conform to Schema.
var ErrSchema = errors.New("invalid dictionary")

// SchemaError is the error returned for a dictionary that does not conform
// to Schema.
type SchemaError struct {
	// Paths is the list of invalid field paths.
	Paths [][]string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%v: %v", ErrSchema, e.Err)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

func (e *SchemaError) Unwrap() error { return e.Err }

// Parse returns the dictionary encoded in data. The dictionary is validated
// against Schema and must describe square glyphs.
func Parse(data []byte, format Format) (*Dictionary, error) {
	var d Dictionary
	switch format {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err := dec.Decode(&d)
		if err != nil {
			return nil, err
		}
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err := dec.Decode(&d)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown dictionary format: %v", format)
	}
	err := d.Validate()
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the dictionary against Schema and checks that the glyphs
// are square, with each glyph holding exactly Meta.Height rows of at most
// Meta.Width binary digits. Validation errors are reported as *SchemaError
// with a path for each invalid field or glyph.
func (d *Dictionary) Validate() error {
	paths, err := config.Validate(Schema, d)
	if err != nil {
		return &SchemaError{Paths: paths, Err: err}
	}
	if d.Meta.Width != d.Meta.Height {
		return &SchemaError{
			Paths: [][]string{{"meta", "height"}},
			Err:   fmt.Errorf("%w: width %d and height %d", glyph.ErrDimensionMismatch, d.Meta.Width, d.Meta.Height),
		}
	}
	var (
		bad  [][]string
		errs []error
	)
	for _, c := range d.Chars() {
		_, err := d.decode(d.Glyphs[c])
		if err != nil {
			bad = append(bad, []string{"glyphs", c})
			errs = append(errs, fmt.Errorf("glyph %q: %w", c, err))
		}
	}
	if len(errs) != 0 {
		return &SchemaError{Paths: bad, Err: errors.Join(errs...)}
	}
	return nil
}

// Size returns the glyph size of the dictionary.
func (d *Dictionary) Size() uint8 { return d.Meta.Height }

// Chars returns the characters held by the dictionary in sorted order.
func (d *Dictionary) Chars() []string {
	chars := make([]string, 0, len(d.Glyphs))
	for c := range d.Glyphs {
		chars = append(chars, c)
	}
	sort.Strings(chars)
	return chars
}

// Rows returns the decoded bitmap rows for the character r. If the
// dictionary has no entry for r, the error wraps glyph.ErrCharacterNotFound.
func (d *Dictionary) Rows(r rune) ([]byte, error) {
	rows, ok := d.Glyphs[string(r)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", glyph.ErrCharacterNotFound, r)
	}
	bitmap, err := d.decode(rows)
	if err != nil {
		return nil, fmt.Errorf("glyph %q: %w", r, err)
	}
	return bitmap, nil
}

// decode returns the bitmap described by rows. There must be Meta.Height
// rows, each of at most Meta.Width digits.
func (d *Dictionary) decode(rows []string) ([]byte, error) {
	if len(rows) != int(d.Meta.Height) {
		return nil, fmt.Errorf("%w: %d rows for height %d", glyph.ErrDimensionMismatch, len(rows), d.Meta.Height)
	}
	for i, s := range rows {
		if len(s) > int(d.Meta.Width) {
			return nil, &glyph.RowError{
				Row:  i,
				Text: s,
				Err:  fmt.Errorf("%w: %d digits for width %d", glyph.ErrRowTooWide, len(s), d.Meta.Width),
			}
		}
	}
	if d.Meta.BitOrder == "lsb" {
		rev := make([]string, len(rows))
		for i, s := range rows {
			rev[i] = reverse(s)
		}
		rows = rev
	}
	return glyph.DecodeRows(rows)
}

// Glyph returns the glyph for the character r.
func (d *Dictionary) Glyph(r rune) (glyph.Glyph, error) {
	bitmap, err := d.Rows(r)
	if err != nil {
		return glyph.Glyph{}, err
	}
	g, err := glyph.New(d.Size(), bitmap)
	if err != nil {
		return glyph.Glyph{}, fmt.Errorf("glyph %q: %w", r, err)
	}
	return g, nil
}

// Text returns the glyphs for each character in text in order. The first
// character that cannot be rendered is reported and no glyphs are returned.
func (d *Dictionary) Text(text string) ([]glyph.Glyph, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("invalid UTF-8 text: %q", text)
	}
	glyphs := make([]glyph.Glyph, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		g, err := d.Glyph(r)
		if err != nil {
			return nil, err
		}
		glyphs = append(glyphs, g)
	}
	return glyphs, nil
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
