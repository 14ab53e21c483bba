// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glyph

import "fmt"

// DecodeRow returns the byte value of a string of binary digits. The
// string may be at most 8 characters long. An empty string is zero.
func DecodeRow(s string) (byte, error) {
	if len(s) > 8 {
		return 0, fmt.Errorf("%w: %q", ErrRowTooWide, s)
	}
	var v byte
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '0', '1':
			v = v<<1 | (c - '0')
		default:
			return 0, fmt.Errorf("%w: %q at position %d of %q", ErrInvalidDigit, c, i, s)
		}
	}
	return v, nil
}

// DecodeRows decodes a complete glyph bitmap from its row strings. If any
// row fails to decode, no bitmap is returned and the error is a *RowError
// for the first failing row.
func DecodeRows(rows []string) ([]byte, error) {
	bitmap := make([]byte, len(rows))
	for i, s := range rows {
		v, err := DecodeRow(s)
		if err != nil {
			return nil, &RowError{Row: i, Text: s, Err: err}
		}
		bitmap[i] = v
	}
	return bitmap, nil
}

// RowError is the error returned by DecodeRows.
type RowError struct {
	Row  int    // Row is the index of the failing row.
	Text string // Text is the row's source text.
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
