// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dict

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kortschak/ledglyph/internal/xdg"
)

// DataDir is the name of the directory holding dictionaries within the
// user and system data directories.
const DataDir = "ledglyph"

// extensions is the search order for dictionary file extensions.
var extensions = []string{".json", ".yaml", ".yml"}

// Name returns the base name of the dictionary file for the given glyph
// size without its extension.
func Name(size uint8) string {
	return fmt.Sprintf("bitmap-%[1]dX%[1]d", size)
}

// Find returns the path to the dictionary file for the given glyph size.
// If dir is not empty, only dir is searched. Otherwise the user and system
// data directories are searched for a DataDir directory holding the file.
func Find(dir string, size uint8) (string, error) {
	name := Name(size)
	for _, ext := range extensions {
		if dir != "" {
			path := filepath.Join(dir, name+ext)
			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return "", err
			}
			continue
		}
		path, err := xdg.Data(filepath.Join(DataDir, name+ext), false)
		if err == nil {
			return path, nil
		}
	}
	where := dir
	if where == "" {
		where = "data directories"
	}
	return "", fmt.Errorf("no dictionary for size %d in %s: %w", size, where, fs.ErrNotExist)
}

// Load reads and parses the dictionary file at path.
func Load(path string) (*Dictionary, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Parse(b, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
