// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileDebounce is the default duration we wait for the contents to have
// stabilised to work around some editors writing an empty file and then the
// buffer.
const FileDebounce = 10 * time.Millisecond

// Sum is a file content checksum.
type Sum [sha1.Size]byte

func (s Sum) String() string {
	return hex.EncodeToString(s[:])
}

// Watcher watches a single file for semantically meaningful changes.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	sum      Sum
	log      *slog.Logger
}

// NewWatcher returns a Watcher for the file at path. The file's parent
// directory must exist. The debounce parameter specifies how long to wait
// after an fsnotify.Event before reading the file to ensure that writes
// will be reflected in the content checksum. If it is less than zero,
// FileDebounce is used.
func NewWatcher(path string, debounce time.Duration, log *slog.Logger) (*Watcher, error) {
	if debounce < 0 {
		debounce = FileDebounce
	}
	path = filepath.Clean(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory rather than the file so that editors that
	// replace the file by renaming are followed.
	err = watcher.Add(filepath.Dir(path))
	if err != nil {
		watcher.Close()
		return nil, err
	}
	w := &Watcher{
		path:     path,
		debounce: debounce,
		watcher:  watcher,
		log:      log.With(slog.String("component", "config.watcher")),
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		w.sum = sha1.Sum(b)
	case errors.Is(err, fs.ErrNotExist):
	default:
		watcher.Close()
		return nil, err
	}
	return w, nil
}

// Run calls fn with the contents of the watched file each time its
// contents change until ctx is cancelled or the watcher is closed. Errors
// returned by fn are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, fn func([]byte) error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.LogAttrs(ctx, slog.LevelWarn, "watch error", slog.Any("error", err))
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			w.log.LogAttrs(ctx, slog.LevelDebug, "event", slog.String("name", ev.Name), slog.String("op", ev.Op.String()))
			time.Sleep(w.debounce)

			b, err := os.ReadFile(w.path)
			if err != nil {
				w.log.LogAttrs(ctx, slog.LevelError, "read file", slog.Any("error", err))
				continue
			}
			sum := Sum(sha1.Sum(b))
			if sum == w.sum {
				w.log.LogAttrs(ctx, slog.LevelDebug, "no change", slog.String("sum", sum.String()))
				continue
			}
			w.log.LogAttrs(ctx, slog.LevelDebug, "set hash", slog.String("sum", sum.String()), slog.String("last", w.sum.String()))
			w.sum = sum
			err = fn(b)
			if err != nil {
				w.log.LogAttrs(ctx, slog.LevelWarn, "change handler", slog.Any("error", err))
			}
		}
	}
}

// Close closes the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
