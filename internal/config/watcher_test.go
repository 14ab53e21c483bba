// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kortschak/ledglyph/internal/locked"
	"github.com/kortschak/ledglyph/internal/slogext"
)

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bitmap-3X3.json")
	err := os.WriteFile(path, []byte("initial"), 0o644)
	if err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	var logBuf locked.BytesBuffer
	log := slog.New(slogext.NewJSONHandler(&logBuf, &slogext.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: slogext.NewAtomicBool(*lines),
	}))
	defer func() {
		if *verbose {
			t.Logf("log:\n%s\n", &logBuf)
		}
	}()

	w, err := NewWatcher(path, -1, log)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	changes := make(chan string, 100)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(b []byte) error {
			changes <- string(b)
			return nil
		})
	}()

	// Unrelated files in the directory are ignored.
	err = os.WriteFile(filepath.Join(dir, "other.json"), []byte("other"), 0o644)
	if err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	for _, want := range []string{"first", "second"} {
		err = os.WriteFile(path, []byte(want), 0o644)
		if err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		wait(t, ctx, changes, want)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error from Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("watcher failed to terminate")
	}
}

// wait waits for want to be received on changes. Intermediate states
// caused by non-atomic writes are skipped, but content from unrelated
// files is an error.
func wait(t *testing.T, ctx context.Context, changes <-chan string, want string) {
	t.Helper()
	for {
		select {
		case <-ctx.Done():
			t.Fatalf("timed out waiting for %q", want)
		case got := <-changes:
			if got == want {
				return
			}
			if got == "other" {
				t.Fatalf("unexpected change from unrelated file")
			}
		}
	}
}
