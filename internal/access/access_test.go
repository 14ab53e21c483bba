// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package access

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/google/go-cmp/cmp"
)

var (
	_ Source = File{}
	_ Sink   = File{}
	_ Source = (*Buffer)(nil)
	_ Sink   = (*Buffer)(nil)
)

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.bin")
	f := File{Path: path}

	_, err := f.Read()
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected error reading missing file: got:%v want:%v", err, fs.ErrNotExist)
	}

	for _, want := range [][]byte{
		{4, 2, 1, 0, 4, 2},
		{1, 2, 3},
	} {
		err = f.Write(want)
		if err != nil {
			t.Fatalf("unexpected error writing: %v", err)
		}
		got, err := f.Read()
		if err != nil {
			t.Fatalf("unexpected error reading: %v", err)
		}
		if !cmp.Equal(want, got) {
			t.Errorf("unexpected contents:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
		}
	}
	_, err = os.Stat(path + ".lock")
	if err != nil {
		t.Errorf("lock file not retained: %v", err)
	}
}

func TestFileLockRetained(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.bin")
	f := File{Path: path}
	err := f.Write([]byte{1})
	if err != nil {
		t.Fatalf("unexpected error writing: %v", err)
	}
	before, err := os.Stat(path + ".lock")
	if err != nil {
		t.Fatalf("lock file not retained: %v", err)
	}
	err = f.Write([]byte{2})
	if err != nil {
		t.Fatalf("unexpected error writing: %v", err)
	}
	after, err := os.Stat(path + ".lock")
	if err != nil {
		t.Fatalf("lock file not retained: %v", err)
	}
	// All writers must contend on the same lock file.
	if !os.SameFile(before, after) {
		t.Error("lock file replaced between writes")
	}

	other := flock.New(path + ".lock")
	ok, err := other.TryLock()
	if err != nil || !ok {
		t.Fatalf("failed to take lock: ok=%t err=%v", ok, err)
	}
	err = f.Write([]byte{4})
	if !errors.Is(err, ErrBusy) {
		t.Errorf("unexpected error: got:%v want:%v", err, ErrBusy)
	}
	err = other.Unlock()
	if err != nil {
		t.Fatalf("failed to release lock: %v", err)
	}

	err = f.Write([]byte{3})
	if err != nil {
		t.Fatalf("unexpected error writing after release: %v", err)
	}
	got, err := f.Read()
	if err != nil {
		t.Fatalf("unexpected error reading: %v", err)
	}
	if want := []byte{3}; !cmp.Equal(want, got) {
		t.Errorf("unexpected contents:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
	}
}

func TestFileLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.bin")
	other := flock.New(path + ".lock")
	ok, err := other.TryLock()
	if err != nil || !ok {
		t.Fatalf("failed to take lock: ok=%t err=%v", ok, err)
	}
	defer other.Unlock()

	err = File{Path: path}.Write([]byte{1})
	if !errors.Is(err, ErrBusy) {
		t.Errorf("unexpected error: got:%v want:%v", err, ErrBusy)
	}
	_, err = os.Stat(path)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected file written while locked: %v", err)
	}
}

func TestBuffer(t *testing.T) {
	data := []byte{1, 2, 3}
	b := NewBuffer(data)
	data[0] = 0xff
	got, err := b.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []byte{1, 2, 3}; !cmp.Equal(want, got) {
		t.Errorf("unexpected contents:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
	}

	errWrite := errors.New("simulated write error")
	b.WriteErr = errWrite
	err = b.Write([]byte{9})
	if !errors.Is(err, errWrite) {
		t.Errorf("unexpected error: got:%v want:%v", err, errWrite)
	}
	errRead := errors.New("simulated read error")
	b.ReadErr = errRead
	_, err = b.Read()
	if !errors.Is(err, errRead) {
		t.Errorf("unexpected error: got:%v want:%v", err, errRead)
	}
}
