// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package access provides byte stream sources and sinks for animation
// data.
package access

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gofrs/flock"
)

// Source is a readable data source.
type Source interface {
	Read() ([]byte, error)
}

// Sink is a writable data sink.
type Sink interface {
	Write(data []byte) error
}

// File is a file-backed Source and Sink.
type File struct {
	// Path is the path to the file.
	Path string
	// Perm is the permission used when creating the file.
	// If Perm is zero, 0o644 is used.
	Perm os.FileMode
}

// Read returns the contents of the file.
func (f File) Read() ([]byte, error) {
	return os.ReadFile(f.Path)
}

// Write replaces the contents of the file with data, creating it if
// necessary. An exclusive advisory lock on Path+".lock" is held while
// writing so that concurrent writers do not interleave. The lock file is
// left in place after writing.
func (f File) Write(data []byte) (err error) {
	perm := f.Perm
	if perm == 0 {
		perm = 0o644
	}
	fl := flock.New(f.Path + ".lock")
	ok, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", f.Path, err)
	}
	if !ok {
		return fmt.Errorf("lock %s: %w", f.Path, ErrBusy)
	}
	defer func() {
		err = errors.Join(err, fl.Unlock())
	}()
	return os.WriteFile(f.Path, data, perm)
}

// ErrBusy is returned by File.Write when another writer holds the file's
// lock.
var ErrBusy = errors.New("file is locked by another writer")

// Buffer is an in-memory Source and Sink. The zero value is an empty
// buffer.
type Buffer struct {
	mu   sync.Mutex
	data []byte

	// ReadErr and WriteErr, if not nil, are returned by Read and
	// Write respectively.
	ReadErr  error
	WriteErr error
}

// NewBuffer returns a Buffer holding a copy of data.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: bytes.Clone(data)}
}

// Read returns a copy of the buffer's contents.
func (b *Buffer) Read() ([]byte, error) {
	if b.ReadErr != nil {
		return nil, b.ReadErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.data), nil
}

// Write replaces the buffer's contents with a copy of data.
func (b *Buffer) Write(data []byte) error {
	if b.WriteErr != nil {
		return b.WriteErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = bytes.Clone(data)
	return nil
}
