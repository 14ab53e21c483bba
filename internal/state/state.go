// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package state provides persistence of rendered animations.
package state

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/kortschak/ledglyph/glyph"
	"github.com/kortschak/ledglyph/internal/slogext"

	// For sql.DB registration.
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a render is not in the archive.
var ErrNotFound = errors.New("not found")

// DB is a persistent render archive.
type DB struct {
	mu    sync.Mutex
	store *sql.DB
	log   *slog.Logger
}

// Render is an archived animation.
type Render struct {
	Text    string
	Size    uint8
	Mode    glyph.Mode
	Frames  []byte
	Created time.Time
}

// Schema is the DB schema. A render is identified by its text, glyph size
// and animation mode.
const Schema = `
create table if not exists render(
	text    TEXT NOT NULL,
	size    INTEGER NOT NULL,
	mode    TEXT NOT NULL,
	frames  BLOB NOT NULL,
	created TEXT NOT NULL,
	PRIMARY KEY(text, size, mode)
);
`

const (
	upsert = `
insert into render values(?, ?, ?, ?, ?)
  on conflict do update set frames=excluded.frames, created=excluded.created;
`

	get = `
select frames, created from render where text is ? and size is ? and mode is ?;
`

	list = `
select text, size, mode, frames, created from render order by created, text, size, mode;
`

	delet = `
delete from render where text is ? and size is ? and mode is ?;
`
)

// Open opens a DB, creating the tables if required.
// See https://pkg.go.dev/modernc.org/sqlite#Driver.Open for name handling
// details.
func Open(name string, log *slog.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", name)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &DB{store: db, log: log.With(slog.String("component", "state.db"))}, nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Put stores the render, replacing any existing render with the same text,
// size and mode, and returns the frames of the replaced render. It returns
// whether the stored frames changed. If r.Created is zero, the current time
// is used.
func (db *DB) Put(ctx context.Context, r Render) (old []byte, written bool, err error) {
	key := renderKey{r.Text, r.Size, r.Mode}
	db.log.LogAttrs(ctx, slog.LevelDebug, "put", slog.Any("key", key), slog.Any("frames", slogext.Bytes{Data: r.Frames, Limit: 64}))
	if r.Created.IsZero() {
		r.Created = time.Now()
	}
	mode, err := r.Mode.MarshalText()
	if err != nil {
		return nil, false, err
	}
	db.mu.Lock()
	defer func() {
		db.mu.Unlock()
		if err != nil {
			db.log.LogAttrs(ctx, slog.LevelError, "put", slog.Any("key", key), slog.Any("error", err))
		}
	}()
	tx, err := db.store.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	prev, err := db.get(ctx, tx, r.Text, r.Size, r.Mode)
	switch {
	case err == nil:
		old = prev.Frames
	case errors.Is(err, ErrNotFound):
	default:
		return nil, false, errors.Join(err, tx.Rollback())
	}
	_, err = tx.ExecContext(ctx, upsert, r.Text, int(r.Size), string(mode), r.Frames, r.Created.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, false, errors.Join(err, tx.Rollback())
	}
	return old, !bytes.Equal(old, r.Frames), tx.Commit()
}

// Get returns the render for the text, size and mode. Get returns
// ErrNotFound if no render is found.
func (db *DB) Get(ctx context.Context, text string, size uint8, mode glyph.Mode) (Render, error) {
	key := renderKey{text, size, mode}
	db.log.LogAttrs(ctx, slog.LevelDebug, "get", slog.Any("key", key))
	db.mu.Lock()
	r, err := db.get(ctx, db.store, text, size, mode)
	db.mu.Unlock()
	if err != nil && err != ErrNotFound {
		db.log.LogAttrs(ctx, slog.LevelError, "get", slog.Any("key", key), slog.Any("error", err))
	}
	return r, err
}

func (*DB) get(ctx context.Context, db querier, text string, size uint8, mode glyph.Mode) (Render, error) {
	var (
		frames  []byte
		created string
	)
	err := db.QueryRowContext(ctx, get, text, int(size), mode.String()).Scan(&frames, &created)
	if err == sql.ErrNoRows {
		return Render{}, ErrNotFound
	}
	if err != nil {
		return Render{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Render{}, err
	}
	return Render{Text: text, Size: size, Mode: mode, Frames: frames, Created: t}, nil
}

// List returns all archived renders ordered by creation time.
func (db *DB) List(ctx context.Context) ([]Render, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	rows, err := db.store.QueryContext(ctx, list)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var renders []Render
	for rows.Next() {
		var (
			r       Render
			size    int
			mode    string
			created string
		)
		err = rows.Scan(&r.Text, &size, &mode, &r.Frames, &created)
		if err != nil {
			return nil, err
		}
		r.Size = uint8(size)
		err = r.Mode.UnmarshalText([]byte(mode))
		if err != nil {
			return nil, err
		}
		r.Created, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, err
		}
		renders = append(renders, r)
	}
	return renders, rows.Err()
}

// Delete removes the render for the text, size and mode.
func (db *DB) Delete(ctx context.Context, text string, size uint8, mode glyph.Mode) error {
	key := renderKey{text, size, mode}
	db.log.LogAttrs(ctx, slog.LevelDebug, "delete", slog.Any("key", key))
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.store.ExecContext(ctx, delet, text, int(size), mode.String())
	if err != nil {
		db.log.LogAttrs(ctx, slog.LevelError, "delete", slog.Any("key", key), slog.Any("error", err))
	}
	return err
}

// Close closes the database.
func (db *DB) Close() error {
	return db.store.Close()
}

type renderKey struct {
	Text string     `json:"text"`
	Size uint8      `json:"size"`
	Mode glyph.Mode `json:"mode"`
}
