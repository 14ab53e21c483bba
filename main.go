// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The ledglyph command renders text into LED matrix animation streams
// using square glyph dictionaries.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/kortschak/ledglyph/glyph"
	"github.com/kortschak/ledglyph/internal/access"
	"github.com/kortschak/ledglyph/internal/config"
	"github.com/kortschak/ledglyph/internal/slogext"
	"github.com/kortschak/ledglyph/internal/version"
	"github.com/kortschak/ledglyph/internal/xdg"
)

// Exit status codes.
const (
	success         = 0
	internalError   = 1
	invocationError = 2
)

func main() { os.Exit(Main()) }

func Main() int {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage of %s:

  %[1]s -char <c> -grid <n> -file <out> [-gif <out.gif>]
  %[1]s -string <text> -mode <next|scroll> -grid <n> -file <out> [-gif <out.gif>] [-watch]
  %[1]s -info -grid <n> -file <in>
  %[1]s -list -grid <n>
  %[1]s -history

The grid size, mode, dictionary directory and archive path may also be
provided by the configuration file or the environment.

`, os.Args[0])
		flag.PrintDefaults()
	}
	char := flag.String("char", "", "render a single character")
	text := flag.String("string", "", "render a string")
	flag.Bool("info", false, "print information about an animation file")
	flag.Bool("list", false, "list the characters of a dictionary")
	flag.Bool("history", false, "list archived renders")
	mode := flag.String("mode", "", "animation mode for strings (next or scroll)")
	grid := flag.Uint("grid", 0, "square glyph grid size (1-8)")
	file := flag.String("file", "", "animation file to write, or to read with -info")
	gifPath := flag.String("gif", "", "write an animated GIF preview to this path")
	scale := flag.Int("scale", 16, "GIF preview pixels per LED")
	delay := flag.Int("delay", 15, "GIF preview frame delay in 100ths of a second")
	dictDir := flag.String("dict", "", "directory holding glyph dictionaries")
	cfgPath := flag.String("config", "", "path to TOML configuration file")
	envPath := flag.String("env", "", "path to dotenv configuration overrides")
	storePath := flag.String("store", "", "path to render archive")
	watch := flag.Bool("watch", false, "re-render when the dictionary changes")
	logging := flag.String("log", "", "logging level (debug, info, warn or error)")
	lines := flag.Bool("lines", false, "display source line details in logs")
	v := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *v {
		err := version.Print()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
		return success
	}
	if flag.NArg() != 0 {
		flag.Usage()
		return invocationError
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var actions []string
	for _, a := range []string{"char", "string", "info", "list", "history"} {
		if set[a] {
			actions = append(actions, a)
		}
	}
	if len(actions) != 1 {
		fmt.Fprintln(os.Stderr, "exactly one of -char, -string, -info, -list or -history is required")
		flag.Usage()
		return invocationError
	}
	action := actions[0]

	cfg, err := loadConfig(*cfgPath, *envPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return internalError
	}
	if set["grid"] {
		if *grid > 0xff {
			fmt.Fprintf(os.Stderr, "invalid grid size: %d\n", *grid)
			return invocationError
		}
		cfg.Render.GridSize = uint8(*grid)
	}
	if set["mode"] {
		cfg.Render.Mode = *mode
	}
	if set["dict"] {
		cfg.Render.Dictionary = *dictDir
	}
	if set["store"] {
		cfg.Store.Path = *storePath
	}
	if set["log"] {
		cfg.Log.Level = *logging
	}

	var level slog.LevelVar
	err = level.UnmarshalText([]byte(cfg.Log.Level))
	if err != nil {
		flag.Usage()
		return invocationError
	}
	addSource := slogext.NewAtomicBool(*lines || cfg.Log.AddSource)
	log := slog.New(slogext.GoID{Handler: slogext.NewJSONHandler(os.Stderr, &slogext.HandlerOptions{
		Level:     &level,
		AddSource: addSource,
	})})
	// mlog is the logger for main.
	mlog := log.With(slog.String("component", "ledglyph.main"))

	// Check permitted option combinations.
	var missing []string
	requires := func(name string, ok bool) {
		if !ok {
			missing = append(missing, "-"+name)
		}
	}
	switch action {
	case "char":
		requires("grid", cfg.Render.GridSize != 0)
		requires("file", *file != "")
		if utf8.RuneCountInString(*char) != 1 {
			fmt.Fprintf(os.Stderr, "-char requires a single character: %q\n", *char)
			return invocationError
		}
	case "string":
		requires("mode", cfg.Render.Mode != "")
		requires("grid", cfg.Render.GridSize != 0)
		requires("file", *file != "")
	case "info":
		requires("grid", cfg.Render.GridSize != 0)
		requires("file", *file != "")
	case "list":
		requires("grid", cfg.Render.GridSize != 0)
	case "history":
		requires("store", cfg.Store.Path != "")
	}
	if len(missing) != 0 {
		fmt.Fprintf(os.Stderr, "-%s requires %s\n", action, strings.Join(missing, " and "))
		flag.Usage()
		return invocationError
	}
	if *watch && action != "char" && action != "string" {
		fmt.Fprintln(os.Stderr, "-watch is only valid with -char or -string")
		flag.Usage()
		return invocationError
	}

	var animMode glyph.Mode
	switch action {
	case "char":
		// Single characters are always presented as a static frame.
		animMode = glyph.Next
		*text = *char
	case "string":
		err = animMode.UnmarshalText([]byte(cfg.Render.Mode))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			flag.Usage()
			return invocationError
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mlog.LogAttrs(ctx, slog.LevelDebug, "start", slog.String("action", action), slog.Any("config", cfg))

	switch action {
	case "info":
		err = printInfo(os.Stdout, access.File{Path: *file}, int(cfg.Render.GridSize))
	case "list":
		err = printList(os.Stdout, cfg.Render.Dictionary, cfg.Render.GridSize)
	case "history":
		err = printHistory(ctx, os.Stdout, cfg.Store.Path, log)
	default:
		r := &renderer{
			text:    *text,
			size:    cfg.Render.GridSize,
			mode:    animMode,
			out:     access.File{Path: *file},
			outName: *file,
			scale:   *scale,
			delay:   *delay,
			store:   cfg.Store.Path,
			log:     log.With(slog.String("component", "ledglyph.render")),
			stdout:  os.Stdout,
		}
		if *gifPath != "" {
			r.preview = access.File{Path: *gifPath}
		}
		err = r.run(ctx, cfg.Render.Dictionary, *watch)
	}
	if err != nil {
		mlog.LogAttrs(ctx, slog.LevelDebug, "failed", slog.String("action", action), slog.Any("error", err))
		fmt.Fprintln(os.Stderr, err)
		return internalError
	}
	return success
}

// loadConfig returns the configuration from the TOML file at path, or the
// user's configuration file if path is empty, with the dotenv overrides at
// envPath and the process environment applied.
func loadConfig(path, envPath string) (*config.Config, error) {
	if path == "" {
		var err error
		path, err = xdg.Config(filepath.Join("ledglyph", "config.toml"), false)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}
	env, err := config.Env(envPath)
	if err != nil {
		return nil, err
	}
	err = cfg.ApplyEnv(env)
	if err != nil {
		return nil, fmt.Errorf("invalid environment configuration: %w", err)
	}
	return cfg, nil
}
