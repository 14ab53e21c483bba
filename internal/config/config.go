// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config provides configuration loading, validation and file
// watching functions.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is a complete ledglyph configuration.
type Config struct {
	Render Render `json:"render" toml:"render"`
	Log    Log    `json:"log" toml:"log"`
	Store  Store  `json:"store" toml:"store"`
}

// Render holds the defaults for rendering animations.
type Render struct {
	// GridSize is the square display size in pixels.
	GridSize uint8 `json:"grid_size,omitempty" toml:"grid_size"`
	// Mode is the default animation mode, "next" or "scroll".
	Mode string `json:"mode,omitempty" toml:"mode"`
	// Dictionary is the directory holding glyph dictionary files.
	Dictionary string `json:"dictionary,omitempty" toml:"dictionary"`
}

type Log struct {
	Level     string `json:"level,omitempty" toml:"level"`
	AddSource bool   `json:"add_source,omitempty" toml:"add_source"`
}

// Store is the render archive configuration. An empty Path disables
// archiving.
type Store struct {
	Path string `json:"path,omitempty" toml:"path"`
}

// Schema is the CUE schema for a valid configuration.
const Schema = `
{
	render?: {
		grid_size?:  0 | (uint8 & >=1 & <=8)
		mode?:       "" | =~"(?i)^(?:next|scroll)$"
		dictionary?: string
	}
	log?: {
		level?:      "" | =~"(?i)^(?:debug|info|warn|error)$"
		add_source?: bool
	}
	store?: {
		path?: string
	}
}
`

// Default returns the default configuration. No default grid size or
// animation mode is provided; these must be given by the user.
func Default() *Config {
	return &Config{
		Log: Log{Level: "info"},
	}
}

// Load returns the configuration held in the TOML file at path, applied
// over the default configuration.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse returns the configuration held in the TOML data, applied over the
// default configuration. Unknown keys and values that do not conform to
// Schema are errors.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown configuration keys: %s", strings.Join(keys, " "))
	}
	_, err = Validate(Schema, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Environment variable names used to override configuration values.
const (
	EnvDictionary = "LEDGLYPH_DICTIONARY"
	EnvGridSize   = "LEDGLYPH_GRID_SIZE"
	EnvMode       = "LEDGLYPH_MODE"
	EnvStore      = "LEDGLYPH_STORE"
	EnvLog        = "LEDGLYPH_LOG"
)

var envKeys = []string{EnvDictionary, EnvGridSize, EnvMode, EnvStore, EnvLog}

// Env returns the configuration override variables from the dotenv file
// at path, with values from the process environment taking precedence.
// If path is empty only the process environment is used.
func Env(path string) (map[string]string, error) {
	env := make(map[string]string)
	if path != "" {
		vars, err := godotenv.Read(path)
		if err != nil {
			return nil, err
		}
		for _, k := range envKeys {
			if v, ok := vars[k]; ok {
				env[k] = v
			}
		}
	}
	for _, k := range envKeys {
		if v, ok := os.LookupEnv(k); ok {
			env[k] = v
		}
	}
	return env, nil
}

// ApplyEnv applies the override variables in env to cfg. The result is
// validated against Schema.
func (cfg *Config) ApplyEnv(env map[string]string) error {
	var errs []error
	for k, v := range env {
		switch k {
		case EnvDictionary:
			cfg.Render.Dictionary = v
		case EnvGridSize:
			n, err := strconv.ParseUint(v, 10, 8)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", k, err))
				continue
			}
			cfg.Render.GridSize = uint8(n)
		case EnvMode:
			cfg.Render.Mode = v
		case EnvStore:
			cfg.Store.Path = v
		case EnvLog:
			cfg.Log.Level = v
		}
	}
	if len(errs) != 0 {
		return errors.Join(errs...)
	}
	_, err := Validate(Schema, cfg)
	return err
}
