/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration: defaults, then the YAML file,
// then GOXPLOT_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is written to new config files.
const CurrentVersion = 1

type ParseConfig struct {
	UnknownColour string `yaml:"unknown_colour"` // "ambient" | "error"
	Palette       string `yaml:"palette"`        // "full" | "legacy"
	Merge         string `yaml:"merge"`          // "lookback" | "endpoint"
	Lookback      int    `yaml:"lookback"`
}

type OutputConfig struct {
	Backend string `yaml:"backend"` // "gonum" | "native"
	Format  string `yaml:"format"`  // "png" | "svg" | "pdf"
	Dir     string `yaml:"dir"`     // empty: next to the input
	Width   int    `yaml:"width"`   // pixels (png) or points (svg, pdf)
	Height  int    `yaml:"height"`
	Show    bool   `yaml:"show"`
}

type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`        // empty: <user cache dir>/goxplot/scenes.db
	MaxEntries int    `yaml:"max_entries"` // least recently used rows beyond this are pruned
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Parse         ParseConfig   `yaml:"parse"`
	Output        OutputConfig  `yaml:"output"`
	Cache         CacheConfig   `yaml:"cache"`
	Logging       LoggingConfig `yaml:"logging"`
}

func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: CurrentVersion,
		Parse:         ParseConfig{UnknownColour: "ambient", Palette: "full", Merge: "lookback", Lookback: 5},
		Output:        OutputConfig{Backend: "gonum", Format: "png", Width: 800, Height: 600},
		Cache:         CacheConfig{Enabled: true, MaxEntries: 200},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Environment overrides.
const (
	EnvConfig        = "GOXPLOT_CONFIG"
	EnvUnknownColour = "GOXPLOT_UNKNOWN_COLOUR"
	EnvPalette       = "GOXPLOT_PALETTE"
	EnvMerge         = "GOXPLOT_MERGE"
	EnvLookback      = "GOXPLOT_LOOKBACK"
	EnvBackend       = "GOXPLOT_BACKEND"
	EnvFormat        = "GOXPLOT_FORMAT"
	EnvOutputDir     = "GOXPLOT_OUTPUT_DIR"
	EnvShow          = "GOXPLOT_SHOW"
	EnvCache         = "GOXPLOT_CACHE"
	EnvCachePath     = "GOXPLOT_CACHE_PATH"
	EnvCacheMax      = "GOXPLOT_CACHE_MAX"
	EnvLogLevel      = "GOXPLOT_LOG_LEVEL"
	EnvLogFormat     = "GOXPLOT_LOG_FORMAT"
	EnvLogSource     = "GOXPLOT_LOG_SOURCE"
	EnvLogFile       = "GOXPLOT_LOG_FILE"
)

// envKeys maps dotted config keys to the variable that overrides them.
var envKeys = map[string]string{
	"parse.unknown_colour": EnvUnknownColour,
	"parse.palette":        EnvPalette,
	"parse.merge":          EnvMerge,
	"parse.lookback":       EnvLookback,
	"output.backend":       EnvBackend,
	"output.format":        EnvFormat,
	"output.dir":           EnvOutputDir,
	"output.show":          EnvShow,
	"cache.enabled":        EnvCache,
	"cache.path":           EnvCachePath,
	"cache.max_entries":    EnvCacheMax,
	"logging.level":        EnvLogLevel,
	"logging.format":       EnvLogFormat,
	"logging.source":       EnvLogSource,
	"logging.file":         EnvLogFile,
}

// ConfigPath returns the config file location: GOXPLOT_CONFIG if set,
// otherwise the per-user config directory.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "goxplot")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "goxplot")
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "goxplot")
		} else if h := os.Getenv("HOME"); h != "" {
			base = filepath.Join(h, ".config", "goxplot")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// DefaultCachePath is used when cache.path is empty.
func DefaultCachePath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(dir, "goxplot", "scenes.db"), nil
}

// Load returns the effective configuration. A missing config file is not an
// error; an unreadable or invalid one is.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		applyEnvOverrides(&cfg)
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		// absent keys keep their defaults
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	return cfg, cfg.Validate()
}

// Save writes cfg to ConfigPath.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate rejects values the rest of the program cannot interpret.
func (c AppConfig) Validate() error {
	var errs []error
	check := func(key, v string, allowed ...string) {
		for _, a := range allowed {
			if v == a {
				return
			}
		}
		errs = append(errs, fmt.Errorf("%s: invalid value %q (want one of %s)", key, v, strings.Join(allowed, ", ")))
	}
	check("parse.unknown_colour", c.Parse.UnknownColour, "ambient", "error")
	check("parse.palette", c.Parse.Palette, "full", "legacy")
	check("parse.merge", c.Parse.Merge, "lookback", "endpoint")
	check("output.backend", c.Output.Backend, "gonum", "native")
	check("output.format", c.Output.Format, "png", "svg", "pdf")
	if c.Parse.Lookback < 1 {
		errs = append(errs, fmt.Errorf("parse.lookback: must be positive, got %d", c.Parse.Lookback))
	}
	if c.Cache.MaxEntries < 1 {
		errs = append(errs, fmt.Errorf("cache.max_entries: must be positive, got %d", c.Cache.MaxEntries))
	}
	if c.Output.Width < 1 || c.Output.Height < 1 {
		errs = append(errs, fmt.Errorf("output: size must be positive, got %dx%d", c.Output.Width, c.Output.Height))
	}
	return errors.Join(errs...)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	setLower(&dst.Parse.UnknownColour, src.Parse.UnknownColour)
	setLower(&dst.Parse.Palette, src.Parse.Palette)
	setLower(&dst.Parse.Merge, src.Parse.Merge)
	if src.Parse.Lookback != 0 {
		dst.Parse.Lookback = src.Parse.Lookback
	}

	setLower(&dst.Output.Backend, src.Output.Backend)
	setLower(&dst.Output.Format, src.Output.Format)
	if s := strings.TrimSpace(src.Output.Dir); s != "" {
		dst.Output.Dir = s
	}
	if src.Output.Width != 0 {
		dst.Output.Width = src.Output.Width
	}
	if src.Output.Height != 0 {
		dst.Output.Height = src.Output.Height
	}
	dst.Output.Show = src.Output.Show

	dst.Cache.Enabled = src.Cache.Enabled
	if s := strings.TrimSpace(src.Cache.Path); s != "" {
		dst.Cache.Path = s
	}
	if src.Cache.MaxEntries != 0 {
		dst.Cache.MaxEntries = src.Cache.MaxEntries
	}

	setLower(&dst.Logging.Level, src.Logging.Level)
	setLower(&dst.Logging.Format, src.Logging.Format)
	dst.Logging.Source = src.Logging.Source
	if s := strings.TrimSpace(src.Logging.File); s != "" {
		dst.Logging.File = s
	}
}

func setLower(dst *string, v string) {
	if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
		*dst = v
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	str := func(key string, dst *string, lower bool) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if lower {
				v = strings.ToLower(v)
			}
			*dst = v
		}
	}
	flag := func(key string, dst *bool) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			lv := strings.ToLower(v)
			*dst = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
		}
	}

	str(EnvUnknownColour, &cfg.Parse.UnknownColour, true)
	str(EnvPalette, &cfg.Parse.Palette, true)
	str(EnvMerge, &cfg.Parse.Merge, true)
	if v := strings.TrimSpace(os.Getenv(EnvLookback)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Parse.Lookback = n
		}
	}
	str(EnvBackend, &cfg.Output.Backend, true)
	str(EnvFormat, &cfg.Output.Format, true)
	str(EnvOutputDir, &cfg.Output.Dir, false)
	flag(EnvShow, &cfg.Output.Show)
	flag(EnvCache, &cfg.Cache.Enabled)
	str(EnvCachePath, &cfg.Cache.Path, false)
	if v := strings.TrimSpace(os.Getenv(EnvCacheMax)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.MaxEntries = n
		}
	}
	str(EnvLogLevel, &cfg.Logging.Level, true)
	str(EnvLogFormat, &cfg.Logging.Format, true)
	flag(EnvLogSource, &cfg.Logging.Source)
	str(EnvLogFile, &cfg.Logging.File, false)
}

// EnvOverrideFor returns the environment variable overriding key, if it is
// set. Keys use the dotted YAML names, e.g. "output.format".
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
