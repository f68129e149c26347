/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command goxplot renders xplot scripts.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"

	"goxplot/internal/config"
	"goxplot/internal/crash"
	"goxplot/internal/export"
	applog "goxplot/internal/log"
	"goxplot/internal/storage"
	"goxplot/internal/ui"
	"goxplot/internal/version"
	"goxplot/internal/xplot"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "goxplot renders xplot scripts")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  goxplot <file.xpl>             Render the script (or show it, with output.show)")
	fmt.Fprintln(w, "  goxplot dump <file.xpl>        Print the parsed scene as JSON")
	fmt.Fprintln(w, "  goxplot normalize <file.xpl>   Print the scene as a canonical xplot script")
	fmt.Fprintln(w, "  goxplot history [n]            List recently cached scenes")
	fmt.Fprintln(w, "  goxplot version|-v|--version   Show version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration is read from $GOXPLOT_CONFIG or the per-user config.yaml;")
	fmt.Fprintln(w, "GOXPLOT_* environment variables override it.")
	fmt.Fprintln(w, "A script file named like a command is rendered when it exists.")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// cli carries what every subcommand needs.
type cli struct {
	cfg    config.AppConfig
	opt    xplot.Options
	l      *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}
	// an existing script named like a verb is rendered, not dispatched
	verb := args[0]
	if len(args) == 1 && isFile(verb) {
		verb = ""
	}
	switch verb {
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, version.String())
		return exitOK
	case "help", "--help", "-h":
		usage(stdout)
		return exitOK
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "goxplot: config:", err)
		return exitFailure
	}
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Writer:    stderr,
	})
	c := &cli{cfg: cfg, l: applog.WithComponent("cli"), stdout: stdout, stderr: stderr}
	c.opt, err = parseOptions(cfg.Parse)
	if err != nil {
		fmt.Fprintln(stderr, "goxplot: config:", err)
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c.l.Debug("start", slog.Any("args", args))
	switch verb {
	case "dump", "normalize":
		if len(args) != 2 {
			fmt.Fprintf(stderr, "%s requires exactly one <file.xpl>\n", args[0])
			usage(stderr)
			return exitUsage
		}
		return c.print(ctx, args[0], args[1])
	case "history":
		n := 20
		if len(args) > 2 {
			usage(stderr)
			return exitUsage
		}
		if len(args) == 2 {
			v, err := strconv.Atoi(args[1])
			if err != nil || v < 1 {
				fmt.Fprintf(stderr, "history: invalid count %q\n", args[1])
				return exitUsage
			}
			n = v
		}
		return c.history(ctx, n)
	}

	if len(args) != 1 {
		usage(stderr)
		return exitUsage
	}
	return c.render(ctx, args[0])
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

func parseOptions(pc config.ParseConfig) (xplot.Options, error) {
	pal, ok := xplot.PaletteByName(pc.Palette)
	if !ok {
		return xplot.Options{}, fmt.Errorf("unknown palette %q", pc.Palette)
	}
	return xplot.Options{
		Palette:       pal,
		Merge:         xplot.MergeStrategy(pc.Merge),
		Lookback:      pc.Lookback,
		UnknownColour: xplot.ColourPolicy(pc.UnknownColour),
		Logger:        applog.WithComponent("xplot"),
	}, nil
}

func (c *cli) render(ctx context.Context, path string) int {
	defer crash.Recover(crash.Report{Input: path})

	s, err := c.load(ctx, path)
	if err != nil {
		fmt.Fprintf(c.stderr, "goxplot: %v\n", err)
		return exitFailure
	}

	if c.cfg.Output.Show {
		err := ui.Show(s, path)
		if err == nil {
			return exitOK
		}
		if !errors.Is(err, ui.ErrNoUI) {
			fmt.Fprintf(c.stderr, "goxplot: %v\n", err)
			return exitFailure
		}
		c.l.Warn("viewer unavailable, exporting instead", slog.Any("err", err))
	}

	opt := export.Options{
		Backend: export.Backend(c.cfg.Output.Backend),
		Format:  export.Format(c.cfg.Output.Format),
		Width:   c.cfg.Output.Width,
		Height:  c.cfg.Output.Height,
		Logger:  applog.WithComponent("export"),
	}
	out := export.OutputPath(path, c.cfg.Output.Dir, opt.Format)
	if err := export.Export(s, out, opt); err != nil {
		fmt.Fprintf(c.stderr, "goxplot: %v\n", err)
		return exitFailure
	}
	fmt.Fprintln(c.stdout, out)
	return exitOK
}

func (c *cli) print(ctx context.Context, verb, path string) int {
	defer crash.Recover(crash.Report{Input: path})

	s, err := c.load(ctx, path)
	if err != nil {
		fmt.Fprintf(c.stderr, "goxplot: %v\n", err)
		return exitFailure
	}
	switch verb {
	case "dump":
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(s)
	default:
		err = xplot.Encode(c.stdout, s)
	}
	if err != nil {
		fmt.Fprintf(c.stderr, "goxplot: %s: %v\n", verb, err)
		return exitFailure
	}
	return exitOK
}

func (c *cli) history(ctx context.Context, n int) int {
	cache, err := c.openCache(ctx)
	if err != nil {
		fmt.Fprintf(c.stderr, "goxplot: %v\n", err)
		return exitFailure
	}
	if cache == nil {
		fmt.Fprintln(c.stderr, "goxplot: the scene cache is disabled")
		return exitFailure
	}
	defer cache.Close()

	list, err := cache.List(ctx, n)
	if err != nil {
		fmt.Fprintf(c.stderr, "goxplot: %v\n", err)
		return exitFailure
	}
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LAST USED\tHITS\tLINES\tMARKERS\tTEXT\tDIAG\tSOURCE")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			e.LastUsed.Local().Format("2006-01-02 15:04:05"), e.Hits,
			e.Polylines, e.Markers, e.Annotations, e.Diagnostics, e.Source)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(c.stderr, "goxplot: %v\n", err)
		return exitFailure
	}
	return exitOK
}

// load returns the scene for the script at path, from the cache when
// possible, and prints its diagnostics to stderr.
func (c *cli) load(ctx context.Context, path string) (*xplot.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xplot: %w", err)
	}

	cache, err := c.openCache(ctx)
	if err != nil {
		c.l.Warn("scene cache unavailable", slog.Any("err", err))
	}
	if cache != nil {
		defer cache.Close()
	}
	key := storage.Key(data, c.opt.Fingerprint())

	var s *xplot.Scene
	var diags []xplot.Diagnostic
	if cache != nil {
		e, ok, err := cache.Get(ctx, key)
		if err != nil {
			c.l.Warn("cache read failed", slog.Any("err", err))
		}
		if ok {
			c.l.Debug("cache hit", slog.String("path", path))
			s, diags = e.Scene, e.Diagnostics
		}
	}
	if s == nil {
		s, diags, err = xplot.Parse(ctx, bytes.NewReader(data), c.opt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if cache != nil {
			if err := cache.Put(ctx, storage.Entry{Key: key, Source: path, Scene: s, Diagnostics: diags}); err != nil {
				c.l.Warn("cache write failed", slog.Any("err", err))
			} else if n, err := cache.Prune(ctx, c.cfg.Cache.MaxEntries); err != nil {
				c.l.Warn("cache prune failed", slog.Any("err", err))
			} else if n > 0 {
				c.l.Debug("cache pruned", slog.Int("removed", n))
			}
		}
	}
	for _, d := range diags {
		fmt.Fprintf(c.stderr, "%s:%d: %s: %s\n", path, d.Line, d.Message, d.Raw)
	}
	return s, nil
}

// openCache returns nil without error when caching is disabled.
func (c *cli) openCache(ctx context.Context) (*storage.Cache, error) {
	if !c.cfg.Cache.Enabled {
		return nil, nil
	}
	path := c.cfg.Cache.Path
	if path == "" {
		p, err := config.DefaultCachePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cache, _, err := storage.OpenOrReset(ctx, path)
	return cache, err
}
