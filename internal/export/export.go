/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders an xplot Scene to PNG, SVG or PDF. Two backends are
// available: "gonum" draws through gonum.org/v1/plot and gets axes and tick
// labels for free; "native" draws the scene directly with one writer per
// format and has no further dependencies on a plotting library.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	applog "goxplot/internal/log"
	"goxplot/internal/xplot"
)

type Backend string

const (
	BackendGonum  Backend = "gonum"
	BackendNative Backend = "native"
)

type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported output format")

// Options control rendering. Width and Height are pixels for PNG and points
// for SVG and PDF.
type Options struct {
	Backend Backend
	Format  Format
	Width   int
	Height  int
	Logger  *slog.Logger
}

func DefaultOptions() Options {
	return Options{Backend: BackendGonum, Format: FormatPNG, Width: 800, Height: 600}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Backend == "" {
		o.Backend = d.Backend
	}
	if o.Format == "" {
		o.Format = d.Format
	}
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Logger == nil {
		o.Logger = applog.WithComponent("export")
	}
	return o
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))); f {
	case FormatPNG, FormatSVG, FormatPDF:
		return f, true
	}
	return "", false
}

// OutputPath names the rendered file for input: same base name with the
// format's extension, in dir or, when dir is empty, next to the input.
func OutputPath(input, dir string, f Format) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + "." + string(f)
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base)
}

// Render writes s to w.
func Render(w io.Writer, s *xplot.Scene, opt Options) error {
	opt = opt.normalized()
	switch opt.Backend {
	case BackendGonum:
		return renderPlot(w, s, opt)
	case BackendNative:
		switch opt.Format {
		case FormatPNG:
			return writePNG(w, s, opt.Width, opt.Height)
		case FormatSVG:
			return writeSVG(w, s, opt.Width, opt.Height)
		case FormatPDF:
			return writePDF(w, s, opt.Width, opt.Height)
		}
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, opt.Format)
	default:
		return fmt.Errorf("unknown backend %q", opt.Backend)
	}
}

// Export renders s into the file at path, creating parent directories. An
// empty opt.Format is taken from the path's extension.
func Export(s *xplot.Scene, path string, opt Options) error {
	if opt.Format == "" {
		if f, ok := FormatFromPath(path); ok {
			opt.Format = f
		}
	}
	opt = opt.normalized()

	var buf bytes.Buffer
	if err := Render(&buf, s, opt); err != nil {
		return fmt.Errorf("render %s: %w", opt.Format, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opt.Format, err)
	}
	opt.Logger.Info("scene exported",
		slog.String("path", path),
		slog.String("backend", string(opt.Backend)),
		slog.Int("bytes", buf.Len()),
	)
	return nil
}
