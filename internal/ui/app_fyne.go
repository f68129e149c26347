//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"goxplot/internal/export"
	applog "goxplot/internal/log"
	"goxplot/internal/xplot"
)

// ErrNoUI is never returned by this build.
var ErrNoUI = errors.New("viewer unavailable")

const (
	winW = 800
	winH = 600
)

// Show opens s in a window and blocks until the window is closed. source
// names the script in the title bar.
func Show(s *xplot.Scene, source string) error {
	l := applog.WithComponent("ui")
	l.Info("opening viewer", slog.String("source", source))

	a := app.NewWithID("io.goxplot.viewer")
	w := newViewer(a, s, source)
	w.ShowAndRun()
	return nil
}

func newViewer(a fyne.App, s *xplot.Scene, source string) fyne.Window {
	w := a.NewWindow(windowTitle(s, source))

	// redrawn at the window's pixel size on every resize
	plot := canvas.NewRaster(func(pw, ph int) image.Image {
		if pw <= 0 || ph <= 0 {
			return image.NewRGBA(image.Rect(0, 0, 1, 1))
		}
		return export.RasterizeScene(s, pw, ph)
	})
	plot.SetMinSize(fyne.NewSize(320, 240))

	status := widget.NewLabel(summary(s))
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() { saveAs(w, s, source) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.CancelIcon(), w.Close),
	)
	w.SetContent(container.NewBorder(tb, status, nil, nil, plot))

	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape, fyne.KeyQ:
			w.Close()
		}
	})
	w.Resize(fyne.NewSize(winW, winH))
	return w
}

func saveAs(w fyne.Window, s *xplot.Scene, source string) {
	d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if uc == nil {
			return
		}
		defer func() { _ = uc.Close() }()
		opt := export.DefaultOptions()
		if f, ok := export.FormatFromPath(uc.URI().Path()); ok {
			opt.Format = f
		}
		if err := export.Render(uc, s, opt); err != nil {
			dialog.ShowError(err, w)
		}
	}, w)
	d.SetFileName(filepath.Base(export.OutputPath(source, "", export.FormatPNG)))
	d.Show()
}

func windowTitle(s *xplot.Scene, source string) string {
	name := filepath.Base(source)
	if source == "" {
		name = "goxplot"
	}
	if s.Title != "" {
		return s.Title + " - " + name
	}
	return name
}

func summary(s *xplot.Scene) string {
	return fmt.Sprintf("%d polylines, %d markers in %d groups, %d annotations",
		len(s.Polylines), s.MarkerCount(), len(s.Markers), len(s.Annotations))
}
