/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package xplot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	applog "goxplot/internal/log"
	"goxplot/internal/vector"
)

// MergeStrategy selects how line segments are joined into polylines.
type MergeStrategy string

const (
	// MergeLookback compares a segment's start with the tails of the most
	// recent Lookback polylines of the same colour, newest first.
	MergeLookback MergeStrategy = "lookback"
	// MergeEndpoint indexes every polyline tail per colour and always finds
	// a matching chain, however far back it was started.
	MergeEndpoint MergeStrategy = "endpoint"
)

// ColourPolicy decides what an unrecognized colour override does.
type ColourPolicy string

const (
	// ColourAmbient ignores the token, draws in the ambient colour and
	// records a diagnostic.
	ColourAmbient ColourPolicy = "ambient"
	// ColourError fails the parse.
	ColourError ColourPolicy = "error"
)

const DefaultLookback = 5

// Options configure a parse. The zero value is usable and equals
// DefaultOptions.
type Options struct {
	Palette       Palette
	Merge         MergeStrategy
	Lookback      int
	UnknownColour ColourPolicy
	Logger        *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Palette:       DefaultPalette(),
		Merge:         MergeLookback,
		Lookback:      DefaultLookback,
		UnknownColour: ColourAmbient,
	}
}

func (o Options) normalized() Options {
	if o.Palette.Len() == 0 {
		o.Palette = DefaultPalette()
	}
	if o.Merge != MergeEndpoint {
		o.Merge = MergeLookback
	}
	if o.Lookback <= 0 {
		o.Lookback = DefaultLookback
	}
	if o.UnknownColour != ColourError {
		o.UnknownColour = ColourAmbient
	}
	if o.Logger == nil {
		o.Logger = applog.WithComponent("xplot")
	}
	return o
}

// Fingerprint identifies every option that influences the resulting Scene.
func (o Options) Fingerprint() string {
	n := o.normalized()
	return fmt.Sprintf("merge=%s;lookback=%d;colour=%s;palette=%s", n.Merge, n.Lookback, n.UnknownColour, n.Palette)
}

// Diagnostic is a non-fatal problem found while interpreting a script.
type Diagnostic struct {
	Line    int    `json:"line"`
	Raw     string `json:"raw"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return "line " + strconv.Itoa(d.Line) + ": " + d.Message + ": " + d.Raw
}

type groupKey struct {
	colour string
	style  MarkerStyle
}

type tailKey struct {
	colour string
	at     vector.Pt
}

// Aggregator folds Commands into a Scene. It is single use: create one per
// script, Apply every command in order, then take the Scene.
type Aggregator struct {
	opt     Options
	l       *slog.Logger
	ambient string
	scene   Scene
	done    bool
	diags   []Diagnostic

	// polyline indices per colour in creation order (lookback strategy)
	byColour map[string][]int
	// polyline indices ending at a point, most recent last (endpoint strategy)
	tails  map[tailKey][]int
	groups map[groupKey]int
}

func NewAggregator(opt Options) *Aggregator {
	opt = opt.normalized()
	return &Aggregator{
		opt:      opt,
		l:        opt.Logger,
		ambient:  DefaultAmbient,
		byColour: map[string][]int{},
		tails:    map[tailKey][]int{},
		groups:   map[groupKey]int{},
	}
}

// Done reports whether a Go command has been applied.
func (a *Aggregator) Done() bool { return a.done }

func (a *Aggregator) Diagnostics() []Diagnostic { return a.diags }

// Apply interprets one command that started on source line lineNo with
// the statement text stmt; both only feed diagnostics and errors.
// Commands applied after Go are ignored.
func (a *Aggregator) Apply(cmd Command, lineNo int, stmt string) error {
	if a.done {
		return nil
	}
	switch c := cmd.(type) {
	case SetDataType:
	case Title:
		a.scene.Title = c.Text
	case XLabel:
		a.scene.XLabel = c.Text
	case YLabel:
		a.scene.YLabel = c.Text
	case SetColour:
		a.ambient = c.Name
	case Line:
		col, err := a.resolve(c.Colour, lineNo, stmt)
		if err != nil {
			return err
		}
		a.addLine(col, vector.Pt{X: c.X1, Y: c.Y1}, vector.Pt{X: c.X2, Y: c.Y2})
	case Marker:
		col, err := a.resolve(c.Colour, lineNo, stmt)
		if err != nil {
			return err
		}
		a.addMarker(col, c.Style, vector.Pt{X: c.X, Y: c.Y})
	case Text:
		col, err := a.resolve(c.Colour, lineNo, stmt)
		if err != nil {
			return err
		}
		a.scene.Annotations = append(a.scene.Annotations, Annotation{
			Colour: col, At: vector.Pt{X: c.X, Y: c.Y}, Text: c.Text, Placement: c.Placement,
		})
	case Go:
		a.done = true
	case Unknown:
		a.report(lineNo, c.Raw, "unknown command")
	default:
		return fmt.Errorf("unsupported command %T", cmd)
	}
	return nil
}

// Scene returns the scene built so far. Callers normally take it once
// aggregation is finished.
func (a *Aggregator) Scene() *Scene {
	s := a.scene
	if s.Polylines == nil {
		s.Polylines = []Polyline{}
	}
	if s.Markers == nil {
		s.Markers = []MarkerGroup{}
	}
	if s.Annotations == nil {
		s.Annotations = []Annotation{}
	}
	return &s
}

func (a *Aggregator) resolve(token string, lineNo int, stmt string) (Colour, error) {
	if token != "" {
		if c, ok := a.opt.Palette.Lookup(token); ok {
			return c, nil
		}
		if a.opt.UnknownColour == ColourError {
			return Colour{}, &SyntaxError{Line: lineNo, Raw: stmt, Err: fmt.Errorf("%w: %w %q (palette: %s)",
				ErrMalformed, ErrUnknownColour, token, strings.Join(a.opt.Palette.Names(), " "))}
		}
		a.report(lineNo, stmt, fmt.Sprintf("unknown colour %q, using %s", token, a.ambient))
	}
	if c, ok := a.opt.Palette.Lookup(a.ambient); ok {
		return c, nil
	}
	return Colour{Name: a.ambient, RGBA: vector.Black}, nil
}

func (a *Aggregator) report(lineNo int, raw, msg string) {
	a.diags = append(a.diags, Diagnostic{Line: lineNo, Raw: raw, Message: msg})
	a.l.Warn(msg, slog.Int("line", lineNo), slog.String("raw", raw))
}

func (a *Aggregator) addLine(col Colour, from, to vector.Pt) {
	if idx, ok := a.findTail(col.Name, from); ok {
		pl := &a.scene.Polylines[idx]
		pl.Points = append(pl.Points, to)
		if a.opt.Merge == MergeEndpoint {
			a.pushTail(col.Name, to, idx)
		}
		return
	}
	idx := len(a.scene.Polylines)
	a.scene.Polylines = append(a.scene.Polylines, Polyline{Colour: col, Points: []vector.Pt{from, to}})
	a.byColour[col.Name] = append(a.byColour[col.Name], idx)
	if a.opt.Merge == MergeEndpoint {
		a.pushTail(col.Name, to, idx)
	}
}

func (a *Aggregator) findTail(colour string, p vector.Pt) (int, bool) {
	if a.opt.Merge == MergeEndpoint {
		k := tailKey{colour, p}
		stack := a.tails[k]
		if len(stack) == 0 {
			return 0, false
		}
		idx := stack[len(stack)-1]
		if len(stack) == 1 {
			delete(a.tails, k)
		} else {
			a.tails[k] = stack[:len(stack)-1]
		}
		return idx, true
	}
	ids := a.byColour[colour]
	for i, n := len(ids)-1, 0; i >= 0 && n < a.opt.Lookback; i, n = i-1, n+1 {
		pts := a.scene.Polylines[ids[i]].Points
		if pts[len(pts)-1] == p {
			return ids[i], true
		}
	}
	return 0, false
}

func (a *Aggregator) pushTail(colour string, p vector.Pt, idx int) {
	k := tailKey{colour, p}
	a.tails[k] = append(a.tails[k], idx)
}

func (a *Aggregator) addMarker(col Colour, style MarkerStyle, p vector.Pt) {
	k := groupKey{col.Name, style}
	if idx, ok := a.groups[k]; ok {
		g := &a.scene.Markers[idx]
		g.Points = append(g.Points, p)
		return
	}
	a.groups[k] = len(a.scene.Markers)
	a.scene.Markers = append(a.scene.Markers, MarkerGroup{Colour: col, Style: style, Points: []vector.Pt{p}})
}

// Parse reads a whole script and returns its Scene together with any
// non-fatal diagnostics. On a fatal error no Scene is returned.
func Parse(ctx context.Context, r io.Reader, opt Options) (*Scene, []Diagnostic, error) {
	agg := NewAggregator(opt)
	rd := NewReader(r, agg.opt.Palette)
	for !agg.Done() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		cmd, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if err := agg.Apply(cmd, rd.LineNo(), rd.Statement()); err != nil {
			return nil, nil, err
		}
	}
	s := agg.Scene()
	agg.l.Debug("scene built",
		slog.Int("polylines", len(s.Polylines)),
		slog.Int("marker_groups", len(s.Markers)),
		slog.Int("annotations", len(s.Annotations)),
		slog.Int("diagnostics", len(agg.diags)),
	)
	return s, agg.Diagnostics(), nil
}

// ParseFile opens path and parses it. Open failures are returned before any
// parsing happens.
func ParseFile(ctx context.Context, path string, opt Options) (*Scene, []Diagnostic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open xplot: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(ctx, f, opt)
}
