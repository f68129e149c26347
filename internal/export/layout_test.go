/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"testing"

	"goxplot/internal/vector"
	"goxplot/internal/xplot"
)

func TestAnnotationOffset(t *testing.T) {
	tests := []struct {
		p     xplot.Placement
		off   vector.Pt
		align textAlign
	}{
		{xplot.Above, vector.Pt{Y: -5}, alignCenter},
		{xplot.RightOf, vector.Pt{X: 2}, alignLeft},
		{xplot.LeftOf, vector.Pt{X: -2}, alignRight},
	}
	for _, tt := range tests {
		off, align := annotationOffset(tt.p)
		if off != tt.off || align != tt.align {
			t.Errorf("%s: got %v/%d, want %v/%d", tt.p, off, align, tt.off, tt.align)
		}
	}
}

func TestLayoutMapsDataIntoFrame(t *testing.T) {
	s := &xplot.Scene{
		Title:     "t",
		Polylines: []xplot.Polyline{{Points: []vector.Pt{{X: -3, Y: 1}, {X: 7, Y: 9}}}},
	}
	l := newLayout(s, 400, 300)
	if l.Frame.Y <= outerMargin {
		t.Fatalf("title band not reserved: frame %v", l.Frame)
	}
	for _, p := range s.Polylines[0].Points {
		d := l.pt(p)
		if !l.Frame.Contains(d) {
			t.Fatalf("%v maps to %v outside frame %v", p, d, l.Frame)
		}
	}
	lo, hi := l.pt(vector.Pt{X: 0, Y: 1}), l.pt(vector.Pt{X: 0, Y: 9})
	if hi.Y >= lo.Y {
		t.Fatalf("larger y should be drawn higher: %v vs %v", hi, lo)
	}
}

func TestDataRectSinglePoint(t *testing.T) {
	s := &xplot.Scene{Markers: []xplot.MarkerGroup{{Style: xplot.Dot, Points: []vector.Pt{{X: 2, Y: 3}}}}}
	r := dataRect(s)
	if r.W <= 0 || r.H <= 0 || !r.Contains(vector.Pt{X: 2, Y: 3}) {
		t.Fatalf("degenerate data rect %v", r)
	}
	if got := dataRect(&xplot.Scene{}); got != vector.R(0, 0, 1, 1) {
		t.Fatalf("empty scene rect %v", got)
	}
}

func TestGlyphShapes(t *testing.T) {
	closed := map[xplot.MarkerStyle]int{
		xplot.DownArrow: 4, xplot.UpArrow: 4, xplot.Box: 5, xplot.Diamond: 5, xplot.Dot: 9,
	}
	open := map[xplot.MarkerStyle]int{xplot.UpTick: 2, xplot.DownTick: 2, xplot.HTick: 2}

	for _, st := range xplot.MarkerStyles() {
		g := glyph(st, markerSize)
		subs := g.Subpaths()
		if len(subs) != 1 {
			t.Fatalf("%s: %d subpaths", st, len(subs))
		}
		pts := subs[0]
		if n, ok := closed[st]; ok {
			if len(pts) != n || pts[0] != pts[len(pts)-1] {
				t.Errorf("%s: want closed outline of %d points, got %v", st, n, pts)
			}
		} else if n := open[st]; len(pts) != n {
			t.Errorf("%s: want %d points, got %v", st, n, pts)
		}
		b := g.Bounds()
		if b.W > markerSize+1e-9 || b.H > markerSize+1e-9 {
			t.Errorf("%s: glyph %v exceeds marker size", st, b)
		}
	}

	up := glyph(xplot.UpTick, markerSize).Subpaths()[0]
	if up[1].Y >= up[0].Y {
		t.Errorf("utick should point up on a y-down device: %v", up)
	}
}
