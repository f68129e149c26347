/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"goxplot/internal/vector"
	"goxplot/internal/xplot"
)

// NewPlot builds a gonum plot of s: one line plotter per polyline, one
// scatter per marker group and one label set per annotation placement.
func NewPlot(s *xplot.Scene) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = s.Title
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = s.YLabel

	for _, pl := range s.Polylines {
		ln, err := plotter.NewLine(xys(pl.Points))
		if err != nil {
			return nil, fmt.Errorf("polyline: %w", err)
		}
		ln.LineStyle.Color = pl.Colour.RGBA
		ln.LineStyle.Width = vg.Points(lineWidth)
		p.Add(ln)
	}

	for _, g := range s.Markers {
		sc, err := plotter.NewScatter(xys(g.Points))
		if err != nil {
			return nil, fmt.Errorf("marker group %s/%s: %w", g.Colour.Name, g.Style, err)
		}
		sc.GlyphStyle = draw.GlyphStyle{
			Color:  g.Colour.RGBA,
			Radius: vg.Points(markerSize / 2),
			Shape:  glyphDrawer{style: g.Style},
		}
		p.Add(sc)
	}

	for _, pl := range []xplot.Placement{xplot.Above, xplot.RightOf, xplot.LeftOf} {
		lb, err := annotationLabels(s.Annotations, pl)
		if err != nil {
			return nil, err
		}
		if lb != nil {
			p.Add(lb)
		}
	}

	// fixed ranges so that every backend frames the scene the same way
	d := dataRect(s)
	p.X.Min, p.X.Max = d.X, d.X+d.W
	p.Y.Min, p.Y.Max = d.Y, d.Y+d.H
	return p, nil
}

func renderPlot(w io.Writer, s *xplot.Scene, opt Options) error {
	p, err := NewPlot(s)
	if err != nil {
		return err
	}
	width, height := vg.Points(float64(opt.Width)), vg.Points(float64(opt.Height))
	if opt.Format == FormatPNG {
		// vgimg renders at 96 dpi; size the canvas so the image is Width×Height pixels
		width = vg.Length(opt.Width) * vg.Inch / 96
		height = vg.Length(opt.Height) * vg.Inch / 96
	}
	wt, err := p.WriterTo(width, height, string(opt.Format))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", opt.Format, err)
	}
	return nil
}

func annotationLabels(all []xplot.Annotation, pl xplot.Placement) (*plotter.Labels, error) {
	var xy plotter.XYLabels
	var cols []xplot.Colour
	for _, a := range all {
		if a.Placement != pl {
			continue
		}
		xy.XYs = append(xy.XYs, plotter.XY{X: a.At.X, Y: a.At.Y})
		xy.Labels = append(xy.Labels, a.Text)
		cols = append(cols, a.Colour)
	}
	if len(xy.Labels) == 0 {
		return nil, nil
	}
	lb, err := plotter.NewLabels(xy)
	if err != nil {
		return nil, fmt.Errorf("%s annotations: %w", pl, err)
	}
	off, align := annotationOffset(pl)
	// device offsets grow downward, the plot canvas grows upward
	lb.Offset = vg.Point{X: vg.Points(off.X), Y: vg.Points(-off.Y)}
	for i := range lb.TextStyle {
		lb.TextStyle[i].Color = cols[i].RGBA
		lb.TextStyle[i].XAlign = textXAlign(align)
	}
	return lb, nil
}

func textXAlign(a textAlign) text.XAlignment {
	switch a {
	case alignLeft:
		return text.XLeft
	case alignRight:
		return text.XRight
	default:
		return text.XCenter
	}
}

func xys(pts []vector.Pt) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, p := range pts {
		out[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return out
}

// glyphDrawer draws an xplot marker outline on a plot canvas.
type glyphDrawer struct{ style xplot.MarkerStyle }

func (g glyphDrawer) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, at vg.Point) {
	ls := draw.LineStyle{Color: sty.Color, Width: vg.Points(lineWidth)}
	// glyph outlines are y-down; flip them onto the y-up canvas
	flip := vector.Translate(float64(at.X), float64(at.Y)).Mul(vector.Scale(1, -1))
	for _, sub := range glyph(g.style, 2*float64(sty.Radius)).Transform(flip).Subpaths() {
		line := make([]vg.Point, len(sub))
		for i, p := range sub {
			line[i] = vg.Point{X: vg.Length(p.X), Y: vg.Length(p.Y)}
		}
		c.StrokeLines(ls, line)
	}
}
