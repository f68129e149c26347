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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	geom "goxplot/internal/vector"
	"goxplot/internal/xplot"
)

// RasterizeScene draws s onto a new w×h image with a white background.
// Strokes are anti-aliased; labels use a fixed 7×13 bitmap face.
func RasterizeScene(s *xplot.Scene, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	l := newLayout(s, float64(w), float64(h))
	r := &raster{img: img, rz: vector.NewRasterizer(w, h)}

	f := l.Frame
	r.stroke([]geom.Pt{{X: f.X, Y: f.Y}, {X: f.X + f.W, Y: f.Y}, {X: f.X + f.W, Y: f.Y + f.H}, {X: f.X, Y: f.Y + f.H}, {X: f.X, Y: f.Y}}, 0.5, color.Black)
	for _, pl := range s.Polylines {
		r.stroke(l.pts(pl.Points), lineWidth, pl.Colour.RGBA)
	}
	for _, g := range s.Markers {
		for _, p := range g.Points {
			for _, sub := range glyphAt(g.Style, markerSize, l.pt(p)) {
				r.stroke(sub, lineWidth, g.Colour.RGBA)
			}
		}
	}
	for _, a := range s.Annotations {
		at, align := l.annotationAt(a)
		r.text(a.Text, at, align, a.Colour.RGBA)
	}
	if s.Title != "" {
		r.text(s.Title, l.Title, alignCenter, color.Black)
	}
	if s.XLabel != "" {
		r.text(s.XLabel, l.XLabel, alignCenter, color.Black)
	}
	if s.YLabel != "" {
		r.verticalText(s.YLabel, l.YLabel, color.Black)
	}
	return img
}

func writePNG(w io.Writer, s *xplot.Scene, width, height int) error {
	if err := png.Encode(w, RasterizeScene(s, width, height)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

type raster struct {
	img *image.RGBA
	rz  *vector.Rasterizer
}

// stroke draws an open polyline of the given width. Each segment becomes a
// quad with a square cap; all quads share one winding so overlaps do not
// cancel out.
func (r *raster) stroke(pts []geom.Pt, width float64, c color.Color) {
	if len(pts) < 2 {
		return
	}
	b := r.img.Bounds()
	r.rz.Reset(b.Dx(), b.Dy())
	hw := width / 2
	for i := 1; i < len(pts); i++ {
		p, q := pts[i-1], pts[i]
		dx, dy := q.X-p.X, q.Y-p.Y
		n := math.Hypot(dx, dy)
		if n == 0 {
			dx, dy, n = 1, 0, 1
		}
		ux, uy := dx/n*hw, dy/n*hw // along the segment
		nx, ny := -uy, ux          // normal
		p = geom.Pt{X: p.X - ux, Y: p.Y - uy}
		q = geom.Pt{X: q.X + ux, Y: q.Y + uy}
		r.rz.MoveTo(float32(p.X+nx), float32(p.Y+ny))
		r.rz.LineTo(float32(q.X+nx), float32(q.Y+ny))
		r.rz.LineTo(float32(q.X-nx), float32(q.Y-ny))
		r.rz.LineTo(float32(p.X-nx), float32(p.Y-ny))
		r.rz.ClosePath()
	}
	r.rz.Draw(r.img, b, image.NewUniform(c), image.Point{})
}

func (r *raster) text(s string, at geom.Pt, align textAlign, c color.Color) {
	d := &font.Drawer{Dst: r.img, Src: image.NewUniform(c), Face: basicfont.Face7x13}
	x := at.X - alignShift(d.MeasureString(s), align)
	d.Dot = fixed.P(int(math.Round(x)), int(math.Round(at.Y)))
	d.DrawString(s)
}

// verticalText draws s reading bottom to top, centred on at.
func (r *raster) verticalText(s string, at geom.Pt, c color.Color) {
	face := basicfont.Face7x13
	tw := font.MeasureString(face, s).Ceil()
	th := face.Metrics().Height.Ceil()
	tmp := image.NewRGBA(image.Rect(0, 0, tw, th))
	d := &font.Drawer{Dst: tmp, Src: image.NewUniform(c), Face: face, Dot: fixed.P(0, face.Metrics().Ascent.Ceil())}
	d.DrawString(s)

	// rotate 90° counter-clockwise: (x, y) -> (y, tw-1-x)
	x0 := int(math.Round(at.X)) - face.Metrics().Ascent.Ceil()
	y0 := int(math.Round(at.Y)) - tw/2
	for y := 0; y < th; y++ {
		for x := 0; x < tw; x++ {
			px := tmp.RGBAAt(x, y)
			if px.A == 0 {
				continue
			}
			r.img.Set(x0+y, y0+tw-1-x, px)
		}
	}
}

func alignShift(w fixed.Int26_6, a textAlign) float64 {
	px := float64(w) / 64
	switch a {
	case alignCenter:
		return px / 2
	case alignRight:
		return px
	default:
		return 0
	}
}
