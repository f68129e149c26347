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
	"math"

	svg "github.com/ajstarks/svgo"

	"goxplot/internal/vector"
	"goxplot/internal/xplot"
)

// svgo takes integer coordinates. Everything is drawn in tenths of a point
// and the viewBox scales it back.
const svgUnit = 10

func su(v float64) int { return int(math.Round(v * svgUnit)) }

func writeSVG(w io.Writer, s *xplot.Scene, width, height int) error {
	l := newLayout(s, float64(width), float64(height))
	cw := &countWriter{w: w}
	c := svg.New(cw)

	c.Startview(width, height, 0, 0, width*svgUnit, height*svgUnit)
	if s.Title != "" {
		c.Title(s.Title)
	}
	c.Rect(0, 0, width*svgUnit, height*svgUnit, "fill:#ffffff")
	c.Rect(su(l.Frame.X), su(l.Frame.Y), su(l.Frame.W), su(l.Frame.H),
		fmt.Sprintf("fill:none;stroke:#000000;stroke-width:%d", svgUnit/2))

	c.Group(fmt.Sprintf("fill:none;stroke-width:%d;stroke-linejoin:round;stroke-linecap:round", su(lineWidth)))
	for _, pl := range s.Polylines {
		xs, ys := svgCoords(l.pts(pl.Points))
		c.Polyline(xs, ys, "stroke:"+pl.Colour.RGBA.Hex())
	}
	for _, g := range s.Markers {
		stroke := "stroke:" + g.Colour.RGBA.Hex()
		for _, p := range g.Points {
			for _, sub := range glyphAt(g.Style, markerSize, l.pt(p)) {
				xs, ys := svgCoords(sub)
				c.Polyline(xs, ys, stroke)
			}
		}
	}
	c.Gend()

	fs := fmt.Sprintf("font-family:Helvetica,Arial,sans-serif;font-size:%d", su(fontSize))
	for _, a := range s.Annotations {
		at, align := l.annotationAt(a)
		c.Text(su(at.X), su(at.Y), a.Text, fs+";fill:"+a.Colour.RGBA.Hex()+";text-anchor:"+svgAnchor(align))
	}
	if s.Title != "" {
		c.Text(su(l.Title.X), su(l.Title.Y), s.Title,
			fmt.Sprintf("font-family:Helvetica,Arial,sans-serif;font-size:%d;text-anchor:middle", su(titleSize)))
	}
	if s.XLabel != "" {
		c.Text(su(l.XLabel.X), su(l.XLabel.Y), s.XLabel, fs+";text-anchor:middle")
	}
	if s.YLabel != "" {
		x, y := su(l.YLabel.X), su(l.YLabel.Y)
		c.Text(x, y, s.YLabel, fs+";text-anchor:middle", fmt.Sprintf(`transform="rotate(-90 %d %d)"`, x, y))
	}
	c.End()
	return cw.err
}

func svgCoords(pts []vector.Pt) (xs, ys []int) {
	xs = make([]int, len(pts))
	ys = make([]int, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = su(p.X), su(p.Y)
	}
	return xs, ys
}

func svgAnchor(a textAlign) string {
	switch a {
	case alignLeft:
		return "start"
	case alignRight:
		return "end"
	default:
		return "middle"
	}
}

// countWriter remembers the first write error; svgo does not report them.
type countWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
