/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"math"

	"goxplot/internal/vector"
	"goxplot/internal/xplot"
)

// glyph returns the outline of a marker of the given size centred on the
// origin, in device units with y growing downward. Markers are stroked,
// never filled.
func glyph(style xplot.MarkerStyle, size float64) vector.Path {
	r := size / 2
	var p vector.Path
	switch style {
	case xplot.DownArrow:
		p.MoveTo(-r, -r)
		p.LineTo(r, -r)
		p.LineTo(0, r)
		p.Close()
	case xplot.UpArrow:
		p.MoveTo(-r, r)
		p.LineTo(r, r)
		p.LineTo(0, -r)
		p.Close()
	case xplot.Box:
		p.MoveTo(-r, -r)
		p.LineTo(r, -r)
		p.LineTo(r, r)
		p.LineTo(-r, r)
		p.Close()
	case xplot.Diamond:
		p.MoveTo(0, -r)
		p.LineTo(r, 0)
		p.LineTo(0, r)
		p.LineTo(-r, 0)
		p.Close()
	case xplot.UpTick:
		p.MoveTo(0, 0)
		p.LineTo(0, -size)
	case xplot.DownTick:
		p.MoveTo(0, 0)
		p.LineTo(0, size)
	case xplot.HTick:
		p.MoveTo(-r, 0)
		p.LineTo(r, 0)
	default:
		// a small ring for dot
		const n = 8
		d := r / 2
		for i := 0; i < n; i++ {
			a := 2 * math.Pi * float64(i) / n
			x, y := d*math.Cos(a), d*math.Sin(a)
			if i == 0 {
				p.MoveTo(x, y)
			} else {
				p.LineTo(x, y)
			}
		}
		p.Close()
	}
	return p
}

// glyphAt is glyph translated to the device point c.
func glyphAt(style xplot.MarkerStyle, size float64, c vector.Pt) [][]vector.Pt {
	return glyph(style, size).Transform(vector.Translate(c.X, c.Y)).Subpaths()
}
