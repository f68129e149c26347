/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Path commands and shapes. Only straight segments are needed: polylines and
// marker glyph outlines.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	Close
)

type PathCmd struct {
	Op PathOp
	P  Pt
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float64) { p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, P: Pt{x, y}}) }
func (p *Path) LineTo(x, y float64) { p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, P: Pt{x, y}}) }
func (p *Path) Close()              { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// Polyline appends an open subpath through pts.
func (p *Path) Polyline(pts []Pt) {
	for i, q := range pts {
		if i == 0 {
			p.MoveTo(q.X, q.Y)
		} else {
			p.LineTo(q.X, q.Y)
		}
	}
}

// Bounds returns the axis-aligned bounding box of all path vertices.
func (p *Path) Bounds() Rect {
	var b Bounds
	for _, c := range p.Cmds {
		if c.Op != Close {
			b.Add(c.P)
		}
	}
	return b.Rect()
}

// Transform returns a copy of the path with m applied to every vertex.
func (p Path) Transform(m Affine2D) Path {
	out := Path{Cmds: make([]PathCmd, len(p.Cmds))}
	for i, c := range p.Cmds {
		if c.Op != Close {
			c.P = m.Apply(c.P)
		}
		out.Cmds[i] = c
	}
	return out
}

// Subpaths flattens the path into vertex lists, one per MoveTo. A closed
// subpath repeats its first vertex at the end.
func (p Path) Subpaths() [][]Pt {
	var out [][]Pt
	var cur []Pt
	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
		}
		cur = nil
	}
	for _, c := range p.Cmds {
		switch c.Op {
		case MoveTo:
			flush()
			cur = []Pt{c.P}
		case LineTo:
			cur = append(cur, c.P)
		case Close:
			if len(cur) > 0 {
				cur = append(cur, cur[0])
			}
			flush()
		}
	}
	flush()
	return out
}
