/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Plane geometry shared by the scene model and the exporters.
// Data coordinates come straight from xplot scripts, so float64 keeps
// every parsed value exact.

// Pt is a 2D point.
type Pt struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Pt { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt { return Pt{r.X + r.W, r.Y + r.H} }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := min(r.X, o.X)
	minY := min(r.Y, o.Y)
	maxX := max(r.X+r.W, o.X+o.W)
	maxY := max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Pad widens the rectangle by frac of its extent on every side. A
// degenerate axis is widened to a unit span centred on its value so that a
// single point still gets a usable viewport.
func (r Rect) Pad(frac float64) Rect {
	if r.W == 0 {
		r.X -= 0.5
		r.W = 1
	} else {
		r.X -= r.W * frac
		r.W += 2 * r.W * frac
	}
	if r.H == 0 {
		r.Y -= 0.5
		r.H = 1
	} else {
		r.Y -= r.H * frac
		r.H += 2 * r.H * frac
	}
	return r
}

// Bounds accumulates the bounding box of a point set.
// The zero value is empty.
type Bounds struct {
	lo, hi Pt
	n      int
}

func (b *Bounds) Add(pts ...Pt) {
	for _, p := range pts {
		if b.n == 0 {
			b.lo, b.hi = p, p
		} else {
			b.lo = Pt{min(b.lo.X, p.X), min(b.lo.Y, p.Y)}
			b.hi = Pt{max(b.hi.X, p.X), max(b.hi.Y, p.Y)}
		}
		b.n++
	}
}

func (b Bounds) Empty() bool { return b.n == 0 }

// Rect returns the accumulated box, or the zero Rect when empty.
func (b Bounds) Rect() Rect {
	if b.n == 0 {
		return Rect{}
	}
	return Rect{X: b.lo.X, Y: b.lo.Y, W: b.hi.X - b.lo.X, H: b.hi.Y - b.lo.Y}
}

// Affine2D represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
// stored as [a b c d e f].
type Affine2D struct{ A, B, C, D, E, F float64 }

var Identity = Affine2D{A: 1, D: 1}

func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine2D) Apply(p Pt) Pt {
	return Pt{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine2D     { return Affine2D{A: sx, D: sy} }

// Fit maps src onto dst with the y axis flipped, so that larger data y
// values land nearer the top of a device whose y grows downward.
// src must have non-zero extent on both axes.
func Fit(src, dst Rect) Affine2D {
	sx := dst.W / src.W
	sy := dst.H / src.H
	return Translate(dst.X, dst.Y+dst.H).Mul(Scale(sx, -sy)).Mul(Translate(-src.X, -src.Y))
}
