/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"goxplot/internal/vector"
	"goxplot/internal/xplot"
)

// Drawing constants shared by every backend, in points.
const (
	lineWidth   = 1.0
	markerSize  = 4.0
	fontSize    = 10.0
	titleSize   = 12.0
	framePad    = 0.05 // fraction of the data extent added around it
	outerMargin = 10.0
	labelBand   = 24.0
)

// textAlign is the horizontal alignment of a label relative to its anchor.
type textAlign uint8

const (
	alignLeft textAlign = iota
	alignCenter
	alignRight
)

// annotationOffset returns the displacement from the anchor point, in device
// units with y growing downward, and the alignment for a placement.
func annotationOffset(p xplot.Placement) (vector.Pt, textAlign) {
	switch p {
	case xplot.RightOf:
		return vector.Pt{X: 2}, alignLeft
	case xplot.LeftOf:
		return vector.Pt{X: -2}, alignRight
	default:
		return vector.Pt{Y: -5}, alignCenter
	}
}

// dataRect is the data-space area shown for s.
func dataRect(s *xplot.Scene) vector.Rect {
	b := s.Bounds()
	if b.Empty() {
		return vector.R(0, 0, 1, 1)
	}
	return b.Rect().Pad(framePad)
}

// layout places the plot frame and labels on a w×h device surface whose
// origin is the top-left corner.
type layout struct {
	W, H   float64
	Frame  vector.Rect
	Data   vector.Rect
	ToDev  vector.Affine2D
	Title  vector.Pt // baseline centre
	XLabel vector.Pt // baseline centre
	YLabel vector.Pt // baseline centre before the -90° rotation
}

func newLayout(s *xplot.Scene, w, h float64) layout {
	top, bottom, left := outerMargin, outerMargin, outerMargin
	if s.Title != "" {
		top += labelBand
	}
	if s.XLabel != "" {
		bottom += labelBand
	}
	if s.YLabel != "" {
		left += labelBand
	}
	frame := vector.R(left, top, w-left-outerMargin, h-top-bottom)
	if frame.W < 1 {
		frame.W = 1
	}
	if frame.H < 1 {
		frame.H = 1
	}
	data := dataRect(s)
	return layout{
		W: w, H: h,
		Frame:  frame,
		Data:   data,
		ToDev:  vector.Fit(data, frame),
		Title:  vector.Pt{X: frame.X + frame.W/2, Y: outerMargin + titleSize},
		XLabel: vector.Pt{X: frame.X + frame.W/2, Y: h - outerMargin - 4},
		YLabel: vector.Pt{X: outerMargin + fontSize, Y: frame.Y + frame.H/2},
	}
}

func (l layout) pt(p vector.Pt) vector.Pt { return l.ToDev.Apply(p) }

func (l layout) pts(in []vector.Pt) []vector.Pt {
	out := make([]vector.Pt, len(in))
	for i, p := range in {
		out[i] = l.ToDev.Apply(p)
	}
	return out
}

// annotationAt is the text anchor for a, already offset for its placement.
func (l layout) annotationAt(a xplot.Annotation) (vector.Pt, textAlign) {
	off, align := annotationOffset(a.Placement)
	p := l.pt(a.At)
	return vector.Pt{X: p.X + off.X, Y: p.Y + off.Y}, align
}
