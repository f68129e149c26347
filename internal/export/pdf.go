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

	"github.com/jung-kurt/gofpdf"

	"goxplot/internal/vector"
	"goxplot/internal/version"
	"goxplot/internal/xplot"
)

// writePDF draws s on a single page of width×height points. Text uses the
// built-in Helvetica so no font is embedded.
func writePDF(w io.Writer, s *xplot.Scene, width, height int) error {
	l := newLayout(s, float64(width), float64(height))

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: l.W, Ht: l.H},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("goxplot "+version.String(), true)
	if s.Title != "" {
		pdf.SetTitle(s.Title, true)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")

	setDrawColor(pdf, vector.Black)
	pdf.SetLineWidth(0.5)
	pdf.Rect(l.Frame.X, l.Frame.Y, l.Frame.W, l.Frame.H, "D")

	pdf.SetLineWidth(lineWidth)
	for _, pl := range s.Polylines {
		setDrawColor(pdf, pl.Colour.RGBA)
		polyline(pdf, l.pts(pl.Points))
	}
	for _, g := range s.Markers {
		setDrawColor(pdf, g.Colour.RGBA)
		for _, p := range g.Points {
			for _, sub := range glyphAt(g.Style, markerSize, l.pt(p)) {
				polyline(pdf, sub)
			}
		}
	}

	pdf.SetFont("Helvetica", "", fontSize)
	for _, a := range s.Annotations {
		at, align := l.annotationAt(a)
		pdf.SetTextColor(int(a.Colour.RGBA.R), int(a.Colour.RGBA.G), int(a.Colour.RGBA.B))
		pdfText(pdf, tr(a.Text), at, align)
	}
	pdf.SetTextColor(0, 0, 0)
	if s.XLabel != "" {
		pdfText(pdf, tr(s.XLabel), l.XLabel, alignCenter)
	}
	if s.YLabel != "" {
		pdf.TransformBegin()
		pdf.TransformRotate(90, l.YLabel.X, l.YLabel.Y)
		pdfText(pdf, tr(s.YLabel), l.YLabel, alignCenter)
		pdf.TransformEnd()
	}
	if s.Title != "" {
		pdf.SetFont("Helvetica", "", titleSize)
		pdfText(pdf, tr(s.Title), l.Title, alignCenter)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func polyline(pdf *gofpdf.Fpdf, pts []vector.Pt) {
	if len(pts) < 2 {
		return
	}
	pdf.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		pdf.LineTo(p.X, p.Y)
	}
	pdf.DrawPath("D")
}

func pdfText(pdf *gofpdf.Fpdf, s string, at vector.Pt, align textAlign) {
	x := at.X
	switch align {
	case alignCenter:
		x -= pdf.GetStringWidth(s) / 2
	case alignRight:
		x -= pdf.GetStringWidth(s)
	}
	pdf.Text(x, at.Y, s)
}

func setDrawColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}
