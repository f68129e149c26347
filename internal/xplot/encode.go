/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package xplot

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Encode writes s back out as an xplot script: one line command per
// polyline segment and one marker command per point, each with an explicit
// colour, followed by the annotations and a closing go. Parsing the output
// with the default options yields an equivalent Scene unless a polyline
// starts exactly where an earlier one of the same colour ended.
func Encode(w io.Writer, s *Scene) error {
	bw := bufio.NewWriter(w)
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(bw, format, args...)
	}

	wf("timeval double\n")
	for _, hdr := range []struct{ kw, text string }{
		{"title", s.Title}, {"xlabel", s.XLabel}, {"ylabel", s.YLabel},
	} {
		if hdr.text != "" {
			wf("%s\n%s\n", hdr.kw, oneLine(hdr.text))
		}
	}
	for _, pl := range s.Polylines {
		for i := 1; i < len(pl.Points); i++ {
			a, b := pl.Points[i-1], pl.Points[i]
			wf("line %s %s %s %s %s\n", num(a.X), num(a.Y), num(b.X), num(b.Y), pl.Colour.Name)
		}
	}
	for _, g := range s.Markers {
		for _, p := range g.Points {
			wf("%s %s %s %s\n", g.Style, num(p.X), num(p.Y), g.Colour.Name)
		}
	}
	for _, a := range s.Annotations {
		wf("%s %s %s %s\n%s\n", a.Placement.Keyword(), num(a.At.X), num(a.At.Y), a.Colour.Name, oneLine(a.Text))
	}
	wf("go\n")
	if werr != nil {
		return fmt.Errorf("encode xplot: %w", werr)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("encode xplot: %w", err)
	}
	return nil
}

func num(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// oneLine keeps payload text on a single line; the format has no escapes.
func oneLine(s string) string {
	return strings.TrimSpace(lineBreaks.Replace(s))
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
