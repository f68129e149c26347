/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package xplot

import "goxplot/internal/vector"

// Colour is a palette entry resolved for drawing.
type Colour struct {
	Name string       `json:"name"`
	RGBA vector.Color `json:"rgba"`
}

// Polyline is a connected run of segments in one colour; it always has at
// least two points.
type Polyline struct {
	Colour Colour      `json:"colour"`
	Points []vector.Pt `json:"points"`
}

// MarkerGroup holds every marker sharing a colour and style, in input order.
type MarkerGroup struct {
	Colour Colour      `json:"colour"`
	Style  MarkerStyle `json:"style"`
	Points []vector.Pt `json:"points"`
}

// Annotation is a text label anchored at a data point.
type Annotation struct {
	Colour    Colour    `json:"colour"`
	At        vector.Pt `json:"at"`
	Text      string    `json:"text"`
	Placement Placement `json:"placement"`
}

// Scene is the result of interpreting a script. Empty Title, XLabel or
// YLabel means the script did not set it.
type Scene struct {
	Title       string        `json:"title,omitempty"`
	XLabel      string        `json:"xlabel,omitempty"`
	YLabel      string        `json:"ylabel,omitempty"`
	Polylines   []Polyline    `json:"polylines"`
	Markers     []MarkerGroup `json:"markers"`
	Annotations []Annotation  `json:"annotations"`
}

// Bounds covers every polyline vertex, marker and annotation anchor.
func (s *Scene) Bounds() vector.Bounds {
	var b vector.Bounds
	for _, pl := range s.Polylines {
		b.Add(pl.Points...)
	}
	for _, g := range s.Markers {
		b.Add(g.Points...)
	}
	for _, a := range s.Annotations {
		b.Add(a.At)
	}
	return b
}

// Empty reports whether the scene has nothing to draw.
func (s *Scene) Empty() bool {
	return len(s.Polylines) == 0 && len(s.Markers) == 0 && len(s.Annotations) == 0
}

// MarkerCount is the number of individual markers across all groups.
func (s *Scene) MarkerCount() int {
	n := 0
	for _, g := range s.Markers {
		n += len(g.Points)
	}
	return n
}
