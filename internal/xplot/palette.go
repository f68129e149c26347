/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package xplot

import (
	"fmt"
	"strings"

	"goxplot/internal/vector"
)

// DefaultAmbient is the colour in effect before any colour command.
const DefaultAmbient = "black"

// PaletteEntry binds an xplot colour keyword to its display value.
type PaletteEntry struct {
	Name  string
	Color vector.Color
}

// Palette is an immutable, ordered mapping from colour keyword to display
// value. The zero Palette knows no colours.
type Palette struct {
	names   []string
	colours map[string]vector.Color
}

// NewPalette builds a palette from entries; later duplicates replace earlier ones.
func NewPalette(entries ...PaletteEntry) Palette {
	p := Palette{colours: make(map[string]vector.Color, len(entries))}
	for _, e := range entries {
		if _, dup := p.colours[e.Name]; !dup {
			p.names = append(p.names, e.Name)
		}
		p.colours[e.Name] = e.Color
	}
	return p
}

// Colour values follow the colorbrewer2.org Dark2 scheme used by the
// classic matplotlib xplot viewer.
var fullPalette = []PaletteEntry{
	{"white", vector.MustHex("#1b9e77")},
	{"black", vector.MustHex("#666666")},
	{"orange", vector.MustHex("#a6761d")},
	{"green", vector.MustHex("#66a61e")},
	{"yellow", vector.MustHex("#e6ab02")},
	{"red", vector.MustHex("#d95f02")},
	{"blue", vector.MustHex("#386cb0")},
	{"purple", vector.MustHex("#7570b3")},
}

// DefaultPalette returns the full 8-colour xplot palette.
func DefaultPalette() Palette { return NewPalette(fullPalette...) }

// LegacyPalette returns the 7-colour variant some older viewers shipped,
// which has no "blue".
func LegacyPalette() Palette {
	var entries []PaletteEntry
	for _, e := range fullPalette {
		if e.Name != "blue" {
			entries = append(entries, e)
		}
	}
	return NewPalette(entries...)
}

// PaletteByName resolves a configured palette name ("full" or "legacy").
func PaletteByName(name string) (Palette, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "full", "default":
		return DefaultPalette(), true
	case "legacy":
		return LegacyPalette(), true
	}
	return Palette{}, false
}

func (p Palette) Has(name string) bool {
	_, ok := p.colours[name]
	return ok
}

// Lookup resolves a colour keyword.
func (p Palette) Lookup(name string) (Colour, bool) {
	c, ok := p.colours[name]
	if !ok {
		return Colour{}, false
	}
	return Colour{Name: name, RGBA: c}, true
}

func (p Palette) Len() int { return len(p.names) }

// Names returns the colour keywords in palette order.
func (p Palette) Names() []string { return append([]string(nil), p.names...) }

// String lists name=value pairs; it identifies a palette in cache keys.
func (p Palette) String() string {
	var b strings.Builder
	for i, n := range p.names {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(n)
		b.WriteByte('=')
		b.WriteString(p.colours[n].Hex())
	}
	return b.String()
}

// MarkerStyle is one of the xplot point marker keywords.
type MarkerStyle string

const (
	DownArrow MarkerStyle = "darrow"
	UpArrow   MarkerStyle = "uarrow"
	Box       MarkerStyle = "box"
	Dot       MarkerStyle = "dot"
	UpTick    MarkerStyle = "utick"
	DownTick  MarkerStyle = "dtick"
	HTick     MarkerStyle = "htick"
	Diamond   MarkerStyle = "diamond"
)

var markerStyles = []MarkerStyle{DownArrow, UpArrow, Box, Dot, UpTick, DownTick, HTick, Diamond}

// MarkerStyles returns every marker keyword.
func MarkerStyles() []MarkerStyle { return append([]MarkerStyle(nil), markerStyles...) }

func ParseMarkerStyle(s string) (MarkerStyle, bool) {
	for _, m := range markerStyles {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// Placement says where an annotation sits relative to its anchor.
type Placement uint8

const (
	Above Placement = iota
	RightOf
	LeftOf
)

func (p Placement) String() string {
	switch p {
	case Above:
		return "above"
	case RightOf:
		return "right-of"
	case LeftOf:
		return "left-of"
	}
	return "unknown"
}

// Keyword returns the xplot command that produces this placement.
func (p Placement) Keyword() string {
	switch p {
	case RightOf:
		return "rtext"
	case LeftOf:
		return "ltext"
	}
	return "atext"
}

func placementForKeyword(kw string) (Placement, bool) {
	switch kw {
	case "atext":
		return Above, true
	case "rtext":
		return RightOf, true
	case "ltext":
		return LeftOf, true
	}
	return 0, false
}

func (p Placement) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Placement) UnmarshalText(b []byte) error {
	switch string(b) {
	case "above":
		*p = Above
	case "right-of":
		*p = RightOf
	case "left-of":
		*p = LeftOf
	default:
		return fmt.Errorf("unknown placement %q", b)
	}
	return nil
}
