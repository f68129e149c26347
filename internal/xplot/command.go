/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package xplot

// Command is one interpreted xplot statement. The set of implementations is
// closed; the Aggregator switches over them exhaustively.
//
// Colour fields on Line, Text and Marker hold the raw trailing token, or ""
// when the statement has none. They are resolved against the palette by the
// Aggregator and never change the ambient colour.
type Command interface {
	command()
}

// SetDataType is "timeval <type>"; it carries no drawing information.
type SetDataType struct{ Type string }

type Title struct{ Text string }

type XLabel struct{ Text string }

type YLabel struct{ Text string }

// SetColour is a bare palette keyword: it changes the ambient colour.
type SetColour struct{ Name string }

// Line is "line x1 y1 x2 y2 [colour]".
type Line struct {
	X1, Y1, X2, Y2 float64
	Colour         string
}

// Text is "atext|rtext|ltext x y [colour]" followed by the label line.
type Text struct {
	Placement Placement
	X, Y      float64
	Text      string
	Colour    string
}

// Marker is "<style> x y [colour]".
type Marker struct {
	Style  MarkerStyle
	X, Y   float64
	Colour string
}

// Go ends the script.
type Go struct{}

// Unknown is any statement whose first token is not part of the vocabulary.
type Unknown struct{ Raw string }

func (SetDataType) command() {}
func (Title) command()       {}
func (XLabel) command()      {}
func (YLabel) command()      {}
func (SetColour) command()   {}
func (Line) command()        {}
func (Text) command()        {}
func (Marker) command()      {}
func (Go) command()          {}
func (Unknown) command()     {}
