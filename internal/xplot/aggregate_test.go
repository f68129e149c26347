/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package xplot

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goxplot/internal/vector"
)

func quiet(opt Options) Options {
	opt.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return opt
}

func parse(t *testing.T, src string, opt Options) (*Scene, []Diagnostic) {
	t.Helper()
	s, diags, err := Parse(context.Background(), strings.NewReader(src), quiet(opt))
	require.NoError(t, err)
	require.NotNil(t, s)
	return s, diags
}

func col(name string) Colour {
	c, ok := DefaultPalette().Lookup(name)
	if !ok {
		panic("no colour " + name)
	}
	return c
}

func pts(xy ...float64) []vector.Pt {
	out := make([]vector.Pt, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, vector.Pt{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func TestParseMergesChainedLines(t *testing.T) {
	s, diags := parse(t, "black\nline 0 0 1 1\nline 1 1 2 2\nred\nline 5 5 6 6\ngo\n", Options{})
	assert.Empty(t, diags)
	want := []Polyline{
		{Colour: col("black"), Points: pts(0, 0, 1, 1, 2, 2)},
		{Colour: col("red"), Points: pts(5, 5, 6, 6)},
	}
	assert.Equal(t, want, s.Polylines)
	assert.Empty(t, s.Markers)
	assert.Empty(t, s.Annotations)
}

func TestParseTitleAndMarkers(t *testing.T) {
	s, _ := parse(t, "title\nMy Plot\ndot 1 2\ndot 3 4\ngo\n", Options{})
	assert.Equal(t, "My Plot", s.Title)
	require.Len(t, s.Markers, 1)
	assert.Equal(t, MarkerGroup{Colour: col("black"), Style: Dot, Points: pts(1, 2, 3, 4)}, s.Markers[0])
}

func TestParseMalformedReturnsNoScene(t *testing.T) {
	s, diags, err := Parse(context.Background(), strings.NewReader("dot 1 1\nline a 0 1 1\n"), quiet(Options{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Nil(t, s)
	assert.Nil(t, diags)
}

func TestParseLabelsLastWriteWins(t *testing.T) {
	s, _ := parse(t, "title\nfirst\nxlabel\nX\nylabel\nY\ntitle\nsecond\n", Options{})
	assert.Equal(t, "second", s.Title)
	assert.Equal(t, "X", s.XLabel)
	assert.Equal(t, "Y", s.YLabel)
}

func TestColourOverrideDoesNotChangeAmbient(t *testing.T) {
	s, _ := parse(t, "green\nline 0 0 1 1 red\nline 1 1 2 2\ndot 0 0 yellow\ndot 1 1\n", Options{})
	require.Len(t, s.Polylines, 2)
	assert.Equal(t, col("red"), s.Polylines[0].Colour)
	assert.Equal(t, col("green"), s.Polylines[1].Colour)
	require.Len(t, s.Markers, 2)
	assert.Equal(t, col("yellow"), s.Markers[0].Colour)
	assert.Equal(t, col("green"), s.Markers[1].Colour)
}

func TestLookbackWindowIsBounded(t *testing.T) {
	var b strings.Builder
	// six disjoint black segments; the first one falls out of a window of 5
	for i := 0; i < 6; i++ {
		b.WriteString("line " + itoa(i*10) + " 0 " + itoa(i*10+1) + " 1\n")
	}
	b.WriteString("line 1 1 2 2\n")

	s, _ := parse(t, b.String(), Options{})
	require.Len(t, s.Polylines, 7)
	assert.Equal(t, pts(0, 0, 1, 1), s.Polylines[0].Points)
	assert.Equal(t, pts(1, 1, 2, 2), s.Polylines[6].Points)

	s, _ = parse(t, b.String(), Options{Lookback: 6})
	require.Len(t, s.Polylines, 6)
	assert.Equal(t, pts(0, 0, 1, 1, 2, 2), s.Polylines[0].Points)

	s, _ = parse(t, b.String(), Options{Merge: MergeEndpoint})
	require.Len(t, s.Polylines, 6)
	assert.Equal(t, pts(0, 0, 1, 1, 2, 2), s.Polylines[0].Points)
}

func TestLookbackOnlyCountsSameColour(t *testing.T) {
	var b strings.Builder
	b.WriteString("line 0 0 1 1\n")
	for i := 0; i < 10; i++ {
		b.WriteString("line " + itoa(i*10) + " 5 " + itoa(i*10+1) + " 6 red\n")
	}
	b.WriteString("line 1 1 2 2\n")
	s, _ := parse(t, b.String(), Options{})
	require.Len(t, s.Polylines, 11)
	assert.Equal(t, pts(0, 0, 1, 1, 2, 2), s.Polylines[0].Points)
}

func TestLookbackPrefersNewestMatch(t *testing.T) {
	s, _ := parse(t, "line 0 0 1 1\nline 5 5 1 1\nline 1 1 2 2\n", Options{})
	require.Len(t, s.Polylines, 2)
	assert.Equal(t, pts(0, 0, 1, 1), s.Polylines[0].Points)
	assert.Equal(t, pts(5, 5, 1, 1, 2, 2), s.Polylines[1].Points)
}

func TestMergeRequiresExactEquality(t *testing.T) {
	s, _ := parse(t, "line 0 0 1 1\nline 1.0000001 1 2 2\n", Options{})
	assert.Len(t, s.Polylines, 2)
}

func TestEndpointStrategyFollowsChainsAcrossColours(t *testing.T) {
	src := "line 0 0 1 0\nline 0 5 1 5 red\nline 1 0 2 0\nline 1 5 2 5 red\nline 2 0 3 0\n"
	s, _ := parse(t, src, Options{Merge: MergeEndpoint})
	require.Len(t, s.Polylines, 2)
	assert.Equal(t, pts(0, 0, 1, 0, 2, 0, 3, 0), s.Polylines[0].Points)
	assert.Equal(t, pts(0, 5, 1, 5, 2, 5), s.Polylines[1].Points)
}

func TestInterChainOrderDoesNotMatter(t *testing.T) {
	chainA := []string{"line 0 0 1 0", "line 1 0 2 0", "line 2 0 3 0"}
	chainB := []string{"line 0 9 1 9", "line 1 9 2 9"}
	chainC := []string{"line 7 7 8 8 blue"}

	orders := [][][]string{
		{chainA, chainB, chainC},
		{chainC, chainB, chainA},
		{chainB, chainA, chainC},
	}
	var first []string
	for i, order := range orders {
		var src []string
		for _, c := range order {
			src = append(src, c...)
		}
		s, _ := parse(t, strings.Join(src, "\n"), Options{})
		got := polylineKeys(s)
		if i == 0 {
			first = got
			require.Len(t, got, 3)
			continue
		}
		assert.Equal(t, first, got, "order %d", i)
	}
}

func polylineKeys(s *Scene) []string {
	var out []string
	for _, pl := range s.Polylines {
		var b strings.Builder
		b.WriteString(pl.Colour.Name)
		for _, p := range pl.Points {
			b.WriteString(" " + ftoa(p.X) + "," + ftoa(p.Y))
		}
		out = append(out, b.String())
	}
	sort.Strings(out)
	return out
}

func TestMarkersGroupByColourAndStyle(t *testing.T) {
	src := "dot 1 1\nbox 2 2\nred\ndot 3 3\ndot 4 4 black\nbox 5 5\nblack\nbox 6 6\ndot 7 7\n"
	s, _ := parse(t, src, Options{})
	want := []MarkerGroup{
		{Colour: col("black"), Style: Dot, Points: pts(1, 1, 4, 4, 7, 7)},
		{Colour: col("black"), Style: Box, Points: pts(2, 2, 6, 6)},
		{Colour: col("red"), Style: Dot, Points: pts(3, 3)},
		{Colour: col("red"), Style: Box, Points: pts(5, 5)},
	}
	assert.Equal(t, want, s.Markers)
	assert.Equal(t, 7, s.MarkerCount())
}

func TestAnnotations(t *testing.T) {
	s, _ := parse(t, "purple\natext 1 2\nabove it\nrtext 3 4 orange\nright\nltext 5 6\nleft\n", Options{})
	want := []Annotation{
		{Colour: col("purple"), At: vector.Pt{X: 1, Y: 2}, Text: "above it", Placement: Above},
		{Colour: col("orange"), At: vector.Pt{X: 3, Y: 4}, Text: "right", Placement: RightOf},
		{Colour: col("purple"), At: vector.Pt{X: 5, Y: 6}, Text: "left", Placement: LeftOf},
	}
	assert.Equal(t, want, s.Annotations)
}

func TestUnknownCommandsHaveNoEffect(t *testing.T) {
	clean := "red\nline 0 0 1 1\nline 1 1 2 2\ndot 3 3\n"
	noisy := "red\nwibble\nline 0 0 1 1\nset colour blue\nline 1 1 2 2\n  purple haze  \ndot 3 3\n"

	a, diagsA := parse(t, clean, Options{})
	b, diagsB := parse(t, noisy, Options{})
	assert.Empty(t, diagsA)
	assert.Equal(t, a, b)
	require.Len(t, diagsB, 3)
	assert.Equal(t, Diagnostic{Line: 2, Raw: "wibble", Message: "unknown command"}, diagsB[0])
	assert.Equal(t, "purple haze", diagsB[2].Raw)
	assert.Equal(t, "line 6: unknown command: purple haze", diagsB[2].String())
}

func TestGoTruncates(t *testing.T) {
	a, _ := parse(t, "dot 1 1\ngo\n", Options{})
	b, _ := parse(t, "dot 1 1\ngo\nred\ndot 2 2\nline 0 0 1 1\nline a b c d\ntitle\n", Options{})
	assert.Equal(t, a, b)
}

func TestUnknownColourPolicies(t *testing.T) {
	src := "red\nline 0 0 1 1 mauve\n"

	s, diags := parse(t, src, Options{UnknownColour: ColourAmbient})
	require.Len(t, s.Polylines, 1)
	assert.Equal(t, col("red"), s.Polylines[0].Colour)
	require.Len(t, diags, 1)
	assert.Equal(t, 2, diags[0].Line)
	assert.Equal(t, "line 0 0 1 1 mauve", diags[0].Raw)
	assert.Equal(t, `line 2: unknown colour "mauve", using red: line 0 0 1 1 mauve`, diags[0].String())

	_, _, err := Parse(context.Background(), strings.NewReader(src), quiet(Options{UnknownColour: ColourError}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownColour)
	assert.ErrorIs(t, err, ErrMalformed)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Line)
	assert.Equal(t, "line 0 0 1 1 mauve", se.Raw)
	assert.Contains(t, err.Error(), "palette: white black orange green yellow red blue purple")
}

func TestLegacyPaletteTreatsBlueAsUnknown(t *testing.T) {
	s, diags := parse(t, "blue\ndot 1 1\ndot 2 2 blue\n", Options{Palette: LegacyPalette()})
	require.Len(t, s.Markers, 1)
	assert.Equal(t, "black", s.Markers[0].Colour.Name)
	assert.Len(t, diags, 2)
}

func TestParseHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, _, err := Parse(ctx, strings.NewReader("dot 1 1\n"), quiet(Options{}))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, s)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plot.xpl")
	require.NoError(t, os.WriteFile(path, []byte("timeval double\nuarrow 1 1\ngo\n"), 0o644))
	s, _, err := ParseFile(context.Background(), path, quiet(Options{}))
	require.NoError(t, err)
	assert.Equal(t, 1, s.MarkerCount())

	_, _, err = ParseFile(context.Background(), filepath.Join(dir, "missing.xpl"), quiet(Options{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSceneBounds(t *testing.T) {
	s, _ := parse(t, "line -1 0 1 1\ndot 4 -2\natext 0 9\nx\n", Options{})
	assert.Equal(t, vector.R(-1, -2, 5, 11), s.Bounds().Rect())
	assert.False(t, s.Empty())

	empty, _ := parse(t, "go\n", Options{})
	assert.True(t, empty.Empty())
	assert.True(t, empty.Bounds().Empty())
}

func TestFingerprintNormalizes(t *testing.T) {
	assert.Equal(t, Options{}.Fingerprint(), DefaultOptions().Fingerprint())
	assert.NotEqual(t, Options{}.Fingerprint(), Options{Merge: MergeEndpoint}.Fingerprint())
	assert.NotEqual(t, Options{}.Fingerprint(), Options{Palette: LegacyPalette()}.Fingerprint())
}
