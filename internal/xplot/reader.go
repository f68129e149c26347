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
	"iter"
	"math"
	"strconv"
	"strings"
)

const maxLineBytes = 1 << 20

// Reader turns xplot script text into Commands, one per call to Next.
// It reads lazily and never looks further ahead than a payload line.
//
// Keywords recognized: timeval, title, xlabel, ylabel, the palette colour
// names, line, atext, rtext, ltext, the marker styles and go. title, xlabel,
// ylabel and the text commands take the following raw line, trimmed, as
// their payload. Numeric fields are decoded here; colour override tokens are
// passed through as written.
type Reader struct {
	sc      *bufio.Scanner
	palette Palette
	line    int    // lines consumed so far
	start   int    // line the last returned command started on
	stmt    string // trimmed first line of the last returned command
	done    bool
}

// NewReader reads from r. The palette decides which bare words are colour
// commands.
func NewReader(r io.Reader, palette Palette) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Reader{sc: sc, palette: palette}
}

// LineNo reports the 1-based source line of the most recent command.
func (r *Reader) LineNo() int { return r.start }

// Statement returns the trimmed keyword line of the most recent command,
// without any payload line.
func (r *Reader) Statement() string { return r.stmt }

// Next returns the next command. After Go, or at end of input, it returns
// io.EOF. Malformed statements yield a *SyntaxError; read failures are
// returned wrapped.
func (r *Reader) Next() (Command, error) {
	if r.done {
		return nil, io.EOF
	}
	for {
		raw, ok, err := r.scan()
		if err != nil {
			return nil, err
		}
		if !ok {
			r.done = true
			return nil, io.EOF
		}
		trim := strings.TrimSpace(raw)
		if trim == "" {
			continue
		}
		r.start = r.line
		r.stmt = trim
		cmd, err := r.decode(trim)
		if err != nil {
			r.done = true
			return nil, err
		}
		if _, end := cmd.(Go); end {
			r.done = true
		}
		return cmd, nil
	}
}

// All exposes the remaining commands as an iterator. Iteration stops after
// the first error, which is yielded with a nil Command.
func (r *Reader) All() iter.Seq2[Command, error] {
	return func(yield func(Command, error) bool) {
		for {
			cmd, err := r.Next()
			if err == io.EOF {
				return
			}
			if !yield(cmd, err) || err != nil {
				return
			}
		}
	}
}

func (r *Reader) scan() (string, bool, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", false, fmt.Errorf("read xplot: %w", err)
		}
		return "", false, nil
	}
	r.line++
	return r.sc.Text(), true, nil
}

func (r *Reader) decode(trim string) (Command, error) {
	fields := strings.Fields(trim)
	kw := fields[0]
	args := fields[1:]

	switch {
	case kw == "timeval":
		return SetDataType{Type: strings.Join(args, " ")}, nil
	case trim == "title":
		s, err := r.payload(trim)
		return Title{Text: s}, err
	case trim == "xlabel":
		s, err := r.payload(trim)
		return XLabel{Text: s}, err
	case trim == "ylabel":
		s, err := r.payload(trim)
		return YLabel{Text: s}, err
	case trim == "go":
		return Go{}, nil
	case len(fields) == 1 && r.palette.Has(kw):
		return SetColour{Name: kw}, nil
	case kw == "line":
		nums, colour, err := r.numbers(trim, args, 4)
		if err != nil {
			return nil, err
		}
		return Line{X1: nums[0], Y1: nums[1], X2: nums[2], Y2: nums[3], Colour: colour}, nil
	}

	if pl, ok := placementForKeyword(kw); ok {
		nums, colour, err := r.numbers(trim, args, 2)
		if err != nil {
			return nil, err
		}
		s, err := r.payload(trim)
		if err != nil {
			return nil, err
		}
		return Text{Placement: pl, X: nums[0], Y: nums[1], Text: s, Colour: colour}, nil
	}
	if style, ok := ParseMarkerStyle(kw); ok {
		nums, colour, err := r.numbers(trim, args, 2)
		if err != nil {
			return nil, err
		}
		return Marker{Style: style, X: nums[0], Y: nums[1], Colour: colour}, nil
	}
	return Unknown{Raw: trim}, nil
}

// numbers decodes exactly n leading numeric fields and at most one
// trailing colour token.
func (r *Reader) numbers(raw string, args []string, n int) ([]float64, string, error) {
	if len(args) < n || len(args) > n+1 {
		return nil, "", &SyntaxError{Line: r.start, Raw: raw, Err: ErrFieldCount}
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(args[i], 64)
		if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
			err = strconv.ErrRange
		}
		if err != nil {
			return nil, "", &SyntaxError{Line: r.start, Raw: raw, Err: fmt.Errorf("%w %q", ErrNumber, args[i])}
		}
		out[i] = v
	}
	var colour string
	if len(args) == n+1 {
		colour = args[n]
	}
	return out, colour, nil
}

func (r *Reader) payload(raw string) (string, error) {
	s, ok, err := r.scan()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &SyntaxError{Line: r.start, Raw: raw, Err: ErrMissingPayload}
	}
	return strings.TrimSpace(s), nil
}
