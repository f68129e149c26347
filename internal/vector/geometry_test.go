/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
}

func TestAffineBasic(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Pt{1, 1})
	if p.X != 12 || p.Y != 8 { // (1*2+10, 1*3+5)
		t.Fatalf("unexpected transform result: %+v", p)
	}
}

func TestBoundsAccumulate(t *testing.T) {
	var b Bounds
	if !b.Empty() || b.Rect() != (Rect{}) {
		t.Fatalf("zero Bounds should be empty")
	}
	b.Add(Pt{1, 5}, Pt{-2, 3})
	b.Add(Pt{4, -1})
	got := b.Rect()
	if got != R(-2, -1, 6, 6) {
		t.Fatalf("unexpected bounds: %+v", got)
	}
}

func TestPadDegenerateAxis(t *testing.T) {
	r := R(3, 0, 0, 10).Pad(0.05)
	if r.X != 2.5 || r.W != 1 {
		t.Fatalf("degenerate x axis not widened: %+v", r)
	}
	if r.Y != -0.5 || r.H != 11 {
		t.Fatalf("y axis padding wrong: %+v", r)
	}
}

func TestFitFlipsY(t *testing.T) {
	m := Fit(R(0, 0, 10, 10), R(0, 0, 100, 200))
	lo := m.Apply(Pt{0, 0})
	hi := m.Apply(Pt{10, 10})
	if lo != (Pt{0, 200}) {
		t.Fatalf("data origin should map to bottom-left, got %+v", lo)
	}
	if hi != (Pt{100, 0}) {
		t.Fatalf("data max should map to top-right, got %+v", hi)
	}
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#d95f02")
	if err != nil {
		t.Fatalf("ParseHex: %v", err)
	}
	if c != (Color{0xd9, 0x5f, 0x02, 255}) {
		t.Fatalf("unexpected colour: %+v", c)
	}
	if c.Hex() != "#d95f02" {
		t.Fatalf("Hex round trip: %s", c.Hex())
	}
	for _, bad := range []string{"", "#12345", "#zzzzzz", "#1234567"} {
		if _, err := ParseHex(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
