/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"
	"testing"
)

func almostEq(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func almostEqPt(a, b Pt) bool { return almostEq(a.X, b.X) && almostEq(a.Y, b.Y) }

func TestPtArithmetic(t *testing.T) {
	a := P(3, 4)
	b := P(1, -2)
	if got := a.Add(b); !almostEqPt(got, P(4, 2)) {
		t.Fatalf("Add: %+v", got)
	}
	if got := a.Sub(b); !almostEqPt(got, P(2, 6)) {
		t.Fatalf("Sub: %+v", got)
	}
	if got := a.Mul(2); !almostEqPt(got, P(6, 8)) {
		t.Fatalf("Mul: %+v", got)
	}
	if got := a.Dot(b); !almostEq(got, -5) {
		t.Fatalf("Dot: %v", got)
	}
	if got := a.Cross(b); !almostEq(got, -10) { // 3*-2 - 4*1
		t.Fatalf("Cross: %v", got)
	}
	if got := a.Len(); !almostEq(got, 5) {
		t.Fatalf("Len: %v", got)
	}
}

func TestNormalizeZeroBelowEpsilon(t *testing.T) {
	n := P(3, 4).Normalize()
	if !almostEq(n.Len(), 1) {
		t.Fatalf("expected unit length, got %v", n.Len())
	}
	z := P(1e-12, -1e-12).Normalize()
	if !z.IsZero() {
		t.Fatalf("expected zero vector for degenerate input, got %+v", z)
	}
	if !(Pt{}).Normalize().IsZero() {
		t.Fatalf("expected zero vector for zero input")
	}
}

func TestPerpAndRotation(t *testing.T) {
	if got := P(1, 0).Perp(); !almostEqPt(got, P(0, 1)) {
		t.Fatalf("Perp: %+v", got)
	}
	r := P(1, 0).Rot(math.Pi / 2)
	if !almostEqPt(r, P(0, 1)) {
		t.Fatalf("Rot 90: %+v", r)
	}
	back := r.RotInv(math.Pi / 2)
	if !almostEqPt(back, P(1, 0)) {
		t.Fatalf("RotInv round trip: %+v", back)
	}
	ra := P(2, 1).RotAround(P(1, 1), math.Pi)
	if !almostEqPt(ra, P(0, 1)) {
		t.Fatalf("RotAround: %+v", ra)
	}
}

func TestLerpAndDist(t *testing.T) {
	m := P(0, 0).Lerp(P(10, 20), 0.5)
	if !almostEqPt(m, P(5, 10)) {
		t.Fatalf("Lerp: %+v", m)
	}
	if d := P(0, 0).Dist(P(3, 4)); !almostEq(d, 5) {
		t.Fatalf("Dist: %v", d)
	}
}

func TestFinite(t *testing.T) {
	if !P(1, 2).Finite() {
		t.Fatalf("finite point reported non-finite")
	}
	if P(math.NaN(), 0).Finite() || P(0, math.Inf(1)).Finite() {
		t.Fatalf("non-finite point reported finite")
	}
}

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

func TestBoundsOf(t *testing.T) {
	pts := []Pt{{3, 7}, {-1, 2}, {5, 4}}
	b, ok := BoundsOf(pts)
	if !ok {
		t.Fatalf("expected bounds for non-empty points")
	}
	if b.X != -1 || b.Y != 2 || b.W != 6 || b.H != 5 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
	if _, ok := BoundsOf(nil); ok {
		t.Fatalf("expected no bounds for empty input")
	}
}

func TestAffineBasic(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Pt{1, 1})
	if p.X != 12 || p.Y != 8 { // (1*2+10, 1*3+5)
		t.Fatalf("unexpected transform result: %+v", p)
	}
}

func TestAffineInvertRoundTrip(t *testing.T) {
	m := TRS(12, -7, 0.6)
	p := P(3.5, -1.25)
	back := m.Invert().Apply(m.Apply(p))
	if !almostEqPt(back, p) {
		t.Fatalf("invert round trip: %+v", back)
	}
}

func TestAffineSingularInvert(t *testing.T) {
	m := Scale(0, 0).Invert()
	if m != Identity {
		t.Fatalf("singular inverse should fall back to identity, got %+v", m)
	}
}

func TestApplyVecIgnoresTranslation(t *testing.T) {
	m := Translate(100, 200).Mul(Rotate(math.Pi / 2))
	v := m.ApplyVec(P(1, 0))
	if !almostEqPt(v, P(0, 1)) {
		t.Fatalf("ApplyVec: %+v", v)
	}
}
