/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// CubicAt evaluates the cubic Bezier with control points p0,c1,c2,p1 at t.
func CubicAt(p0, c1, c2, p1 Pt, t float64) Pt {
	mt := 1 - t
	v := p0.Mul(mt * mt * mt)
	v = v.Add(c1.Mul(3 * mt * mt * t))
	v = v.Add(c2.Mul(3 * mt * t * t))
	v = v.Add(p1.Mul(t * t * t))
	return v
}

// CubicPoints samples the cubic Bezier into exactly n+1 points at uniform
// parameter steps. The first point is p0 and the last is p1. n below 1 is
// treated as 1.
func CubicPoints(p0, c1, c2, p1 Pt, n int) []Pt {
	if n < 1 {
		n = 1
	}
	out := make([]Pt, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		out = append(out, CubicAt(p0, c1, c2, p1, t))
	}
	// Pin the endpoints so accumulated float error never detaches the curve
	// from its anchor nodes.
	out[0] = p0
	out[n] = p1
	return out
}

// CubicDerivAt returns the derivative (tangent direction, unnormalized) of the
// cubic Bezier at t.
func CubicDerivAt(p0, c1, c2, p1 Pt, t float64) Pt {
	mt := 1 - t
	v := c1.Sub(p0).Mul(3 * mt * mt)
	v = v.Add(c2.Sub(c1).Mul(6 * mt * t))
	v = v.Add(p1.Sub(c2).Mul(3 * t * t))
	return v
}
