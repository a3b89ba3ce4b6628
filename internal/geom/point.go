/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom provides 2D vector primitives for the drafting engine.
// All values are float64 in abstract drawing units; conversion to real-world
// lengths happens at the application boundary. Functions are pure and total:
// degenerate inputs yield zero values, never panics.
package geom

import "math"

// Epsilon is the tolerance below which two coordinates are considered equal.
const Epsilon = 1e-9

// Pt is a 2D point or vector. The JSON form is used directly by the
// document manifest.
type Pt struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// P is shorthand for constructing a point.
func P(x, y float64) Pt { return Pt{X: x, Y: y} }

func (p Pt) Add(q Pt) Pt      { return Pt{p.X + q.X, p.Y + q.Y} }
func (p Pt) Sub(q Pt) Pt      { return Pt{p.X - q.X, p.Y - q.Y} }
func (p Pt) Mul(s float64) Pt { return Pt{p.X * s, p.Y * s} }
func (p Pt) Neg() Pt          { return Pt{-p.X, -p.Y} }

// Dot returns the scalar product.
func (p Pt) Dot(q Pt) float64 { return p.X*q.X + p.Y*q.Y }

// Cross returns the Z component of the 3D cross product. Its sign encodes
// turn direction and drives winding classification.
func (p Pt) Cross(q Pt) float64 { return p.X*q.Y - p.Y*q.X }

func (p Pt) Len() float64  { return math.Hypot(p.X, p.Y) }
func (p Pt) Len2() float64 { return p.X*p.X + p.Y*p.Y }

// Dist returns the Euclidean distance between two points.
func (p Pt) Dist(q Pt) float64 { return p.Sub(q).Len() }

// Normalize returns the unit vector, or the zero vector when p is shorter
// than Epsilon, so callers never divide by zero.
func (p Pt) Normalize() Pt {
	l := p.Len()
	if l < Epsilon {
		return Pt{}
	}
	return Pt{p.X / l, p.Y / l}
}

// Perp returns p rotated by 90 degrees counter-clockwise (Y-up convention).
func (p Pt) Perp() Pt { return Pt{-p.Y, p.X} }

// Lerp interpolates from p to q; t=0 yields p, t=1 yields q.
func (p Pt) Lerp(q Pt, t float64) Pt {
	return Pt{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Rot rotates p around the origin by the given angle in radians.
func (p Pt) Rot(rad float64) Pt {
	c, s := math.Cos(rad), math.Sin(rad)
	return Pt{p.X*c - p.Y*s, p.X*s + p.Y*c}
}

// RotInv applies the inverse rotation of Rot for the same angle.
func (p Pt) RotInv(rad float64) Pt {
	c, s := math.Cos(rad), math.Sin(rad)
	return Pt{p.X*c + p.Y*s, -p.X*s + p.Y*c}
}

// RotAround rotates p around the pivot c by the given angle in radians.
func (p Pt) RotAround(c Pt, rad float64) Pt { return p.Sub(c).Rot(rad).Add(c) }

// Equals reports coordinate equality within Epsilon.
func (p Pt) Equals(q Pt) bool {
	return math.Abs(p.X-q.X) < Epsilon && math.Abs(p.Y-q.Y) < Epsilon
}

// IsZero reports whether p is the zero vector within Epsilon.
func (p Pt) IsZero() bool { return math.Abs(p.X) < Epsilon && math.Abs(p.Y) < Epsilon }

// Angle returns the direction of p in radians in (-pi, pi].
func (p Pt) Angle() float64 { return math.Atan2(p.Y, p.X) }

// Finite reports whether both coordinates are finite numbers.
func (p Pt) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}
