// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "math"

// Rot is a 2-D rotation, stored as (sin, cos) of the angle rather than the
// bare angle so that applying it to a vector is a couple of multiplies
// instead of a trig call. This file used to hold the 3-D quaternion that
// played the same role; in a plane a quaternion is overkill; Rot is its
// 2-D replacement and keeps the same "apply/compose/inverse" shape.
type Rot struct {
	S, C float64 // sin(angle), cos(angle)
}

// RotI is the identity rotation.
var RotI = Rot{S: 0, C: 1}

// NewRot builds a Rot from an angle in radians.
func NewRot(angle float64) Rot {
	return Rot{S: math.Sin(angle), C: math.Cos(angle)}
}

// SetAngle updates r in place to the given angle in radians. The updated
// Rot r is returned.
func (r *Rot) SetAngle(angle float64) *Rot {
	r.S, r.C = math.Sin(angle), math.Cos(angle)
	return r
}

// Angle recovers the rotation's angle in radians, in (-PI, PI].
func (r Rot) Angle() float64 { return math.Atan2(r.S, r.C) }

// Mul composes two rotations: r.Mul(q) rotates by q first, then by r.
func (r Rot) Mul(q Rot) Rot {
	return Rot{
		S: r.S*q.C + r.C*q.S,
		C: r.C*q.C - r.S*q.S,
	}
}

// MulT composes the inverse of r with q: r.MulT(q) == r.Inverse().Mul(q).
func (r Rot) MulT(q Rot) Rot {
	return Rot{
		S: r.C*q.S - r.S*q.C,
		C: r.C*q.C + r.S*q.S,
	}
}

// Apply rotates v by r.
func (r Rot) Apply(v Vec2) Vec2 {
	return Vec2{r.C*v[0] - r.S*v[1], r.S*v[0] + r.C*v[1]}
}

// ApplyT rotates v by the inverse of r.
func (r Rot) ApplyT(v Vec2) Vec2 {
	return Vec2{r.C*v[0] + r.S*v[1], -r.S*v[0] + r.C*v[1]}
}

// Inverse returns the inverse rotation.
func (r Rot) Inverse() Rot { return Rot{S: -r.S, C: r.C} }

// NLerp normalizes-lerp between two rotations by ratio t -- a cheap, stable
// substitute for slerp that is accurate enough for one substep's worth of
// angular change, the way btTransformUtil used an exponential-map shortcut
// instead of full quaternion slerp for the same reason.
func NLerp(a, b Rot, t float64) Rot {
	s := Lerp(a.S, b.S, t)
	c := Lerp(a.C, b.C, t)
	mag := math.Hypot(s, c)
	if mag < Epsilon {
		return RotI
	}
	return Rot{S: s / mag, C: c / mag}
}

// RelativeAngle returns the signed angle from a to b, the short way
// around, in (-PI, PI].
func RelativeAngle(a, b Rot) float64 {
	s := a.C*b.S - a.S*b.C
	c := a.C*b.C + a.S*b.S
	return math.Atan2(s, c)
}
