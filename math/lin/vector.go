// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is the module's 2-D vector type. It is a plain alias of mathgl's
// Vec2 so every package that needs vector arithmetic -- bodies, shapes,
// the tree, the solver -- shares one representation and gets Add/Sub/Dot/
// Len/Normalize/etc. for free instead of a second hand-rolled vector type.
type Vec2 = mgl64.Vec2

// Zero2 is the zero vector.
var Zero2 = Vec2{0, 0}

// V2 is a convenience constructor, mirroring the old V3{X,Y,Z} literal style.
func V2(x, y float64) Vec2 { return Vec2{x, y} }

// Cross2 returns the 2-D "cross product" of a and b: the z component of
// the 3-D cross product of (a.x, a.y, 0) and (b.x, b.y, 0). Its sign gives
// the winding of a relative to b.
func Cross2(a, b Vec2) float64 { return a[0]*b[1] - a[1]*b[0] }

// CrossVS returns the cross product of a 2-D vector with a scalar, a x s:
// a rotated -90 degrees and scaled by s.
func CrossVS(a Vec2, s float64) Vec2 { return Vec2{s * a[1], -s * a[0]} }

// CrossSV returns the cross product of a scalar with a 2-D vector, s x a.
func CrossSV(s float64, a Vec2) Vec2 { return Vec2{-s * a[1], s * a[0]} }

// Perp returns a rotated 90 degrees counter-clockwise.
func Perp(a Vec2) Vec2 { return Vec2{-a[1], a[0]} }

// MulSV scales v by s. Kept distinct from v.Mul(s) so call sites read
// left-to-right the way the rest of the solver math does (scalar * vector).
func MulSV(s float64, v Vec2) Vec2 { return Vec2{s * v[0], s * v[1]} }

// MinV returns the component-wise minimum of a and b.
func MinV(a, b Vec2) Vec2 { return Vec2{math.Min(a[0], b[0]), math.Min(a[1], b[1])} }

// MaxV returns the component-wise maximum of a and b.
func MaxV(a, b Vec2) Vec2 { return Vec2{math.Max(a[0], b[0]), math.Max(a[1], b[1])} }

// AbsV returns the component-wise absolute value of a.
func AbsV(a Vec2) Vec2 { return Vec2{math.Abs(a[0]), math.Abs(a[1])} }

// ClampV clamps each component of v to the box [lo, hi].
func ClampV(v, lo, hi Vec2) Vec2 {
	return Vec2{Clamp(v[0], lo[0], hi[0]), Clamp(v[1], lo[1], hi[1])}
}

// LerpV linearly interpolates between a and b by ratio t.
func LerpV(a, b Vec2, t float64) Vec2 {
	return Vec2{Lerp(a[0], b[0], t), Lerp(a[1], b[1], t)}
}
