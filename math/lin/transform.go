// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// T is a 2-D transform for rotation and translation. It excludes scaling
// and shear, the same simplification the 3-D version made, and for the
// same reason: every body and fixture only ever needs position + facing,
// never stretch.
type T struct {
	P Vec2 // position
	Q Rot  // rotation
}

// TI is the identity transform: no rotation, no translation.
var TI = T{P: Zero2, Q: RotI}

// NewT builds a transform from a position and angle in radians.
func NewT(p Vec2, angle float64) T {
	return T{P: p, Q: NewRot(angle)}
}

// SetI resets t to the identity transform. The updated T is returned.
func (t *T) SetI() *T {
	t.P = Zero2
	t.Q = RotI
	return t
}

// Apply maps a point from the transform's local frame to world space.
func (t T) Apply(v Vec2) Vec2 { return t.Q.Apply(v).Add(t.P) }

// ApplyT maps a point from world space into the transform's local frame.
func (t T) ApplyT(v Vec2) Vec2 { return t.Q.ApplyT(v.Sub(t.P)) }

// ApplyVec rotates, without translating, a direction vector into world space.
func (t T) ApplyVec(v Vec2) Vec2 { return t.Q.Apply(v) }

// ApplyVecT rotates, without translating, a direction vector back to local space.
func (t T) ApplyVecT(v Vec2) Vec2 { return t.Q.ApplyT(v) }

// Mul composes two transforms: applying the result is the same as applying
// b then a, i.e. Mul(a, b).Apply(v) == a.Apply(b.Apply(v)).
func Mul(a, b T) T {
	return T{Q: a.Q.Mul(b.Q), P: a.Q.Apply(b.P).Add(a.P)}
}

// MulT composes the inverse of a with b: MulT(a, b).Apply(v) == a.ApplyT(b.Apply(v)).
func MulT(a, b T) T {
	return T{Q: a.Q.MulT(b.Q), P: a.Q.ApplyT(b.P.Sub(a.P))}
}

// Sweep describes a body's motion over one step as a linear interpolation
// between a pose at fraction Alpha0 and a pose at fraction 1, both taken
// about the body's local center of mass so that rotation alone doesn't
// also translate the center. GetTransform reconstructs the pose at any
// fraction within [Alpha0, 1] -- exactly what the TOI solver bisects over
// to find the first time of impact, and what the regular integrator uses
// to go from velocity back to a body-origin transform.
//
// Based on the integrate-and-interpolate role T.Integrate used to play,
// split out into its own type because the TOI solver needs to evaluate
// the pose at arbitrary fractions, not just integrate by one full step.
type Sweep struct {
	LocalCenter Vec2 // local-space center of mass

	C0, C Vec2 // center of mass at Alpha0 and at 1
	A0, A Rot  // rotation at Alpha0 and at 1

	Alpha0 float64 // fraction of the step already consumed by a prior TOI event
}

// NewSweep returns a stationary sweep at the given transform: both
// endpoints equal, Alpha0 at 0. Used when (re)initializing a body.
func NewSweep(localCenter Vec2, xf T) Sweep {
	c := xf.Apply(localCenter)
	return Sweep{LocalCenter: localCenter, C0: c, C: c, A0: xf.Q, A: xf.Q, Alpha0: 0}
}

// GetTransform returns the sweep's transform, in body-origin (not center
// of mass) coordinates, at fraction beta of the way from Alpha0 to 1.
func (s Sweep) GetTransform(beta float64) T {
	c := LerpV(s.C0, s.C, beta)
	q := NLerp(s.A0, s.A, beta)
	p := c.Sub(q.Apply(s.LocalCenter)) // shift back from center of mass to body origin.
	return T{P: p, Q: q}
}

// Advance moves the sweep's starting point forward to alpha, keeping the
// end point fixed. A TOI event that consumes part of the step calls this
// so the remaining sub-step replays from the impact pose instead of t=0.
func (s *Sweep) Advance(alpha float64) {
	if s.Alpha0 >= 1 {
		return
	}
	beta := (alpha - s.Alpha0) / (1 - s.Alpha0)
	s.C0 = LerpV(s.C0, s.C, beta)
	s.A0 = NLerp(s.A0, s.A, beta)
	s.Alpha0 = alpha
}
