// Copyright © 2024 Galvanized Logic Inc.

package physics

// Listener receives synchronous notifications during Step (§6, §5 -- the
// world is locked for the duration of every call here).
type Listener interface {
	// BeginContact fires when a contact's point count goes from 0 to >0.
	BeginContact(c *Contact)
	// EndContact fires when a contact's point count goes from >0 to 0, or
	// when the contact itself is destroyed while touching.
	EndContact(c *Contact)
	// PreSolve fires once per step for every touching non-sensor contact,
	// before the velocity solver runs. oldManifold is the manifold from the
	// previous step; the listener may call c.SetEnabled(false) to skip this
	// contact for the current step only.
	PreSolve(c *Contact, oldManifold Manifold)
	// PostSolve fires after the velocity solver commits impulses, reporting
	// the accumulated normal/tangent impulse at each manifold point.
	PostSolve(c *Contact, impulses ContactImpulse)
}

// ContactImpulse reports per-point accumulated impulses to PostSolve.
type ContactImpulse struct {
	NormalImpulses  [2]float64
	TangentImpulses [2]float64
	Count           int
}

// NullListener implements Listener with no-op methods, the default when a
// World is created without one.
type NullListener struct{}

func (NullListener) BeginContact(*Contact)              {}
func (NullListener) EndContact(*Contact)                {}
func (NullListener) PreSolve(*Contact, Manifold)         {}
func (NullListener) PostSolve(*Contact, ContactImpulse)  {}

// ContactFilter lets host code veto collision between two fixtures beyond
// the category/mask/group test already in Filter (§4.6 supplement).
type ContactFilter interface {
	ShouldCollide(a, b *Fixture) bool
}

// QueryCallback receives each fixture whose proxy overlaps a QueryAABB call.
// Returning false stops the query early.
type QueryCallback func(f *Fixture) bool

// RayCastCallback receives each fixture hit by a RayCast call, along with
// the world hit point, normal and fraction. The return value controls the
// search: 0 stops it, a value in (0,1] shrinks the segment to that
// fraction, and a negative value ignores this fixture and continues at the
// original length (§6).
type RayCastCallback func(f *Fixture, point, normal Vec2, fraction float64) float64
