// Copyright © 2013-2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "math"

// Contact flags (§3).
const (
	contactTouching = 1 << iota
	contactEnabled
	contactFilterDirty
	contactToiValid
	contactUpdating
)

// Contact binds two fixtures' children whose broad-phase proxies overlap
// (§3, §4.6). Key = (fixtureA,indexA,fixtureB,indexB), canonicalized so
// that (A,B) and (B,A) compare equal -- enforced at creation time by the
// contact manager's addPair, which looks the pair up in both orders,
// never re-derived here.
type Contact struct {
	fixtureA, fixtureB *Fixture
	indexA, indexB     int

	manifold Manifold
	flags    int
	islanded bool

	toi           float64
	toiSubstepCount int

	friction, restitution, tangentSpeed float64

	edgeA, edgeB *contactEdge
}

// contactEdge links a body to one of its incident contacts (§3 incident
// contact list, keyed by contact). Both a body's own edge and the edge on
// the other body point at the same Contact.
type contactEdge struct {
	other   *Body
	contact *Contact
}

func newContact(fA *Fixture, iA int, fB *Fixture, iB int) *Contact {
	c := &Contact{
		fixtureA: fA, indexA: iA,
		fixtureB: fB, indexB: iB,
		friction:    mixFriction(fA.friction, fB.friction),
		restitution: mixRestitution(fA.restitution, fB.restitution),
		flags:       contactEnabled,
	}
	c.edgeA = &contactEdge{other: fB.body, contact: c}
	c.edgeB = &contactEdge{other: fA.body, contact: c}
	return c
}

// mixFriction is Box2D's default friction mixer, named as an open question
// in §9(b): geometric mean of the two surfaces' coefficients.
func mixFriction(fA, fB float64) float64 { return math.Sqrt(fA * fB) }

// mixRestitution is the default restitution mixer (§9(b)): the larger of
// the two bounciness coefficients wins, so a bouncy ball stays bouncy even
// against a dead floor.
func mixRestitution(rA, rB float64) float64 { return math.Max(rA, rB) }

func (c *Contact) FixtureA() *Fixture { return c.fixtureA }
func (c *Contact) FixtureB() *Fixture { return c.fixtureB }
func (c *Contact) ChildIndexA() int   { return c.indexA }
func (c *Contact) ChildIndexB() int   { return c.indexB }
func (c *Contact) Manifold() Manifold { return c.manifold }

// IsTouching reports whether the last Update call produced a manifold with
// at least one point (non-sensor) or a positive overlap test (sensor).
func (c *Contact) IsTouching() bool { return c.flags&contactTouching != 0 }

// IsEnabled reports whether the contact participates in the solver. A
// listener may clear this during PreSolve to skip the contact for one step.
func (c *Contact) IsEnabled() bool { return c.flags&contactEnabled != 0 }

// SetEnabled toggles IsEnabled; calling this from PreSolve is the sanctioned
// way to veto a contact for the current step (§4.6, §9).
func (c *Contact) SetEnabled(flag bool) {
	if flag {
		c.flags |= contactEnabled
	} else {
		c.flags &^= contactEnabled
	}
}

func (c *Contact) flagFilterDirty() { c.flags |= contactFilterDirty }

func (c *Contact) isSensor() bool { return c.fixtureA.isSensor || c.fixtureB.isSensor }

func (c *Contact) shouldCollide() bool {
	if c.fixtureA.body == c.fixtureB.body {
		return false
	}
	return c.fixtureA.filter.shouldCollide(c.fixtureB.filter)
}

// Update implements §4.6's per-contact collide step: build the new
// manifold (or run the overlap test for sensors), warm-start by matching
// ContactFeatures against the previous manifold, and fire begin/end
// listener callbacks on a touching-state transition.
func (c *Contact) Update(listener Listener) {
	old := c.manifold
	wasTouching := c.IsTouching()

	bodyA, bodyB := c.fixtureA.body, c.fixtureB.body
	xfA, xfB := bodyA.xf, bodyB.xf

	var touching bool
	if c.isSensor() {
		touching = testOverlap(c.fixtureA.shape, c.indexA, xfA, c.fixtureB.shape, c.indexB, xfB)
		c.manifold = Manifold{Kind: ManifoldUnset}
	} else {
		c.manifold = CollideShapes(c.fixtureA.shape, c.indexA, xfA, c.fixtureB.shape, c.indexB, xfB)
		touching = c.manifold.PointCount > 0
		for i := 0; i < c.manifold.PointCount; i++ {
			np := &c.manifold.Points[i]
			for j := 0; j < old.PointCount; j++ {
				op := old.Points[j]
				if op.Feature == np.Feature {
					np.NormalImpulse = op.NormalImpulse
					np.TangentImpulse = op.TangentImpulse
					break
				}
			}
		}
	}

	if touching {
		c.flags |= contactTouching
	} else {
		c.flags &^= contactTouching
	}

	if touching != wasTouching && !c.isSensor() {
		bodyA.SetAwake(true)
		bodyB.SetAwake(true)
	}

	if listener == nil {
		return
	}
	switch {
	case touching && !wasTouching:
		listener.BeginContact(c)
	case !touching && wasTouching:
		listener.EndContact(c)
	}
	if touching && !c.isSensor() {
		listener.PreSolve(c, old)
	}
}
