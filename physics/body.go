// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/pellucid/phys2d/math/lin"
)

// BodyType classifies a body's motion policy (§3).
type BodyType int

const (
	StaticBody BodyType = iota
	KinematicBody
	DynamicBody
)

// Body is a single rigid body contained in a World. Only dynamic and
// kinematic bodies move; static bodies never change transform.
type Body struct {
	id   int
	kind BodyType

	xf    lin.T    // current body-origin transform
	sweep lin.Sweep // motion over the current step (§3, §4.8)

	linearVelocity  lin.Vec2
	angularVelocity float64

	force  lin.Vec2
	torque float64

	invMass        float64
	invI           float64 // inverse rotational inertia about the center of mass
	localCenter    lin.Vec2

	linearDamping  float64
	angularDamping float64
	gravityScale   float64

	fixedRotation bool
	impenetrable  bool // a.k.a. "bullet": always subject to TOI
	allowSleep    bool
	awake         bool
	enabled       bool

	underActiveTime float64
	massDataDirty   bool

	fixtures []*Fixture
	contacts []*contactEdge
	joints   []*jointEdge

	islandIndex int
	islanded    bool

	world *World
}

// newBody constructs a body owned by w. Not exported: bodies are created
// through World.CreateBody so the world can assign a stable id and enforce
// the step lock (§5, §7).
func newBody(w *World, id int, kind BodyType, xf lin.T) *Body {
	b := &Body{
		id:           id,
		kind:         kind,
		xf:           xf,
		linearDamping: 0,
		gravityScale: 1,
		allowSleep:   true,
		awake:        kind != StaticBody,
		enabled:      true,
		world:        w,
	}
	b.sweep = lin.NewSweep(lin.Zero2, xf)
	return b
}

// ID returns the body's stable identifier, unique within its world.
func (b *Body) ID() int { return b.id }

// Type returns the body's motion policy.
func (b *Body) Type() BodyType { return b.kind }

// Transform returns the body's current world transform.
func (b *Body) Transform() lin.T { return b.xf }

// Position returns the world position of the body origin.
func (b *Body) Position() lin.Vec2 { return b.xf.P }

// Angle returns the body's current rotation in radians.
func (b *Body) Angle() float64 { return b.xf.Q.Angle() }

// WorldCenter returns the world position of the body's center of mass.
func (b *Body) WorldCenter() lin.Vec2 { return b.sweep.C }

// LinearVelocity returns the body's current linear velocity.
func (b *Body) LinearVelocity() lin.Vec2 { return b.linearVelocity }

// AngularVelocity returns the body's current angular velocity.
func (b *Body) AngularVelocity() float64 { return b.angularVelocity }

// SetLinearVelocity sets the body's linear velocity directly. A non-zero
// velocity wakes the body.
func (b *Body) SetLinearVelocity(v lin.Vec2) {
	if b.kind == StaticBody {
		return
	}
	if v.Dot(v) > 0 {
		b.SetAwake(true)
	}
	b.linearVelocity = v
}

// SetAngularVelocity sets the body's angular velocity directly.
func (b *Body) SetAngularVelocity(w float64) {
	if b.kind == StaticBody {
		return
	}
	if w*w > 0 {
		b.SetAwake(true)
	}
	b.angularVelocity = w
}

// ApplyForce applies a force at a world point, accumulating it for the next
// step and waking the body.
func (b *Body) ApplyForce(force, point lin.Vec2) {
	if b.kind != DynamicBody {
		return
	}
	if !b.awake {
		b.SetAwake(true)
	}
	b.force = b.force.Add(force)
	b.torque += lin.Cross2(point.Sub(b.sweep.C), force)
}

// ApplyForceToCenter applies a force through the center of mass, avoiding
// torque.
func (b *Body) ApplyForceToCenter(force lin.Vec2) {
	if b.kind != DynamicBody {
		return
	}
	if !b.awake {
		b.SetAwake(true)
	}
	b.force = b.force.Add(force)
}

// ApplyTorque applies a torque, waking the body.
func (b *Body) ApplyTorque(torque float64) {
	if b.kind != DynamicBody {
		return
	}
	if !b.awake {
		b.SetAwake(true)
	}
	b.torque += torque
}

// ApplyLinearImpulse applies an instantaneous impulse at a world point.
func (b *Body) ApplyLinearImpulse(impulse, point lin.Vec2) {
	if b.kind != DynamicBody {
		return
	}
	if !b.awake {
		b.SetAwake(true)
	}
	b.linearVelocity = b.linearVelocity.Add(lin.MulSV(b.invMass, impulse))
	b.angularVelocity += b.invI * lin.Cross2(point.Sub(b.sweep.C), impulse)
}

// IsAwake reports whether the body is currently simulated.
func (b *Body) IsAwake() bool { return b.awake }

// IsEnabled reports whether the body participates in simulation at all.
func (b *Body) IsEnabled() bool { return b.enabled }

// SetEnabled toggles whether the body (and its fixtures' proxies) takes
// part in the broad/narrow phase. Structural, so it is rejected while the
// world is locked (§5).
func (b *Body) SetEnabled(flag bool) error {
	if b.world.locked {
		return ErrLocked
	}
	if flag == b.enabled {
		return nil
	}
	b.enabled = flag
	if flag {
		for _, f := range b.fixtures {
			b.world.touchFixtureProxies(f)
		}
	} else {
		for _, f := range b.fixtures {
			b.world.destroyFixtureProxies(f)
		}
		b.destroyIncidentContacts()
	}
	return nil
}

// SetAwake sets the awake flag. Waking a sleeping body resets its still
// timer; putting a body to sleep zeroes its velocities.
func (b *Body) SetAwake(flag bool) {
	if !b.speedable() {
		return
	}
	if flag {
		b.awake = true
		b.underActiveTime = 0
	} else {
		b.awake = false
		b.underActiveTime = 0
		b.linearVelocity = lin.Zero2
		b.angularVelocity = 0
		b.force = lin.Zero2
		b.torque = 0
	}
}

// SetFixedRotation locks or unlocks rotation, zeroing inverse inertia when
// locked. Recomputes mass data.
func (b *Body) SetFixedRotation(flag bool) {
	if b.fixedRotation == flag {
		return
	}
	b.fixedRotation = flag
	b.angularVelocity = 0
	b.resetMassData()
}

// SetImpenetrable marks the body as always subject to continuous collision
// (the "bullet" flag of §4.8's TOI pass).
func (b *Body) SetImpenetrable(flag bool) { b.impenetrable = flag }

// IsImpenetrable reports the bullet flag.
func (b *Body) IsImpenetrable() bool { return b.impenetrable }

// speedable reports whether the body type can ever carry non-zero velocity
// (§3 invariant: only kinematic/dynamic bodies can be awake).
func (b *Body) speedable() bool { return b.kind != StaticBody }

// accelerable reports whether the body responds to forces (§3 invariant:
// only dynamic bodies).
func (b *Body) accelerable() bool { return b.kind == DynamicBody }

// CreateFixture attaches shape to the body with the given fixture
// definition and recomputes mass data. Rejected with LockedError while the
// world is stepping.
func (b *Body) CreateFixture(def FixtureDef) (*Fixture, error) {
	if b.world.locked {
		return nil, ErrLocked
	}
	if def.Shape == nil {
		return nil, &InvalidArgumentError{Msg: "fixture requires a shape"}
	}
	f := newFixture(b, def)
	b.fixtures = append(b.fixtures, f)
	if b.enabled {
		b.world.createFixtureProxies(f)
	}
	if f.density > 0 {
		b.resetMassData()
	}
	b.world.newFixtures = true
	return f, nil
}

// DestroyFixture removes a fixture from the body, its proxies and its
// incident contacts.
func (b *Body) DestroyFixture(f *Fixture) error {
	if b.world.locked {
		return ErrLocked
	}
	for i, g := range b.fixtures {
		if g == f {
			b.fixtures = append(b.fixtures[:i], b.fixtures[i+1:]...)
			break
		}
	}
	b.world.destroyContactsForFixture(f)
	b.world.destroyFixtureProxies(f)
	b.resetMassData()
	return nil
}

// resetMassData recomputes invMass, invI and localCenter from the body's
// fixtures' shapes and densities. Static and kinematic bodies always carry
// zero inverse mass/inertia (§3 invariant).
func (b *Body) resetMassData() {
	b.massDataDirty = false
	b.invMass = 0
	b.invI = 0
	b.localCenter = lin.Zero2

	if b.kind != DynamicBody {
		b.sweep = lin.NewSweep(lin.Zero2, b.xf)
		return
	}

	var mass, i float64
	center := lin.Zero2
	for _, f := range b.fixtures {
		if f.density == 0 {
			continue
		}
		md := f.shape.MassData(f.density)
		mass += md.Mass
		center = center.Add(lin.MulSV(md.Mass, md.Center))
		i += md.I
	}

	if mass > 0 {
		b.invMass = 1 / mass
		center = lin.MulSV(b.invMass, center)
	} else {
		// bodies with no density still get unit mass, so a degenerate
		// fixture list stays simulable instead of producing infinite mass.
		b.invMass = 1
	}

	if i > 0 && !b.fixedRotation {
		i -= mass * center.Dot(center)
		b.invI = 1 / i
	}

	oldCenter := b.sweep.C
	b.localCenter = center
	b.sweep = lin.NewSweep(center, b.xf)
	b.sweep.C0 = b.sweep.C

	// keep velocity consistent with the shifted center of mass.
	delta := b.sweep.C.Sub(oldCenter)
	b.linearVelocity = b.linearVelocity.Add(lin.CrossSV(b.angularVelocity, delta))
}

// synchronizeTransform recomputes xf from the sweep at fraction 1, called
// after the solver writes back sweep.C/A at the end of a step.
func (b *Body) synchronizeTransform() {
	b.xf.Q = b.sweep.A
	b.xf.P = b.sweep.C.Sub(b.sweep.A.Apply(b.localCenter))
}

// advance moves the body's sweep (and xf) to fraction alpha, used by the
// TOI pass to park a body at its time of impact (§4.8 step 4c).
func (b *Body) advance(alpha float64) {
	b.sweep.Advance(alpha)
	b.sweep.C = b.sweep.C0
	b.sweep.A = b.sweep.A0
	b.synchronizeTransform()
}

// destroyIncidentContacts removes every contact touching this body, used
// when disabling it structurally.
func (b *Body) destroyIncidentContacts() {
	edges := append([]*contactEdge(nil), b.contacts...)
	for _, e := range edges {
		b.world.destroyContact(e.contact)
	}
}

// clampAngularVelocity guards against solver instability from very fast
// spin.
func clampAngularVelocity(w, dt float64) float64 {
	if math.Abs(w*dt) > lin.HalfPi {
		return math.Copysign(lin.HalfPi/dt, w)
	}
	return w
}
