// Copyright © 2013-2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"log/slog"

	"github.com/pellucid/phys2d/math/lin"
)

// World owns every body, joint and contact in one simulation and drives
// Step (§3, §4.8). Two Worlds share no state and may be stepped
// concurrently on separate goroutines without synchronization (§5).
type World struct {
	bodies     []*Body
	joints     []Joint
	nextBodyID int

	contactManager *ContactManager

	gravity lin.Vec2
	locked  bool

	newFixtures bool

	listener      Listener
	contactFilter ContactFilter

	islandedJoints map[Joint]bool
}

// NewWorld returns an empty world with the given gravity vector. A world
// starts with NullListener and no contact filter.
func NewWorld(gravity lin.Vec2) *World {
	return &World{
		contactManager: newContactManager(),
		gravity:        gravity,
		listener:       NullListener{},
		islandedJoints: map[Joint]bool{},
	}
}

// SetListener installs the contact listener used for the rest of this
// world's life. Rejected while locked (§5).
func (w *World) SetListener(l Listener) error {
	if w.locked {
		return ErrLocked
	}
	if l == nil {
		l = NullListener{}
	}
	w.listener = l
	w.contactManager.listener = l
	return nil
}

// SetContactFilter installs a ContactFilter consulted in addition to each
// fixture's category/mask/group Filter (§4.6 supplement).
func (w *World) SetContactFilter(f ContactFilter) {
	w.contactFilter = f
	w.contactManager.filter = f
}

// CreateBody adds a new body of the given type at the given transform.
// Rejected while the world is locked (§5, §7).
func (w *World) CreateBody(kind BodyType, xf lin.T) (*Body, error) {
	if w.locked {
		return nil, ErrLocked
	}
	id := w.nextBodyID
	w.nextBodyID++
	b := newBody(w, id, kind, xf)
	w.bodies = append(w.bodies, b)
	return b, nil
}

// DestroyBody removes a body, its fixtures' proxies, its incident contacts
// and its incident joints. Rejected while the world is locked.
func (w *World) DestroyBody(b *Body) error {
	if w.locked {
		return ErrLocked
	}
	b.destroyIncidentContacts()

	edges := append([]*jointEdge(nil), b.joints...)
	for _, e := range edges {
		w.destroyJointEdge(e)
	}

	for _, f := range b.fixtures {
		w.destroyFixtureProxies(f)
	}

	for i, x := range w.bodies {
		if x == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	return nil
}

// CreateJoint registers j between its two bodies' incident joint lists.
// Rejected while the world is locked.
func (w *World) CreateJoint(j Joint) error {
	if w.locked {
		return ErrLocked
	}
	bodyA, bodyB := j.BodyA(), j.BodyB()
	edgeOnA := &jointEdge{other: bodyB, joint: j}
	edgeOnB := &jointEdge{other: bodyA, joint: j}
	bodyA.joints = append(bodyA.joints, edgeOnA)
	bodyB.joints = append(bodyB.joints, edgeOnB)
	w.joints = append(w.joints, j)
	bodyA.SetAwake(true)
	bodyB.SetAwake(true)
	return nil
}

// DestroyJoint removes j from both its bodies and the world. Rejected
// while the world is locked.
func (w *World) DestroyJoint(j Joint) error {
	if w.locked {
		return ErrLocked
	}
	bodyA, bodyB := j.BodyA(), j.BodyB()
	removeJointEdge(&bodyA.joints, j)
	removeJointEdge(&bodyB.joints, j)
	for i, x := range w.joints {
		if x == j {
			w.joints = append(w.joints[:i], w.joints[i+1:]...)
			break
		}
	}
	bodyA.SetAwake(true)
	bodyB.SetAwake(true)
	return nil
}

func (w *World) destroyJointEdge(e *jointEdge) {
	for _, j := range w.joints {
		if j == e.joint {
			w.DestroyJoint(j)
			return
		}
	}
}

func removeJointEdge(edges *[]*jointEdge, j Joint) {
	s := *edges
	for i, e := range s {
		if e.joint == j {
			s[i] = s[len(s)-1]
			*edges = s[:len(s)-1]
			return
		}
	}
}

// createFixtureProxies inserts one broad-phase proxy per shape child of f,
// fattened around f's tight AABB at the body's current transform (§4.1,
// §4.2 supplement).
func (w *World) createFixtureProxies(f *Fixture) {
	xf := f.body.xf
	for i := range f.proxies {
		aabb := f.shape.ComputeAABB(xf, i)
		f.proxies[i] = w.contactManager.broadPhase.CreateProxy(aabb, &fixtureProxy{fixture: f, childIndex: i})
	}
}

// destroyFixtureProxies removes every broad-phase proxy f owns.
func (w *World) destroyFixtureProxies(f *Fixture) {
	for i, id := range f.proxies {
		if id < 0 {
			continue
		}
		w.contactManager.broadPhase.DestroyProxy(id)
		f.proxies[i] = -1
	}
}

// touchFixtureProxies re-enqueues f's existing proxies for re-evaluation
// without moving them (used after a filter change, §4.6 supplement). If f
// currently has no proxies (its body was disabled), it creates them.
func (w *World) touchFixtureProxies(f *Fixture) {
	if f.proxies[0] < 0 {
		w.createFixtureProxies(f)
		return
	}
	for _, id := range f.proxies {
		w.contactManager.broadPhase.TouchProxy(id)
	}
}

// destroyContactsForFixture removes every contact incident to f.
func (w *World) destroyContactsForFixture(f *Fixture) {
	w.contactManager.destroyContactsFor(f)
}

// destroyContact removes a single contact, firing EndContact if touching.
func (w *World) destroyContact(c *Contact) {
	w.contactManager.destroyContact(c)
}

// synchronizeFixtures moves every enabled body's fixture proxies to its
// current (post-solve) transform, feeding the broad phase's move buffer
// for the next step's FindNewContacts (§4.1 supplement, §4.8 step 3h).
func (w *World) synchronizeFixtures() {
	for _, b := range w.bodies {
		if !b.enabled {
			continue
		}
		xf1 := b.sweep.GetTransform(0)
		displacement := b.xf.P.Sub(xf1.P)
		for _, f := range b.fixtures {
			for i, id := range f.proxies {
				if id < 0 {
					continue
				}
				tight := f.shape.ComputeAABB(b.xf, i)
				w.contactManager.broadPhase.MoveProxy(id, tight, displacement)
			}
		}
	}
}

// Step advances the simulation by one tick of conf.DeltaTime: find new
// pairs, run the narrow phase, solve islands, manage sleeping, then resolve
// any tunneling via TOI substeps (§4.8).
func (w *World) Step(conf StepConf) {
	w.logStep(conf)

	w.locked = true
	defer func() { w.locked = false }()

	if w.newFixtures {
		w.contactManager.FindNewContacts()
		w.newFixtures = false
	}
	w.contactManager.Collide()

	if conf.DeltaTime > 0 {
		w.solve(conf)
		if conf.DoToi {
			w.solveTOI(conf)
		}
	}

	if conf.AutoClearForces {
		w.clearForces()
	}

	w.synchronizeFixtures()
}

// solve runs §4.8 steps 3a-3h: the regular (non-TOI) island solve, plus
// sleep bookkeeping.
func (w *World) solve(conf StepConf) {
	clearIslandFlags(w.bodies, w.contactManager.contacts, w.islandedJoints)

	for _, seed := range w.bodies {
		if seed.islanded || !seed.enabled || !seed.awake || seed.kind == StaticBody {
			continue
		}
		island := buildIsland(seed, w.islandedJoints)
		solveIsland(island, conf, conf.DeltaTime, conf.VelocityIterations, conf.PositionIterations, w.gravity, w.listener)
		w.updateSleep(island, conf)
		// Release static bodies so the next island can take them in too.
		for _, b := range island.bodies {
			if b.kind == StaticBody {
				b.islanded = false
			}
		}
	}
}

// updateSleep advances each body's still-timer and puts an island to sleep
// once every non-static body in it has been still for MinStillTimeToSleep
// (§4.8 step 3i): an island sleeps as a unit, woken together by any one
// member gaining velocity, a new touching contact, or a listener call.
func (w *World) updateSleep(island *Island, conf StepConf) {
	if !conf.AllowSleep {
		return
	}
	minSleepTime := conf.MinStillTimeToSleep
	for _, b := range island.bodies {
		if b.kind == StaticBody {
			continue
		}
		if !b.allowSleep ||
			b.angularVelocity*b.angularVelocity > conf.AngularSleepTolerance*conf.AngularSleepTolerance ||
			b.linearVelocity.Dot(b.linearVelocity) > conf.LinearSleepTolerance*conf.LinearSleepTolerance {
			b.underActiveTime = 0
			minSleepTime = 0
		} else {
			b.underActiveTime += conf.DeltaTime
			if b.underActiveTime < minSleepTime {
				minSleepTime = b.underActiveTime
			}
		}
	}
	if minSleepTime >= conf.MinStillTimeToSleep {
		for _, b := range island.bodies {
			b.SetAwake(false)
		}
	}
}

// clearForces zeroes every dynamic body's accumulated force and torque,
// matching a per-step "apply once, consume once" force-accumulator model.
func (w *World) clearForces() {
	for _, b := range w.bodies {
		b.force = lin.Zero2
		b.torque = 0
	}
}

// QueryAABB invokes cb for every fixture whose broad-phase proxy overlaps
// aabb. Returning false from cb stops the query early (§6).
func (w *World) QueryAABB(aabb AABB, cb QueryCallback) {
	w.contactManager.broadPhase.Query(aabb, func(id int) bool {
		proxy := w.contactManager.broadPhase.UserData(id).(*fixtureProxy)
		return cb(proxy.fixture)
	})
}

// RayCast casts a segment from p1 to p2 through the broad phase, narrowing
// to the exact shape at each candidate leaf and invoking cb with the hit
// point, normal and fraction (§6).
func (w *World) RayCast(p1, p2 lin.Vec2, cb RayCastCallback) {
	input := TreeRayCastInput{P1: p1, P2: p2, MaxFraction: 1}
	w.contactManager.broadPhase.RayCast(input, func(id int, segP1, segP2 lin.Vec2) float64 {
		proxy := w.contactManager.broadPhase.UserData(id).(*fixtureProxy)
		f := proxy.fixture
		output, ok := f.shape.RayCast(f.body.xf, proxy.childIndex, RayCastInput{P1: segP1, P2: segP2, MaxFraction: 1})
		if !ok {
			return -1
		}
		point := lin.LerpV(segP1, segP2, output.Fraction)
		return cb(f, point, output.Normal, output.Fraction)
	})
}

// ShiftOrigin translates the whole world's coordinate origin by -delta,
// moving every body and the broad-phase tree so that simulations running
// far from the origin can periodically recenter without losing precision
// (§6 supplement).
func (w *World) ShiftOrigin(delta lin.Vec2) {
	for _, b := range w.bodies {
		b.xf.P = b.xf.P.Sub(delta)
		b.sweep.C0 = b.sweep.C0.Sub(delta)
		b.sweep.C = b.sweep.C.Sub(delta)
	}
	w.contactManager.broadPhase.ShiftOrigin(delta)
}

// logStep is a debug hook wired into Step by tests and hosts that want
// structured visibility into the solver without a full listener (§6).
func (w *World) logStep(conf StepConf) {
	logger.Debug("physics step", slog.Int("bodies", len(w.bodies)), slog.Float64("dt", conf.DeltaTime))
}
