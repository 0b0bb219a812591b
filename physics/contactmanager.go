// Copyright © 2013-2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

// fixtureProxy is the broad-phase proxy user-data for one fixture child
// shape (§3, §4.2 supplement). The contact manager resolves a broad-phase
// pair back to the two fixtures (and which child shape of each) through
// this rather than reaching into Tree.UserData's any directly.
type fixtureProxy struct {
	fixture    *Fixture
	childIndex int
}

// ContactManager owns the broad phase and the world's full contact list,
// implementing §4.6's per-step collide pass: discover new overlapping
// pairs, drop contacts whose fixtures stopped overlapping or whose filter
// now rejects them, and run Update on everything left (§9).
type ContactManager struct {
	broadPhase *BroadPhase
	contacts   []*Contact
	listener   Listener
	filter     ContactFilter
}

func newContactManager() *ContactManager {
	return &ContactManager{broadPhase: NewBroadPhase(), listener: NullListener{}}
}

// addPair is BroadPhase.UpdatePairs' callback. It rejects same-body pairs,
// pairs already carrying a contact, joint-connected pairs with collision
// disabled, and filter-rejected pairs, then creates a Contact and links it
// into both bodies' incident lists (§4.6 step 1, §9).
func (cm *ContactManager) addPair(dataA, dataB any) {
	pa, pb := dataA.(*fixtureProxy), dataB.(*fixtureProxy)
	fA, fB := pa.fixture, pb.fixture
	bodyA, bodyB := fA.body, fB.body
	if bodyA == bodyB {
		return
	}

	for _, e := range bodyA.contacts {
		if e.other != bodyB {
			continue
		}
		c := e.contact
		sameOrder := c.fixtureA == fA && c.indexA == pa.childIndex && c.fixtureB == fB && c.indexB == pb.childIndex
		swappedOrder := c.fixtureA == fB && c.indexA == pb.childIndex && c.fixtureB == fA && c.indexB == pa.childIndex
		if sameOrder || swappedOrder {
			return
		}
	}

	for _, e := range bodyA.joints {
		if e.other == bodyB && !e.joint.CollideConnected() {
			return
		}
	}

	if !fA.filter.shouldCollide(fB.filter) {
		return
	}
	if cm.filter != nil && !cm.filter.ShouldCollide(fA, fB) {
		return
	}

	c := newContact(fA, pa.childIndex, fB, pb.childIndex)
	cm.contacts = append(cm.contacts, c)
	bodyA.contacts = append(bodyA.contacts, c.edgeA)
	bodyB.contacts = append(bodyB.contacts, c.edgeB)
}

// FindNewContacts runs the broad phase's pair pass, creating a Contact for
// every newly overlapping fixture pair that passes the filter checks.
func (cm *ContactManager) FindNewContacts() {
	cm.broadPhase.UpdatePairs(cm.addPair)
}

// Collide runs §4.6's per-contact update: a contact whose fixtures no
// longer overlap at the broad-phase level, or whose filter state changed
// and now rejects the pair, is destroyed; every other enabled contact with
// at least one awake body gets a fresh narrow-phase Update.
func (cm *ContactManager) Collide() {
	cm.broadPhase.UpdatePairs(cm.addPair)

	i := 0
	for i < len(cm.contacts) {
		c := cm.contacts[i]
		fA, fB := c.fixtureA, c.fixtureB

		if c.flags&contactFilterDirty != 0 {
			c.flags &^= contactFilterDirty
			if !cm.shouldCollide(fA, fB) {
				cm.destroyAt(i)
				continue
			}
		}

		proxyA := fA.proxies[c.indexA]
		proxyB := fB.proxies[c.indexB]
		if !cm.broadPhase.TestOverlap(proxyA, proxyB) {
			cm.destroyAt(i)
			continue
		}

		if c.IsEnabled() && (fA.body.IsAwake() || fB.body.IsAwake()) {
			c.Update(cm.listener)
		}
		i++
	}
}

func (cm *ContactManager) shouldCollide(fA, fB *Fixture) bool {
	if !fA.filter.shouldCollide(fB.filter) {
		return false
	}
	if cm.filter != nil {
		return cm.filter.ShouldCollide(fA, fB)
	}
	return true
}

// destroyAt destroys the contact at index i of cm.contacts, firing
// EndContact if it was touching, and removes it from both bodies'
// incident lists and cm.contacts itself.
func (cm *ContactManager) destroyAt(i int) {
	cm.destroy(cm.contacts[i])
	last := len(cm.contacts) - 1
	cm.contacts[i] = cm.contacts[last]
	cm.contacts = cm.contacts[:last]
}

// destroy tears down c regardless of its position in cm.contacts; callers
// iterating the slice should use destroyAt instead to keep the index valid.
func (cm *ContactManager) destroy(c *Contact) {
	if c.IsTouching() && cm.listener != nil && !c.isSensor() {
		cm.listener.EndContact(c)
	}
	removeContactEdge(&c.fixtureA.body.contacts, c)
	removeContactEdge(&c.fixtureB.body.contacts, c)
}

func removeContactEdge(edges *[]*contactEdge, c *Contact) {
	s := *edges
	for i, e := range s {
		if e.contact == c {
			s[i] = s[len(s)-1]
			*edges = s[:len(s)-1]
			return
		}
	}
}

// destroyContact removes c wherever it sits in cm.contacts. Used when a
// body is disabled or destroyed structurally, outside the Collide pass.
func (cm *ContactManager) destroyContact(c *Contact) {
	for i, x := range cm.contacts {
		if x == c {
			cm.destroyAt(i)
			return
		}
	}
}

// destroyContactsFor removes every contact incident to fixture f (used when
// f's body is disabled or f itself is destroyed, §4.6 supplement).
func (cm *ContactManager) destroyContactsFor(f *Fixture) {
	i := 0
	for i < len(cm.contacts) {
		c := cm.contacts[i]
		if c.fixtureA == f || c.fixtureB == f {
			cm.destroyAt(i)
			continue
		}
		i++
	}
}
