// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pellucid/phys2d/math/lin"
)

func overlappingDiskBodies(t *testing.T, w *World) (*Body, *Body) {
	t.Helper()
	a, err := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{0, 0}, 0))
	assert.NoError(t, err)
	_, err = a.CreateFixture(FixtureDef{Shape: NewDisk(lin.Zero2, 1), Density: 1})
	assert.NoError(t, err)

	b, err := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{1.5, 0}, 0))
	assert.NoError(t, err)
	_, err = b.CreateFixture(FixtureDef{Shape: NewDisk(lin.Zero2, 1), Density: 1})
	assert.NoError(t, err)
	return a, b
}

func TestContactManagerFindNewContactsCreatesOneContactPerOverlap(t *testing.T) {
	w := NewWorld(lin.Zero2)
	overlappingDiskBodies(t, w)

	w.contactManager.FindNewContacts()
	assert.Len(t, w.contactManager.contacts, 1)

	w.contactManager.FindNewContacts()
	assert.Len(t, w.contactManager.contacts, 1, "re-running the pair pass on an unchanged world must not duplicate the contact")
}

func TestContactManagerAddPairRejectsSameBodyFixtures(t *testing.T) {
	w := NewWorld(lin.Zero2)
	a, err := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{0, 0}, 0))
	assert.NoError(t, err)
	fA, err := a.CreateFixture(FixtureDef{Shape: NewDisk(lin.Vec2{-0.5, 0}, 1), Density: 1})
	assert.NoError(t, err)
	fB, err := a.CreateFixture(FixtureDef{Shape: NewDisk(lin.Vec2{0.5, 0}, 1), Density: 1})
	assert.NoError(t, err)

	proxyA := &fixtureProxy{fixture: fA, childIndex: 0}
	proxyB := &fixtureProxy{fixture: fB, childIndex: 0}
	w.contactManager.addPair(proxyA, proxyB)

	assert.Empty(t, w.contactManager.contacts, "two fixtures on the same body must never form a contact")
}

func TestContactManagerAddPairRejectsFilterMismatch(t *testing.T) {
	w := NewWorld(lin.Zero2)
	a, err := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{0, 0}, 0))
	assert.NoError(t, err)
	fA, err := a.CreateFixture(FixtureDef{
		Shape:   NewDisk(lin.Zero2, 1),
		Density: 1,
		Filter:  Filter{CategoryBits: 0x0002, MaskBits: 0x0002},
	})
	assert.NoError(t, err)

	b, err := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{1.5, 0}, 0))
	assert.NoError(t, err)
	fB, err := b.CreateFixture(FixtureDef{
		Shape:   NewDisk(lin.Zero2, 1),
		Density: 1,
		Filter:  Filter{CategoryBits: 0x0004, MaskBits: 0x0004},
	})
	assert.NoError(t, err)

	w.contactManager.addPair(&fixtureProxy{fixture: fA}, &fixtureProxy{fixture: fB})
	assert.Empty(t, w.contactManager.contacts, "disjoint category/mask bits must veto the pair before a contact is created")
}

func TestContactManagerCollideDestroysContactWhenProxiesStopOverlapping(t *testing.T) {
	w := NewWorld(lin.Zero2)
	a, b := overlappingDiskBodies(t, w)
	w.contactManager.FindNewContacts()
	assert.Len(t, w.contactManager.contacts, 1)

	w.contactManager.Collide()
	assert.True(t, w.contactManager.contacts[0].IsTouching())

	b.xf = lin.NewT(lin.Vec2{1000, 0}, 0)
	w.synchronizeFixtures()
	w.contactManager.Collide()

	assert.Empty(t, w.contactManager.contacts, "a contact whose broad-phase proxies no longer overlap must be destroyed")
	assert.Empty(t, a.contacts)
	assert.Empty(t, b.contacts)
}

func TestContactManagerCollideSkipsSleepingPairs(t *testing.T) {
	w := NewWorld(lin.Zero2)
	a, b := overlappingDiskBodies(t, w)
	w.contactManager.FindNewContacts()
	w.contactManager.Collide()
	c := w.contactManager.contacts[0]
	assert.True(t, c.IsTouching())

	a.awake = false
	b.awake = false
	oldManifold := c.manifold
	w.contactManager.Collide()

	assert.Equal(t, oldManifold, c.manifold, "Collide must not re-run narrow phase on a contact between two sleeping bodies")
}
