// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pellucid/phys2d/math/lin"
)

func newTouchingContact(t *testing.T, bodyA, bodyB *Body) *Contact {
	t.Helper()
	fA, err := bodyA.CreateFixture(FixtureDef{Shape: NewDisk(lin.Zero2, 1), Density: 1})
	assert.NoError(t, err)
	fB, err := bodyB.CreateFixture(FixtureDef{Shape: NewDisk(lin.Zero2, 1), Density: 1})
	assert.NoError(t, err)

	c := newContact(fA, 0, fB, 0)
	c.Update(NullListener{})
	assert.True(t, c.IsTouching(), "fixtures must overlap for the contact to join an island")

	bodyA.contacts = append(bodyA.contacts, c.edgeA)
	bodyB.contacts = append(bodyB.contacts, c.edgeB)
	return c
}

func TestBuildIslandFloodFillsThroughTouchingContacts(t *testing.T) {
	w := NewWorld(lin.Zero2)
	a, _ := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{0, 0}, 0))
	b, _ := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{1.5, 0}, 0))
	newTouchingContact(t, a, b)

	islandedJoints := map[Joint]bool{}
	island := buildIsland(a, islandedJoints)

	assert.Len(t, island.bodies, 2)
	assert.Len(t, island.contacts, 1)
	assert.Contains(t, island.bodies, a)
	assert.Contains(t, island.bodies, b)
}

func TestBuildIslandStaticBodyDoesNotPropagate(t *testing.T) {
	w := NewWorld(lin.Zero2)
	ground, _ := w.CreateBody(StaticBody, lin.NewT(lin.Vec2{0, 0}, 0))
	restingA, _ := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{1.5, 0}, 0))
	restingB, _ := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{-1.5, 0}, 0))
	newTouchingContact(t, ground, restingA)
	newTouchingContact(t, ground, restingB)

	islandedJoints := map[Joint]bool{}
	island := buildIsland(restingA, islandedJoints)

	assert.Len(t, island.bodies, 2, "a static body joins the island but does not flood through its other contacts")
	assert.Contains(t, island.bodies, restingA)
	assert.Contains(t, island.bodies, ground)
	assert.NotContains(t, island.bodies, restingB)
}

func TestBuildIslandExcludesDisabledBody(t *testing.T) {
	w := NewWorld(lin.Zero2)
	a, _ := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{0, 0}, 0))
	b, _ := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{1.5, 0}, 0))
	newTouchingContact(t, a, b)
	b.enabled = false

	islandedJoints := map[Joint]bool{}
	island := buildIsland(a, islandedJoints)

	assert.Len(t, island.bodies, 1)
	assert.Len(t, island.contacts, 0)
}

func TestClearIslandFlagsResetsBodiesContactsAndJoints(t *testing.T) {
	w := NewWorld(lin.Zero2)
	a, _ := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{0, 0}, 0))
	b, _ := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{1.5, 0}, 0))
	c := newTouchingContact(t, a, b)

	islandedJoints := map[Joint]bool{}
	buildIsland(a, islandedJoints)
	assert.True(t, a.islanded)
	assert.True(t, c.islanded)

	clearIslandFlags(w.bodies, []*Contact{c}, islandedJoints)

	assert.False(t, a.islanded)
	assert.False(t, b.islanded)
	assert.False(t, c.islanded)
	assert.Empty(t, islandedJoints)
}

func TestBuildMiniIslandPullsInNeighborThroughTouchingContact(t *testing.T) {
	w := NewWorld(lin.Zero2)
	a, _ := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{0, 0}, 0))
	b, _ := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{1.5, 0}, 0))
	bystander, _ := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{3, 0}, 0))
	newTouchingContact(t, a, b)
	newTouchingContact(t, b, bystander)

	island := buildMiniIsland(a, b)

	assert.Contains(t, island.bodies, a)
	assert.Contains(t, island.bodies, b)
	assert.Contains(t, island.bodies, bystander, "a body dragged in via a touching contact with one of the TOI pair must join the mini island")
}
