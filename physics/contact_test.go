// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pellucid/phys2d/math/lin"
)

type recordingListener struct {
	begins, ends, preSolves, postSolves int
}

func (r *recordingListener) BeginContact(*Contact)             { r.begins++ }
func (r *recordingListener) EndContact(*Contact)               { r.ends++ }
func (r *recordingListener) PreSolve(*Contact, Manifold)        { r.preSolves++ }
func (r *recordingListener) PostSolve(*Contact, ContactImpulse) { r.postSolves++ }

func twoDiskFixtures(t *testing.T, xa, xb lin.Vec2) (*Fixture, *Fixture) {
	t.Helper()
	w := NewWorld(lin.Zero2)
	bodyA, err := w.CreateBody(StaticBody, lin.NewT(xa, 0))
	assert.NoError(t, err)
	bodyB, err := w.CreateBody(StaticBody, lin.NewT(xb, 0))
	assert.NoError(t, err)

	fA, err := bodyA.CreateFixture(FixtureDef{Shape: NewDisk(lin.Zero2, 1), Density: 1})
	assert.NoError(t, err)
	fB, err := bodyB.CreateFixture(FixtureDef{Shape: NewDisk(lin.Zero2, 1), Density: 1})
	assert.NoError(t, err)
	return fA, fB
}

func TestContactUpdateFiresBeginContactOnFirstTouch(t *testing.T) {
	fA, fB := twoDiskFixtures(t, lin.Vec2{0, 0}, lin.Vec2{1.5, 0})
	c := newContact(fA, 0, fB, 0)
	listener := &recordingListener{}

	c.Update(listener)

	assert.True(t, c.IsTouching())
	assert.Equal(t, 1, listener.begins)
	assert.Equal(t, 1, listener.preSolves)
	assert.Equal(t, 0, listener.ends)
}

func TestContactUpdateFiresEndContactOnSeparation(t *testing.T) {
	fA, fB := twoDiskFixtures(t, lin.Vec2{0, 0}, lin.Vec2{1.5, 0})
	c := newContact(fA, 0, fB, 0)
	listener := &recordingListener{}
	c.Update(listener)
	assert.True(t, c.IsTouching())

	fB.body.xf = lin.NewT(lin.Vec2{10, 0}, 0)
	c.Update(listener)

	assert.False(t, c.IsTouching())
	assert.Equal(t, 1, listener.begins)
	assert.Equal(t, 1, listener.ends)
}

func TestContactUpdateWarmStartsMatchingFeature(t *testing.T) {
	fA, fB := twoDiskFixtures(t, lin.Vec2{0, 0}, lin.Vec2{1.9, 0})
	c := newContact(fA, 0, fB, 0)
	listener := &recordingListener{}

	c.Update(listener)
	assert.Equal(t, 1, c.manifold.PointCount)
	c.manifold.Points[0].NormalImpulse = 3.5
	c.manifold.Points[0].TangentImpulse = 1.25

	c.Update(listener)

	assert.Equal(t, 1, c.manifold.PointCount)
	assert.Equal(t, 3.5, c.manifold.Points[0].NormalImpulse, "warm start must carry the impulse forward when the contact feature is unchanged")
	assert.Equal(t, 1.25, c.manifold.Points[0].TangentImpulse)
}

func TestContactSetEnabledDisablesSolverParticipation(t *testing.T) {
	fA, fB := twoDiskFixtures(t, lin.Vec2{0, 0}, lin.Vec2{1, 0})
	c := newContact(fA, 0, fB, 0)
	assert.True(t, c.IsEnabled())
	c.SetEnabled(false)
	assert.False(t, c.IsEnabled())
}

func TestMixFrictionAndRestitution(t *testing.T) {
	assert.InDelta(t, 0.5, mixFriction(0.25, 1.0), 1e-9)
	assert.Equal(t, 0.8, mixRestitution(0.2, 0.8))
}
