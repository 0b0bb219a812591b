// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pellucid/phys2d/math/lin"
)

func TestWorldStepFiresPostSolveForTouchingContact(t *testing.T) {
	w := NewWorld(lin.Vec2{0, -10})
	listener := &recordingListener{}
	assert.NoError(t, w.SetListener(listener))

	ground, err := w.CreateBody(StaticBody, lin.NewT(lin.Vec2{0, 0}, 0))
	assert.NoError(t, err)
	_, err = ground.CreateFixture(FixtureDef{Shape: NewBox(10, 0.5), Density: 0})
	assert.NoError(t, err)

	disk, err := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{0, 1.0}, 0))
	assert.NoError(t, err)
	_, err = disk.CreateFixture(FixtureDef{Shape: NewDisk(lin.Zero2, 0.5), Density: 1})
	assert.NoError(t, err)

	conf := DefaultStepConf()
	for i := 0; i < 30; i++ {
		w.Step(conf)
	}

	assert.Greater(t, listener.postSolves, 0, "a touching, non-sensor contact must drive a PostSolve callback after every velocity solve (§5 ordering guarantee)")
	assert.Greater(t, listener.begins, 0)
}

func TestWorldFallingDiskSettlesOnGround(t *testing.T) {
	w := NewWorld(lin.Vec2{0, -10})
	ground, err := w.CreateBody(StaticBody, lin.NewT(lin.Vec2{0, 0}, 0))
	assert.NoError(t, err)
	_, err = ground.CreateFixture(FixtureDef{Shape: NewBox(10, 0.5), Density: 0})
	assert.NoError(t, err)

	disk, err := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{0, 5}, 0))
	assert.NoError(t, err)
	_, err = disk.CreateFixture(FixtureDef{Shape: NewDisk(lin.Zero2, 0.5), Density: 1})
	assert.NoError(t, err)

	conf := DefaultStepConf()
	for i := 0; i < 240; i++ {
		w.Step(conf)
	}

	assert.Greater(t, disk.Position().Y(), 0.5-0.05, "the disk must rest on top of the ground, not sink through it")
	assert.Less(t, disk.Position().Y(), 1.5, "the disk must have fallen and come to rest near the ground, not hang at its drop height")
}

func TestWorldBulletDoesNotTunnelThroughThinWall(t *testing.T) {
	w := NewWorld(lin.Zero2)
	wall, err := w.CreateBody(StaticBody, lin.NewT(lin.Vec2{0, 0}, 0))
	assert.NoError(t, err)
	_, err = wall.CreateFixture(FixtureDef{Shape: NewBox(0.05, 5), Density: 0})
	assert.NoError(t, err)

	bullet, err := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{-10, 0}, 0))
	assert.NoError(t, err)
	_, err = bullet.CreateFixture(FixtureDef{Shape: NewDisk(lin.Zero2, 0.1), Density: 1})
	assert.NoError(t, err)
	bullet.SetImpenetrable(true)
	bullet.SetLinearVelocity(lin.Vec2{4000, 0})

	conf := DefaultStepConf()
	w.Step(conf)

	assert.Less(t, bullet.Position().X(), 0.0, "a fast impenetrable body must be stopped by TOI before it crosses a thin wall in one step")
}

func TestWorldStackedBodiesSleepTogetherAsOneIsland(t *testing.T) {
	w := NewWorld(lin.Vec2{0, -10})
	ground, err := w.CreateBody(StaticBody, lin.NewT(lin.Vec2{0, 0}, 0))
	assert.NoError(t, err)
	_, err = ground.CreateFixture(FixtureDef{Shape: NewBox(10, 0.5), Density: 0})
	assert.NoError(t, err)

	lower, err := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{0, 1.5}, 0))
	assert.NoError(t, err)
	_, err = lower.CreateFixture(FixtureDef{Shape: NewBox(0.5, 0.5), Density: 1})
	assert.NoError(t, err)

	upper, err := w.CreateBody(DynamicBody, lin.NewT(lin.Vec2{0, 2.5}, 0))
	assert.NoError(t, err)
	_, err = upper.CreateFixture(FixtureDef{Shape: NewBox(0.5, 0.5), Density: 1})
	assert.NoError(t, err)

	conf := DefaultStepConf()
	for i := 0; i < 600; i++ {
		w.Step(conf)
	}

	assert.False(t, lower.IsAwake(), "a settled stack must fall asleep")
	assert.False(t, upper.IsAwake(), "the whole island sleeps together, not just the body touching the ground")
}

func TestWorldRayCastFindsNearestHitAcrossMultipleBodies(t *testing.T) {
	w := NewWorld(lin.Zero2)
	near, err := w.CreateBody(StaticBody, lin.NewT(lin.Vec2{5, 0}, 0))
	assert.NoError(t, err)
	_, err = near.CreateFixture(FixtureDef{Shape: NewDisk(lin.Zero2, 1), Density: 0})
	assert.NoError(t, err)

	far, err := w.CreateBody(StaticBody, lin.NewT(lin.Vec2{10, 0}, 0))
	assert.NoError(t, err)
	_, err = far.CreateFixture(FixtureDef{Shape: NewDisk(lin.Zero2, 1), Density: 0})
	assert.NoError(t, err)

	hitFraction := map[*Body]float64{}
	w.RayCast(lin.Vec2{-5, 0}, lin.Vec2{20, 0}, func(f *Fixture, point, normal Vec2, fraction float64) float64 {
		hitFraction[f.Body()] = fraction
		return 1
	})

	assert.Len(t, hitFraction, 2)
	assert.Less(t, hitFraction[near], hitFraction[far], "the nearer fixture along the ray must have the smaller hit fraction")
}

func TestWorldShiftOriginPreservesRelativeGeometry(t *testing.T) {
	w := NewWorld(lin.Zero2)
	a, err := w.CreateBody(StaticBody, lin.NewT(lin.Vec2{0, 0}, 0))
	assert.NoError(t, err)
	_, err = a.CreateFixture(FixtureDef{Shape: NewDisk(lin.Zero2, 1), Density: 0})
	assert.NoError(t, err)

	b, err := w.CreateBody(StaticBody, lin.NewT(lin.Vec2{1.5, 0}, 0))
	assert.NoError(t, err)
	_, err = b.CreateFixture(FixtureDef{Shape: NewDisk(lin.Zero2, 1), Density: 0})
	assert.NoError(t, err)

	before := a.Position().Sub(b.Position())
	w.ShiftOrigin(lin.Vec2{1000, 1000})
	after := a.Position().Sub(b.Position())

	assert.InDelta(t, before.X(), after.X(), 1e-9, "shifting the origin must not change bodies' positions relative to one another")
	assert.InDelta(t, before.Y(), after.Y(), 1e-9)
	assert.InDelta(t, -1000, a.Position().X(), 1e-9)
}
