// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pellucid/phys2d/math/lin"
)

func TestCollideCirclesTouching(t *testing.T) {
	a := NewDisk(lin.Zero2, 1)
	b := NewDisk(lin.Zero2, 1)

	m := CollideShapes(a, 0, lin.TI, b, 0, lin.NewT(lin.Vec2{1.5, 0}, 0))
	assert.Equal(t, ManifoldCircles, m.Kind)
	assert.Equal(t, 1, m.PointCount)
}

func TestCollideCirclesSeparatedNoManifold(t *testing.T) {
	a := NewDisk(lin.Zero2, 1)
	b := NewDisk(lin.Zero2, 1)

	m := CollideShapes(a, 0, lin.TI, b, 0, lin.NewT(lin.Vec2{5, 0}, 0))
	assert.Equal(t, ManifoldUnset, m.Kind)
	assert.Equal(t, 0, m.PointCount)
}

func TestCollidePolygonCircleFaceRegion(t *testing.T) {
	ground := NewBox(5, 1)
	disk := NewDisk(lin.Zero2, 0.5)

	m := CollideShapes(ground, 0, lin.TI, disk, 0, lin.NewT(lin.Vec2{0, 1.2}, 0))
	assert.Equal(t, ManifoldFaceA, m.Kind)
	assert.Equal(t, 1, m.PointCount)
}

func TestCollidePolygonsStackedBoxesTwoPoints(t *testing.T) {
	lower := NewBox(1, 1)
	upper := NewBox(1, 1)

	m := CollideShapes(lower, 0, lin.TI, upper, 0, lin.NewT(lin.Vec2{0, 1.98}, 0))
	assert.NotEqual(t, ManifoldUnset, m.Kind)
	assert.Equal(t, 2, m.PointCount, "two axis-aligned boxes resting on one another clip to a 2-point manifold")
}

func TestCollideShapesIsSymmetricUnderCanonicalOrdering(t *testing.T) {
	disk := NewDisk(lin.Zero2, 0.5)
	poly := NewBox(5, 1)

	direct := CollideShapes(poly, 0, lin.TI, disk, 0, lin.NewT(lin.Vec2{0, 1.2}, 0))
	flipped := CollideShapes(disk, 0, lin.NewT(lin.Vec2{0, 1.2}, 0), poly, 0, lin.TI)

	assert.Equal(t, direct.PointCount, flipped.PointCount)
	assert.NotEqual(t, ManifoldUnset, flipped.Kind)
}
