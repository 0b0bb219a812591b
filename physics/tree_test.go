// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pellucid/phys2d/math/lin"
)

func box(x, y, hx, hy float64) AABB {
	return NewAABB(lin.Vec2{x - hx, y - hy}, lin.Vec2{x + hx, y + hy})
}

func TestTreeCreateProxyFattensAndContains(t *testing.T) {
	tr := NewTree()
	tight := box(0, 0, 1, 1)
	id := tr.CreateProxy(tight, "a")

	fat := tr.FatAABB(id)
	assert.True(t, fat.Contains(tight), "fat AABB must contain the tight AABB it was built from")
	assert.Equal(t, "a", tr.UserData(id))
}

func TestTreeMoveProxySkipsWhenStillContained(t *testing.T) {
	tr := NewTree()
	id := tr.CreateProxy(box(0, 0, 1, 1), nil)
	moved := tr.MoveProxy(id, box(0.01, 0, 1, 1), lin.Vec2{0, 0})
	assert.False(t, moved, "a tiny move within the fat AABB should not report a change")
}

func TestTreeMoveProxyReportsWhenOutsideFatAABB(t *testing.T) {
	tr := NewTree()
	id := tr.CreateProxy(box(0, 0, 1, 1), nil)
	moved := tr.MoveProxy(id, box(100, 100, 1, 1), lin.Vec2{10, 10})
	assert.True(t, moved)
	assert.True(t, tr.FatAABB(id).Contains(box(100, 100, 1, 1)))
}

func TestTreeQueryFindsOverlaps(t *testing.T) {
	tr := NewTree()
	idA := tr.CreateProxy(box(0, 0, 1, 1), "a")
	idB := tr.CreateProxy(box(10, 10, 1, 1), "b")

	var hits []int
	tr.Query(box(0, 0, 2, 2), func(id int) bool {
		hits = append(hits, id)
		return true
	})
	assert.Contains(t, hits, idA)
	assert.NotContains(t, hits, idB)
}

func TestTreeValidateAfterManyInsertsAndRemoves(t *testing.T) {
	tr := NewTree()
	ids := make([]int, 0, 64)
	for i := 0; i < 64; i++ {
		x := float64(i % 8)
		y := float64(i / 8)
		ids = append(ids, tr.CreateProxy(box(x*3, y*3, 1, 1), i))
	}
	assert.True(t, tr.Validate())

	for i := 0; i < len(ids); i += 2 {
		tr.DestroyProxy(ids[i])
	}
	assert.True(t, tr.Validate(), "tree invariants must hold after interleaved removal")
}

func TestTreeRayCastReportsEveryLeafAlongSegment(t *testing.T) {
	tr := NewTree()
	near := tr.CreateProxy(box(5, 0, 1, 1), "near")
	far := tr.CreateProxy(box(10, 0, 1, 1), "far")

	var order []int
	input := TreeRayCastInput{P1: lin.Vec2{-5, 0}, P2: lin.Vec2{20, 0}, MaxFraction: 1}
	tr.RayCast(input, func(id int, p1, p2 lin.Vec2) float64 {
		order = append(order, id)
		return 1
	})
	assert.Contains(t, order, near)
	assert.Contains(t, order, far)
	_ = far
}
