// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pellucid/phys2d/math/lin"
)

func TestDistanceBetweenSeparatedPolygons(t *testing.T) {
	a := NewBox(1, 1)
	b := NewBox(1, 1)

	input := DistanceInput{
		ProxyA:      a.Child(0),
		ProxyB:      b.Child(0),
		TransformA:  lin.TI,
		TransformB:  lin.NewT(lin.Vec2{5, 0}, 0),
	}
	var cache SimplexCache
	out := Distance(input, &cache, 20)

	assert.InDelta(t, 3.0, out.Distance, 1e-9, "two unit boxes 5 apart, edges 1 unit from center, should be 3 apart")
}

func TestDistanceOverlappingShapesIsZero(t *testing.T) {
	a := NewBox(1, 1)
	b := NewBox(1, 1)

	input := DistanceInput{
		ProxyA:     a.Child(0),
		ProxyB:     b.Child(0),
		TransformA: lin.TI,
		TransformB: lin.TI,
	}
	var cache SimplexCache
	out := Distance(input, &cache, 20)
	assert.InDelta(t, 0, out.Distance, 1e-9)
}

// TestDistanceWarmStartConverges checks that reusing a SimplexCache from a
// nearby prior query needs no more GJK iterations than starting cold, the
// property the solver's per-step warm start relies on (§4.3, §8).
func TestDistanceWarmStartConverges(t *testing.T) {
	a := NewBox(1, 1)
	b := NewBox(1, 1)

	coldCache := SimplexCache{}
	coldInput := DistanceInput{
		ProxyA:     a.Child(0),
		ProxyB:     b.Child(0),
		TransformA: lin.TI,
		TransformB: lin.NewT(lin.Vec2{5, 0}, 0),
	}
	coldOut := Distance(coldInput, &coldCache, 20)

	warmCache := coldCache
	warmInput := coldInput
	warmInput.TransformB = lin.NewT(lin.Vec2{5.01, 0}, 0)
	warmOut := Distance(warmInput, &warmCache, 20)

	assert.LessOrEqual(t, warmOut.Iterations, coldOut.Iterations)
}

func TestDistanceUseRadiiSubtractsRadii(t *testing.T) {
	da := NewDisk(lin.Zero2, 1)
	db := NewDisk(lin.Zero2, 1)

	input := DistanceInput{
		ProxyA:     da.Child(0),
		ProxyB:     db.Child(0),
		TransformA: lin.TI,
		TransformB: lin.NewT(lin.Vec2{5, 0}, 0),
		UseRadii:   true,
	}
	var cache SimplexCache
	out := Distance(input, &cache, 20)
	assert.InDelta(t, 3.0, out.Distance, 1e-9, "two radius-1 disks 5 apart should be 3 apart surface-to-surface")
}
