// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloat32Arithmetic(t *testing.T) {
	a, b := Float32(3), Float32(4)
	assert.Equal(t, Float32(7), a.Add(b))
	assert.Equal(t, Float32(-1), a.Sub(b))
	assert.Equal(t, Float32(12), a.Mul(b))
	assert.Equal(t, Float32(5), a.Mul(a).Add(b.Mul(b)).Sqrt())
}

func TestFixedArithmeticRoundTrips(t *testing.T) {
	a := NewFixed(1.5)
	b := NewFixed(2.25)
	assert.InDelta(t, 3.75, a.Add(b).Float64(), 1e-4)
	assert.InDelta(t, -0.75, a.Sub(b).Float64(), 1e-4)
	assert.InDelta(t, 3.375, a.Mul(b).Float64(), 1e-3)
	assert.InDelta(t, 1.5/2.25, a.Div(b).Float64(), 1e-3)
}

// TestFixedDeterminism replays the same Add/Sub/Mul/Div chain on Fixed
// twice from the same float64 inputs and checks the raw fixed-point
// result is bit-exact both times -- the property float64 arithmetic can't
// promise across platforms, which is the reason this type exists (§9).
func TestFixedDeterminism(t *testing.T) {
	chain := func() Fixed {
		a := NewFixed(1.0 / 3.0)
		b := NewFixed(7.0)
		c := a.Mul(b).Sub(NewFixed(0.5)).Div(NewFixed(2.0)).Add(a)
		return c
	}

	first := chain()
	second := chain()
	assert.Equal(t, first.Raw(), second.Raw())

	var runs []int64
	for i := 0; i < 5; i++ {
		runs = append(runs, chain().Raw())
	}
	for _, r := range runs {
		assert.Equal(t, first.Raw(), r)
	}
}

func TestFixedFracBitsConfigurable(t *testing.T) {
	defer SetFixedFracBits(defaultFracBits)

	SetFixedFracBits(8)
	coarse := NewFixed(1.5)
	SetFixedFracBits(24)
	fine := NewFixed(1.5)

	assert.InDelta(t, 1.5, coarse.Float64(), 1.0/256)
	assert.InDelta(t, 1.5, fine.Float64(), 1.0/(1<<20))
}
