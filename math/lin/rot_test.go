// Copyright © 2013-2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import (
	"math"
	"testing"
)

func TestRotApply(t *testing.T) {
	r := NewRot(HalfPi)
	got := r.Apply(Vec2{1, 0})
	if !Aeq(got[0], 0) || !Aeq(got[1], 1) {
		t.Errorf("Apply got %v", got)
	}
}

func TestRotApplyT(t *testing.T) {
	r := NewRot(HalfPi)
	v := Vec2{3, -2}
	got := r.ApplyT(r.Apply(v))
	if !Aeq(got[0], v[0]) || !Aeq(got[1], v[1]) {
		t.Errorf("ApplyT round trip got %v want %v", got, v)
	}
}

func TestRotMulInverse(t *testing.T) {
	r := NewRot(0.7)
	id := r.Mul(r.Inverse())
	if !Aeq(id.S, 0) || !Aeq(id.C, 1) {
		t.Errorf("Mul(Inverse) got %v want identity", id)
	}
}

func TestRotAngle(t *testing.T) {
	for _, a := range []float64{0, 0.3, -1.2, 2.9} {
		r := NewRot(a)
		if !Aeq(r.Angle(), a) {
			t.Errorf("Angle got %f want %f", r.Angle(), a)
		}
	}
}

func TestNLerpHalfway(t *testing.T) {
	a, b := NewRot(0), NewRot(HalfPi)
	mid := NLerp(a, b, 0.5)
	if !Aeq(mid.Angle(), math.Atan2(a.S+b.S, a.C+b.C)) {
		t.Errorf("NLerp angle mismatch: %v", mid)
	}
}

func TestRelativeAngle(t *testing.T) {
	a, b := NewRot(0.2), NewRot(1.0)
	d := RelativeAngle(a, b)
	if !Aeq(d, 0.8) {
		t.Errorf("RelativeAngle got %f want 0.8", d)
	}
}
