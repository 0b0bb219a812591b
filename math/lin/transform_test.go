// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "testing"

func TestTransformApplyRoundTrip(t *testing.T) {
	xf := NewT(Vec2{3, -1}, 0.4)
	v := Vec2{2, 5}
	got := xf.ApplyT(xf.Apply(v))
	if !Aeq(got[0], v[0]) || !Aeq(got[1], v[1]) {
		t.Errorf("round trip got %v want %v", got, v)
	}
}

func TestMulMulT(t *testing.T) {
	a := NewT(Vec2{1, 2}, 0.3)
	b := NewT(Vec2{-4, 5}, 1.1)
	composed := Mul(a, b)
	back := MulT(a, composed)
	if !Aeq(back.P[0], b.P[0]) || !Aeq(back.P[1], b.P[1]) {
		t.Errorf("MulT(Mul(a,b)) position mismatch: got %v want %v", back.P, b.P)
	}
	if !Aeq(back.Q.Angle(), b.Q.Angle()) {
		t.Errorf("MulT(Mul(a,b)) angle mismatch: got %f want %f", back.Q.Angle(), b.Q.Angle())
	}
}

func TestSweepGetTransformEndpoints(t *testing.T) {
	xf0 := NewT(Vec2{0, 0}, 0)
	s := NewSweep(Zero2, xf0)
	s.C = Vec2{10, 0}
	s.A = NewRot(HalfPi)

	start := s.GetTransform(0)
	if !Aeq(start.P[0], 0) || !Aeq(start.P[1], 0) {
		t.Errorf("GetTransform(0) got %v", start.P)
	}
	end := s.GetTransform(1)
	if !Aeq(end.P[0], 10) || !Aeq(end.P[1], 0) {
		t.Errorf("GetTransform(1) got %v", end.P)
	}
}

func TestSweepAdvance(t *testing.T) {
	xf0 := NewT(Vec2{0, 0}, 0)
	s := NewSweep(Zero2, xf0)
	s.C = Vec2{10, 0}
	s.Advance(0.5)
	if !Aeq(s.Alpha0, 0.5) {
		t.Errorf("Advance did not set Alpha0: %f", s.Alpha0)
	}
	if !Aeq(s.C0[0], 5) {
		t.Errorf("Advance did not move C0: %v", s.C0)
	}
	// the endpoint transform should be unaffected by Advance.
	end := s.GetTransform(1)
	if !Aeq(end.P[0], 10) {
		t.Errorf("Advance changed endpoint: %v", end.P)
	}
}
