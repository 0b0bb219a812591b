// Copyright © 2013-2014 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "testing"

func TestMat22MulV(t *testing.T) {
	m := NewMat22S(2, 0, 0, 3)
	got := m.MulV(Vec2{5, 7})
	if !Aeq(got[0], 10) || !Aeq(got[1], 21) {
		t.Errorf("MulV got %v", got)
	}
}

func TestMat22Inverse(t *testing.T) {
	m := NewMat22S(4, 7, 2, 6)
	inv := m.Inverse()
	id := NewMat22(m.MulV(inv.Col1), m.MulV(inv.Col2))
	if !Aeq(id.Col1[0], 1) || !Aeq(id.Col1[1], 0) || !Aeq(id.Col2[0], 0) || !Aeq(id.Col2[1], 1) {
		t.Errorf("Inverse did not invert: %v", id)
	}
}

func TestMat22Solve(t *testing.T) {
	m := NewMat22S(3, 1, 1, 2)
	x := Vec2{2, 3}
	b := m.MulV(x)
	got := m.Solve(b)
	if !Aeq(got[0], x[0]) || !Aeq(got[1], x[1]) {
		t.Errorf("Solve got %v want %v", got, x)
	}
}

func TestMat22SingularInverse(t *testing.T) {
	m := NewMat22S(1, 2, 2, 4) // singular: det == 0
	inv := m.Inverse()
	if inv.Col1[0] != 0 || inv.Col1[1] != 0 || inv.Col2[0] != 0 || inv.Col2[1] != 0 {
		t.Errorf("expected zero matrix for singular inverse, got %v", inv)
	}
}
