// SPDX-FileCopyrightText : © 2014-2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package lin

import "testing"

func TestCross2(t *testing.T) {
	if c := Cross2(Vec2{1, 0}, Vec2{0, 1}); !Aeq(c, 1) {
		t.Errorf("Cross2 got %f want 1", c)
	}
	if c := Cross2(Vec2{0, 1}, Vec2{1, 0}); !Aeq(c, -1) {
		t.Errorf("Cross2 got %f want -1", c)
	}
}

func TestCrossVS(t *testing.T) {
	got := CrossVS(Vec2{1, 0}, 2)
	if !Aeq(got[0], 0) || !Aeq(got[1], -2) {
		t.Errorf("CrossVS got %v", got)
	}
}

func TestCrossSV(t *testing.T) {
	got := CrossSV(2, Vec2{1, 0})
	if !Aeq(got[0], 0) || !Aeq(got[1], 2) {
		t.Errorf("CrossSV got %v", got)
	}
}

func TestPerp(t *testing.T) {
	got := Perp(Vec2{1, 0})
	if !Aeq(got[0], 0) || !Aeq(got[1], 1) {
		t.Errorf("Perp got %v", got)
	}
}

func TestMinMaxV(t *testing.T) {
	a, b := Vec2{1, 4}, Vec2{3, 2}
	if got := MinV(a, b); got != (Vec2{1, 2}) {
		t.Errorf("MinV got %v", got)
	}
	if got := MaxV(a, b); got != (Vec2{3, 4}) {
		t.Errorf("MaxV got %v", got)
	}
}

func TestClampV(t *testing.T) {
	got := ClampV(Vec2{-5, 99}, Vec2{0, 0}, Vec2{10, 10})
	if got != (Vec2{0, 10}) {
		t.Errorf("ClampV got %v", got)
	}
}

func TestLerpV(t *testing.T) {
	got := LerpV(Vec2{0, 0}, Vec2{10, 20}, 0.5)
	if !Aeq(got[0], 5) || !Aeq(got[1], 10) {
		t.Errorf("LerpV got %v", got)
	}
}
