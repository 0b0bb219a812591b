// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "testing"

func TestAeqmately(t *testing.T) {
	var f1 = 0.0
	var f2 = 0.0000001
	var f3 = -0.0001
	if !Aeq(f1, f2) || Aeq(f1, f3) {
		t.Error("Aeq")
	}
}

func TestApproimatelyZero(t *testing.T) {
	var f1 = 0.00000001
	var f2 = -0.00000001
	var f3 = -0.0001
	if !AeqZ(f1) || !AeqZ(f2) || AeqZ(f3) {
		t.Error("Aeqz")
	}
}

func TestLerp(t *testing.T) {
	if !Aeq(Lerp(10, 5, 0.5), 7.5) {
		t.Error("Lerp")
	}
}

func TestNang(t *testing.T) {
	pos450, neg450 := 7.8539816, -7.8539816
	pos90, neg90 := 1.5707963, -1.5707963
	if !Aeq(Nang(pos450), pos90) || !Aeq(Nang(neg450), neg90) {
		t.Error("Nang")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(20, -30, -15) != -15 || Clamp(20, 30, 60) != 30 || Clamp(20, 10, 50) != 20 {
		t.Error("Clamp")
	}
}

func TestRadDeg(t *testing.T) {
	if Deg(Rad(90)) != 90 {
		t.Error("Rad Deg conversion")
	}
}

func TestAbsMax3(t *testing.T) {
	if AbsMax3(1, -5, 2) != 1 {
		t.Error("AbsMax3")
	}
	if AbsMax3(-9, 2, 3) != 0 {
		t.Error("AbsMax3")
	}
}
