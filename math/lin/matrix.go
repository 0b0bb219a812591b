// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// Mat22 is a 2x2 matrix. The 3-D engine kept 3x3/4x4 matrices here for
// rendering transforms; the only matrix a 2-D physics core needs is the
// 2x2 effective-mass block the contact solver builds per manifold (the K
// matrix of 4.7), so that's what this file carries now.
type Mat22 struct {
	Col1, Col2 Vec2
}

// NewMat22 builds a matrix from its two columns.
func NewMat22(col1, col2 Vec2) Mat22 { return Mat22{Col1: col1, Col2: col2} }

// NewMat22S builds a matrix from its four scalar entries, row-major.
func NewMat22S(a11, a12, a21, a22 float64) Mat22 {
	return Mat22{Col1: Vec2{a11, a21}, Col2: Vec2{a12, a22}}
}

// MulV multiplies the matrix by a column vector.
func (m Mat22) MulV(v Vec2) Vec2 {
	return Vec2{m.Col1[0]*v[0] + m.Col2[0]*v[1], m.Col1[1]*v[0] + m.Col2[1]*v[1]}
}

// Add returns the sum of two matrices.
func (m Mat22) Add(o Mat22) Mat22 {
	return Mat22{Col1: m.Col1.Add(o.Col1), Col2: m.Col2.Add(o.Col2)}
}

// Determinant returns the matrix's determinant.
func (m Mat22) Determinant() float64 {
	return m.Col1[0]*m.Col2[1] - m.Col2[0]*m.Col1[1]
}

// Inverse returns the matrix's inverse. If the matrix is singular the
// zero matrix is returned -- callers (the 2-point block solver) fall
// back to the single-point solve path in that case rather than divide
// by zero, matching b2ContactSolver's handling of a degenerate K.
func (m Mat22) Inverse() Mat22 {
	det := m.Determinant()
	if det != 0 {
		det = 1.0 / det
	}
	return Mat22{
		Col1: Vec2{det * m.Col2[1], -det * m.Col1[1]},
		Col2: Vec2{-det * m.Col2[0], det * m.Col1[0]},
	}
}

// Solve returns x such that m*x == b, using the closed-form 2x2 inverse.
func (m Mat22) Solve(b Vec2) Vec2 {
	a11, a12, a21, a22 := m.Col1[0], m.Col2[0], m.Col1[1], m.Col2[1]
	det := a11*a22 - a12*a21
	if det != 0 {
		det = 1.0 / det
	}
	return Vec2{det * (a22*b[0] - a12*b[1]), det * (a11*b[1] - a21*b[0])}
}
