// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package numeric is the pluggable scalar abstraction the physics core is
// parameterized over in principle (§6/§9): the core itself is concretely
// float64, but a host that needs bit-reproducible results across
// platforms -- something float64 cannot promise -- can use Fixed instead
// of Float32 anywhere a Scalar is wanted.
package numeric

// Scalar is the arithmetic contract a deterministic numeric type must
// satisfy to stand in for float64 in the solver's inner loops.
type Scalar[T any] interface {
	Add(T) T
	Sub(T) T
	Mul(T) T
	Div(T) T
	Neg() T
	Sqrt() T
	Sin() T
	Cos() T
	Atan2(T) T
	FromFloat64(float64) T
	Float64() float64
}
