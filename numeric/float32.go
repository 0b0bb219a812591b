// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package numeric

import "math"

// Float32 is a Scalar backed by a plain float32, trading float64's range
// and precision for half the memory footprint -- useful on hosts where
// that trade is worth it, but no more cross-platform-deterministic than
// float64 is.
type Float32 float32

func (a Float32) Add(b Float32) Float32 { return a + b }
func (a Float32) Sub(b Float32) Float32 { return a - b }
func (a Float32) Mul(b Float32) Float32 { return a * b }
func (a Float32) Div(b Float32) Float32 { return a / b }
func (a Float32) Neg() Float32          { return -a }
func (a Float32) Sqrt() Float32         { return Float32(math.Sqrt(float64(a))) }
func (a Float32) Sin() Float32          { return Float32(math.Sin(float64(a))) }
func (a Float32) Cos() Float32          { return Float32(math.Cos(float64(a))) }
func (a Float32) Atan2(b Float32) Float32 {
	return Float32(math.Atan2(float64(a), float64(b)))
}
func (Float32) FromFloat64(f float64) Float32 { return Float32(f) }
func (a Float32) Float64() float64            { return float64(a) }
