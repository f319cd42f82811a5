// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package satmath provides clamp-on-overflow integer arithmetic
package satmath

import (
	"math"
	"math/bits"
)

func AddU32(a, b uint32) uint32 {
	if a > math.MaxUint32-b {
		return math.MaxUint32
	}
	return a + b
}

func SubU32(a, b uint32) uint32 {
	if b > a {
		return 0
	}
	return a - b
}

func MulU32(a, b uint32) uint32 {
	return ClampU32(uint64(a) * uint64(b))
}

// ClampU32 narrows v, clamping to math.MaxUint32
func ClampU32(v uint64) uint32 {
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

func AddU64(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

func SubU64(a, b uint64) uint64 {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0
	}
	return diff
}

// MulDivU64 returns a*b/d computed with a 128-bit intermediate, clamping to
// math.MaxUint64 when the quotient does not fit. A zero divisor returns 0.
func MulDivU64(a, b, d uint64) uint64 {
	if d == 0 {
		return 0
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return math.MaxUint64
	}
	quo, _ := bits.Div64(hi, lo, d)
	return quo
}

// AddI64 adds a non-negative duration to a timestamp, clamping to
// math.MaxInt64
func AddI64(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	if b < 0 && a < math.MinInt64-b {
		return math.MinInt64
	}
	return a + b
}
