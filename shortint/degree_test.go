// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package shortint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDegreeTransferSound checks every transfer rule against brute
// force over all value pairs the bounds admit: the propagated bound
// must dominate every reachable result.
func TestDegreeTransferSound(t *testing.T) {
	const space = 16

	for da := Degree(0); da < space; da++ {
		for db := Degree(0); db < space; db++ {
			var worstAnd, worstOr, worstXor uint64
			for a := uint64(0); a <= uint64(da); a++ {
				for b := uint64(0); b <= uint64(db); b++ {
					if v := a & b; v > worstAnd {
						worstAnd = v
					}
					if v := a | b; v > worstOr {
						worstOr = v
					}
					if v := a ^ b; v > worstXor {
						worstXor = v
					}
				}
			}
			require.GreaterOrEqual(t, uint64(da.AfterBitand(db)), worstAnd, "and %d %d", da, db)
			require.GreaterOrEqual(t, uint64(da.AfterBitor(db)), worstOr, "or %d %d", da, db)
			require.GreaterOrEqual(t, uint64(da.AfterBitxor(db)), worstXor, "xor %d %d", da, db)
		}
	}
}

func TestDegreeTransferExact(t *testing.T) {
	require.Equal(t, Degree(3), Degree(3).AfterBitand(5))
	require.Equal(t, Degree(5), Degree(5).AfterBitand(7))
	require.Equal(t, Degree(7), Degree(4).AfterBitor(3))
	require.Equal(t, Degree(7), Degree(5).AfterBitxor(2))
	require.Equal(t, Degree(0), Degree(0).AfterBitor(0))
}

func TestDegreeAfterLeftShift(t *testing.T) {
	// (x << 1) % 4 over x <= 3: values {0, 2, 0, 2}.
	require.Equal(t, Degree(2), Degree(3).AfterLeftShift(1, 4))
	// (x << 2) % 4 is always 0.
	require.Equal(t, Degree(0), Degree(3).AfterLeftShift(2, 4))
	// No reduction: plain doubling.
	require.Equal(t, Degree(6), Degree(3).AfterLeftShift(1, 16))

	for d := Degree(0); d < 16; d++ {
		var worst uint64
		for x := uint64(0); x <= uint64(d); x++ {
			if v := x << 1 % 8; v > worst {
				worst = v
			}
		}
		require.Equal(t, Degree(worst), d.AfterLeftShift(1, 8), "degree %d", d)
	}
}

func TestDegreeAfterFunction(t *testing.T) {
	f := func(x uint64) uint64 { return (x * x) % 7 }
	for d := Degree(0); d < 16; d++ {
		var worst uint64
		for x := uint64(0); x <= uint64(d); x++ {
			if v := f(x); v > worst {
				worst = v
			}
		}
		require.Equal(t, Degree(worst), d.AfterFunction(f), "degree %d", d)
	}
}
