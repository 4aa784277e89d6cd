// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package shortint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	for _, order := range []PBSOrder{OrderKeyswitchBootstrap, OrderBootstrapKeyswitch} {
		t.Run(order.String(), func(t *testing.T) {
			f := testKeysWithOrder(t, order)
			for m := uint64(0); m < f.params.MessageModulus; m++ {
				ct := f.ck.Encrypt(m)
				require.Equal(t, m, f.ck.Decrypt(ct))
				require.Equal(t, Degree(f.params.MessageModulus-1), ct.Degree)
				require.Equal(t, NoiseLevelNominal, ct.NoiseLevel)
			}
		})
	}
}

func TestRefreshBothOrders(t *testing.T) {
	for _, order := range []PBSOrder{OrderKeyswitchBootstrap, OrderBootstrapKeyswitch} {
		t.Run(order.String(), func(t *testing.T) {
			f := testKeysWithOrder(t, order)
			for m := uint64(0); m < f.params.MessageModulus; m++ {
				ct := f.ck.Encrypt(m)
				dim := ct.CT.Dimension()
				require.NoError(t, f.sk.MessageExtractAssign(ct))
				require.Equal(t, dim, ct.CT.Dimension())
				require.Equal(t, m, f.ck.Decrypt(ct))
				require.Equal(t, NoiseLevelNominal, ct.NoiseLevel)
				require.Equal(t, Degree(f.params.MessageModulus-1), ct.Degree)
			}
		})
	}
}

func TestUncheckedAdd(t *testing.T) {
	f := testKeys(t)
	for a := uint64(0); a < 4; a++ {
		for b := uint64(0); b < 4; b++ {
			ca, cb := f.ck.Encrypt(a), f.ck.Encrypt(b)
			sum := f.sk.UncheckedAdd(ca, cb)
			require.Equal(t, a+b, f.ck.DecryptMessageAndCarry(sum), "%d+%d", a, b)
			require.Equal(t, ca.Degree+cb.Degree, sum.Degree)
			require.Equal(t, NoiseLevel(2), sum.NoiseLevel)
		}
	}
}

func TestUncheckedSubNeg(t *testing.T) {
	f := testKeys(t)
	for a := uint64(0); a < 4; a++ {
		for b := uint64(0); b < 4; b++ {
			ca, cb := f.ck.Encrypt(a), f.ck.Encrypt(b)
			diff := f.sk.UncheckedSub(ca, cb)
			require.Equal(t, (a-b)%4, f.ck.Decrypt(diff), "%d-%d", a, b)
		}
	}

	for m := uint64(0); m < 4; m++ {
		ct := f.ck.Encrypt(m)
		f.sk.UncheckedNegAssign(ct)
		require.Equal(t, (4-m)%4, f.ck.Decrypt(ct), "-%d", m)
	}
}

func TestScalarOps(t *testing.T) {
	f := testKeys(t)

	t.Run("Add", func(t *testing.T) {
		ct := f.ck.Encrypt(2)
		f.sk.UncheckedScalarAddAssign(ct, 3)
		require.Equal(t, uint64(5), f.ck.DecryptMessageAndCarry(ct))
		require.Equal(t, Degree(6), ct.Degree)
		require.Equal(t, NoiseLevelNominal, ct.NoiseLevel)
	})

	t.Run("Sub", func(t *testing.T) {
		ct := f.ck.Encrypt(1)
		f.sk.UncheckedScalarSubAssign(ct, 3)
		require.Equal(t, uint64(2), f.ck.Decrypt(ct))
	})

	t.Run("Mul", func(t *testing.T) {
		ct := f.ck.Encrypt(3)
		f.sk.UncheckedScalarMulAssign(ct, 2)
		require.Equal(t, uint64(6), f.ck.DecryptMessageAndCarry(ct))
		require.Equal(t, Degree(6), ct.Degree)
		require.Equal(t, NoiseLevel(2), ct.NoiseLevel)
	})

	t.Run("MulByZeroIsTrivial", func(t *testing.T) {
		ct := f.ck.Encrypt(3)
		f.sk.UncheckedScalarMulAssign(ct, 0)
		require.Equal(t, uint64(0), f.ck.Decrypt(ct))
		require.Equal(t, Degree(0), ct.Degree)
		require.Equal(t, NoiseLevelZero, ct.NoiseLevel)
	})

	t.Run("DivMod", func(t *testing.T) {
		for m := uint64(0); m < 4; m++ {
			ct := f.ck.Encrypt(m)
			q, err := f.sk.UncheckedScalarDiv(ct, 2)
			require.NoError(t, err)
			require.Equal(t, m/2, f.ck.Decrypt(q))

			r, err := f.sk.UncheckedScalarMod(ct, 2)
			require.NoError(t, err)
			require.Equal(t, m%2, f.ck.Decrypt(r))
		}

		ct := f.ck.Encrypt(1)
		_, err := f.sk.UncheckedScalarDiv(ct, 0)
		require.ErrorIs(t, err, ErrDivisionByZero)
	})
}

func TestBitwise(t *testing.T) {
	f := testKeys(t)
	cases := []struct {
		name string
		op   func(a, b *Ciphertext) (*Ciphertext, error)
		want func(a, b uint64) uint64
	}{
		{"And", f.sk.UncheckedBitand, func(a, b uint64) uint64 { return a & b }},
		{"Or", f.sk.UncheckedBitor, func(a, b uint64) uint64 { return a | b }},
		{"Xor", f.sk.UncheckedBitxor, func(a, b uint64) uint64 { return a ^ b }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for a := uint64(0); a < 4; a++ {
				for b := uint64(0); b < 4; b++ {
					got, err := tc.op(f.ck.Encrypt(a), f.ck.Encrypt(b))
					require.NoError(t, err)
					require.Equal(t, tc.want(a, b), f.ck.Decrypt(got), "%d %s %d", a, tc.name, b)
					require.Equal(t, NoiseLevelNominal, got.NoiseLevel)
				}
			}
		})
	}

	t.Run("ScalarAnd", func(t *testing.T) {
		got, err := f.sk.ScalarBitand(f.ck.Encrypt(3), 2)
		require.NoError(t, err)
		require.Equal(t, uint64(2), f.ck.Decrypt(got))
		require.Equal(t, Degree(2), got.Degree)
	})
}

func TestMul(t *testing.T) {
	f := testKeys(t)

	t.Run("LsbMsb", func(t *testing.T) {
		for a := uint64(0); a < 4; a++ {
			for b := uint64(0); b < 4; b++ {
				lsb, err := f.sk.UncheckedMulLsb(f.ck.Encrypt(a), f.ck.Encrypt(b))
				require.NoError(t, err)
				require.Equal(t, a*b%4, f.ck.Decrypt(lsb), "%d*%d lsb", a, b)

				msb, err := f.sk.UncheckedMulMsb(f.ck.Encrypt(a), f.ck.Encrypt(b))
				require.NoError(t, err)
				require.Equal(t, a*b/4, f.ck.Decrypt(msb), "%d*%d msb", a, b)
			}
		}
	})

	t.Run("SmallCarry", func(t *testing.T) {
		for a := uint64(0); a < 4; a++ {
			for b := uint64(0); b < 4; b++ {
				got, err := f.sk.UncheckedMulLsbSmallCarry(f.ck.Encrypt(a), f.ck.Encrypt(b))
				require.NoError(t, err)
				require.Equal(t, a*b%4, f.ck.Decrypt(got), "%d*%d", a, b)
				require.Equal(t, NoiseLevel(2), got.NoiseLevel)
			}
		}
	})

	t.Run("TrivialZeroShortCircuit", func(t *testing.T) {
		zero := f.sk.CreateTrivial(0)
		got, err := f.sk.UncheckedMulLsb(zero, f.ck.Encrypt(3))
		require.NoError(t, err)
		require.Equal(t, NoiseLevelZero, got.NoiseLevel)
		require.Equal(t, Degree(0), got.Degree)
		require.Equal(t, uint64(0), f.ck.Decrypt(got))
	})
}

func TestDivMod(t *testing.T) {
	f := testKeys(t)
	for a := uint64(0); a < 4; a++ {
		for b := uint64(0); b < 4; b++ {
			q, err := f.sk.UncheckedDiv(f.ck.Encrypt(a), f.ck.Encrypt(b))
			require.NoError(t, err)
			r, err := f.sk.UncheckedMod(f.ck.Encrypt(a), f.ck.Encrypt(b))
			require.NoError(t, err)

			if b == 0 {
				require.Equal(t, uint64(3), f.ck.Decrypt(q), "%d/0", a)
				require.Equal(t, a, f.ck.Decrypt(r), "%d%%0", a)
			} else {
				require.Equal(t, a/b, f.ck.Decrypt(q), "%d/%d", a, b)
				require.Equal(t, a%b, f.ck.Decrypt(r), "%d%%%d", a, b)
			}
		}
	}
}

func TestComparisons(t *testing.T) {
	f := testKeys(t)
	cases := []struct {
		name string
		op   func(a, b *Ciphertext) (*Ciphertext, error)
		want func(a, b uint64) bool
	}{
		{"Equal", f.sk.UncheckedEqual, func(a, b uint64) bool { return a == b }},
		{"NotEqual", f.sk.UncheckedNotEqual, func(a, b uint64) bool { return a != b }},
		{"Greater", f.sk.UncheckedGreater, func(a, b uint64) bool { return a > b }},
		{"GreaterOrEqual", f.sk.UncheckedGreaterOrEqual, func(a, b uint64) bool { return a >= b }},
		{"Less", f.sk.UncheckedLess, func(a, b uint64) bool { return a < b }},
		{"LessOrEqual", f.sk.UncheckedLessOrEqual, func(a, b uint64) bool { return a <= b }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for a := uint64(0); a < 4; a++ {
				for b := uint64(0); b < 4; b++ {
					got, err := tc.op(f.ck.Encrypt(a), f.ck.Encrypt(b))
					require.NoError(t, err)
					require.Equal(t, boolToUint(tc.want(a, b)), f.ck.Decrypt(got), "%d %s %d", a, tc.name, b)
				}
			}
		})
	}
}

func TestShifts(t *testing.T) {
	f := testKeys(t)

	t.Run("LeftNoTruncation", func(t *testing.T) {
		ct := f.ck.Encrypt(3)
		out := f.sk.UncheckedScalarLeftShift(ct, 1)
		require.Equal(t, uint64(6), f.ck.DecryptMessageAndCarry(out))
		require.Equal(t, Degree(6), out.Degree)
	})

	t.Run("LeftTruncating", func(t *testing.T) {
		for m := uint64(0); m < 4; m++ {
			out, err := f.sk.ScalarLeftShiftTruncating(f.ck.Encrypt(m), 1)
			require.NoError(t, err)
			require.Equal(t, m<<1%4, f.ck.Decrypt(out), "%d<<1", m)
		}
	})

	t.Run("Right", func(t *testing.T) {
		for m := uint64(0); m < 4; m++ {
			out, err := f.sk.UncheckedScalarRightShift(f.ck.Encrypt(m), 1)
			require.NoError(t, err)
			require.Equal(t, m>>1, f.ck.Decrypt(out), "%d>>1", m)
		}
	})
}

func TestCheckedTier(t *testing.T) {
	f := testKeys(t)

	t.Run("RejectsOverflow", func(t *testing.T) {
		a := f.ck.EncryptMessageAndCarry(9)
		b := f.ck.EncryptMessageAndCarry(9)
		beforeDegree := a.Degree

		_, err := f.sk.CheckedAdd(a, b)
		require.ErrorIs(t, err, ErrNotEnoughRoom)
		require.Equal(t, beforeDegree, a.Degree)
	})

	t.Run("RejectsNoiseOverflow", func(t *testing.T) {
		a := f.ck.Encrypt(0)
		a.NoiseLevel = f.sk.MaxNoiseLevel
		b := f.ck.Encrypt(0)
		_, err := f.sk.CheckedAdd(a, b)
		require.ErrorIs(t, err, ErrNotEnoughRoom)
	})

	t.Run("AcceptsInBudget", func(t *testing.T) {
		a, b := f.ck.Encrypt(1), f.ck.Encrypt(2)
		sum, err := f.sk.CheckedAdd(a, b)
		require.NoError(t, err)
		require.Equal(t, uint64(3), f.ck.Decrypt(sum))
	})

	t.Run("ScalarMul", func(t *testing.T) {
		ct := f.ck.Encrypt(1)
		_, err := f.sk.CheckedScalarMul(ct, 8)
		require.ErrorIs(t, err, ErrNotEnoughRoom)

		out, err := f.sk.CheckedScalarMul(ct, 2)
		require.NoError(t, err)
		require.Equal(t, uint64(2), f.ck.Decrypt(out))
	})
}

// TestSmartTier checks the refresh contract: an unsafe operation
// triggers exactly one carry drain on the offending operands, after
// which it must fit.
func TestSmartTier(t *testing.T) {
	f := testKeys(t)

	t.Run("AddRefreshesOperands", func(t *testing.T) {
		a := f.ck.EncryptMessageAndCarry(9)
		b := f.ck.EncryptMessageAndCarry(9)

		sum, err := f.sk.SmartAdd(a, b)
		require.NoError(t, err)
		// Both operands were drained to their message parts.
		require.Equal(t, Degree(3), a.Degree)
		require.Equal(t, Degree(3), b.Degree)
		// 9 % 4 = 1 on each side after the drain.
		require.Equal(t, uint64(2), f.ck.DecryptMessageAndCarry(sum))
	})

	t.Run("AddWithoutRefresh", func(t *testing.T) {
		a, b := f.ck.Encrypt(1), f.ck.Encrypt(2)
		sum, err := f.sk.SmartAdd(a, b)
		require.NoError(t, err)
		require.Equal(t, uint64(3), f.ck.Decrypt(sum))
		// Fresh operands fit; no refresh happened.
		require.Equal(t, Degree(3), a.Degree)
	})

	t.Run("ScalarAddRefreshesOperand", func(t *testing.T) {
		// Degree 15 is the full message-and-carry bound; any scalar add
		// would overflow it, forcing the single drain.
		ct := f.ck.EncryptMessageAndCarry(15)

		got, err := f.sk.SmartScalarAdd(ct, 3)
		require.NoError(t, err)
		require.Equal(t, Degree(3), ct.Degree)
		require.Equal(t, NoiseLevelNominal, ct.NoiseLevel)
		// 15 % 4 = 3 after the drain, plus 3.
		require.Equal(t, uint64(6), f.ck.DecryptMessageAndCarry(got))
		require.Equal(t, uint64(2), f.ck.Decrypt(got))
	})

	t.Run("MulRefreshesOperands", func(t *testing.T) {
		a := f.ck.EncryptMessageAndCarry(7)
		b := f.ck.EncryptMessageAndCarry(6)

		got, err := f.sk.SmartMulLsb(a, b)
		require.NoError(t, err)
		// Messages 3 and 2 survive the drain; 3*2 % 4 = 2.
		require.Equal(t, uint64(2), f.ck.Decrypt(got))
	})

	t.Run("NegRefreshes", func(t *testing.T) {
		ct := f.ck.EncryptMessageAndCarry(13)
		got, err := f.sk.SmartNeg(ct)
		require.NoError(t, err)
		// 13 % 4 = 1 after the drain; -1 = 3 mod 4.
		require.Equal(t, uint64(3), f.ck.Decrypt(got))
	})
}

func TestCreateTrivial(t *testing.T) {
	f := testKeys(t)

	ct := f.sk.CreateTrivial(3)
	require.Equal(t, uint64(3), f.ck.Decrypt(ct))
	require.Equal(t, Degree(3), ct.Degree)
	require.Equal(t, NoiseLevelZero, ct.NoiseLevel)
	require.True(t, ct.IsTrivial())

	// Trivial ciphertexts interoperate with encrypted ones.
	sum := f.sk.UncheckedAdd(f.ck.Encrypt(2), ct)
	require.Equal(t, uint64(5), f.ck.DecryptMessageAndCarry(sum))
	require.Equal(t, NoiseLevelNominal, sum.NoiseLevel)
}

func TestEvaluateFunction(t *testing.T) {
	f := testKeys(t)
	square := func(x uint64) uint64 { return x * x % 16 }
	for m := uint64(0); m < 4; m++ {
		got, err := f.sk.EvaluateFunction(f.ck.Encrypt(m), square)
		require.NoError(t, err)
		require.Equal(t, square(m), f.ck.DecryptMessageAndCarry(got), "f(%d)", m)
	}
}

func TestEvaluateBivariate(t *testing.T) {
	f := testKeys(t)
	fn := func(a, b uint64) uint64 { return (3*a + b) % 16 }
	lut := f.sk.GenerateLookupTableBivariate(fn)
	for a := uint64(0); a < 4; a++ {
		for b := uint64(0); b < 4; b++ {
			got, err := f.sk.UncheckedEvaluateBivariate(f.ck.Encrypt(a), f.ck.Encrypt(b), lut)
			require.NoError(t, err)
			require.Equal(t, fn(a, b), f.ck.DecryptMessageAndCarry(got), "f(%d,%d)", a, b)
		}
	}
}

func TestCarryExtract(t *testing.T) {
	f := testKeys(t)
	ct := f.ck.EncryptMessageAndCarry(11) // carry 2, message 3
	carry, err := f.sk.CarryExtract(ct)
	require.NoError(t, err)
	require.Equal(t, uint64(2), f.ck.Decrypt(carry))
}
