// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package shortint

import "fmt"

// trivialZeroOperand reports whether either operand is a known zero, in
// which case multiplication short-circuits to the trivial zero without
// touching the encryption at all.
func trivialZeroOperand(a, b *Ciphertext) bool {
	return (a.IsTrivial() && a.Degree == 0) || (b.IsTrivial() && b.Degree == 0)
}

// UncheckedMulLsb returns (a * b) % MessageModulus through one
// bivariate bootstrap.
func (sk *ServerKey) UncheckedMulLsb(a, b *Ciphertext) (*Ciphertext, error) {
	if trivialZeroOperand(a, b) {
		return sk.CreateTrivial(0), nil
	}
	msgMod := sk.Params.MessageModulus
	return sk.UncheckedEvaluateBivariate(a, b, sk.GenerateLookupTableBivariate(func(x, y uint64) uint64 {
		return x * y % msgMod
	}))
}

// UncheckedMulMsb returns (a * b) / MessageModulus, the carry half of
// the product.
func (sk *ServerKey) UncheckedMulMsb(a, b *Ciphertext) (*Ciphertext, error) {
	if trivialZeroOperand(a, b) {
		return sk.CreateTrivial(0), nil
	}
	msgMod := sk.Params.MessageModulus
	return sk.UncheckedEvaluateBivariate(a, b, sk.GenerateLookupTableBivariate(func(x, y uint64) uint64 {
		return x * y / msgMod
	}))
}

// UncheckedMulLsbSmallCarry multiplies via the quarter-square identity
// a*b = floor((a+b)^2/4) - floor((a-b)^2/4), two univariate bootstraps
// instead of one bivariate packing. Both operands must be carry-empty;
// the result carries two nominal noise budgets.
func (sk *ServerKey) UncheckedMulLsbSmallCarry(a, b *Ciphertext) (*Ciphertext, error) {
	if trivialZeroOperand(a, b) {
		return sk.CreateTrivial(0), nil
	}

	z := negCorrection(b.Degree, sk.Params.MessageModulus)
	msgMod := sk.Params.MessageModulus

	sum := sk.UncheckedAdd(a, b)
	diff := sk.UncheckedSub(a, b) // plaintext z + (a - b)

	if err := sk.ApplyLookupTableAssign(sum, sk.GenerateLookupTable(func(x uint64) uint64 {
		return x * x / 4 % msgMod
	})); err != nil {
		return nil, err
	}
	if err := sk.ApplyLookupTableAssign(diff, sk.GenerateLookupTable(func(x uint64) uint64 {
		// Undo the correction before squaring; |a-b| keeps the square
		// exact either way.
		d := x - z
		if x < z {
			d = z - x
		}
		return d * d / 4 % msgMod
	})); err != nil {
		return nil, err
	}

	// The message half now holds the product modulo MessageModulus; the
	// subtraction correction leaves junk in the carry half, drained by
	// the next refresh.
	out := sum
	sk.UncheckedSubAssign(out, diff)
	return out, nil
}

// IsMulPossible reports whether the bivariate product packing fits.
func (sk *ServerKey) IsMulPossible(a, b *Ciphertext) bool {
	return sk.IsBivariatePossible(a, b)
}

// CheckedMulLsb returns (a * b) % MessageModulus, or ErrNotEnoughRoom.
func (sk *ServerKey) CheckedMulLsb(a, b *Ciphertext) (*Ciphertext, error) {
	if !sk.IsMulPossible(a, b) {
		return nil, fmt.Errorf("mul lsb: %w", ErrNotEnoughRoom)
	}
	return sk.UncheckedMulLsb(a, b)
}

// CheckedMulMsb returns (a * b) / MessageModulus, or ErrNotEnoughRoom.
func (sk *ServerKey) CheckedMulMsb(a, b *Ciphertext) (*Ciphertext, error) {
	if !sk.IsMulPossible(a, b) {
		return nil, fmt.Errorf("mul msb: %w", ErrNotEnoughRoom)
	}
	return sk.UncheckedMulMsb(a, b)
}

// SmartMulLsb returns (a * b) % MessageModulus, refreshing the operands
// in place if the packing would not fit.
func (sk *ServerKey) SmartMulLsb(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.smartBivariate(a, b, sk.UncheckedMulLsb)
}

// SmartMulMsb returns (a * b) / MessageModulus with the same contract.
func (sk *ServerKey) SmartMulMsb(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.smartBivariate(a, b, sk.UncheckedMulMsb)
}

// UncheckedDiv returns a / b. A zero divisor yields
// MessageModulus - 1, the all-ones message, so the operation stays
// total without branching on encrypted data.
func (sk *ServerKey) UncheckedDiv(a, b *Ciphertext) (*Ciphertext, error) {
	msgMod := sk.Params.MessageModulus
	return sk.UncheckedEvaluateBivariate(a, b, sk.GenerateLookupTableBivariate(func(x, y uint64) uint64 {
		if y == 0 {
			return msgMod - 1
		}
		return x / y
	}))
}

// UncheckedMod returns a % b. A zero divisor passes the dividend
// through, matching the Euclidean identity with the zero-divisor
// quotient above.
func (sk *ServerKey) UncheckedMod(a, b *Ciphertext) (*Ciphertext, error) {
	msgMod := sk.Params.MessageModulus
	return sk.UncheckedEvaluateBivariate(a, b, sk.GenerateLookupTableBivariate(func(x, y uint64) uint64 {
		if y == 0 {
			return x % msgMod
		}
		return x % y
	}))
}

// SmartDiv returns a / b, refreshing the operands if needed.
func (sk *ServerKey) SmartDiv(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.smartBivariate(a, b, sk.UncheckedDiv)
}

// SmartMod returns a % b, refreshing the operands if needed.
func (sk *ServerKey) SmartMod(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.smartBivariate(a, b, sk.UncheckedMod)
}
