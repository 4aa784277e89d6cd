// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package shortint

import (
	"fmt"

	"github.com/luxfi/tfhe/core"
)

// negCorrection returns the smallest multiple of MessageModulus at or
// above the degree. Negation is computed as z - m so the plaintext
// stays non-negative; z is absorbed by the next carry drain.
func negCorrection(d Degree, msgMod uint64) uint64 {
	return (uint64(d) + msgMod - 1) / msgMod * msgMod
}

// UncheckedAddAssign sets a += b. Degrees and noise add; nothing is
// checked.
func (sk *ServerKey) UncheckedAddAssign(a, b *Ciphertext) {
	a.CT.AddAssign(b.CT)
	a.Degree += b.Degree
	a.NoiseLevel += b.NoiseLevel
}

// UncheckedAdd returns a + b.
func (sk *ServerKey) UncheckedAdd(a, b *Ciphertext) *Ciphertext {
	out := a.Clone()
	sk.UncheckedAddAssign(out, b)
	return out
}

// UncheckedSubAssign sets a -= b, adding b's negation correction so the
// plaintext stays in the non-negative range.
func (sk *ServerKey) UncheckedSubAssign(a, b *Ciphertext) {
	z := negCorrection(b.Degree, sk.Params.MessageModulus)
	a.CT.SubAssign(b.CT)
	a.CT.PlaintextAddAssign(core.Encode(z, sk.Params.Delta()))
	a.Degree += Degree(z)
	a.NoiseLevel += b.NoiseLevel
}

// UncheckedSub returns a - b.
func (sk *ServerKey) UncheckedSub(a, b *Ciphertext) *Ciphertext {
	out := a.Clone()
	sk.UncheckedSubAssign(out, b)
	return out
}

// UncheckedNegAssign negates ct in place via the correcting term.
func (sk *ServerKey) UncheckedNegAssign(ct *Ciphertext) {
	z := negCorrection(ct.Degree, sk.Params.MessageModulus)
	ct.CT.NegAssign()
	ct.CT.PlaintextAddAssign(core.Encode(z, sk.Params.Delta()))
	ct.Degree = Degree(z)
}

// UncheckedNeg returns -ct.
func (sk *ServerKey) UncheckedNeg(ct *Ciphertext) *Ciphertext {
	out := ct.Clone()
	sk.UncheckedNegAssign(out)
	return out
}

// IsAddPossible reports whether a + b fits the carry space and the
// noise budget.
func (sk *ServerKey) IsAddPossible(a, b *Ciphertext) bool {
	return a.Degree+b.Degree <= sk.MaxDegree &&
		a.NoiseLevel+b.NoiseLevel <= sk.MaxNoiseLevel
}

// IsSubPossible reports whether a - b fits.
func (sk *ServerKey) IsSubPossible(a, b *Ciphertext) bool {
	z := negCorrection(b.Degree, sk.Params.MessageModulus)
	return a.Degree+Degree(z) <= sk.MaxDegree &&
		a.NoiseLevel+b.NoiseLevel <= sk.MaxNoiseLevel
}

// IsNegPossible reports whether the negation correction fits.
func (sk *ServerKey) IsNegPossible(ct *Ciphertext) bool {
	return Degree(negCorrection(ct.Degree, sk.Params.MessageModulus)) <= sk.MaxDegree
}

// CheckedAdd returns a + b, or ErrNotEnoughRoom leaving the operands
// untouched.
func (sk *ServerKey) CheckedAdd(a, b *Ciphertext) (*Ciphertext, error) {
	if !sk.IsAddPossible(a, b) {
		return nil, fmt.Errorf("add: %w", ErrNotEnoughRoom)
	}
	return sk.UncheckedAdd(a, b), nil
}

// CheckedSub returns a - b, or ErrNotEnoughRoom.
func (sk *ServerKey) CheckedSub(a, b *Ciphertext) (*Ciphertext, error) {
	if !sk.IsSubPossible(a, b) {
		return nil, fmt.Errorf("sub: %w", ErrNotEnoughRoom)
	}
	return sk.UncheckedSub(a, b), nil
}

// CheckedNeg returns -ct, or ErrNotEnoughRoom.
func (sk *ServerKey) CheckedNeg(ct *Ciphertext) (*Ciphertext, error) {
	if !sk.IsNegPossible(ct) {
		return nil, fmt.Errorf("neg: %w", ErrNotEnoughRoom)
	}
	return sk.UncheckedNeg(ct), nil
}

// smartBinary refreshes the operands of a binary operation at most once
// until the predicate holds, then runs it. Still unsafe after the
// refresh means the parameter set cannot host the operation at all.
func (sk *ServerKey) smartBinary(a, b *Ciphertext, possible func(a, b *Ciphertext) bool, op func(a, b *Ciphertext) *Ciphertext) (*Ciphertext, error) {
	if !possible(a, b) {
		if !a.IsCarryEmpty() {
			if err := sk.MessageExtractAssign(a); err != nil {
				return nil, err
			}
		}
		if !b.IsCarryEmpty() {
			if err := sk.MessageExtractAssign(b); err != nil {
				return nil, err
			}
		}
		if !possible(a, b) {
			return nil, ErrParamsTooSmall
		}
	}
	return op(a, b), nil
}

// SmartAdd returns a + b, refreshing the operands in place if the sum
// would not fit.
func (sk *ServerKey) SmartAdd(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.smartBinary(a, b, sk.IsAddPossible, sk.UncheckedAdd)
}

// SmartSub returns a - b with the same refresh contract.
func (sk *ServerKey) SmartSub(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.smartBinary(a, b, sk.IsSubPossible, sk.UncheckedSub)
}

// SmartNeg returns -ct, refreshing ct in place if needed.
func (sk *ServerKey) SmartNeg(ct *Ciphertext) (*Ciphertext, error) {
	if !sk.IsNegPossible(ct) {
		if err := sk.MessageExtractAssign(ct); err != nil {
			return nil, err
		}
		if !sk.IsNegPossible(ct) {
			return nil, ErrParamsTooSmall
		}
	}
	return sk.UncheckedNeg(ct), nil
}
