// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package shortint

import "fmt"

// bitop runs a bivariate bootstrap for the bit operation and overrides
// the table's coarse degree with the per-operand transfer bound.
func (sk *ServerKey) bitop(a, b *Ciphertext, f func(x, y uint64) uint64, degree Degree) (*Ciphertext, error) {
	out, err := sk.UncheckedEvaluateBivariate(a, b, sk.GenerateLookupTableBivariate(f))
	if err != nil {
		return nil, err
	}
	out.Degree = degree
	return out, nil
}

// UncheckedBitand returns a & b through one bivariate bootstrap.
func (sk *ServerKey) UncheckedBitand(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.bitop(a, b, func(x, y uint64) uint64 { return x & y }, a.Degree.AfterBitand(b.Degree))
}

// UncheckedBitor returns a | b.
func (sk *ServerKey) UncheckedBitor(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.bitop(a, b, func(x, y uint64) uint64 { return x | y }, a.Degree.AfterBitor(b.Degree))
}

// UncheckedBitxor returns a ^ b.
func (sk *ServerKey) UncheckedBitxor(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.bitop(a, b, func(x, y uint64) uint64 { return x ^ y }, a.Degree.AfterBitxor(b.Degree))
}

// ScalarBitand returns ct & s through one univariate bootstrap.
func (sk *ServerKey) ScalarBitand(ct *Ciphertext, s uint64) (*Ciphertext, error) {
	out, err := sk.ApplyLookupTable(ct, sk.GenerateLookupTable(func(x uint64) uint64 { return x & s }))
	if err != nil {
		return nil, err
	}
	out.Degree = ct.Degree.AfterBitand(Degree(s))
	return out, nil
}

// ScalarBitor returns ct | s.
func (sk *ServerKey) ScalarBitor(ct *Ciphertext, s uint64) (*Ciphertext, error) {
	out, err := sk.ApplyLookupTable(ct, sk.GenerateLookupTable(func(x uint64) uint64 { return x | s }))
	if err != nil {
		return nil, err
	}
	out.Degree = ct.Degree.AfterBitor(Degree(s))
	return out, nil
}

// ScalarBitxor returns ct ^ s.
func (sk *ServerKey) ScalarBitxor(ct *Ciphertext, s uint64) (*Ciphertext, error) {
	out, err := sk.ApplyLookupTable(ct, sk.GenerateLookupTable(func(x uint64) uint64 { return x ^ s }))
	if err != nil {
		return nil, err
	}
	out.Degree = ct.Degree.AfterBitxor(Degree(s))
	return out, nil
}

// CheckedBitand returns a & b, or ErrNotEnoughRoom if the packed
// encoding does not fit.
func (sk *ServerKey) CheckedBitand(a, b *Ciphertext) (*Ciphertext, error) {
	if !sk.IsBivariatePossible(a, b) {
		return nil, fmt.Errorf("bitand: %w", ErrNotEnoughRoom)
	}
	return sk.UncheckedBitand(a, b)
}

// CheckedBitor returns a | b, or ErrNotEnoughRoom.
func (sk *ServerKey) CheckedBitor(a, b *Ciphertext) (*Ciphertext, error) {
	if !sk.IsBivariatePossible(a, b) {
		return nil, fmt.Errorf("bitor: %w", ErrNotEnoughRoom)
	}
	return sk.UncheckedBitor(a, b)
}

// CheckedBitxor returns a ^ b, or ErrNotEnoughRoom.
func (sk *ServerKey) CheckedBitxor(a, b *Ciphertext) (*Ciphertext, error) {
	if !sk.IsBivariatePossible(a, b) {
		return nil, fmt.Errorf("bitxor: %w", ErrNotEnoughRoom)
	}
	return sk.UncheckedBitxor(a, b)
}

func (sk *ServerKey) smartBivariate(a, b *Ciphertext, op func(a, b *Ciphertext) (*Ciphertext, error)) (*Ciphertext, error) {
	if !sk.IsBivariatePossible(a, b) {
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
		if !sk.IsBivariatePossible(a, b) {
			return nil, ErrParamsTooSmall
		}
	}
	return op(a, b)
}

// SmartBitand returns a & b, refreshing the operands in place if the
// packing would not fit.
func (sk *ServerKey) SmartBitand(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.smartBivariate(a, b, sk.UncheckedBitand)
}

// SmartBitor returns a | b with the same contract.
func (sk *ServerKey) SmartBitor(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.smartBivariate(a, b, sk.UncheckedBitor)
}

// SmartBitxor returns a ^ b with the same contract.
func (sk *ServerKey) SmartBitxor(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.smartBivariate(a, b, sk.UncheckedBitxor)
}
