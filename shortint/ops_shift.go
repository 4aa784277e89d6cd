// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package shortint

import "fmt"

// UncheckedScalarLeftShiftAssign shifts the message left without
// truncation: a plain multiplication by 2^shift, bits sliding into the
// carry space.
func (sk *ServerKey) UncheckedScalarLeftShiftAssign(ct *Ciphertext, shift int) {
	sk.UncheckedScalarMulAssign(ct, 1<<shift)
}

// UncheckedScalarLeftShift returns ct << shift.
func (sk *ServerKey) UncheckedScalarLeftShift(ct *Ciphertext, shift int) *Ciphertext {
	out := ct.Clone()
	sk.UncheckedScalarLeftShiftAssign(out, shift)
	return out
}

// ScalarLeftShiftTruncating returns (ct << shift) % MessageModulus
// through one bootstrap, dropping the bits that leave the message.
func (sk *ServerKey) ScalarLeftShiftTruncating(ct *Ciphertext, shift int) (*Ciphertext, error) {
	msgMod := sk.Params.MessageModulus
	out, err := sk.ApplyLookupTable(ct, sk.GenerateLookupTable(func(x uint64) uint64 {
		return (x << shift) % msgMod
	}))
	if err != nil {
		return nil, err
	}
	out.Degree = ct.Degree.AfterLeftShift(shift, msgMod)
	return out, nil
}

// UncheckedScalarRightShift returns ct >> shift through one bootstrap.
func (sk *ServerKey) UncheckedScalarRightShift(ct *Ciphertext, shift int) (*Ciphertext, error) {
	out, err := sk.ApplyLookupTable(ct, sk.GenerateLookupTable(func(x uint64) uint64 {
		return x >> shift
	}))
	if err != nil {
		return nil, err
	}
	out.Degree = ct.Degree.AfterFunction(func(x uint64) uint64 { return x >> shift })
	return out, nil
}

// IsScalarLeftShiftPossible reports whether the non-truncating shift
// fits both budgets.
func (sk *ServerKey) IsScalarLeftShiftPossible(ct *Ciphertext, shift int) bool {
	return sk.IsScalarMulPossible(ct, 1<<shift)
}

// CheckedScalarLeftShift returns ct << shift, or ErrNotEnoughRoom.
func (sk *ServerKey) CheckedScalarLeftShift(ct *Ciphertext, shift int) (*Ciphertext, error) {
	if !sk.IsScalarLeftShiftPossible(ct, shift) {
		return nil, fmt.Errorf("scalar left shift: %w", ErrNotEnoughRoom)
	}
	return sk.UncheckedScalarLeftShift(ct, shift), nil
}

// SmartScalarLeftShift shifts without truncation when the budgets
// allow it, and falls back to the truncating bootstrap otherwise.
func (sk *ServerKey) SmartScalarLeftShift(ct *Ciphertext, shift int) (*Ciphertext, error) {
	if sk.IsScalarLeftShiftPossible(ct, shift) {
		return sk.UncheckedScalarLeftShift(ct, shift), nil
	}
	return sk.ScalarLeftShiftTruncating(ct, shift)
}
