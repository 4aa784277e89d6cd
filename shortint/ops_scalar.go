// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package shortint

import (
	"fmt"

	"github.com/luxfi/tfhe/core"
)

// UncheckedScalarAddAssign adds the cleartext scalar to the body. Noise
// is untouched; only the bound grows.
func (sk *ServerKey) UncheckedScalarAddAssign(ct *Ciphertext, s uint64) {
	ct.CT.PlaintextAddAssign(core.Encode(s, sk.Params.Delta()))
	ct.Degree += Degree(s)
}

// UncheckedScalarAdd returns ct + s.
func (sk *ServerKey) UncheckedScalarAdd(ct *Ciphertext, s uint64) *Ciphertext {
	out := ct.Clone()
	sk.UncheckedScalarAddAssign(out, s)
	return out
}

// UncheckedScalarSubAssign subtracts the scalar through the negation
// correction, keeping the plaintext non-negative.
func (sk *ServerKey) UncheckedScalarSubAssign(ct *Ciphertext, s uint64) {
	z := negCorrection(Degree(s), sk.Params.MessageModulus)
	ct.CT.PlaintextAddAssign(core.Encode(z-s, sk.Params.Delta()))
	ct.Degree += Degree(z - s)
}

// UncheckedScalarSub returns ct - s.
func (sk *ServerKey) UncheckedScalarSub(ct *Ciphertext, s uint64) *Ciphertext {
	out := ct.Clone()
	sk.UncheckedScalarSubAssign(out, s)
	return out
}

// UncheckedScalarMulAssign multiplies every coefficient by s. Both the
// bound and the noise scale with the scalar; s = 0 collapses to the
// trivial zero.
func (sk *ServerKey) UncheckedScalarMulAssign(ct *Ciphertext, s uint64) {
	if s == 0 {
		ct.CT.Clear()
		ct.Degree = 0
		ct.NoiseLevel = NoiseLevelZero
		return
	}
	ct.CT.CleartextMulAssign(s)
	ct.Degree = Degree(uint64(ct.Degree) * s)
	ct.NoiseLevel *= NoiseLevel(s)
}

// UncheckedScalarMul returns ct * s.
func (sk *ServerKey) UncheckedScalarMul(ct *Ciphertext, s uint64) *Ciphertext {
	out := ct.Clone()
	sk.UncheckedScalarMulAssign(out, s)
	return out
}

// IsScalarAddPossible reports whether ct + s fits the carry space.
func (sk *ServerKey) IsScalarAddPossible(ct *Ciphertext, s uint64) bool {
	return ct.Degree+Degree(s) <= sk.MaxDegree
}

// IsScalarSubPossible reports whether ct - s fits.
func (sk *ServerKey) IsScalarSubPossible(ct *Ciphertext, s uint64) bool {
	z := negCorrection(Degree(s), sk.Params.MessageModulus)
	return ct.Degree+Degree(z-s) <= sk.MaxDegree
}

// IsScalarMulPossible reports whether ct * s fits both budgets.
func (sk *ServerKey) IsScalarMulPossible(ct *Ciphertext, s uint64) bool {
	if s == 0 {
		return true
	}
	return Degree(uint64(ct.Degree)*s) <= sk.MaxDegree &&
		ct.NoiseLevel*NoiseLevel(s) <= sk.MaxNoiseLevel
}

// CheckedScalarAdd returns ct + s, or ErrNotEnoughRoom.
func (sk *ServerKey) CheckedScalarAdd(ct *Ciphertext, s uint64) (*Ciphertext, error) {
	if !sk.IsScalarAddPossible(ct, s) {
		return nil, fmt.Errorf("scalar add: %w", ErrNotEnoughRoom)
	}
	return sk.UncheckedScalarAdd(ct, s), nil
}

// CheckedScalarSub returns ct - s, or ErrNotEnoughRoom.
func (sk *ServerKey) CheckedScalarSub(ct *Ciphertext, s uint64) (*Ciphertext, error) {
	if !sk.IsScalarSubPossible(ct, s) {
		return nil, fmt.Errorf("scalar sub: %w", ErrNotEnoughRoom)
	}
	return sk.UncheckedScalarSub(ct, s), nil
}

// CheckedScalarMul returns ct * s, or ErrNotEnoughRoom.
func (sk *ServerKey) CheckedScalarMul(ct *Ciphertext, s uint64) (*Ciphertext, error) {
	if !sk.IsScalarMulPossible(ct, s) {
		return nil, fmt.Errorf("scalar mul: %w", ErrNotEnoughRoom)
	}
	return sk.UncheckedScalarMul(ct, s), nil
}

// smartUnary refreshes ct at most once until the predicate holds.
func (sk *ServerKey) smartUnary(ct *Ciphertext, possible func() bool) error {
	if possible() {
		return nil
	}
	if err := sk.MessageExtractAssign(ct); err != nil {
		return err
	}
	if !possible() {
		return ErrParamsTooSmall
	}
	return nil
}

// SmartScalarAdd returns ct + s, refreshing ct in place if needed.
func (sk *ServerKey) SmartScalarAdd(ct *Ciphertext, s uint64) (*Ciphertext, error) {
	if err := sk.smartUnary(ct, func() bool { return sk.IsScalarAddPossible(ct, s) }); err != nil {
		return nil, err
	}
	return sk.UncheckedScalarAdd(ct, s), nil
}

// SmartScalarSub returns ct - s with the same contract.
func (sk *ServerKey) SmartScalarSub(ct *Ciphertext, s uint64) (*Ciphertext, error) {
	if err := sk.smartUnary(ct, func() bool { return sk.IsScalarSubPossible(ct, s) }); err != nil {
		return nil, err
	}
	return sk.UncheckedScalarSub(ct, s), nil
}

// SmartScalarMul returns ct * s with the same contract.
func (sk *ServerKey) SmartScalarMul(ct *Ciphertext, s uint64) (*Ciphertext, error) {
	if err := sk.smartUnary(ct, func() bool { return sk.IsScalarMulPossible(ct, s) }); err != nil {
		return nil, err
	}
	return sk.UncheckedScalarMul(ct, s), nil
}

// UncheckedScalarDiv returns ct / s through one bootstrap. A zero
// divisor is rejected outright.
func (sk *ServerKey) UncheckedScalarDiv(ct *Ciphertext, s uint64) (*Ciphertext, error) {
	if s == 0 {
		return nil, fmt.Errorf("scalar div: %w", ErrDivisionByZero)
	}
	out, err := sk.ApplyLookupTable(ct, sk.GenerateLookupTable(func(x uint64) uint64 { return x / s }))
	if err != nil {
		return nil, err
	}
	out.Degree = ct.Degree.AfterFunction(func(x uint64) uint64 { return x / s })
	return out, nil
}

// UncheckedScalarMod returns ct % s through one bootstrap.
func (sk *ServerKey) UncheckedScalarMod(ct *Ciphertext, s uint64) (*Ciphertext, error) {
	if s == 0 {
		return nil, fmt.Errorf("scalar mod: %w", ErrDivisionByZero)
	}
	out, err := sk.ApplyLookupTable(ct, sk.GenerateLookupTable(func(x uint64) uint64 { return x % s }))
	if err != nil {
		return nil, err
	}
	out.Degree = Degree(s - 1)
	return out, nil
}
