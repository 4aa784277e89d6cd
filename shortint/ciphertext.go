// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package shortint

import (
	"github.com/luxfi/tfhe/core"
)

// Ciphertext is one shortint value: an LWE sample plus the metadata
// every operation reads and maintains. The metadata describes worst
// cases, never the actual plaintext.
type Ciphertext struct {
	CT core.LWECiphertext[uint64]

	Degree     Degree
	NoiseLevel NoiseLevel

	MessageModulus uint64
	CarryModulus   uint64
	PBSOrder       PBSOrder
}

// Clone returns a deep copy.
func (c *Ciphertext) Clone() *Ciphertext {
	out := *c
	out.CT = c.CT.Clone()
	return &out
}

// CopyFrom overwrites c with src, reusing c's LWE buffer when the
// sizes match. This is the single copy path; every in-place operation
// that needs to replace its output goes through it.
func (c *Ciphertext) CopyFrom(src *Ciphertext) {
	c.CT.CopyFrom(src.CT)
	c.Degree = src.Degree
	c.NoiseLevel = src.NoiseLevel
	c.MessageModulus = src.MessageModulus
	c.CarryModulus = src.CarryModulus
	c.PBSOrder = src.PBSOrder
}

// IsCarryEmpty reports whether the plaintext bound fits inside the
// message space, i.e. no carry bits can be set.
func (c *Ciphertext) IsCarryEmpty() bool {
	return uint64(c.Degree) < c.MessageModulus
}

// IsTrivial reports whether the ciphertext carries no encryption at
// all (noiseless, keyless).
func (c *Ciphertext) IsTrivial() bool {
	return c.NoiseLevel == NoiseLevelZero
}

// CiphertextConformanceParams is the expectation a received ciphertext
// is checked against before being fed to a server key.
type CiphertextConformanceParams struct {
	LweDimension   int
	MessageModulus uint64
	CarryModulus   uint64
	DegreeMax      Degree
	NoiseLevelMax  NoiseLevel
	PBSOrder       PBSOrder
}

// ConformanceParams derives the expectation for fresh ciphertexts under
// these parameters.
func (p Parameters) ConformanceParams() CiphertextConformanceParams {
	return CiphertextConformanceParams{
		LweDimension:   p.CiphertextLweDimension(),
		MessageModulus: p.MessageModulus,
		CarryModulus:   p.CarryModulus,
		DegreeMax:      p.MaxDegree(),
		NoiseLevelMax:  p.MaxNoiseLevel,
		PBSOrder:       p.PBSOrder,
	}
}

// IsConformant reports whether the ciphertext matches the expectation.
// It never repairs anything; non-conformant ciphertexts are rejected,
// not fixed.
func (c *Ciphertext) IsConformant(params CiphertextConformanceParams) bool {
	return c.CT.Dimension() == params.LweDimension &&
		c.MessageModulus == params.MessageModulus &&
		c.CarryModulus == params.CarryModulus &&
		c.Degree <= params.DegreeMax &&
		c.NoiseLevel <= params.NoiseLevelMax &&
		c.PBSOrder == params.PBSOrder
}
