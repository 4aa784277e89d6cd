// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package shortint implements homomorphic arithmetic on small unsigned
// integers: a message living in the low bits of a 64-bit LWE plaintext,
// a carry space above it absorbing intermediate growth, and a
// programmable bootstrap draining the carry back down. Every ciphertext
// carries its worst-case plaintext bound (Degree) and its noise growth
// class (NoiseLevel); the unchecked/checked/smart operation tiers
// differ only in who is responsible for keeping those within budget.
package shortint

import (
	"fmt"

	"github.com/luxfi/tfhe/core"
)

// PBSOrder fixes where ciphertexts live between operations and in which
// order a refresh runs its two key-changing steps.
type PBSOrder uint8

const (
	// OrderKeyswitchBootstrap keeps ciphertexts under the big key:
	// refresh switches down first, then bootstraps back up.
	OrderKeyswitchBootstrap PBSOrder = iota
	// OrderBootstrapKeyswitch keeps ciphertexts under the small key:
	// refresh bootstraps up first, then switches back down.
	OrderBootstrapKeyswitch
)

func (o PBSOrder) String() string {
	switch o {
	case OrderKeyswitchBootstrap:
		return "KS_PBS"
	case OrderBootstrapKeyswitch:
		return "PBS_KS"
	default:
		return fmt.Sprintf("PBSOrder(%d)", uint8(o))
	}
}

// Parameters fixes one shortint instantiation. Instances are plain
// literals validated by Validate; the provided sets are the ones the
// library is characterized for.
type Parameters struct {
	LweDimension   int
	GlweDimension  int
	PolynomialSize int

	LweNoiseStdDev  float64
	GlweNoiseStdDev float64

	PBSBaseLog int
	PBSLevel   int
	KSBaseLog  int
	KSLevel    int

	MessageModulus uint64
	CarryModulus   uint64

	MaxNoiseLevel NoiseLevel
	PBSOrder      PBSOrder
}

// ParamsMessage2Carry2KSPBS is the default parameter set: 2 message
// bits, 2 carry bits, ciphertexts under the big key.
var ParamsMessage2Carry2KSPBS = Parameters{
	LweDimension:    742,
	GlweDimension:   1,
	PolynomialSize:  2048,
	LweNoiseStdDev:  0.000007069849454709433,
	GlweNoiseStdDev: 0.00000000000000029403601535432533,
	PBSBaseLog:      23,
	PBSLevel:        1,
	KSBaseLog:       3,
	KSLevel:         5,
	MessageModulus:  4,
	CarryModulus:    4,
	MaxNoiseLevel:   5,
	PBSOrder:        OrderKeyswitchBootstrap,
}

// ParamsMessage2Carry2PBSKS mirrors the default set with ciphertexts
// kept under the small key.
var ParamsMessage2Carry2PBSKS = Parameters{
	LweDimension:    742,
	GlweDimension:   1,
	PolynomialSize:  2048,
	LweNoiseStdDev:  0.000007069849454709433,
	GlweNoiseStdDev: 0.00000000000000029403601535432533,
	PBSBaseLog:      23,
	PBSLevel:        1,
	KSBaseLog:       3,
	KSLevel:         5,
	MessageModulus:  4,
	CarryModulus:    4,
	MaxNoiseLevel:   5,
	PBSOrder:        OrderBootstrapKeyswitch,
}

// ParamsTestMessage2Carry2 is an insecure, fast set for tests only: the
// dimensions are far below any security level, but the correctness
// margins (mod-switch drift vs. half-box) hold by the same analysis as
// the production set.
var ParamsTestMessage2Carry2 = Parameters{
	LweDimension:    16,
	GlweDimension:   1,
	PolynomialSize:  512,
	LweNoiseStdDev:  9.5367431640625e-07,   // 2^-20
	GlweNoiseStdDev: 9.094947017729282e-13, // 2^-40
	PBSBaseLog:      8,
	PBSLevel:        4,
	KSBaseLog:       4,
	KSLevel:         8,
	MessageModulus:  4,
	CarryModulus:    4,
	MaxNoiseLevel:   5,
	PBSOrder:        OrderKeyswitchBootstrap,
}

// Validate checks internal consistency. Parameter sets are trusted
// input; this catches construction mistakes, not attacks.
func (p Parameters) Validate() error {
	if p.LweDimension <= 0 || p.GlweDimension <= 0 {
		return fmt.Errorf("shortint: non-positive dimension (%d, %d)", p.LweDimension, p.GlweDimension)
	}
	if p.PolynomialSize < 4 || p.PolynomialSize&(p.PolynomialSize-1) != 0 {
		return fmt.Errorf("shortint: polynomial size %d is not a power of two", p.PolynomialSize)
	}
	if p.MessageModulus < 2 || p.MessageModulus&(p.MessageModulus-1) != 0 {
		return fmt.Errorf("shortint: message modulus %d is not a power of two", p.MessageModulus)
	}
	if p.CarryModulus < 1 || p.CarryModulus&(p.CarryModulus-1) != 0 {
		return fmt.Errorf("shortint: carry modulus %d is not a power of two", p.CarryModulus)
	}
	if uint64(p.PolynomialSize) < p.MessageModulus*p.CarryModulus {
		return fmt.Errorf("shortint: polynomial size %d cannot hold %d lookup boxes", p.PolynomialSize, p.MessageModulus*p.CarryModulus)
	}
	if p.PBSBaseLog*p.PBSLevel > 64 || p.KSBaseLog*p.KSLevel > 64 {
		return fmt.Errorf("shortint: decomposition exceeds the torus width")
	}
	if p.MaxNoiseLevel < NoiseLevelNominal {
		return fmt.Errorf("shortint: max noise level %d below nominal", p.MaxNoiseLevel)
	}
	return nil
}

// MessageSpace returns MessageModulus * CarryModulus, the number of
// distinguishable plaintexts under the padding bit.
func (p Parameters) MessageSpace() uint64 {
	return p.MessageModulus * p.CarryModulus
}

// Delta returns the plaintext encoding step.
func (p Parameters) Delta() uint64 {
	return core.EncodeDelta[uint64](p.MessageSpace())
}

// MaxDegree returns the largest representable plaintext bound.
func (p Parameters) MaxDegree() Degree {
	return Degree(p.MessageSpace() - 1)
}

// BigLweDimension returns the dimension of sample-extracted
// ciphertexts, GlweDimension * PolynomialSize.
func (p Parameters) BigLweDimension() int {
	return p.GlweDimension * p.PolynomialSize
}

// CiphertextLweDimension returns the dimension ciphertexts carry
// between operations under this order.
func (p Parameters) CiphertextLweDimension() int {
	if p.PBSOrder == OrderKeyswitchBootstrap {
		return p.BigLweDimension()
	}
	return p.LweDimension
}

// PBSDecomposition returns the external-product decomposition.
func (p Parameters) PBSDecomposition() core.DecompositionParameters {
	return core.DecompositionParameters{BaseLog: p.PBSBaseLog, Level: p.PBSLevel}
}

// KSDecomposition returns the keyswitch decomposition.
func (p Parameters) KSDecomposition() core.DecompositionParameters {
	return core.DecompositionParameters{BaseLog: p.KSBaseLog, Level: p.KSLevel}
}
