// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package boolean implements homomorphic boolean gates over 32-bit LWE
// ciphertexts. A bit is encoded as +-1/8 of the torus; gates compute a
// small linear combination whose sign carries the result, then refresh
// it through a sign bootstrap back to a fresh +-1/8.
package boolean

import (
	"fmt"

	"github.com/luxfi/tfhe/core"
)

// PlaintextTrue is the 1/8 torus encoding of true; false is its
// negation.
const (
	PlaintextTrue  uint32 = 1 << 29
	PlaintextFalse uint32 = ^PlaintextTrue + 1
)

// Parameters fixes one boolean instantiation.
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
}

// DefaultParameters is the standard gate parameter set.
var DefaultParameters = Parameters{
	LweDimension:    722,
	GlweDimension:   2,
	PolynomialSize:  512,
	LweNoiseStdDev:  0.000013071021089943935,
	GlweNoiseStdDev: 0.00000004990272175010415,
	PBSBaseLog:      6,
	PBSLevel:        3,
	KSBaseLog:       3,
	KSLevel:         4,
}

// TestParameters is an insecure, fast set for unit tests.
var TestParameters = Parameters{
	LweDimension:    16,
	GlweDimension:   1,
	PolynomialSize:  512,
	LweNoiseStdDev:  0.00000095367431640625, // 2^-20
	GlweNoiseStdDev: 0.00000095367431640625,
	PBSBaseLog:      8,
	PBSLevel:        3,
	KSBaseLog:       4,
	KSLevel:         7,
}

// Validate checks internal consistency.
func (p Parameters) Validate() error {
	if p.LweDimension <= 0 || p.GlweDimension <= 0 {
		return fmt.Errorf("boolean: non-positive dimension (%d, %d)", p.LweDimension, p.GlweDimension)
	}
	if p.PolynomialSize < 4 || p.PolynomialSize&(p.PolynomialSize-1) != 0 {
		return fmt.Errorf("boolean: polynomial size %d is not a power of two", p.PolynomialSize)
	}
	if p.PBSBaseLog*p.PBSLevel > 32 || p.KSBaseLog*p.KSLevel > 32 {
		return fmt.Errorf("boolean: decomposition exceeds the torus width")
	}
	return nil
}

// BigLweDimension returns the sample-extracted dimension.
func (p Parameters) BigLweDimension() int {
	return p.GlweDimension * p.PolynomialSize
}

// PBSDecomposition returns the external-product decomposition.
func (p Parameters) PBSDecomposition() core.DecompositionParameters {
	return core.DecompositionParameters{BaseLog: p.PBSBaseLog, Level: p.PBSLevel}
}

// KSDecomposition returns the keyswitch decomposition.
func (p Parameters) KSDecomposition() core.DecompositionParameters {
	return core.DecompositionParameters{BaseLog: p.KSBaseLog, Level: p.KSLevel}
}
