// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package core

import "fmt"

// KeyswitchKey switches ciphertexts from a large input key (typically
// the flattened GLWE key after sample extraction) down to the small LWE
// key. Entry (i, j) encrypts s_in[i] * gadget_j under the output key.
type KeyswitchKey[T Torus] struct {
	// Data holds inputDim*level output-sized LWE ciphertexts back to
	// back, entry (i, j) at index i*level+j.
	Data []T

	InputDimension  int
	OutputDimension int
	Decomp          DecompositionParameters
}

// Entry returns the LWE ciphertext for input coefficient i, digit j.
func (ksk *KeyswitchKey[T]) Entry(i, j int) LWECiphertext[T] {
	size := ksk.OutputDimension + 1
	off := (i*ksk.Decomp.Level + j) * size
	return LWECiphertextFromData(ksk.Data[off : off+size])
}

// GenKeyswitchKey generates a keyswitching key from inKey to outKey
// under the given modular noise.
func GenKeyswitchKey[T Torus](inKey, outKey LWESecretKey[T], decomp DecompositionParameters, noiseStdDev float64, g *Generator) *KeyswitchKey[T] {
	inDim := inKey.Dimension()
	outDim := outKey.Dimension()
	level := decomp.Level

	ksk := &KeyswitchKey[T]{
		Data:            make([]T, inDim*level*(outDim+1)),
		InputDimension:  inDim,
		OutputDimension: outDim,
		Decomp:          decomp,
	}

	decomposer := NewSignedDecomposer[T](decomp)
	for i := 0; i < inDim; i++ {
		for j := 0; j < level; j++ {
			pt := inKey.Value[i] * decomposer.GadgetElement(j)
			EncryptLWEAssign(outKey, pt, noiseStdDev, g, ksk.Entry(i, j))
		}
	}
	return ksk
}

// KeyswitchAssign switches input down to the output key, writing into
// out. out must be sized for the output dimension; input's mask
// dimension must match the key's input dimension.
func (ksk *KeyswitchKey[T]) KeyswitchAssign(input, out LWECiphertext[T]) error {
	if input.Dimension() != ksk.InputDimension {
		return fmt.Errorf("%w: keyswitch input dimension %d, key expects %d", ErrKeyDimensionMismatch, input.Dimension(), ksk.InputDimension)
	}
	if out.Dimension() != ksk.OutputDimension {
		return fmt.Errorf("%w: keyswitch output dimension %d, key produces %d", ErrKeyDimensionMismatch, out.Dimension(), ksk.OutputDimension)
	}

	out.Clear()
	*out.Body() = *input.Body()

	decomposer := NewSignedDecomposer[T](ksk.Decomp)
	digits := make([]T, ksk.Decomp.Level)
	for i, a := range input.Mask() {
		decomposer.DecomposeAssign(a, digits)
		for j, d := range digits {
			if d == 0 {
				continue
			}
			out.MulSubAssign(d, ksk.Entry(i, j))
		}
	}
	return nil
}
