// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package core

import (
	"fmt"
	"math/bits"
)

// BootstrapBuffersSize returns the element count Memory must hold to
// serve one accumulator of glweSize*polySize coefficients plus one
// output LWE of outputLweDimension+1 coefficients. Callers size through
// this query rather than recomputing the layout.
func BootstrapBuffersSize(glweSize, polySize, outputLweDimension int) int {
	return glweSize*polySize + outputLweDimension + 1
}

// Memory is the grow-only scratch arena a bootstrap engine carves its
// working views out of. It is reused across calls and never shrinks;
// like the engine that owns it, it is not safe for concurrent use.
type Memory[T Torus] struct {
	data []T
}

// AsBuffers returns the accumulator and LWE output views for a
// bootstrap against bsk, growing the arena if needed. The accumulator
// comes back as the trivial encryption of the constant polynomial
// plaintextTrue; the two views are disjoint slices of the same backing
// buffer.
func (m *Memory[T]) AsBuffers(bsk *FourierBootstrapKey[T], plaintextTrue T) (GLWECiphertext[T], LWECiphertext[T]) {
	glweSize := bsk.GlweSize()
	polySize := bsk.PolynomialSize()
	outDim := bsk.OutputLweDimension()

	need := BootstrapBuffersSize(glweSize, polySize, outDim)
	if len(m.data) < need {
		m.data = make([]T, need)
	}

	accLen := glweSize * polySize
	acc := GLWECiphertextFromData(m.data[:accLen], glweSize-1, polySize)
	out := LWECiphertextFromData(m.data[accLen : accLen+outDim+1])

	acc.TrivialConstantAssign(plaintextTrue)
	return acc, out
}

// Bootstrapper runs the programmable bootstrap and the keyswitch. It
// owns a Fourier transformer and the per-call working state (rotation
// buffer, decomposition planes, Fourier accumulators), so a single
// instance must not be shared between goroutines.
type Bootstrapper[T Torus] struct {
	Transformer *FourierTransformer
	Buffers     Memory[T]

	k        int
	polySize int
	decomp   DecompositionParameters

	decomposer *SignedDecomposer[T]

	// rotated holds X^{a_i} * acc - acc, the CMUX difference fed into
	// the external product.
	rotated GLWECiphertext[T]
	// digitPlanes[j] holds digit j of every coefficient of one
	// difference polynomial.
	digitPlanes [][]T
	fourierTmp  FourierPoly
	// fourierAcc[c] accumulates column c of the external product in the
	// evaluation domain.
	fourierAcc []FourierPoly
}

// NewBootstrapper builds an engine for the given GLWE geometry and
// external-product decomposition.
func NewBootstrapper[T Torus](k, polySize int, decomp DecompositionParameters) (*Bootstrapper[T], error) {
	t, err := NewFourierTransformer(polySize)
	if err != nil {
		return nil, fmt.Errorf("bootstrapper: %w", err)
	}

	b := &Bootstrapper[T]{
		Transformer: t,
		k:           k,
		polySize:    polySize,
		decomp:      decomp,
		decomposer:  NewSignedDecomposer[T](decomp),
		rotated:     NewGLWECiphertext[T](k, polySize),
		digitPlanes: make([][]T, decomp.Level),
		fourierTmp:  NewFourierPoly(polySize),
		fourierAcc:  make([]FourierPoly, k+1),
	}
	for j := range b.digitPlanes {
		b.digitPlanes[j] = make([]T, polySize)
	}
	for c := range b.fourierAcc {
		b.fourierAcc[c] = NewFourierPoly(polySize)
	}
	return b, nil
}

// modSwitch rounds the torus value x to the 2N-th roots-of-unity
// exponent group used by the blind rotation.
func modSwitch[T Torus](x T, polySize int) int {
	// bits.Len64(N) = log2(2N) for power-of-two N.
	shift := TorusBits[T]() - bits.Len64(uint64(polySize))
	return int((uint64(x)>>(shift-1))+1) >> 1 & (2*polySize - 1)
}

// BlindRotateAssign homomorphically evaluates acc(X^{-phase(input)}):
// acc is first rotated by the mod-switched body, then one CMUX per
// input mask coefficient multiplies in X^{a_i * s_i}. acc is mutated
// in place.
func (b *Bootstrapper[T]) BlindRotateAssign(input LWECiphertext[T], acc GLWECiphertext[T], bsk *FourierBootstrapKey[T]) error {
	if input.Dimension() != bsk.InputLweDimension() {
		return fmt.Errorf("%w: blind rotation input dimension %d, key expects %d", ErrKeyDimensionMismatch, input.Dimension(), bsk.InputLweDimension())
	}
	if acc.K != b.k || acc.N != b.polySize {
		return fmt.Errorf("%w: accumulator geometry (%d, %d), engine built for (%d, %d)", ErrKeyDimensionMismatch, acc.K, acc.N, b.k, b.polySize)
	}

	n2 := 2 * b.polySize

	// acc <- X^{-b~} * acc.
	bTilde := modSwitch(*input.Body(), b.polySize)
	if bTilde != 0 {
		for c := 0; c <= b.k; c++ {
			MonomialMulAssign(b.rotated.Poly(c), acc.Poly(c), n2-bTilde)
		}
		acc.CopyFrom(b.rotated)
	}

	mask := input.Mask()
	for i := 0; i < bsk.InputLweDimension(); i++ {
		aTilde := modSwitch(mask[i], b.polySize)
		if aTilde == 0 {
			continue
		}

		// rotated <- X^{a~_i} * acc - acc.
		for c := 0; c <= b.k; c++ {
			MonomialMulAssign(b.rotated.Poly(c), acc.Poly(c), aTilde)
		}
		b.rotated.SubAssign(acc)

		// acc += GGSW_i (.) rotated. When s_i = 1 this adds the
		// difference and completes the rotation; when s_i = 0 it adds an
		// encryption of zero.
		b.externalProductAddAssign(i, acc, bsk)
	}
	return nil
}

// externalProductAddAssign adds the external product of GGSW bit i with
// b.rotated onto acc, going through the Fourier domain.
func (b *Bootstrapper[T]) externalProductAddAssign(i int, acc GLWECiphertext[T], bsk *FourierBootstrapKey[T]) {
	level := b.decomp.Level
	for c := range b.fourierAcc {
		b.fourierAcc[c].Clear()
	}

	for r := 0; r <= b.k; r++ {
		b.decomposer.DecomposePolyAssign(b.rotated.Poly(r), b.digitPlanes)
		for j := 0; j < level; j++ {
			ForwardPolyAssign(b.Transformer, b.digitPlanes[j], b.fourierTmp)
			for c := 0; c <= b.k; c++ {
				MulAddAssign(b.fourierTmp, bsk.Poly(i, r, j, c), b.fourierAcc[c])
			}
		}
	}

	for c := 0; c <= b.k; c++ {
		BackwardPolyAddAssign(b.Transformer, b.fourierAcc[c], acc.Poly(c))
	}
}

// ProgrammableBootstrapAssign evaluates the function encoded in the
// accumulator on input's plaintext and writes the refreshed result to
// out, which must be sized for the key's output dimension. The
// accumulator is consumed.
func (b *Bootstrapper[T]) ProgrammableBootstrapAssign(input LWECiphertext[T], acc GLWECiphertext[T], bsk *FourierBootstrapKey[T], out LWECiphertext[T]) error {
	if out.Dimension() != bsk.OutputLweDimension() {
		return fmt.Errorf("%w: bootstrap output dimension %d, key produces %d", ErrKeyDimensionMismatch, out.Dimension(), bsk.OutputLweDimension())
	}
	if err := b.BlindRotateAssign(input, acc, bsk); err != nil {
		return err
	}
	acc.SampleExtractAssign(out)
	return nil
}

// Bootstrap refreshes input against the constant-true accumulator,
// returning a fresh encryption of sign(phase) * plaintextTrue in a
// newly allocated ciphertext. This is the plain (non-programmable)
// refresh used by the gate engine.
func (b *Bootstrapper[T]) Bootstrap(input LWECiphertext[T], bsk *FourierBootstrapKey[T], plaintextTrue T) (LWECiphertext[T], error) {
	acc, scratchOut := b.Buffers.AsBuffers(bsk, plaintextTrue)
	if err := b.ProgrammableBootstrapAssign(input, acc, bsk, scratchOut); err != nil {
		return LWECiphertext[T]{}, err
	}
	return scratchOut.Clone(), nil
}

// Keyswitch switches input to the key's output dimension, returning a
// freshly allocated ciphertext.
func (b *Bootstrapper[T]) Keyswitch(input LWECiphertext[T], ksk *KeyswitchKey[T]) (LWECiphertext[T], error) {
	out := NewLWECiphertext[T](ksk.OutputDimension)
	if err := ksk.KeyswitchAssign(input, out); err != nil {
		return LWECiphertext[T]{}, err
	}
	return out, nil
}

// BootstrapKeyswitch evaluates the lookup-table polynomial on ct in
// the big-key domain and switches the result back down, writing in
// place into ct's buffer (both steps preserve the small dimension).
func (b *Bootstrapper[T]) BootstrapKeyswitch(ct *LWECiphertext[T], lut []T, bsk *FourierBootstrapKey[T], ksk *KeyswitchKey[T]) error {
	acc, big := b.Buffers.AsBuffers(bsk, 0)
	acc.TrivialAssign(lut)
	if err := b.ProgrammableBootstrapAssign(*ct, acc, bsk, big); err != nil {
		return err
	}
	return ksk.KeyswitchAssign(big, *ct)
}

// KeyswitchBootstrap switches ct down to the small key first, then
// evaluates the lookup-table polynomial back up into ct's buffer,
// which must be sized for the bootstrap output dimension.
func (b *Bootstrapper[T]) KeyswitchBootstrap(ct *LWECiphertext[T], lut []T, bsk *FourierBootstrapKey[T], ksk *KeyswitchKey[T]) error {
	small := NewLWECiphertext[T](ksk.OutputDimension)
	if err := ksk.KeyswitchAssign(*ct, small); err != nil {
		return err
	}
	acc, _ := b.Buffers.AsBuffers(bsk, 0)
	acc.TrivialAssign(lut)
	return b.ProgrammableBootstrapAssign(small, acc, bsk, *ct)
}
