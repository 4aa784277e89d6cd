// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package core

import (
	"fmt"
	"sync"
)

// GGSWCiphertext encrypts a single bit of the LWE secret key as
// (k+1)*level GLWE rows. Row (r, j) is an encryption of zero with
// bit * gadget_j added to component r (mask components for r < k, the
// body for r == k).
type GGSWCiphertext[T Torus] struct {
	// Rows holds the (k+1)*level GLWE ciphertexts, indexed r*level+j.
	Rows []GLWECiphertext[T]
}

// BootstrapKey is the standard-domain LWE-to-GLWE bootstrapping key:
// one GGSW ciphertext per input key bit. It exists only as an
// intermediate; evaluation consumes the Fourier-domain form.
type BootstrapKey[T Torus] struct {
	Keys   []GGSWCiphertext[T]
	K      int
	N      int
	Decomp DecompositionParameters
}

// InputLweDimension returns the dimension of the key the bootstrap
// consumes.
func (bsk *BootstrapKey[T]) InputLweDimension() int { return len(bsk.Keys) }

// GenBootstrapKey generates a bootstrapping key from the small LWE key
// to the GLWE key under the given modular noise. The per-bit GGSW
// ciphertexts are independent, so they are generated by a parallel
// fan-out: each unit derives its own seeded generator and writes a
// disjoint region of the key, with a single join at the end.
func GenBootstrapKey[T Torus](lweKey LWESecretKey[T], glweKey GLWESecretKey[T], decomp DecompositionParameters, noiseStdDev float64, g *Generator) (*BootstrapKey[T], error) {
	n := lweKey.Dimension()
	k, polySize := glweKey.K, glweKey.N

	bsk := &BootstrapKey[T]{
		Keys:   make([]GGSWCiphertext[T], n),
		K:      k,
		N:      polySize,
		Decomp: decomp,
	}

	// Seeds are drawn sequentially up front; the generators built from
	// them run concurrently without sharing state.
	seeds := make([][]byte, n)
	for i := range seeds {
		seeds[i] = g.NewSeed()
	}

	decomposer := NewSignedDecomposer[T](decomp)

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rowGen, err := NewSeededGenerator(seeds[i])
			if err != nil {
				errs[i] = err
				return
			}
			bsk.Keys[i] = genGGSW(lweKey.Value[i], glweKey, decomposer, noiseStdDev, rowGen)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("bootstrap key generation: %w", err)
		}
	}
	return bsk, nil
}

func genGGSW[T Torus](bit T, glweKey GLWESecretKey[T], decomposer *SignedDecomposer[T], noiseStdDev float64, g *Generator) GGSWCiphertext[T] {
	k, n := glweKey.K, glweKey.N
	level := decomposer.Params().Level

	ggsw := GGSWCiphertext[T]{Rows: make([]GLWECiphertext[T], (k+1)*level)}
	for r := 0; r <= k; r++ {
		for j := 0; j < level; j++ {
			row := NewGLWECiphertext[T](k, n)

			// Encryption of zero: uniform mask, body = <mask, key> + e.
			UniformSliceAssign(g, row.Mask())
			body := row.Body()
			for i := range body {
				body[i] = GaussianTorus[T](g, noiseStdDev)
			}
			for c := 0; c < k; c++ {
				BinaryPolyMulAddAssign(glweKey.Poly(c), row.Poly(c), body)
			}

			// Gadget placement of the key bit, after the body so the
			// added term shifts the phase rather than cancelling out.
			row.Poly(r)[0] += bit * decomposer.GadgetElement(j)

			ggsw.Rows[r*level+j] = row
		}
	}
	return ggsw
}

// FourierBootstrapKey is the bootstrapping key transformed into the
// evaluation domain, the only form the blind rotation reads. It is
// immutable after construction and safe to share across engines.
type FourierBootstrapKey[T Torus] struct {
	// polys is indexed by (bit, row, column): for input bit i, GGSW row
	// rho = r*level+j, column polynomial c, the Fourier polynomial sits
	// at ((i*rows)+rho)*(k+1) + c.
	polys []FourierPoly

	inputLweDimension int
	k                 int
	n                 int
	decomp            DecompositionParameters
}

// NewFourierBootstrapKey converts a standard-domain bootstrapping key
// into the Fourier domain with the given transformer. The transformer's
// degree must match the key's polynomial size; a mismatch means the key
// material is internally inconsistent.
func NewFourierBootstrapKey[T Torus](bsk *BootstrapKey[T], t *FourierTransformer) (*FourierBootstrapKey[T], error) {
	if t.Degree() != bsk.N {
		return nil, fmt.Errorf("%w: transformer degree %d, key polynomial size %d", ErrKeyDimensionMismatch, t.Degree(), bsk.N)
	}

	n := bsk.InputLweDimension()
	k := bsk.K
	rows := (k + 1) * bsk.Decomp.Level

	fbsk := &FourierBootstrapKey[T]{
		polys:             make([]FourierPoly, n*rows*(k+1)),
		inputLweDimension: n,
		k:                 k,
		n:                 bsk.N,
		decomp:            bsk.Decomp,
	}

	idx := 0
	for i := 0; i < n; i++ {
		for rho := 0; rho < rows; rho++ {
			row := bsk.Keys[i].Rows[rho]
			for c := 0; c <= k; c++ {
				fp := NewFourierPoly(bsk.N)
				ForwardPolyAssign(t, row.Poly(c), fp)
				fbsk.polys[idx] = fp
				idx++
			}
		}
	}
	return fbsk, nil
}

// InputLweDimension returns the dimension of the key the bootstrap
// consumes.
func (fbsk *FourierBootstrapKey[T]) InputLweDimension() int { return fbsk.inputLweDimension }

// GlweDimension returns the GLWE dimension k.
func (fbsk *FourierBootstrapKey[T]) GlweDimension() int { return fbsk.k }

// GlweSize returns k+1.
func (fbsk *FourierBootstrapKey[T]) GlweSize() int { return fbsk.k + 1 }

// PolynomialSize returns the accumulator polynomial degree N.
func (fbsk *FourierBootstrapKey[T]) PolynomialSize() int { return fbsk.n }

// OutputLweDimension returns k*N, the dimension of the extracted sample.
func (fbsk *FourierBootstrapKey[T]) OutputLweDimension() int { return fbsk.k * fbsk.n }

// Decomposition returns the external-product decomposition parameters.
func (fbsk *FourierBootstrapKey[T]) Decomposition() DecompositionParameters { return fbsk.decomp }

// Poly returns the Fourier polynomial for input bit i, GGSW row
// (r, j), column c.
func (fbsk *FourierBootstrapKey[T]) Poly(i, r, j, c int) FourierPoly {
	rows := (fbsk.k + 1) * fbsk.decomp.Level
	return fbsk.polys[((i*rows)+r*fbsk.decomp.Level+j)*(fbsk.k+1)+c]
}

// RawPolys exposes the flat Fourier data for serialization.
func (fbsk *FourierBootstrapKey[T]) RawPolys() []FourierPoly { return fbsk.polys }

// FourierBootstrapKeyFromRaw rebuilds a key from serialized data.
func FourierBootstrapKeyFromRaw[T Torus](polys []FourierPoly, inputLweDimension, k, n int, decomp DecompositionParameters) (*FourierBootstrapKey[T], error) {
	rows := (k + 1) * decomp.Level
	if len(polys) != inputLweDimension*rows*(k+1) {
		return nil, fmt.Errorf("%w: got %d fourier polynomials, want %d", ErrKeyDimensionMismatch, len(polys), inputLweDimension*rows*(k+1))
	}
	for _, fp := range polys {
		if len(fp) != n/2 {
			return nil, fmt.Errorf("%w: fourier polynomial length %d, want %d", ErrKeyDimensionMismatch, len(fp), n/2)
		}
	}
	return &FourierBootstrapKey[T]{
		polys:             polys,
		inputLweDimension: inputLweDimension,
		k:                 k,
		n:                 n,
		decomp:            decomp,
	}, nil
}
