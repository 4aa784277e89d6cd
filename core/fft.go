// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package core

import (
	"fmt"
	"math"
	"math/bits"
)

// FourierPoly holds the evaluation-domain representation of a degree-N
// negacyclic polynomial: N/2 complex points.
type FourierPoly []complex128

// NewFourierPoly allocates a Fourier polynomial for degree n.
func NewFourierPoly(n int) FourierPoly {
	return make(FourierPoly, n/2)
}

// FourierTransformer computes negacyclic convolutions over the torus
// through the folded complex FFT: a degree-N real polynomial is mapped
// to N/2 complex coefficients via the ring isomorphism
// R[X]/(X^N+1) -> C[X]/(X^(N/2)-i), twisted, and transformed with a
// half-size FFT. All tables are precomputed at construction; the
// transform itself allocates nothing.
type FourierTransformer struct {
	n    int
	half int

	// twist[j] = exp(i*pi*j/N); twistInv folds in the 1/(N/2) inverse
	// scaling.
	twist    []complex128
	twistInv []complex128

	// Stage-ordered butterfly twiddles for the forward (Cooley-Tukey)
	// and inverse (Gentleman-Sande) passes.
	tw    []complex128
	twInv []complex128
}

// NewFourierTransformer builds the tables for polynomial degree n,
// which must be a power of two >= 4.
func NewFourierTransformer(n int) (*FourierTransformer, error) {
	if n < 4 || n&(n-1) != 0 {
		return nil, fmt.Errorf("fourier transformer: invalid polynomial degree %d", n)
	}

	half := n / 2
	t := &FourierTransformer{
		n:        n,
		half:     half,
		twist:    make([]complex128, half),
		twistInv: make([]complex128, half),
		tw:       make([]complex128, 0, half-1),
		twInv:    make([]complex128, 0, half-1),
	}

	scale := 1 / float64(half)
	for j := 0; j < half; j++ {
		theta := math.Pi * float64(j) / float64(n)
		sin, cos := math.Sincos(theta)
		t.twist[j] = complex(cos, sin)
		t.twistInv[j] = complex(cos*scale, -sin*scale)
	}

	// Forward stages m = 2, 4, ..., half; inverse stages in reverse.
	for m := 2; m <= half; m <<= 1 {
		for j := 0; j < m/2; j++ {
			sin, cos := math.Sincos(2 * math.Pi * float64(j) / float64(m))
			t.tw = append(t.tw, complex(cos, sin))
		}
	}
	for m := half; m >= 2; m >>= 1 {
		for j := 0; j < m/2; j++ {
			sin, cos := math.Sincos(2 * math.Pi * float64(j) / float64(m))
			t.twInv = append(t.twInv, complex(cos, -sin))
		}
	}

	return t, nil
}

// Degree returns the polynomial degree N the transformer is sized for.
func (t *FourierTransformer) Degree() int { return t.n }

func (t *FourierTransformer) bitReversePermute(a []complex128) {
	shift := 64 - bits.Len64(uint64(t.half-1))
	for i := range a {
		j := int(bits.Reverse64(uint64(i)) >> shift)
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}
}

// fftInPlace runs the forward butterflies; input is permuted first so
// both input and output are in natural order.
func (t *FourierTransformer) fftInPlace(a []complex128) {
	t.bitReversePermute(a)

	idx := 0
	for m := 2; m <= t.half; m <<= 1 {
		mHalf := m >> 1
		for k := 0; k < t.half; k += m {
			for j := 0; j < mHalf; j++ {
				w := t.tw[idx+j]
				u := a[k+j]
				v := a[k+j+mHalf] * w
				a[k+j] = u + v
				a[k+j+mHalf] = u - v
			}
		}
		idx += mHalf
	}
}

// ifftInPlace runs the inverse butterflies (no scaling; the twistInv
// table carries the 1/(N/2) factor).
func (t *FourierTransformer) ifftInPlace(a []complex128) {
	idx := 0
	for m := t.half; m >= 2; m >>= 1 {
		mHalf := m >> 1
		for k := 0; k < t.half; k += m {
			for j := 0; j < mHalf; j++ {
				w := t.twInv[idx+j]
				u := a[k+j]
				v := a[k+j+mHalf]
				a[k+j] = u + v
				a[k+j+mHalf] = (u - v) * w
			}
		}
		idx += mHalf
	}

	t.bitReversePermute(a)
}

// ForwardPolyAssign transforms the torus polynomial p into out.
func ForwardPolyAssign[T Torus](t *FourierTransformer, p []T, out FourierPoly) {
	half := t.half
	for j := 0; j < half; j++ {
		out[j] = complex(ToSignedFloat(p[j]), ToSignedFloat(p[j+half])) * t.twist[j]
	}
	t.fftInPlace(out)
}

// BackwardPolyAssign transforms fp back to the torus, overwriting p.
// fp is consumed as scratch.
func BackwardPolyAssign[T Torus](t *FourierTransformer, fp FourierPoly, p []T) {
	t.ifftInPlace(fp)
	half := t.half
	for j := 0; j < half; j++ {
		z := fp[j] * t.twistInv[j]
		p[j] = FromFloat[T](real(z))
		p[j+half] = FromFloat[T](imag(z))
	}
}

// BackwardPolyAddAssign transforms fp back to the torus and adds the
// result onto p. fp is consumed as scratch.
func BackwardPolyAddAssign[T Torus](t *FourierTransformer, fp FourierPoly, p []T) {
	t.ifftInPlace(fp)
	half := t.half
	for j := 0; j < half; j++ {
		z := fp[j] * t.twistInv[j]
		p[j] += FromFloat[T](real(z))
		p[j+half] += FromFloat[T](imag(z))
	}
}

// MulAddAssign sets acc += a * b pointwise.
func MulAddAssign(a, b, acc FourierPoly) {
	for i := range acc {
		acc[i] += a[i] * b[i]
	}
}

// Clear zeroes the Fourier polynomial.
func (fp FourierPoly) Clear() {
	for i := range fp {
		fp[i] = 0
	}
}

// PolyMulAssign computes the negacyclic product p *= q through the
// transformer, using fa and fb as scratch. Used at key-generation time,
// where a full transform round trip per product is acceptable.
func PolyMulAssign[T Torus](t *FourierTransformer, p, q []T, fa, fb FourierPoly) {
	ForwardPolyAssign(t, p, fa)
	ForwardPolyAssign(t, q, fb)
	for i := range fa {
		fa[i] *= fb[i]
	}
	BackwardPolyAssign(t, fa, p)
}

// PolyMulAddAssign computes out += p * q (negacyclic), using fa and fb
// as scratch.
func PolyMulAddAssign[T Torus](t *FourierTransformer, p, q []T, fa, fb FourierPoly, out []T) {
	ForwardPolyAssign(t, p, fa)
	ForwardPolyAssign(t, q, fb)
	for i := range fa {
		fa[i] *= fb[i]
	}
	BackwardPolyAddAssign(t, fa, out)
}
