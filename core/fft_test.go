// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package core

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// schoolbookNegacyclicMul is the reference X^N+1 product, exact modulo
// the torus width.
func schoolbookNegacyclicMul[T Torus](a, b []T) []T {
	n := len(a)
	out := make([]T, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i+j < n {
				out[i+j] += a[i] * b[j]
			} else {
				out[i+j-n] -= a[i] * b[j]
			}
		}
	}
	return out
}

func TestFourierTransformerInvalidDegree(t *testing.T) {
	for _, n := range []int{0, 2, 3, 96} {
		_, err := NewFourierTransformer(n)
		require.Error(t, err, "degree %d", n)
	}
}

func TestFourierRoundTrip(t *testing.T) {
	const n = 512
	tr, err := NewFourierTransformer(n)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	p := make([]uint64, n)
	for i := range p {
		// Keep coefficients small enough that the float round trip is
		// exact; the full-width case is covered by the product test.
		p[i] = uint64(int64(rng.Intn(1<<20) - 1<<19))
	}

	fp := NewFourierPoly(n)
	ForwardPolyAssign(tr, p, fp)
	got := make([]uint64, n)
	BackwardPolyAssign(tr, fp, got)
	require.Equal(t, p, got)
}

func TestFourierNegacyclicProduct(t *testing.T) {
	t.Run("Uint64", func(t *testing.T) {
		testFourierNegacyclicProduct[uint64](t)
	})
	t.Run("Uint32", func(t *testing.T) {
		testFourierNegacyclicProduct[uint32](t)
	})
}

func testFourierNegacyclicProduct[T Torus](t *testing.T) {
	const n = 256
	tr, err := NewFourierTransformer(n)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(2))
	a := make([]T, n)
	b := make([]T, n)
	for i := range a {
		// One small operand keeps the product inside the f64 mantissa,
		// matching how the transform is used: decomposition digits times
		// full-width key polynomials.
		a[i] = T(rng.Intn(256) - 128)
		b[i] = T(rng.Intn(1 << 16))
	}

	want := schoolbookNegacyclicMul(a, b)

	fa := NewFourierPoly(n)
	fb := NewFourierPoly(n)
	got := make([]T, n)
	copy(got, a)
	PolyMulAssign(tr, got, b, fa, fb)

	require.Equal(t, want, got)
}

func TestBinaryPolyMulAddAssign(t *testing.T) {
	const n = 128
	rng := rand.New(rand.NewSource(3))

	s := make([]uint64, n)
	a := make([]uint64, n)
	for i := range s {
		s[i] = uint64(rng.Intn(2))
		a[i] = rng.Uint64()
	}

	want := schoolbookNegacyclicMul(s, a)

	got := make([]uint64, n)
	BinaryPolyMulAddAssign(s, a, got)
	require.Equal(t, want, got)

	// Accumulation on a non-zero target.
	BinaryPolyMulAddAssign(s, a, got)
	for i := range want {
		require.Equal(t, want[i]*2, got[i])
	}
}

func TestMonomialMul(t *testing.T) {
	const n = 8
	src := []uint64{1, 2, 3, 4, 5, 6, 7, 8}

	t.Run("SmallExponent", func(t *testing.T) {
		dst := make([]uint64, n)
		MonomialMulAssign(dst, src, 3)
		require.Equal(t, []uint64{^uint64(5), ^uint64(6), ^uint64(7), 1, 2, 3, 4, 5}, dst)
	})

	t.Run("WrappedExponent", func(t *testing.T) {
		// X^(n+e) = -X^e in the negacyclic ring.
		small := make([]uint64, n)
		big := make([]uint64, n)
		MonomialMulAssign(small, src, 3)
		MonomialMulAssign(big, src, n+3)
		for i := range small {
			require.Equal(t, -small[i], big[i])
		}
	})

	t.Run("DivUndoesMul", func(t *testing.T) {
		dst := make([]uint64, n)
		MonomialMulAssign(dst, src, 5)
		MonomialDivInPlace(dst, 5)
		require.Equal(t, src, dst)
	})
}
