// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package core

// GLWECiphertext is a generalized LWE sample over the negacyclic ring
// Z[X]/(X^N+1): k mask polynomials followed by one body polynomial,
// stored in a single flat slice of (k+1)*N coefficients.
type GLWECiphertext[T Torus] struct {
	Data []T
	// K is the GLWE dimension (mask polynomial count).
	K int
	// N is the polynomial degree.
	N int
}

// NewGLWECiphertext allocates a zero GLWE ciphertext.
func NewGLWECiphertext[T Torus](k, n int) GLWECiphertext[T] {
	return GLWECiphertext[T]{Data: make([]T, (k+1)*n), K: k, N: n}
}

// GLWECiphertextFromData wraps an existing buffer of (k+1)*n elements.
func GLWECiphertextFromData[T Torus](data []T, k, n int) GLWECiphertext[T] {
	return GLWECiphertext[T]{Data: data, K: k, N: n}
}

// Size returns the GLWE size k+1.
func (c GLWECiphertext[T]) Size() int { return c.K + 1 }

// Poly returns the i-th polynomial (mask polynomials for i < K, body
// for i == K).
func (c GLWECiphertext[T]) Poly(i int) []T {
	return c.Data[i*c.N : (i+1)*c.N]
}

// Mask returns the mask coefficients (the first K polynomials).
func (c GLWECiphertext[T]) Mask() []T { return c.Data[:c.K*c.N] }

// Body returns the body polynomial.
func (c GLWECiphertext[T]) Body() []T { return c.Poly(c.K) }

// Clone returns a deep copy.
func (c GLWECiphertext[T]) Clone() GLWECiphertext[T] {
	out := GLWECiphertext[T]{Data: make([]T, len(c.Data)), K: c.K, N: c.N}
	copy(out.Data, c.Data)
	return out
}

// CopyFrom overwrites c's coefficients with src's.
func (c GLWECiphertext[T]) CopyFrom(src GLWECiphertext[T]) {
	copy(c.Data, src.Data)
}

// Clear zeroes the ciphertext.
func (c GLWECiphertext[T]) Clear() {
	for i := range c.Data {
		c.Data[i] = 0
	}
}

// AddAssign sets c += other.
func (c GLWECiphertext[T]) AddAssign(other GLWECiphertext[T]) {
	for i := range c.Data {
		c.Data[i] += other.Data[i]
	}
}

// SubAssign sets c -= other.
func (c GLWECiphertext[T]) SubAssign(other GLWECiphertext[T]) {
	for i := range c.Data {
		c.Data[i] -= other.Data[i]
	}
}

// TrivialAssign sets c to the trivial (noiseless, keyless) encryption of
// the body polynomial: all-zero mask, body copied in.
func (c GLWECiphertext[T]) TrivialAssign(body []T) {
	for i := range c.Mask() {
		c.Data[i] = 0
	}
	copy(c.Body(), body)
}

// TrivialConstantAssign sets c to the trivial encryption of the constant
// polynomial with every coefficient equal to v.
func (c GLWECiphertext[T]) TrivialConstantAssign(v T) {
	for i := range c.Mask() {
		c.Data[i] = 0
	}
	body := c.Body()
	for i := range body {
		body[i] = v
	}
}

// SampleExtractAssign extracts the constant coefficient of c into the
// LWE ciphertext out, which must have dimension K*N. The output is
// encrypted under the flattened GLWE secret key.
func (c GLWECiphertext[T]) SampleExtractAssign(out LWECiphertext[T]) {
	n := c.N
	mask := out.Mask()
	for j := 0; j < c.K; j++ {
		poly := c.Poly(j)
		row := mask[j*n : (j+1)*n]
		row[0] = poly[0]
		for i := 1; i < n; i++ {
			row[i] = -poly[n-i]
		}
	}
	*out.Body() = c.Body()[0]
}

// MonomialMulAssign writes X^e * src into dst (negacyclic), for
// 0 <= e < 2N. dst and src must not alias.
func MonomialMulAssign[T Torus](dst, src []T, e int) {
	n := len(src)
	if e >= n {
		e -= n
		for i := 0; i < n-e; i++ {
			dst[i+e] = -src[i]
		}
		for i := n - e; i < n; i++ {
			dst[i+e-n] = src[i]
		}
		return
	}
	for i := 0; i < n-e; i++ {
		dst[i+e] = src[i]
	}
	for i := n - e; i < n; i++ {
		dst[i+e-n] = -src[i]
	}
}

// MonomialDivInPlace multiplies the polynomial by X^{-e} in place, for
// 0 <= e < N. Used to center the lookup-table boxes.
func MonomialDivInPlace[T Torus](p []T, e int) {
	if e == 0 {
		return
	}
	n := len(p)
	tmp := make([]T, e)
	copy(tmp, p[:e])
	copy(p, p[e:])
	for i := 0; i < e; i++ {
		p[n-e+i] = -tmp[i]
	}
}

// BinaryPolyMulAddAssign computes out += s * a (negacyclic) where s is
// a binary polynomial, exactly, by accumulating a rotated copy of a for
// every set coefficient. Key generation relies on this being exact
// modulo 2^w; the float transform is reserved for evaluation, where its
// rounding error sits below the noise.
func BinaryPolyMulAddAssign[T Torus](s, a, out []T) {
	n := len(a)
	for i, si := range s {
		if si == 0 {
			continue
		}
		for j := 0; j < n-i; j++ {
			out[i+j] += a[j]
		}
		for j := n - i; j < n; j++ {
			out[i+j-n] -= a[j]
		}
	}
}

// BinaryPolyMulSubAssign computes out -= s * a (negacyclic) for a
// binary polynomial s, exactly.
func BinaryPolyMulSubAssign[T Torus](s, a, out []T) {
	n := len(a)
	for i, si := range s {
		if si == 0 {
			continue
		}
		for j := 0; j < n-i; j++ {
			out[i+j] -= a[j]
		}
		for j := n - i; j < n; j++ {
			out[i+j-n] += a[j]
		}
	}
}

// EncryptGLWEAssign encrypts the encoded plaintext polynomial pt into
// ct under sk with fresh gaussian noise.
func EncryptGLWEAssign[T Torus](sk GLWESecretKey[T], pt []T, stdDev float64, g *Generator, ct GLWECiphertext[T]) {
	UniformSliceAssign(g, ct.Mask())
	body := ct.Body()
	for i := range body {
		body[i] = pt[i] + GaussianTorus[T](g, stdDev)
	}
	for c := 0; c < sk.K; c++ {
		BinaryPolyMulAddAssign(sk.Poly(c), ct.Poly(c), body)
	}
}

// DecryptGLWEAssign writes the phase polynomial body - <mask, key>
// into out. The caller decodes coefficient by coefficient.
func DecryptGLWEAssign[T Torus](sk GLWESecretKey[T], ct GLWECiphertext[T], out []T) {
	copy(out, ct.Body())
	for c := 0; c < sk.K; c++ {
		BinaryPolyMulSubAssign(sk.Poly(c), ct.Poly(c), out)
	}
}

// GLWESecretKey is a binary GLWE secret key of k polynomials, stored
// flattened. The flattened view doubles as the "big" LWE secret key the
// bootstrap outputs to.
type GLWESecretKey[T Torus] struct {
	Value []T
	K     int
	N     int
}

// NewGLWESecretKey samples a fresh binary GLWE key.
func NewGLWESecretKey[T Torus](k, n int, g *Generator) GLWESecretKey[T] {
	sk := GLWESecretKey[T]{Value: make([]T, k*n), K: k, N: n}
	BinarySliceAssign(g, sk.Value)
	return sk
}

// Poly returns the j-th key polynomial.
func (sk GLWESecretKey[T]) Poly(j int) []T {
	return sk.Value[j*sk.N : (j+1)*sk.N]
}

// FlattenedLWEKey reinterprets the GLWE key as an LWE key of dimension
// K*N, the key under which sample-extracted ciphertexts live. The slice
// is shared, not copied.
func (sk GLWESecretKey[T]) FlattenedLWEKey() LWESecretKey[T] {
	return LWESecretKey[T]{Value: sk.Value}
}
