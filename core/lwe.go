// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package core

// LWECiphertext is an LWE sample: a mask of n scalar coefficients
// followed by one body scalar, stored contiguously. The phase of the
// sample is body - <mask, secret>.
type LWECiphertext[T Torus] struct {
	// Data holds the mask in Data[:n] and the body in Data[n].
	Data []T
}

// NewLWECiphertext allocates a zero LWE ciphertext for the given mask
// dimension.
func NewLWECiphertext[T Torus](dimension int) LWECiphertext[T] {
	return LWECiphertext[T]{Data: make([]T, dimension+1)}
}

// LWECiphertextFromData wraps an existing buffer of n+1 elements.
func LWECiphertextFromData[T Torus](data []T) LWECiphertext[T] {
	return LWECiphertext[T]{Data: data}
}

// Dimension returns the mask dimension n.
func (c LWECiphertext[T]) Dimension() int { return len(c.Data) - 1 }

// Size returns the total element count n+1.
func (c LWECiphertext[T]) Size() int { return len(c.Data) }

// Mask returns the mask view.
func (c LWECiphertext[T]) Mask() []T { return c.Data[:len(c.Data)-1] }

// Body returns a pointer to the body scalar.
func (c LWECiphertext[T]) Body() *T { return &c.Data[len(c.Data)-1] }

// Clone returns a deep copy.
func (c LWECiphertext[T]) Clone() LWECiphertext[T] {
	out := LWECiphertext[T]{Data: make([]T, len(c.Data))}
	copy(out.Data, c.Data)
	return out
}

// CopyFrom overwrites c with src, reusing the buffer when the sizes
// match and reallocating otherwise.
func (c *LWECiphertext[T]) CopyFrom(src LWECiphertext[T]) {
	if len(c.Data) != len(src.Data) {
		c.Data = make([]T, len(src.Data))
	}
	copy(c.Data, src.Data)
}

// Clear zeroes the ciphertext.
func (c LWECiphertext[T]) Clear() {
	for i := range c.Data {
		c.Data[i] = 0
	}
}

// AddAssign sets c += other.
func (c LWECiphertext[T]) AddAssign(other LWECiphertext[T]) {
	for i := range c.Data {
		c.Data[i] += other.Data[i]
	}
}

// SubAssign sets c -= other.
func (c LWECiphertext[T]) SubAssign(other LWECiphertext[T]) {
	for i := range c.Data {
		c.Data[i] -= other.Data[i]
	}
}

// NegAssign sets c = -c.
func (c LWECiphertext[T]) NegAssign() {
	for i := range c.Data {
		c.Data[i] = -c.Data[i]
	}
}

// PlaintextAddAssign adds an encoded plaintext to the body, leaving the
// mask untouched.
func (c LWECiphertext[T]) PlaintextAddAssign(pt T) {
	*c.Body() += pt
}

// CleartextMulAssign multiplies every coefficient by the cleartext
// scalar s.
func (c LWECiphertext[T]) CleartextMulAssign(s T) {
	for i := range c.Data {
		c.Data[i] *= s
	}
}

// MulSubAssign sets c -= s * other, the accumulation step of the
// keyswitch. s may hold a wrapped signed digit.
func (c LWECiphertext[T]) MulSubAssign(s T, other LWECiphertext[T]) {
	for i := range c.Data {
		c.Data[i] -= s * other.Data[i]
	}
}

// LWESecretKey is a binary LWE secret key. Coefficients are 0 or 1,
// stored as torus scalars.
type LWESecretKey[T Torus] struct {
	Value []T
}

// NewLWESecretKey samples a fresh binary key of the given dimension.
func NewLWESecretKey[T Torus](dimension int, g *Generator) LWESecretKey[T] {
	sk := LWESecretKey[T]{Value: make([]T, dimension)}
	BinarySliceAssign(g, sk.Value)
	return sk
}

// Dimension returns the key dimension.
func (sk LWESecretKey[T]) Dimension() int { return len(sk.Value) }

// EncryptLWEAssign encrypts the encoded plaintext pt into ct under sk,
// with fresh gaussian noise of the given modular standard deviation.
func EncryptLWEAssign[T Torus](sk LWESecretKey[T], pt T, stdDev float64, g *Generator, ct LWECiphertext[T]) {
	mask := ct.Mask()
	UniformSliceAssign(g, mask)
	body := pt + GaussianTorus[T](g, stdDev)
	for i, a := range mask {
		body += a * sk.Value[i]
	}
	*ct.Body() = body
}

// EncryptLWEBodyAssign computes only the body for a mask that is already
// in place. Used by seeded and compact encryption, where the mask is
// regenerated from a public seed.
func EncryptLWEBodyAssign[T Torus](sk LWESecretKey[T], pt T, stdDev float64, g *Generator, ct LWECiphertext[T]) {
	body := pt + GaussianTorus[T](g, stdDev)
	for i, a := range ct.Mask() {
		body += a * sk.Value[i]
	}
	*ct.Body() = body
}

// DecryptLWE returns the phase body - <mask, key>. The caller decodes it.
func DecryptLWE[T Torus](sk LWESecretKey[T], ct LWECiphertext[T]) T {
	phase := *ct.Body()
	for i, a := range ct.Mask() {
		phase -= a * sk.Value[i]
	}
	return phase
}
