// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package core implements the lattice layer of the library: LWE and GLWE
// ciphertexts over a native power-of-two modulus, signed gadget
// decomposition, the negacyclic Fourier transform, bootstrapping and
// keyswitching key material, and the blind-rotation bootstrap engine.
//
// Everything is generic over the two supported torus widths: uint32 for
// the boolean scheme and uint64 for shortint. Arithmetic is carried out
// modulo the native word size of the scalar type, so wrapping is free.
package core

import (
	"math"
	"math/bits"
)

// Torus is the set of supported ciphertext scalar types. A value t of a
// Torus type represents the real torus element t / 2^w, with w the width
// of the type.
type Torus interface {
	uint32 | uint64
}

// TorusBits returns the width in bits of the torus type T.
func TorusBits[T Torus]() int {
	return bits.Len64(uint64(^T(0)))
}

// ToSignedFloat interprets v as a signed two's-complement value and
// returns it as a float64. This is the representation consumed by the
// Fourier transform.
func ToSignedFloat[T Torus](v T) float64 {
	if TorusBits[T]() == 32 {
		return float64(int32(uint32(v)))
	}
	return float64(int64(uint64(v)))
}

const twoPow64 float64 = 18446744073709551616

// FromFloat rounds x to the nearest integer and reduces it modulo 2^w.
// The 32-bit case wraps through the exact int64 conversion. The 64-bit
// case first folds x into [0, 2^64) in the float domain: values coming
// out of the inverse transform are unreduced integer convolutions that
// can exceed the signed 64-bit range.
func FromFloat[T Torus](x float64) T {
	x = math.Round(x)
	if TorusBits[T]() == 32 {
		return T(int64(x))
	}
	x -= math.Floor(x/twoPow64) * twoPow64
	if x >= twoPow64/2 {
		return T(int64(x - twoPow64))
	}
	return T(int64(x))
}

// EncodeDelta returns the fixed-point encoding step 2^(w-1) / space,
// leaving one bit of padding above the plaintext.
func EncodeDelta[T Torus](space uint64) T {
	return T((uint64(1) << (TorusBits[T]() - 1)) / space)
}

// Encode maps the integer message m to the torus via the encoding step.
func Encode[T Torus](m uint64, delta T) T {
	return T(m) * delta
}

// Decode rounds the torus value pt to the nearest multiple of delta and
// returns the corresponding integer. Adding half the step first folds
// small negative noise back to zero through the modular wrap.
func Decode[T Torus](pt, delta T) uint64 {
	return uint64((pt + delta/2) / delta)
}
