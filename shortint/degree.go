// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package shortint

// Degree is the inclusive worst-case bound on a ciphertext's plaintext
// value, tracked through every operation. It bounds the real content;
// it never looks at the encryption.
type Degree uint64

// NoiseLevel counts how many nominal noise budgets a ciphertext has
// accumulated since its last refresh. Fresh and bootstrapped
// ciphertexts sit at NoiseLevelNominal; trivial ones at NoiseLevelZero.
type NoiseLevel uint64

const (
	NoiseLevelZero    NoiseLevel = 0
	NoiseLevelNominal NoiseLevel = 1
)

func minDegree(a, b Degree) Degree {
	if a < b {
		return a
	}
	return b
}

func maxDegree(a, b Degree) Degree {
	if a > b {
		return a
	}
	return b
}

// AfterBitand bounds a & b: neither operand can contribute bits above
// its own bound, so the result is bounded by the smaller one.
func (d Degree) AfterBitand(other Degree) Degree {
	return minDegree(d, other)
}

// AfterBitor bounds a | b by scanning every value the smaller operand
// can take against the larger bound.
func (d Degree) AfterBitor(other Degree) Degree {
	max := maxDegree(d, other)
	min := minDegree(d, other)

	result := max
	for i := Degree(0); i <= min; i++ {
		if v := max | i; v > result {
			result = v
		}
	}
	return result
}

// AfterBitxor bounds a ^ b the same way.
func (d Degree) AfterBitxor(other Degree) Degree {
	max := maxDegree(d, other)
	min := minDegree(d, other)

	result := max
	for i := Degree(0); i <= min; i++ {
		if v := max ^ i; v > result {
			result = v
		}
	}
	return result
}

// AfterLeftShift bounds (a << shift) % modulus over every reachable
// value.
func (d Degree) AfterLeftShift(shift int, modulus uint64) Degree {
	var result Degree
	for i := uint64(0); i <= uint64(d); i++ {
		if v := Degree(i << shift % modulus); v > result {
			result = v
		}
	}
	return result
}

// AfterFunction bounds f(a) over every reachable value.
func (d Degree) AfterFunction(f func(uint64) uint64) Degree {
	var result Degree
	for i := uint64(0); i <= uint64(d); i++ {
		if v := Degree(f(i)); v > result {
			result = v
		}
	}
	return result
}
