// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package shortint

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// cmp runs a bivariate bootstrap producing an encrypted 0/1.
func (sk *ServerKey) cmp(a, b *Ciphertext, f func(x, y uint64) bool) (*Ciphertext, error) {
	return sk.UncheckedEvaluateBivariate(a, b, sk.GenerateLookupTableBivariate(func(x, y uint64) uint64 {
		return boolToUint(f(x, y))
	}))
}

// UncheckedEqual returns an encryption of 1 when a == b, 0 otherwise.
func (sk *ServerKey) UncheckedEqual(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.cmp(a, b, func(x, y uint64) bool { return x == y })
}

// UncheckedNotEqual returns a != b.
func (sk *ServerKey) UncheckedNotEqual(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.cmp(a, b, func(x, y uint64) bool { return x != y })
}

// UncheckedGreater returns a > b.
func (sk *ServerKey) UncheckedGreater(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.cmp(a, b, func(x, y uint64) bool { return x > y })
}

// UncheckedGreaterOrEqual returns a >= b.
func (sk *ServerKey) UncheckedGreaterOrEqual(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.cmp(a, b, func(x, y uint64) bool { return x >= y })
}

// UncheckedLess returns a < b.
func (sk *ServerKey) UncheckedLess(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.cmp(a, b, func(x, y uint64) bool { return x < y })
}

// UncheckedLessOrEqual returns a <= b.
func (sk *ServerKey) UncheckedLessOrEqual(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.cmp(a, b, func(x, y uint64) bool { return x <= y })
}

// SmartEqual returns a == b, refreshing operands in place if the
// bivariate packing would not fit.
func (sk *ServerKey) SmartEqual(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.smartBivariate(a, b, sk.UncheckedEqual)
}

// SmartNotEqual returns a != b with the same contract.
func (sk *ServerKey) SmartNotEqual(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.smartBivariate(a, b, sk.UncheckedNotEqual)
}

// SmartGreater returns a > b with the same contract.
func (sk *ServerKey) SmartGreater(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.smartBivariate(a, b, sk.UncheckedGreater)
}

// SmartGreaterOrEqual returns a >= b with the same contract.
func (sk *ServerKey) SmartGreaterOrEqual(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.smartBivariate(a, b, sk.UncheckedGreaterOrEqual)
}

// SmartLess returns a < b with the same contract.
func (sk *ServerKey) SmartLess(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.smartBivariate(a, b, sk.UncheckedLess)
}

// SmartLessOrEqual returns a <= b with the same contract.
func (sk *ServerKey) SmartLessOrEqual(a, b *Ciphertext) (*Ciphertext, error) {
	return sk.smartBivariate(a, b, sk.UncheckedLessOrEqual)
}

// ScalarEqual returns ct == s through one univariate bootstrap.
func (sk *ServerKey) ScalarEqual(ct *Ciphertext, s uint64) (*Ciphertext, error) {
	msgMod := sk.Params.MessageModulus
	return sk.ApplyLookupTable(ct, sk.GenerateLookupTable(func(x uint64) uint64 {
		return boolToUint(x%msgMod == s)
	}))
}

// ScalarGreater returns ct > s.
func (sk *ServerKey) ScalarGreater(ct *Ciphertext, s uint64) (*Ciphertext, error) {
	msgMod := sk.Params.MessageModulus
	return sk.ApplyLookupTable(ct, sk.GenerateLookupTable(func(x uint64) uint64 {
		return boolToUint(x%msgMod > s)
	}))
}

// ScalarLess returns ct < s.
func (sk *ServerKey) ScalarLess(ct *Ciphertext, s uint64) (*Ciphertext, error) {
	msgMod := sk.Params.MessageModulus
	return sk.ApplyLookupTable(ct, sk.GenerateLookupTable(func(x uint64) uint64 {
		return boolToUint(x%msgMod < s)
	}))
}
