// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package core

// DecompositionParameters fixes a signed gadget decomposition: level
// digits in base 2^baseLog, approximating a torus element by
// sum_j d_j * 2^(w - (j+1)*baseLog) with digits in [-B/2, B/2).
type DecompositionParameters struct {
	BaseLog int
	Level   int
}

// SignedDecomposer performs the closest-representable signed
// decomposition used by both the external product and the keyswitch.
type SignedDecomposer[T Torus] struct {
	params DecompositionParameters
	bits   int
}

// NewSignedDecomposer returns a decomposer for the given parameters.
func NewSignedDecomposer[T Torus](params DecompositionParameters) *SignedDecomposer[T] {
	return &SignedDecomposer[T]{params: params, bits: TorusBits[T]()}
}

// Params returns the decomposition parameters.
func (d *SignedDecomposer[T]) Params() DecompositionParameters { return d.params }

// GadgetElement returns 2^(w - (j+1)*baseLog), the weight of digit j.
func (d *SignedDecomposer[T]) GadgetElement(j int) T {
	return T(1) << (d.bits - (j+1)*d.params.BaseLog)
}

// closestRepresentable rounds v to the nearest multiple of the smallest
// gadget weight.
func (d *SignedDecomposer[T]) closestRepresentable(v T) T {
	shift := d.bits - d.params.BaseLog*d.params.Level
	if shift == 0 {
		return v
	}
	rounding := (v >> (shift - 1)) & 1
	return ((v >> shift) + rounding) << shift
}

// DecomposeAssign writes the level digits of v into out[0:level], most
// significant weight first, each digit stored as a wrapped signed torus
// scalar in [-B/2, B/2).
func (d *SignedDecomposer[T]) DecomposeAssign(v T, out []T) {
	baseLog := d.params.BaseLog
	level := d.params.Level
	base := T(1) << baseLog
	digitMask := base - 1
	half := base >> 1

	state := d.closestRepresentable(v) >> (d.bits - baseLog*level)
	for j := level - 1; j >= 0; j-- {
		digit := state & digitMask
		state >>= baseLog
		// Center the digit in [-B/2, B/2), carrying into the next one.
		if digit >= half {
			digit -= base
			state++
		}
		out[j] = digit
	}
}

// DecomposePolyAssign decomposes every coefficient of p, scattering
// digit j of coefficient i into out[j][i].
func (d *SignedDecomposer[T]) DecomposePolyAssign(p []T, out [][]T) {
	baseLog := d.params.BaseLog
	level := d.params.Level
	base := T(1) << baseLog
	digitMask := base - 1
	half := base >> 1
	shift := d.bits - baseLog*level

	for i, v := range p {
		state := d.closestRepresentable(v) >> shift
		for j := level - 1; j >= 0; j-- {
			digit := state & digitMask
			state >>= baseLog
			if digit >= half {
				digit -= base
				state++
			}
			out[j][i] = digit
		}
	}
}

// Recompose returns sum_j digits[j] * gadget_j, the representable value
// the digits stand for. Test helper for the decomposition error bound.
func (d *SignedDecomposer[T]) Recompose(digits []T) T {
	var v T
	for j := 0; j < d.params.Level; j++ {
		v += digits[j] * d.GadgetElement(j)
	}
	return v
}
