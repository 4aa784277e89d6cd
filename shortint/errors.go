// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package shortint

import "errors"

var (
	// ErrNotEnoughRoom reports a checked operation whose result would
	// overflow the carry space or the noise budget. The operands are
	// untouched; callers can refresh and retry.
	ErrNotEnoughRoom = errors.New("shortint: not enough room in carry space")

	// ErrParamsTooSmall reports an operation that stays unsafe even
	// after refreshing its operands. No retry can succeed; the
	// parameter set cannot host the operation.
	ErrParamsTooSmall = errors.New("shortint: parameters too small for operation")

	// ErrDivisionByZero reports a scalar divisor of zero.
	ErrDivisionByZero = errors.New("shortint: division by zero")

	// ErrInvalidEncoding reports malformed serialized data.
	ErrInvalidEncoding = errors.New("shortint: invalid encoding")
)
