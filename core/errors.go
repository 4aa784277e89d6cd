// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package core

import "errors"

// ErrKeyDimensionMismatch reports evaluation-key material whose
// dimensions do not line up with the ciphertexts or with each other.
// This is a configuration error; callers are not expected to recover.
var ErrKeyDimensionMismatch = errors.New("tfhe: key dimension mismatch")
