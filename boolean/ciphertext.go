// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package boolean

import "github.com/luxfi/tfhe/core"

// Ciphertext is one encrypted bit under the small LWE key.
type Ciphertext struct {
	CT core.LWECiphertext[uint32]
}

// Clone returns a deep copy.
func (c *Ciphertext) Clone() *Ciphertext {
	return &Ciphertext{CT: c.CT.Clone()}
}

// CopyFrom overwrites c with src, reusing the buffer when sizes match.
func (c *Ciphertext) CopyFrom(src *Ciphertext) {
	c.CT.CopyFrom(src.CT)
}
