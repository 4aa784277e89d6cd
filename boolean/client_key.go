// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package boolean

import (
	"fmt"

	"github.com/luxfi/tfhe/core"
)

// ClientKey holds the secret material for encryption and decryption.
type ClientKey struct {
	Params Parameters

	glweKey  core.GLWESecretKey[uint32]
	smallKey core.LWESecretKey[uint32]

	g *core.Generator
}

// NewClientKey samples a fresh client key.
func NewClientKey(params Parameters) (*ClientKey, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	g, err := core.NewGenerator()
	if err != nil {
		return nil, fmt.Errorf("client key: %w", err)
	}
	return &ClientKey{
		Params:   params,
		glweKey:  core.NewGLWESecretKey[uint32](params.GlweDimension, params.PolynomialSize, g),
		smallKey: core.NewLWESecretKey[uint32](params.LweDimension, g),
		g:        g,
	}, nil
}

// bigKey returns the flattened GLWE key, sharing its backing slice.
func (ck *ClientKey) bigKey() core.LWESecretKey[uint32] {
	return ck.glweKey.FlattenedLWEKey()
}

// Encrypt encrypts one bit as +-1/8.
func (ck *ClientKey) Encrypt(b bool) *Ciphertext {
	pt := PlaintextFalse
	if b {
		pt = PlaintextTrue
	}
	ct := core.NewLWECiphertext[uint32](ck.Params.LweDimension)
	core.EncryptLWEAssign(ck.smallKey, pt, ck.Params.LweNoiseStdDev, ck.g, ct)
	return &Ciphertext{CT: ct}
}

// Decrypt returns the sign of the phase: true for the upper half of the
// torus.
func (ck *ClientKey) Decrypt(ct *Ciphertext) bool {
	phase := core.DecryptLWE(ck.smallKey, ct.CT)
	return core.ToSignedFloat(phase) > 0
}
