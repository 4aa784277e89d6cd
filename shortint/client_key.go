// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package shortint

import (
	"fmt"

	"github.com/luxfi/tfhe/core"
)

// ClientKey holds the secret material: the small LWE key and the GLWE
// key whose flattening is the big LWE key. Secret bits are only read
// here and in server-key derivation.
type ClientKey struct {
	Params Parameters

	glweKey  core.GLWESecretKey[uint64]
	smallKey core.LWESecretKey[uint64]

	g *core.Generator
}

// NewClientKey samples a fresh client key for the parameter set.
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
		glweKey:  core.NewGLWESecretKey[uint64](params.GlweDimension, params.PolynomialSize, g),
		smallKey: core.NewLWESecretKey[uint64](params.LweDimension, g),
		g:        g,
	}, nil
}

// bigKey returns the flattened GLWE key, sharing its backing slice.
func (ck *ClientKey) bigKey() core.LWESecretKey[uint64] {
	return ck.glweKey.FlattenedLWEKey()
}

// encryptionKey returns the key and noise ciphertexts are produced
// under, per the parameter set's order.
func (ck *ClientKey) encryptionKey() (core.LWESecretKey[uint64], float64) {
	if ck.Params.PBSOrder == OrderKeyswitchBootstrap {
		return ck.bigKey(), ck.Params.GlweNoiseStdDev
	}
	return ck.smallKey, ck.Params.LweNoiseStdDev
}

func (ck *ClientKey) newCiphertext(degree Degree, noise NoiseLevel) *Ciphertext {
	return &Ciphertext{
		CT:             core.NewLWECiphertext[uint64](ck.Params.CiphertextLweDimension()),
		Degree:         degree,
		NoiseLevel:     noise,
		MessageModulus: ck.Params.MessageModulus,
		CarryModulus:   ck.Params.CarryModulus,
		PBSOrder:       ck.Params.PBSOrder,
	}
}

// Encrypt encrypts m modulo MessageModulus. The degree bound is the
// message bound, not the plaintext: fresh ciphertexts never leak their
// content through metadata.
func (ck *ClientKey) Encrypt(m uint64) *Ciphertext {
	m %= ck.Params.MessageModulus
	ct := ck.newCiphertext(Degree(ck.Params.MessageModulus-1), NoiseLevelNominal)
	sk, std := ck.encryptionKey()
	core.EncryptLWEAssign(sk, core.Encode(m, ck.Params.Delta()), std, ck.g, ct.CT)
	return ct
}

// EncryptMessageAndCarry encrypts m modulo the full message-and-carry
// space, with the bound widened to match.
func (ck *ClientKey) EncryptMessageAndCarry(m uint64) *Ciphertext {
	space := ck.Params.MessageSpace()
	m %= space
	ct := ck.newCiphertext(Degree(space-1), NoiseLevelNominal)
	sk, std := ck.encryptionKey()
	core.EncryptLWEAssign(sk, core.Encode(m, ck.Params.Delta()), std, ck.g, ct.CT)
	return ct
}

// Decrypt returns the message modulo MessageModulus.
func (ck *ClientKey) Decrypt(ct *Ciphertext) uint64 {
	return ck.DecryptMessageAndCarry(ct) % ck.Params.MessageModulus
}

// DecryptMessageAndCarry returns the full plaintext including carry
// bits.
func (ck *ClientKey) DecryptMessageAndCarry(ct *Ciphertext) uint64 {
	sk, _ := ck.encryptionKey()
	phase := core.DecryptLWE(sk, ct.CT)
	return core.Decode(phase, ck.Params.Delta()) % ck.Params.MessageSpace()
}
