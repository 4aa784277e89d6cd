// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGLWEEncryptDecrypt(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	const k, n = 2, 64
	const space = 4
	sk := NewGLWESecretKey[uint64](k, n, g)
	delta := EncodeDelta[uint64](space)

	pt := make([]uint64, n)
	for i := range pt {
		pt[i] = Encode(uint64(i)%space, delta)
	}

	ct := NewGLWECiphertext[uint64](k, n)
	EncryptGLWEAssign(sk, pt, math.Exp2(-30), g, ct)

	phase := make([]uint64, n)
	DecryptGLWEAssign(sk, ct, phase)
	for i := range phase {
		require.Equal(t, uint64(i)%space, Decode(phase[i], delta), "coefficient %d", i)
	}
}

// TestSampleExtract checks that extracting the constant coefficient of
// a GLWE ciphertext yields an LWE ciphertext of the same value under
// the flattened key.
func TestSampleExtract(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	const k, n = 2, 64
	const space = 4
	sk := NewGLWESecretKey[uint64](k, n, g)
	delta := EncodeDelta[uint64](space)

	pt := make([]uint64, n)
	pt[0] = Encode(3, delta)
	for i := 1; i < n; i++ {
		pt[i] = Encode(uint64(i)%space, delta)
	}

	ct := NewGLWECiphertext[uint64](k, n)
	EncryptGLWEAssign(sk, pt, math.Exp2(-30), g, ct)

	out := NewLWECiphertext[uint64](k * n)
	ct.SampleExtractAssign(out)

	require.Equal(t, uint64(3), Decode(DecryptLWE(sk.FlattenedLWEKey(), out), delta))
}

func TestGLWETrivial(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	const k, n = 1, 32
	sk := NewGLWESecretKey[uint64](k, n, g)

	body := make([]uint64, n)
	for i := range body {
		body[i] = uint64(i) << 56
	}

	ct := NewGLWECiphertext[uint64](k, n)
	ct.TrivialAssign(body)

	// A trivial ciphertext decrypts to its body under any key.
	phase := make([]uint64, n)
	DecryptGLWEAssign(sk, ct, phase)
	require.Equal(t, body, phase)

	ct.TrivialConstantAssign(42)
	DecryptGLWEAssign(sk, ct, phase)
	for i := range phase {
		require.Equal(t, uint64(42), phase[i])
	}
}
