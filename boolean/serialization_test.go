// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package boolean

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCiphertextSerialization(t *testing.T) {
	f := testKeys(t)

	ct := f.ck.Encrypt(true)
	data, err := ct.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, ct.BinarySize(), len(data))

	var got Ciphertext
	require.NoError(t, got.UnmarshalBinary(data))
	require.Empty(t, cmp.Diff(ct, &got))
	require.True(t, f.ck.Decrypt(&got))
}

func TestCiphertextSerializationRejectsTruncation(t *testing.T) {
	f := testKeys(t)
	data, err := f.ck.Encrypt(false).MarshalBinary()
	require.NoError(t, err)

	var got Ciphertext
	for _, cut := range []int{0, 1, 8, len(data) - 1} {
		require.ErrorIs(t, got.UnmarshalBinary(data[:cut]), ErrInvalidEncoding, "cut at %d", cut)
	}
}

// TestServerKeySerialization is behavioral: the decoded key must
// evaluate gates, not just equal bytes.
func TestServerKeySerialization(t *testing.T) {
	f := testKeys(t)

	data, err := f.sk.MarshalBinary()
	require.NoError(t, err)

	var got ServerKey
	require.NoError(t, got.UnmarshalBinary(data))
	require.Empty(t, cmp.Diff(f.sk.Params, got.Params))

	for _, a := range []bool{false, true} {
		for _, b := range []bool{false, true} {
			ct, err := got.And(f.ck.Encrypt(a), f.ck.Encrypt(b))
			require.NoError(t, err)
			require.Equal(t, a && b, f.ck.Decrypt(ct), "And(%v, %v)", a, b)
		}
	}
}

// TestServerKeySerializationRejectsTruncatedSubKey cuts inside a
// sub-key blob, leaving a tail shorter than one coefficient, which the
// outer framing alone would not catch.
func TestServerKeySerializationRejectsTruncatedSubKey(t *testing.T) {
	f := testKeys(t)

	blob, err := f.sk.bootstrapKeyBytes()
	require.NoError(t, err)
	_, err = bootstrapKeyFromBytes(blob[:len(blob)-5], f.sk.Params)
	require.ErrorIs(t, err, ErrInvalidEncoding)

	blob, err = f.sk.keyswitchKeyBytes()
	require.NoError(t, err)
	_, err = keyswitchKeyFromBytes(blob[:len(blob)-3], f.sk.Params)
	require.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestServerKeySerializationRejectsTruncation(t *testing.T) {
	f := testKeys(t)
	data, err := f.sk.MarshalBinary()
	require.NoError(t, err)

	var got ServerKey
	for _, cut := range []int{0, paramsBinarySize - 1, paramsBinarySize + 4, len(data) / 2, len(data) - 1} {
		require.Error(t, got.UnmarshalBinary(data[:cut]), "cut at %d", cut)
	}
}
