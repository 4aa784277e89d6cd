// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package keycache

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/tfhe/shortint"
)

func testParam() NamedParam {
	return NamedParam{
		Name:        "test_message_2_carry_2",
		Width:       Width64,
		Kind:        Classical,
		Fingerprint: []byte{0x01, 0x02, 0x03},
	}
}

func TestHandleDistinguishesFields(t *testing.T) {
	base := testParam()
	handles := map[string]string{"base": base.Handle()}

	variants := map[string]NamedParam{
		"name":        {Name: "other", Width: base.Width, Kind: base.Kind, Fingerprint: base.Fingerprint},
		"width":       {Name: base.Name, Width: Width32, Kind: base.Kind, Fingerprint: base.Fingerprint},
		"kind":        {Name: base.Name, Width: base.Width, Kind: MultiBit, Fingerprint: base.Fingerprint},
		"fingerprint": {Name: base.Name, Width: base.Width, Kind: base.Kind, Fingerprint: []byte{0xFF}},
	}
	for field, np := range variants {
		h := np.Handle()
		for seen, prev := range handles {
			require.NotEqual(t, prev, h, "varying %s collides with %s", field, seen)
		}
		handles[field] = h
	}
}

func TestHandleIsStable(t *testing.T) {
	require.Equal(t, testParam().Handle(), testParam().Handle())
}

func TestEntrySerialization(t *testing.T) {
	e := &Entry{Kind: Classical, ClientKey: []byte("client"), ServerKey: []byte("server")}

	data, err := e.MarshalBinary()
	require.NoError(t, err)

	var got Entry
	require.NoError(t, got.UnmarshalBinary(data))
	require.Empty(t, cmp.Diff(e, &got))

	for _, cut := range []int{0, 1, 9, len(data) - 1} {
		require.ErrorIs(t, got.UnmarshalBinary(data[:cut]), ErrInvalidEncoding, "cut at %d", cut)
	}
}

func TestCacheGetOrGenerate(t *testing.T) {
	ctx := context.Background()
	cache := New(NewMemoryStorage())
	np := testParam()

	calls := 0
	gen := func() (*Entry, error) {
		calls++
		return &Entry{ClientKey: []byte("ck"), ServerKey: []byte("sk")}, nil
	}

	first, err := cache.GetOrGenerate(ctx, np, gen)
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, np.Kind, first.Kind)

	second, err := cache.GetOrGenerate(ctx, np, gen)
	require.NoError(t, err)
	require.Equal(t, 1, calls, "hit must not regenerate")
	require.Empty(t, cmp.Diff(first, second))

	require.NoError(t, cache.Delete(ctx, np))
	_, err = cache.Get(ctx, np)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCacheRejectsKindMismatch(t *testing.T) {
	ctx := context.Background()
	cache := New(NewMemoryStorage())

	np := testParam()
	require.NoError(t, cache.Put(ctx, np, &Entry{Kind: MultiBit}))

	_, err := cache.Get(ctx, np)
	require.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestFileStoragePersists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	np := testParam()

	first, err := NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, New(first).Put(ctx, np, &Entry{Kind: Classical, ServerKey: []byte("sk")}))

	// A fresh backend over the same directory sees the entry.
	second, err := NewFileStorage(dir)
	require.NoError(t, err)
	e, err := New(second).Get(ctx, np)
	require.NoError(t, err)
	require.Equal(t, []byte("sk"), e.ServerKey)

	_, err = New(second).Get(ctx, NamedParam{Name: "missing", Width: Width64, Kind: Classical})
	require.ErrorIs(t, err, ErrNotFound)
}

// TestServerKeyRoundTripThroughCache is the harness flow end to end:
// generate once, cache the serialized server key, rebuild it from the
// cache and evaluate with it.
func TestServerKeyRoundTripThroughCache(t *testing.T) {
	ctx := context.Background()
	cache := New(NewMemoryStorage())

	params := shortint.ParamsTestMessage2Carry2
	np := NamedParam{Name: "test_message_2_carry_2", Width: Width64, Kind: Classical}

	ck, err := shortint.NewClientKey(params)
	require.NoError(t, err)

	calls := 0
	gen := func() (*Entry, error) {
		calls++
		sk, err := shortint.NewServerKey(ck)
		if err != nil {
			return nil, err
		}
		blob, err := sk.MarshalBinary()
		if err != nil {
			return nil, err
		}
		return &Entry{ServerKey: blob}, nil
	}

	for i := 0; i < 2; i++ {
		e, err := cache.GetOrGenerate(ctx, np, gen)
		require.NoError(t, err)

		var sk shortint.ServerKey
		require.NoError(t, sk.UnmarshalBinary(e.ServerKey))

		ct := ck.Encrypt(3)
		require.NoError(t, sk.MessageExtractAssign(ct))
		require.Equal(t, uint64(3), ck.Decrypt(ct))
	}
	require.Equal(t, 1, calls)
}

// TestRedisStorage needs a reachable server; it skips when none is
// listening on the default port.
func TestRedisStorage(t *testing.T) {
	s, err := NewRedisStorage(RedisConfig{Addr: "localhost:6379"})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	cache := New(s)
	np := testParam()
	defer cache.Delete(ctx, np)

	require.NoError(t, cache.Put(ctx, np, &Entry{Kind: Classical, ServerKey: []byte("sk")}))
	e, err := cache.Get(ctx, np)
	require.NoError(t, err)
	require.Equal(t, []byte("sk"), e.ServerKey)

	require.NoError(t, cache.Delete(ctx, np))
	_, err = cache.Get(ctx, np)
	require.ErrorIs(t, err, ErrNotFound)
}
