// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package keycache stores serialized key material between test and
// benchmark runs so expensive key generation happens once per parameter
// set. The evaluation packages never consult it; harnesses own a Cache
// and pass the keys they pull from it as explicit arguments.
package keycache

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/tuneinsight/lattigo/v5/utils/buffer"
)

// Common errors.
var (
	ErrNotFound        = errors.New("keycache: entry not found")
	ErrInvalidEncoding = errors.New("keycache: invalid encoding")
)

// Width selects the torus word size of the cached keys.
type Width uint8

const (
	Width32 Width = iota + 1
	Width64
)

// String implements fmt.Stringer.
func (w Width) String() string {
	switch w {
	case Width32:
		return "u32"
	case Width64:
		return "u64"
	default:
		return fmt.Sprintf("Width(%d)", uint8(w))
	}
}

// Kind tags the bootstrap-key variant a record holds.
type Kind uint8

const (
	Classical Kind = iota + 1
	MultiBit
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Classical:
		return "classical"
	case MultiBit:
		return "multibit"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// NamedParam identifies one parameter set: a human-readable name plus
// the serialized parameter block it stands for. The fingerprint keeps a
// renamed-but-changed set from colliding with its old keys.
type NamedParam struct {
	Name        string
	Width       Width
	Kind        Kind
	Fingerprint []byte
}

// Handle returns the storage key: a hex blake2b digest over every
// identifying field, each length-delimited so field boundaries cannot
// be confused.
func (np NamedParam) Handle() string {
	h, _ := blake2b.New256(nil)
	var lenBuf [8]byte

	writeField := func(b []byte) {
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(b)))
		h.Write(lenBuf[:])
		h.Write(b)
	}
	writeField([]byte(np.Name))
	writeField([]byte{byte(np.Width), byte(np.Kind)})
	writeField(np.Fingerprint)

	return hex.EncodeToString(h.Sum(nil))
}

// Entry is one cached record: the serialized client and server keys of
// a parameter set.
type Entry struct {
	Kind      Kind
	ClientKey []byte
	ServerKey []byte
}

// maxEntryBytes caps blob lengths read from storage before allocation.
const maxEntryBytes = 1 << 31

func readBlob(r *buffer.Buffer) ([]byte, error) {
	var n uint64
	if _, err := buffer.ReadUint64(r, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	if n > maxEntryBytes {
		return nil, fmt.Errorf("%w: implausible length %d", ErrInvalidEncoding, n)
	}
	b := make([]byte, n)
	if _, err := buffer.ReadUint8Slice(r, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return b, nil
}

// MarshalBinary encodes the entry.
func (e *Entry) MarshalBinary() ([]byte, error) {
	buf := buffer.NewBufferSize(1 + 2*8 + len(e.ClientKey) + len(e.ServerKey))
	if _, err := buffer.WriteUint8(buf, uint8(e.Kind)); err != nil {
		return nil, err
	}
	for _, blob := range [][]byte{e.ClientKey, e.ServerKey} {
		if _, err := buffer.WriteUint64(buf, uint64(len(blob))); err != nil {
			return nil, err
		}
		if _, err := buffer.Write(buf, blob); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes an entry.
func (e *Entry) UnmarshalBinary(data []byte) error {
	r := buffer.NewBuffer(data)

	var kind uint8
	if _, err := buffer.ReadUint8(r, &kind); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	e.Kind = Kind(kind)

	var err error
	if e.ClientKey, err = readBlob(r); err != nil {
		return err
	}
	if e.ServerKey, err = readBlob(r); err != nil {
		return err
	}
	return nil
}

// Cache layers generate-on-miss over a Storage backend.
type Cache struct {
	storage Storage
}

// New returns a cache over the backend.
func New(storage Storage) *Cache {
	return &Cache{storage: storage}
}

// Get returns the cached entry for the parameter set, or ErrNotFound.
func (c *Cache) Get(ctx context.Context, np NamedParam) (*Entry, error) {
	data, err := c.storage.Load(ctx, np.Handle())
	if err != nil {
		return nil, err
	}
	e := &Entry{}
	if err := e.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	if e.Kind != np.Kind {
		return nil, fmt.Errorf("%w: cached kind %v, want %v", ErrInvalidEncoding, e.Kind, np.Kind)
	}
	return e, nil
}

// Put stores the entry for the parameter set.
func (c *Cache) Put(ctx context.Context, np NamedParam, e *Entry) error {
	data, err := e.MarshalBinary()
	if err != nil {
		return err
	}
	return c.storage.Store(ctx, np.Handle(), data)
}

// GetOrGenerate returns the cached entry, calling gen and storing its
// result on a miss. A failed store is surfaced: the caller decided to
// cache, so silently dropping the keys would defeat the point.
func (c *Cache) GetOrGenerate(ctx context.Context, np NamedParam, gen func() (*Entry, error)) (*Entry, error) {
	e, err := c.Get(ctx, np)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	e, err = gen()
	if err != nil {
		return nil, fmt.Errorf("keycache: generate: %w", err)
	}
	e.Kind = np.Kind
	if err := c.Put(ctx, np, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes the cached entry, if any.
func (c *Cache) Delete(ctx context.Context, np NamedParam) error {
	return c.storage.Delete(ctx, np.Handle())
}
