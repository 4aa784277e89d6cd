// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package shortint

import (
	"encoding/binary"
	"fmt"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/luxfi/tfhe/core"
)

// CompressedCiphertext stores only the body and the seed the mask is
// regenerated from, trading a deterministic expansion for an n-fold
// size reduction.
type CompressedCiphertext struct {
	Seed []byte
	Body uint64

	LweDimension   int
	Degree         Degree
	NoiseLevel     NoiseLevel
	MessageModulus uint64
	CarryModulus   uint64
	PBSOrder       PBSOrder
}

// EncryptCompressed encrypts m modulo MessageModulus in seeded form.
func (ck *ClientKey) EncryptCompressed(m uint64) (*CompressedCiphertext, error) {
	m %= ck.Params.MessageModulus

	seed := ck.g.NewSeed()
	maskGen, err := core.NewSeededGenerator(seed)
	if err != nil {
		return nil, fmt.Errorf("compressed encrypt: %w", err)
	}

	ct := core.NewLWECiphertext[uint64](ck.Params.CiphertextLweDimension())
	core.UniformSliceAssign(maskGen, ct.Mask())

	sk, std := ck.encryptionKey()
	core.EncryptLWEBodyAssign(sk, core.Encode(m, ck.Params.Delta()), std, ck.g, ct)

	return &CompressedCiphertext{
		Seed:           seed,
		Body:           *ct.Body(),
		LweDimension:   ct.Dimension(),
		Degree:         Degree(ck.Params.MessageModulus - 1),
		NoiseLevel:     NoiseLevelNominal,
		MessageModulus: ck.Params.MessageModulus,
		CarryModulus:   ck.Params.CarryModulus,
		PBSOrder:       ck.Params.PBSOrder,
	}, nil
}

// Decompress regenerates the mask from the seed and returns the full
// ciphertext. Decompressing twice yields identical ciphertexts.
func (cc *CompressedCiphertext) Decompress() (*Ciphertext, error) {
	maskGen, err := core.NewSeededGenerator(cc.Seed)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}

	ct := core.NewLWECiphertext[uint64](cc.LweDimension)
	core.UniformSliceAssign(maskGen, ct.Mask())
	*ct.Body() = cc.Body

	return &Ciphertext{
		CT:             ct,
		Degree:         cc.Degree,
		NoiseLevel:     cc.NoiseLevel,
		MessageModulus: cc.MessageModulus,
		CarryModulus:   cc.CarryModulus,
		PBSOrder:       cc.PBSOrder,
	}, nil
}

// CompactCiphertextList encrypts a batch of messages under one seed:
// each slot's mask is expanded from a per-slot subseed, so slots can be
// stamped out independently and in parallel. Metadata is shared by all
// outputs.
type CompactCiphertextList struct {
	Seed   []byte
	Bodies []uint64

	LweDimension   int
	Degree         Degree
	MessageModulus uint64
	CarryModulus   uint64
	PBSOrder       PBSOrder
}

// slotSeed derives the mask seed for one slot from the list seed.
func slotSeed(seed []byte, i int) []byte {
	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], uint64(i))
	sum := blake2b.Sum256(append(append([]byte{}, seed...), idx[:]...))
	return sum[:]
}

func slotMask(seed []byte, i int, mask []uint64) error {
	g, err := core.NewSeededGenerator(slotSeed(seed, i))
	if err != nil {
		return err
	}
	core.UniformSliceAssign(g, mask)
	return nil
}

// EncryptCompactList encrypts every message modulo MessageModulus into
// one compact record.
func (ck *ClientKey) EncryptCompactList(ms []uint64) (*CompactCiphertextList, error) {
	seed := ck.g.NewSeed()
	sk, std := ck.encryptionKey()
	dim := ck.Params.CiphertextLweDimension()
	delta := ck.Params.Delta()

	list := &CompactCiphertextList{
		Seed:           seed,
		Bodies:         make([]uint64, len(ms)),
		LweDimension:   dim,
		Degree:         Degree(ck.Params.MessageModulus - 1),
		MessageModulus: ck.Params.MessageModulus,
		CarryModulus:   ck.Params.CarryModulus,
		PBSOrder:       ck.Params.PBSOrder,
	}

	ct := core.NewLWECiphertext[uint64](dim)
	for i, m := range ms {
		if err := slotMask(seed, i, ct.Mask()); err != nil {
			return nil, fmt.Errorf("compact encrypt: %w", err)
		}
		core.EncryptLWEBodyAssign(sk, core.Encode(m%ck.Params.MessageModulus, delta), std, ck.g, ct)
		list.Bodies[i] = *ct.Body()
	}
	return list, nil
}

// Len returns the number of slots.
func (cl *CompactCiphertextList) Len() int { return len(cl.Bodies) }

func (cl *CompactCiphertextList) expandSlot(i int) (*Ciphertext, error) {
	ct := core.NewLWECiphertext[uint64](cl.LweDimension)
	if err := slotMask(cl.Seed, i, ct.Mask()); err != nil {
		return nil, fmt.Errorf("compact expand: %w", err)
	}
	*ct.Body() = cl.Bodies[i]
	return &Ciphertext{
		CT:             ct,
		Degree:         cl.Degree,
		NoiseLevel:     NoiseLevelNominal,
		MessageModulus: cl.MessageModulus,
		CarryModulus:   cl.CarryModulus,
		PBSOrder:       cl.PBSOrder,
	}, nil
}

// Expand stamps out every slot sequentially.
func (cl *CompactCiphertextList) Expand() ([]*Ciphertext, error) {
	out := make([]*Ciphertext, cl.Len())
	for i := range out {
		ct, err := cl.expandSlot(i)
		if err != nil {
			return nil, err
		}
		out[i] = ct
	}
	return out, nil
}

// ParExpand stamps out the slots concurrently. The result is identical
// to Expand.
func (cl *CompactCiphertextList) ParExpand() ([]*Ciphertext, error) {
	out := make([]*Ciphertext, cl.Len())
	errs := make([]error, cl.Len())

	var wg sync.WaitGroup
	for i := range out {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i], errs[i] = cl.expandSlot(i)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
