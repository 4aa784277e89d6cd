// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package shortint

import (
	"fmt"
	"math"

	"github.com/tuneinsight/lattigo/v5/utils/buffer"

	"github.com/luxfi/tfhe/core"
)

// maxSerializedElems caps slice lengths read from untrusted data before
// any allocation happens.
const maxSerializedElems = 1 << 28

func readLen(r *buffer.Buffer) (int, error) {
	var n uint64
	if _, err := buffer.ReadUint64(r, &n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	if n > maxSerializedElems {
		return 0, fmt.Errorf("%w: implausible length %d", ErrInvalidEncoding, n)
	}
	return int(n), nil
}

// readUint64Slice checks that the full slice is buffered before
// delegating: the underlying slice reader does not terminate on a tail
// shorter than one element.
func readUint64Slice(r *buffer.Buffer, dst []uint64) error {
	if r.Size() < 8*len(dst) {
		return fmt.Errorf("%w: %d bytes left for %d elements", ErrInvalidEncoding, r.Size(), len(dst))
	}
	if _, err := buffer.ReadUint64Slice(r, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return nil
}

// BinarySize returns the serialized byte size.
func (c *Ciphertext) BinarySize() int {
	return 5*8 + 1 + 8*len(c.CT.Data)
}

// MarshalBinary encodes the ciphertext with its metadata.
func (c *Ciphertext) MarshalBinary() ([]byte, error) {
	buf := buffer.NewBufferSize(c.BinarySize())
	for _, v := range []uint64{c.MessageModulus, c.CarryModulus, uint64(c.Degree), uint64(c.NoiseLevel)} {
		if _, err := buffer.WriteUint64(buf, v); err != nil {
			return nil, err
		}
	}
	if _, err := buffer.WriteUint8(buf, uint8(c.PBSOrder)); err != nil {
		return nil, err
	}
	if _, err := buffer.WriteUint64(buf, uint64(len(c.CT.Data))); err != nil {
		return nil, err
	}
	if _, err := buffer.WriteUint64Slice(buf, c.CT.Data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a ciphertext. Truncated or inconsistent data
// yields an error, never a panic.
func (c *Ciphertext) UnmarshalBinary(data []byte) error {
	r := buffer.NewBuffer(data)

	var degree, noise uint64
	for _, dst := range []*uint64{&c.MessageModulus, &c.CarryModulus, &degree, &noise} {
		if _, err := buffer.ReadUint64(r, dst); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
	}
	c.Degree = Degree(degree)
	c.NoiseLevel = NoiseLevel(noise)

	var order uint8
	if _, err := buffer.ReadUint8(r, &order); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	c.PBSOrder = PBSOrder(order)

	n, err := readLen(r)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: empty ciphertext", ErrInvalidEncoding)
	}
	c.CT = core.NewLWECiphertext[uint64](n - 1)
	return readUint64Slice(r, c.CT.Data)
}

// BinarySize returns the serialized byte size.
func (cc *CompressedCiphertext) BinarySize() int {
	return 8 + len(cc.Seed) + 7*8 + 1
}

// MarshalBinary encodes the compressed ciphertext.
func (cc *CompressedCiphertext) MarshalBinary() ([]byte, error) {
	buf := buffer.NewBufferSize(cc.BinarySize())
	if _, err := buffer.WriteUint64(buf, uint64(len(cc.Seed))); err != nil {
		return nil, err
	}
	if _, err := buffer.Write(buf, cc.Seed); err != nil {
		return nil, err
	}
	for _, v := range []uint64{cc.Body, uint64(cc.LweDimension), uint64(cc.Degree), uint64(cc.NoiseLevel), cc.MessageModulus, cc.CarryModulus} {
		if _, err := buffer.WriteUint64(buf, v); err != nil {
			return nil, err
		}
	}
	if _, err := buffer.WriteUint8(buf, uint8(cc.PBSOrder)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a compressed ciphertext.
func (cc *CompressedCiphertext) UnmarshalBinary(data []byte) error {
	r := buffer.NewBuffer(data)

	n, err := readLen(r)
	if err != nil {
		return err
	}
	cc.Seed = make([]byte, n)
	if _, err := buffer.ReadUint8Slice(r, cc.Seed); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}

	var dim, degree, noise uint64
	for _, dst := range []*uint64{&cc.Body, &dim, &degree, &noise, &cc.MessageModulus, &cc.CarryModulus} {
		if _, err := buffer.ReadUint64(r, dst); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
	}
	cc.LweDimension = int(dim)
	cc.Degree = Degree(degree)
	cc.NoiseLevel = NoiseLevel(noise)

	var order uint8
	if _, err := buffer.ReadUint8(r, &order); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	cc.PBSOrder = PBSOrder(order)
	return nil
}

// paramsBinarySize is the fixed size of the serialized parameter block.
const paramsBinarySize = 13*8 + 1

func writeParams(buf *buffer.Buffer, p Parameters) error {
	fields := []uint64{
		uint64(p.LweDimension), uint64(p.GlweDimension), uint64(p.PolynomialSize),
		math.Float64bits(p.LweNoiseStdDev), math.Float64bits(p.GlweNoiseStdDev),
		uint64(p.PBSBaseLog), uint64(p.PBSLevel), uint64(p.KSBaseLog), uint64(p.KSLevel),
		p.MessageModulus, p.CarryModulus, uint64(p.MaxNoiseLevel),
	}
	for _, v := range fields {
		if _, err := buffer.WriteUint64(buf, v); err != nil {
			return err
		}
	}
	// One reserved word keeps the block size stable across additions.
	if _, err := buffer.WriteUint64(buf, 0); err != nil {
		return err
	}
	_, err := buffer.WriteUint8(buf, uint8(p.PBSOrder))
	return err
}

func readParams(r *buffer.Buffer) (Parameters, error) {
	var p Parameters
	var f [13]uint64
	for i := range f {
		if _, err := buffer.ReadUint64(r, &f[i]); err != nil {
			return p, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
	}
	var order uint8
	if _, err := buffer.ReadUint8(r, &order); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}

	p = Parameters{
		LweDimension:    int(f[0]),
		GlweDimension:   int(f[1]),
		PolynomialSize:  int(f[2]),
		LweNoiseStdDev:  math.Float64frombits(f[3]),
		GlweNoiseStdDev: math.Float64frombits(f[4]),
		PBSBaseLog:      int(f[5]),
		PBSLevel:        int(f[6]),
		KSBaseLog:       int(f[7]),
		KSLevel:         int(f[8]),
		MessageModulus:  f[9],
		CarryModulus:    f[10],
		MaxNoiseLevel:   NoiseLevel(f[11]),
		PBSOrder:        PBSOrder(order),
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return p, nil
}

// bootstrapKeyBytes serializes the Fourier bootstrapping key on its
// own: one of the two independent sub-key blobs of a server key.
func (sk *ServerKey) bootstrapKeyBytes() ([]byte, error) {
	polys := sk.BSK.RawPolys()
	n := sk.BSK.PolynomialSize()

	buf := buffer.NewBufferSize(2*8 + len(polys)*n*8)
	if _, err := buffer.WriteUint64(buf, uint64(len(polys))); err != nil {
		return nil, err
	}
	if _, err := buffer.WriteUint64(buf, uint64(n)); err != nil {
		return nil, err
	}

	flat := make([]uint64, n) // one poly at a time: n/2 complex points
	for _, fp := range polys {
		for i, z := range fp {
			flat[2*i] = math.Float64bits(real(z))
			flat[2*i+1] = math.Float64bits(imag(z))
		}
		if _, err := buffer.WriteUint64Slice(buf, flat); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func bootstrapKeyFromBytes(data []byte, p Parameters) (*core.FourierBootstrapKey[uint64], error) {
	r := buffer.NewBuffer(data)
	numPolys, err := readLen(r)
	if err != nil {
		return nil, err
	}
	n, err := readLen(r)
	if err != nil {
		return nil, err
	}
	if n != p.PolynomialSize {
		return nil, fmt.Errorf("%w: bootstrap key polynomial size %d, parameters say %d", ErrInvalidEncoding, n, p.PolynomialSize)
	}

	flat := make([]uint64, n)
	polys := make([]core.FourierPoly, numPolys)
	for i := range polys {
		if err := readUint64Slice(r, flat); err != nil {
			return nil, err
		}
		fp := core.NewFourierPoly(n)
		for j := range fp {
			fp[j] = complex(math.Float64frombits(flat[2*j]), math.Float64frombits(flat[2*j+1]))
		}
		polys[i] = fp
	}

	fbsk, err := core.FourierBootstrapKeyFromRaw[uint64](polys, p.LweDimension, p.GlweDimension, n, p.PBSDecomposition())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return fbsk, nil
}

// keyswitchKeyBytes serializes the keyswitching key: the other
// independent sub-key blob.
func (sk *ServerKey) keyswitchKeyBytes() ([]byte, error) {
	k := sk.KSK
	buf := buffer.NewBufferSize(3*8 + len(k.Data)*8)
	if _, err := buffer.WriteUint64(buf, uint64(k.InputDimension)); err != nil {
		return nil, err
	}
	if _, err := buffer.WriteUint64(buf, uint64(k.OutputDimension)); err != nil {
		return nil, err
	}
	if _, err := buffer.WriteUint64(buf, uint64(len(k.Data))); err != nil {
		return nil, err
	}
	if _, err := buffer.WriteUint64Slice(buf, k.Data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func keyswitchKeyFromBytes(data []byte, p Parameters) (*core.KeyswitchKey[uint64], error) {
	r := buffer.NewBuffer(data)
	inDim, err := readLen(r)
	if err != nil {
		return nil, err
	}
	outDim, err := readLen(r)
	if err != nil {
		return nil, err
	}
	n, err := readLen(r)
	if err != nil {
		return nil, err
	}
	if want := inDim * p.KSLevel * (outDim + 1); n != want {
		return nil, fmt.Errorf("%w: keyswitch key data length %d, want %d", ErrInvalidEncoding, n, want)
	}

	ksk := &core.KeyswitchKey[uint64]{
		Data:            make([]uint64, n),
		InputDimension:  inDim,
		OutputDimension: outDim,
		Decomp:          p.KSDecomposition(),
	}
	if err := readUint64Slice(r, ksk.Data); err != nil {
		return nil, err
	}
	return ksk, nil
}

// MarshalBinary encodes the server key as the parameter block followed
// by the two independently decodable sub-key blobs, each length
// prefixed.
func (sk *ServerKey) MarshalBinary() ([]byte, error) {
	bskBlob, err := sk.bootstrapKeyBytes()
	if err != nil {
		return nil, err
	}
	kskBlob, err := sk.keyswitchKeyBytes()
	if err != nil {
		return nil, err
	}

	buf := buffer.NewBufferSize(paramsBinarySize + 2*8 + len(bskBlob) + len(kskBlob))
	if err := writeParams(buf, sk.Params); err != nil {
		return nil, err
	}
	for _, blob := range [][]byte{bskBlob, kskBlob} {
		if _, err := buffer.WriteUint64(buf, uint64(len(blob))); err != nil {
			return nil, err
		}
		if _, err := buffer.Write(buf, blob); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a server key and rebuilds its evaluation
// state. Truncation or dimension mismatches yield an error.
func (sk *ServerKey) UnmarshalBinary(data []byte) error {
	r := buffer.NewBuffer(data)
	p, err := readParams(r)
	if err != nil {
		return err
	}

	blobs := make([][]byte, 2)
	for i := range blobs {
		n, err := readLen(r)
		if err != nil {
			return err
		}
		blobs[i] = make([]byte, n)
		if _, err := buffer.ReadUint8Slice(r, blobs[i]); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
	}

	fbsk, err := bootstrapKeyFromBytes(blobs[0], p)
	if err != nil {
		return err
	}
	ksk, err := keyswitchKeyFromBytes(blobs[1], p)
	if err != nil {
		return err
	}

	*sk = *newServerKeyFromParts(p, fbsk, ksk)
	return nil
}
