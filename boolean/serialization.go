// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package boolean

import (
	"errors"
	"fmt"
	"math"

	"github.com/tuneinsight/lattigo/v5/utils/buffer"

	"github.com/luxfi/tfhe/core"
)

// ErrInvalidEncoding reports malformed or truncated serialized data.
var ErrInvalidEncoding = errors.New("boolean: invalid encoding")

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

// The guarded slice readers check that the full slice is buffered
// before delegating: the underlying slice readers do not terminate on a
// tail shorter than one element.

func readUint32Slice(r *buffer.Buffer, dst []uint32) error {
	if r.Size() < 4*len(dst) {
		return fmt.Errorf("%w: %d bytes left for %d elements", ErrInvalidEncoding, r.Size(), len(dst))
	}
	if _, err := buffer.ReadUint32Slice(r, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return nil
}

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
	return 8 + 4*len(c.CT.Data)
}

// MarshalBinary encodes the ciphertext.
func (c *Ciphertext) MarshalBinary() ([]byte, error) {
	buf := buffer.NewBufferSize(c.BinarySize())
	if _, err := buffer.WriteUint64(buf, uint64(len(c.CT.Data))); err != nil {
		return nil, err
	}
	if _, err := buffer.WriteUint32Slice(buf, c.CT.Data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a ciphertext. Truncated or inconsistent data
// yields an error, never a panic.
func (c *Ciphertext) UnmarshalBinary(data []byte) error {
	r := buffer.NewBuffer(data)
	n, err := readLen(r)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: empty ciphertext", ErrInvalidEncoding)
	}
	c.CT = core.NewLWECiphertext[uint32](n - 1)
	return readUint32Slice(r, c.CT.Data)
}

// paramsBinarySize is the fixed size of the serialized parameter block.
const paramsBinarySize = 10 * 8

func writeParams(buf *buffer.Buffer, p Parameters) error {
	fields := []uint64{
		uint64(p.LweDimension), uint64(p.GlweDimension), uint64(p.PolynomialSize),
		math.Float64bits(p.LweNoiseStdDev), math.Float64bits(p.GlweNoiseStdDev),
		uint64(p.PBSBaseLog), uint64(p.PBSLevel), uint64(p.KSBaseLog), uint64(p.KSLevel),
	}
	for _, v := range fields {
		if _, err := buffer.WriteUint64(buf, v); err != nil {
			return err
		}
	}
	// One reserved word keeps the block size stable across additions.
	_, err := buffer.WriteUint64(buf, 0)
	return err
}

func readParams(r *buffer.Buffer) (Parameters, error) {
	var p Parameters
	var f [10]uint64
	for i := range f {
		if _, err := buffer.ReadUint64(r, &f[i]); err != nil {
			return p, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
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

func bootstrapKeyFromBytes(data []byte, p Parameters) (*core.FourierBootstrapKey[uint32], error) {
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

	fbsk, err := core.FourierBootstrapKeyFromRaw[uint32](polys, p.LweDimension, p.GlweDimension, n, p.PBSDecomposition())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return fbsk, nil
}

// keyswitchKeyBytes serializes the keyswitching key: the other
// independent sub-key blob.
func (sk *ServerKey) keyswitchKeyBytes() ([]byte, error) {
	k := sk.KSK
	buf := buffer.NewBufferSize(3*8 + len(k.Data)*4)
	if _, err := buffer.WriteUint64(buf, uint64(k.InputDimension)); err != nil {
		return nil, err
	}
	if _, err := buffer.WriteUint64(buf, uint64(k.OutputDimension)); err != nil {
		return nil, err
	}
	if _, err := buffer.WriteUint64(buf, uint64(len(k.Data))); err != nil {
		return nil, err
	}
	if _, err := buffer.WriteUint32Slice(buf, k.Data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func keyswitchKeyFromBytes(data []byte, p Parameters) (*core.KeyswitchKey[uint32], error) {
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

	ksk := &core.KeyswitchKey[uint32]{
		Data:            make([]uint32, n),
		InputDimension:  inDim,
		OutputDimension: outDim,
		Decomp:          p.KSDecomposition(),
	}
	if err := readUint32Slice(r, ksk.Data); err != nil {
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
