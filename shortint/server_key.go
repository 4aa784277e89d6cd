// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package shortint

import (
	"fmt"
	"sync"

	"github.com/luxfi/tfhe/core"
)

// ServerKey is the public evaluation key: the Fourier bootstrapping
// key, the keyswitching key and the operating limits. It is immutable
// after construction and safe to share between goroutines; the mutable
// engine scratch lives in a pool, one engine per concurrent caller.
type ServerKey struct {
	Params Parameters

	BSK *core.FourierBootstrapKey[uint64]
	KSK *core.KeyswitchKey[uint64]

	MaxDegree     Degree
	MaxNoiseLevel NoiseLevel

	msgExtract *LookupTable

	engines *sync.Pool
}

// NewServerKey derives the evaluation key from the client key.
func NewServerKey(ck *ClientKey) (*ServerKey, error) {
	p := ck.Params

	bsk, err := core.GenBootstrapKey(ck.smallKey, ck.glweKey, p.PBSDecomposition(), p.GlweNoiseStdDev, ck.g)
	if err != nil {
		return nil, fmt.Errorf("server key: %w", err)
	}

	// Build one engine up front so a bad geometry fails here, not in
	// the pool.
	engine, err := core.NewBootstrapper[uint64](p.GlweDimension, p.PolynomialSize, p.PBSDecomposition())
	if err != nil {
		return nil, fmt.Errorf("server key: %w", err)
	}

	fbsk, err := core.NewFourierBootstrapKey(bsk, engine.Transformer)
	if err != nil {
		return nil, fmt.Errorf("server key: %w", err)
	}

	ksk := core.GenKeyswitchKey(ck.bigKey(), ck.smallKey, p.KSDecomposition(), p.LweNoiseStdDev, ck.g)

	sk := newServerKeyFromParts(p, fbsk, ksk)
	sk.engines.Put(engine)
	return sk, nil
}

// newServerKeyFromParts assembles a key around already-built key
// material; shared between generation and deserialization.
func newServerKeyFromParts(p Parameters, fbsk *core.FourierBootstrapKey[uint64], ksk *core.KeyswitchKey[uint64]) *ServerKey {
	sk := &ServerKey{
		Params:        p,
		BSK:           fbsk,
		KSK:           ksk,
		MaxDegree:     p.MaxDegree(),
		MaxNoiseLevel: p.MaxNoiseLevel,
	}
	sk.engines = &sync.Pool{New: func() any {
		// Geometry is validated before the first pool draw.
		e, _ := core.NewBootstrapper[uint64](p.GlweDimension, p.PolynomialSize, p.PBSDecomposition())
		return e
	}}
	sk.msgExtract = sk.GenerateLookupTable(func(x uint64) uint64 { return x % p.MessageModulus })
	return sk
}

// LookupTable is a precomputed accumulator polynomial plus the output
// bound of the function it evaluates.
type LookupTable struct {
	Poly   []uint64
	Degree Degree
}

// BivariateLookupTable evaluates f(a, b) on the packed encoding
// a*MessageModulus + b.
type BivariateLookupTable struct {
	LookupTable
}

// GenerateLookupTable builds the accumulator for f over the full
// message-and-carry space. Outputs are reduced into the space; the
// table's degree is the maximum reduced output.
func (sk *ServerKey) GenerateLookupTable(f func(uint64) uint64) *LookupTable {
	p := sk.Params
	space := p.MessageSpace()
	delta := p.Delta()
	box := p.PolynomialSize / int(space)

	lut := &LookupTable{Poly: make([]uint64, p.PolynomialSize)}
	for m := uint64(0); m < space; m++ {
		v := f(m) % space
		if Degree(v) > lut.Degree {
			lut.Degree = Degree(v)
		}
		enc := core.Encode(v, delta)
		for j := 0; j < box; j++ {
			lut.Poly[int(m)*box+j] = enc
		}
	}
	core.MonomialDivInPlace(lut.Poly, box/2)
	return lut
}

// GenerateLookupTableBivariate builds the accumulator for f(a, b) on
// packed operands.
func (sk *ServerKey) GenerateLookupTableBivariate(f func(a, b uint64) uint64) *BivariateLookupTable {
	msgMod := sk.Params.MessageModulus
	return &BivariateLookupTable{
		LookupTable: *sk.GenerateLookupTable(func(x uint64) uint64 {
			return f(x/msgMod, x%msgMod)
		}),
	}
}

// ApplyLookupTableAssign refreshes ct through the table, honoring the
// key's refresh order. This is the only code path that runs a
// bootstrap; every operation that drains noise or carries funnels
// through it.
func (sk *ServerKey) ApplyLookupTableAssign(ct *Ciphertext, lut *LookupTable) error {
	engine := sk.engines.Get().(*core.Bootstrapper[uint64])
	defer sk.engines.Put(engine)

	var err error
	switch sk.Params.PBSOrder {
	case OrderKeyswitchBootstrap:
		err = engine.KeyswitchBootstrap(&ct.CT, lut.Poly, sk.BSK, sk.KSK)
	case OrderBootstrapKeyswitch:
		err = engine.BootstrapKeyswitch(&ct.CT, lut.Poly, sk.BSK, sk.KSK)
	default:
		err = fmt.Errorf("shortint: unknown pbs order %v", sk.Params.PBSOrder)
	}
	if err != nil {
		return err
	}

	ct.Degree = lut.Degree
	ct.NoiseLevel = NoiseLevelNominal
	return nil
}

// ApplyLookupTable refreshes a copy of ct through the table.
func (sk *ServerKey) ApplyLookupTable(ct *Ciphertext, lut *LookupTable) (*Ciphertext, error) {
	out := ct.Clone()
	if err := sk.ApplyLookupTableAssign(out, lut); err != nil {
		return nil, err
	}
	return out, nil
}

// MessageExtractAssign drains the carry space: ct becomes an encryption
// of its message modulo MessageModulus with nominal noise.
func (sk *ServerKey) MessageExtractAssign(ct *Ciphertext) error {
	return sk.ApplyLookupTableAssign(ct, sk.msgExtract)
}

// CarryExtract returns the carry part, ct / MessageModulus.
func (sk *ServerKey) CarryExtract(ct *Ciphertext) (*Ciphertext, error) {
	msgMod := sk.Params.MessageModulus
	lut := sk.GenerateLookupTable(func(x uint64) uint64 { return x / msgMod })
	return sk.ApplyLookupTable(ct, lut)
}

// CreateTrivial returns a noiseless, keyless encryption of v modulo the
// message-and-carry space. Anyone can open it; NoiseLevelZero records
// that.
func (sk *ServerKey) CreateTrivial(v uint64) *Ciphertext {
	p := sk.Params
	v %= p.MessageSpace()

	ct := core.NewLWECiphertext[uint64](p.CiphertextLweDimension())
	*ct.Body() = core.Encode(v, p.Delta())

	return &Ciphertext{
		CT:             ct,
		Degree:         Degree(v),
		NoiseLevel:     NoiseLevelZero,
		MessageModulus: p.MessageModulus,
		CarryModulus:   p.CarryModulus,
		PBSOrder:       p.PBSOrder,
	}
}

// EvaluateFunction applies an arbitrary univariate function through one
// bootstrap.
func (sk *ServerKey) EvaluateFunction(ct *Ciphertext, f func(uint64) uint64) (*Ciphertext, error) {
	return sk.ApplyLookupTable(ct, sk.GenerateLookupTable(f))
}

// UncheckedEvaluateBivariate packs the operands as
// left*MessageModulus + right and applies the bivariate table. The
// right operand's content must fit under MessageModulus for the packing
// to be injective; that is the caller's contract in the unchecked tier.
func (sk *ServerKey) UncheckedEvaluateBivariate(left, right *Ciphertext, lut *BivariateLookupTable) (*Ciphertext, error) {
	packed := sk.UncheckedScalarMul(left, sk.Params.MessageModulus)
	sk.UncheckedAddAssign(packed, right)
	if err := sk.ApplyLookupTableAssign(packed, &lut.LookupTable); err != nil {
		return nil, err
	}
	return packed, nil
}

// IsBivariatePossible reports whether the packed encoding fits the
// carry space and the noise budget.
func (sk *ServerKey) IsBivariatePossible(left, right *Ciphertext) bool {
	msgMod := sk.Params.MessageModulus
	packedDegree := Degree(uint64(left.Degree)*msgMod) + right.Degree
	packedNoise := left.NoiseLevel*NoiseLevel(msgMod) + right.NoiseLevel
	return uint64(right.Degree) < msgMod &&
		packedDegree <= sk.MaxDegree &&
		packedNoise <= sk.MaxNoiseLevel
}
