// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package boolean

import (
	"fmt"
	"sync"

	"github.com/luxfi/tfhe/core"
)

// ServerKey evaluates gates. It is immutable after construction and safe
// to share between goroutines; mutable bootstrap scratch lives in a
// pool, one engine per concurrent caller.
type ServerKey struct {
	Params Parameters

	BSK *core.FourierBootstrapKey[uint32]
	KSK *core.KeyswitchKey[uint32]

	engines *sync.Pool
}

// NewServerKey derives the evaluation key from the client key.
func NewServerKey(ck *ClientKey) (*ServerKey, error) {
	p := ck.Params

	bsk, err := core.GenBootstrapKey(ck.smallKey, ck.glweKey, p.PBSDecomposition(), p.GlweNoiseStdDev, ck.g)
	if err != nil {
		return nil, fmt.Errorf("server key: %w", err)
	}

	engine, err := core.NewBootstrapper[uint32](p.GlweDimension, p.PolynomialSize, p.PBSDecomposition())
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
func newServerKeyFromParts(p Parameters, fbsk *core.FourierBootstrapKey[uint32], ksk *core.KeyswitchKey[uint32]) *ServerKey {
	sk := &ServerKey{
		Params: p,
		BSK:    fbsk,
		KSK:    ksk,
	}
	sk.engines = &sync.Pool{New: func() any {
		// Geometry is validated before the first pool draw.
		e, _ := core.NewBootstrapper[uint32](p.GlweDimension, p.PolynomialSize, p.PBSDecomposition())
		return e
	}}
	return sk
}

// bootstrapAssign refreshes ct in place through the sign bootstrap:
// the engine's constant-true accumulator maps any phase in the upper
// half torus to +1/8 and the lower half to -1/8, and the keyswitch
// lands the result back under the small key.
func (sk *ServerKey) bootstrapAssign(ct *Ciphertext) error {
	engine := sk.engines.Get().(*core.Bootstrapper[uint32])
	defer sk.engines.Put(engine)

	big, err := engine.Bootstrap(ct.CT, sk.BSK, PlaintextTrue)
	if err != nil {
		return err
	}
	small, err := engine.Keyswitch(big, sk.KSK)
	if err != nil {
		return err
	}
	ct.CT.CopyFrom(small)
	return nil
}

// CreateTrivial returns a noiseless, keyless encryption of b.
func (sk *ServerKey) CreateTrivial(b bool) *Ciphertext {
	ct := core.NewLWECiphertext[uint32](sk.Params.LweDimension)
	if b {
		*ct.Body() = PlaintextTrue
	} else {
		*ct.Body() = PlaintextFalse
	}
	return &Ciphertext{CT: ct}
}

// AndAssign sets out = a AND b. The gate combination is a + b - 1/8,
// whose sign is positive exactly when both inputs are true.
func (sk *ServerKey) AndAssign(out, a, b *Ciphertext) error {
	out.CopyFrom(a)
	out.CT.AddAssign(b.CT)
	out.CT.PlaintextAddAssign(PlaintextFalse)
	return sk.bootstrapAssign(out)
}

// And returns a AND b.
func (sk *ServerKey) And(a, b *Ciphertext) (*Ciphertext, error) {
	out := &Ciphertext{}
	return out, sk.AndAssign(out, a, b)
}

// OrAssign sets out = a OR b via a + b + 1/8.
func (sk *ServerKey) OrAssign(out, a, b *Ciphertext) error {
	out.CopyFrom(a)
	out.CT.AddAssign(b.CT)
	out.CT.PlaintextAddAssign(PlaintextTrue)
	return sk.bootstrapAssign(out)
}

// Or returns a OR b.
func (sk *ServerKey) Or(a, b *Ciphertext) (*Ciphertext, error) {
	out := &Ciphertext{}
	return out, sk.OrAssign(out, a, b)
}

// NandAssign sets out = a NAND b via 1/8 - a - b.
func (sk *ServerKey) NandAssign(out, a, b *Ciphertext) error {
	out.CopyFrom(a)
	out.CT.AddAssign(b.CT)
	out.CT.NegAssign()
	out.CT.PlaintextAddAssign(PlaintextTrue)
	return sk.bootstrapAssign(out)
}

// Nand returns a NAND b.
func (sk *ServerKey) Nand(a, b *Ciphertext) (*Ciphertext, error) {
	out := &Ciphertext{}
	return out, sk.NandAssign(out, a, b)
}

// NorAssign sets out = a NOR b via -1/8 - a - b.
func (sk *ServerKey) NorAssign(out, a, b *Ciphertext) error {
	out.CopyFrom(a)
	out.CT.AddAssign(b.CT)
	out.CT.NegAssign()
	out.CT.PlaintextAddAssign(PlaintextFalse)
	return sk.bootstrapAssign(out)
}

// Nor returns a NOR b.
func (sk *ServerKey) Nor(a, b *Ciphertext) (*Ciphertext, error) {
	out := &Ciphertext{}
	return out, sk.NorAssign(out, a, b)
}

// XorAssign sets out = a XOR b via 2*(a + b) + 1/4. Doubling widens the
// gap between the agree and disagree cases so the sign test separates
// them.
func (sk *ServerKey) XorAssign(out, a, b *Ciphertext) error {
	out.CopyFrom(a)
	out.CT.AddAssign(b.CT)
	out.CT.CleartextMulAssign(2)
	out.CT.PlaintextAddAssign(2 * PlaintextTrue)
	return sk.bootstrapAssign(out)
}

// Xor returns a XOR b.
func (sk *ServerKey) Xor(a, b *Ciphertext) (*Ciphertext, error) {
	out := &Ciphertext{}
	return out, sk.XorAssign(out, a, b)
}

// XnorAssign sets out = a XNOR b via -2*(a + b) - 1/4.
func (sk *ServerKey) XnorAssign(out, a, b *Ciphertext) error {
	out.CopyFrom(a)
	out.CT.AddAssign(b.CT)
	out.CT.CleartextMulAssign(2)
	out.CT.PlaintextAddAssign(2 * PlaintextTrue)
	out.CT.NegAssign()
	return sk.bootstrapAssign(out)
}

// Xnor returns a XNOR b.
func (sk *ServerKey) Xnor(a, b *Ciphertext) (*Ciphertext, error) {
	out := &Ciphertext{}
	return out, sk.XnorAssign(out, a, b)
}

// NotAssign sets out = NOT a. Negation flips the sign of the encoding
// directly, so no bootstrap is spent.
func (sk *ServerKey) NotAssign(out, a *Ciphertext) {
	out.CopyFrom(a)
	out.CT.NegAssign()
}

// Not returns NOT a.
func (sk *ServerKey) Not(a *Ciphertext) *Ciphertext {
	out := &Ciphertext{}
	sk.NotAssign(out, a)
	return out
}

// Mux returns cond ? then : els, composed from three gates.
func (sk *ServerKey) Mux(cond, then, els *Ciphertext) (*Ciphertext, error) {
	left, err := sk.And(cond, then)
	if err != nil {
		return nil, err
	}
	right, err := sk.And(sk.Not(cond), els)
	if err != nil {
		return nil, err
	}
	return sk.Or(left, right)
}
