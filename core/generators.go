// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package core

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tuneinsight/lattigo/v5/utils/sampling"
)

// SeedSize is the byte length of the seeds used for deterministic mask
// expansion (seeded ciphertexts, per-row bootstrap key generation).
const SeedSize = 32

// Generator produces the randomness consumed during key generation and
// encryption: uniform torus masks, binary secrets and gaussian noise.
// It carries sequential state and must not be shared between goroutines;
// give each parallel unit its own Generator.
type Generator struct {
	prng sampling.PRNG
	buf  [8]byte

	// Box-Muller produces samples in pairs; the spare is kept here.
	spare    float64
	hasSpare bool
}

// NewGenerator returns a generator backed by a cryptographically secure
// source.
func NewGenerator() (*Generator, error) {
	prng, err := sampling.NewPRNG()
	if err != nil {
		return nil, fmt.Errorf("new prng: %w", err)
	}
	return &Generator{prng: prng}, nil
}

// NewSeededGenerator returns a deterministic generator expanding the
// given seed. Two generators built from the same seed produce the same
// stream.
func NewSeededGenerator(seed []byte) (*Generator, error) {
	prng, err := sampling.NewKeyedPRNG(seed)
	if err != nil {
		return nil, fmt.Errorf("new keyed prng: %w", err)
	}
	return &Generator{prng: prng}, nil
}

// NewSeed draws a fresh seed from the generator.
func (g *Generator) NewSeed() []byte {
	seed := make([]byte, SeedSize)
	if _, err := g.prng.Read(seed); err != nil {
		// The lattigo PRNGs only fail if the OS entropy source does;
		// there is no meaningful recovery from that.
		panic(fmt.Errorf("prng read: %w", err))
	}
	return seed
}

// Uint64 returns the next uniform 64-bit value.
func (g *Generator) Uint64() uint64 {
	if _, err := g.prng.Read(g.buf[:]); err != nil {
		panic(fmt.Errorf("prng read: %w", err))
	}
	return binary.LittleEndian.Uint64(g.buf[:])
}

// normFloat64 returns a standard normal sample via Box-Muller.
func (g *Generator) normFloat64() float64 {
	if g.hasSpare {
		g.hasSpare = false
		return g.spare
	}
	// u1 in (0, 1], u2 in [0, 1).
	u1 := (float64(g.Uint64()>>11) + 1) / (1 << 53)
	u2 := float64(g.Uint64()>>11) / (1 << 53)
	r := math.Sqrt(-2 * math.Log(u1))
	g.spare = r * math.Sin(2*math.Pi*u2)
	g.hasSpare = true
	return r * math.Cos(2*math.Pi*u2)
}

// UniformTorus returns a uniform torus element.
func UniformTorus[T Torus](g *Generator) T {
	return T(g.Uint64())
}

// UniformSliceAssign fills out with uniform torus elements.
func UniformSliceAssign[T Torus](g *Generator, out []T) {
	for i := range out {
		out[i] = T(g.Uint64())
	}
}

// GaussianTorus returns a gaussian torus element with the given standard
// deviation, expressed as a fraction of the modulus (modular std dev).
func GaussianTorus[T Torus](g *Generator, stdDev float64) T {
	scale := math.Exp2(float64(TorusBits[T]()))
	return FromFloat[T](g.normFloat64() * stdDev * scale)
}

// BinarySliceAssign fills out with uniform bits, the secret key
// distribution of the scheme.
func BinarySliceAssign[T Torus](g *Generator, out []T) {
	var word uint64
	for i := range out {
		if i%64 == 0 {
			word = g.Uint64()
		}
		out[i] = T(word & 1)
		word >>= 1
	}
}
