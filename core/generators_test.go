// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeededGeneratorDeterminism(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)
	seed := g.NewSeed()

	a, err := NewSeededGenerator(seed)
	require.NoError(t, err)
	b, err := NewSeededGenerator(seed)
	require.NoError(t, err)

	bufA := make([]uint64, 256)
	bufB := make([]uint64, 256)
	UniformSliceAssign(a, bufA)
	UniformSliceAssign(b, bufB)
	require.Equal(t, bufA, bufB)

	// Diverging seeds diverge immediately.
	c, err := NewSeededGenerator(g.NewSeed())
	require.NoError(t, err)
	bufC := make([]uint64, 256)
	UniformSliceAssign(c, bufC)
	require.NotEqual(t, bufA, bufC)
}

func TestBinarySliceAssign(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	out := make([]uint64, 1000)
	BinarySliceAssign(g, out)

	ones := 0
	for _, v := range out {
		require.LessOrEqual(t, v, uint64(1))
		ones += int(v)
	}
	// Loose balance check: 1000 fair bits land in [400, 600] except with
	// probability < 2^-35.
	require.Greater(t, ones, 400)
	require.Less(t, ones, 600)
}
