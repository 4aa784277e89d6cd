// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package shortint

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	params Parameters
	ck     *ClientKey
	sk     *ServerKey
	err    error
}

var (
	fixtures   = map[PBSOrder]*fixture{}
	fixtureMus = map[PBSOrder]*sync.Once{
		OrderKeyswitchBootstrap: {},
		OrderBootstrapKeyswitch: {},
	}
)

func buildFixture(params Parameters) *fixture {
	f := &fixture{params: params}
	f.ck, f.err = NewClientKey(params)
	if f.err != nil {
		return f
	}
	f.sk, f.err = NewServerKey(f.ck)
	return f
}

// testKeys returns the shared key fixture under the default
// keyswitch-then-bootstrap order. Key generation runs once per order
// for the whole package.
func testKeys(t *testing.T) *fixture {
	t.Helper()
	return testKeysWithOrder(t, OrderKeyswitchBootstrap)
}

func testKeysWithOrder(t *testing.T, order PBSOrder) *fixture {
	t.Helper()
	fixtureMus[order].Do(func() {
		params := ParamsTestMessage2Carry2
		params.PBSOrder = order
		fixtures[order] = buildFixture(params)
	})
	f := fixtures[order]
	require.NoError(t, f.err)
	return f
}
