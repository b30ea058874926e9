// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorjo/autodiff"
	"github.com/born-ml/tensorjo/optim"
)

// TestPublicAPI minimizes (x - 3)² through the facade.
func TestPublicAPI(t *testing.T) {
	g := autodiff.New(autodiff.Config{})
	x, err := g.Var(0.0, autodiff.Named("x"))
	require.NoError(t, err)
	diff, err := g.Sub(x, 3.0)
	require.NoError(t, err)
	objective, err := g.Mul(diff, diff)
	require.NoError(t, err)

	var last float64
	sgd := optim.NewSGD([]*autodiff.Node{x}, optim.SGDConfig{LR: 0.1})
	err = optim.Minimize(sgd, objective, optim.RunConfig{
		OnRound: func(_ int, value float64) { last = value },
	})
	require.NoError(t, err)

	value, err := x.Value().Item()
	require.NoError(t, err)
	assert.InDelta(t, 3.0, value, 1e-6)
	assert.Less(t, last, 1e-10)
}
