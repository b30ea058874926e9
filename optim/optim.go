// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/tensorjo/internal/autodiff"
	"github.com/born-ml/tensorjo/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// RunConfig configures Minimize and Maximize.
type RunConfig = optim.RunConfig

// RoundFunc observes training progress.
type RoundFunc = optim.RoundFunc

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(
//	    []*autodiff.Node{a, b},
//	    optim.SGDConfig{
//	        LR:       0.01,
//	        Momentum: 0.9,
//	    },
//	)
func NewSGD(params []*autodiff.Node, config SGDConfig) *SGD {
	return optim.NewSGD(params, config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
//
// Example:
//
//	optimizer := optim.NewAdam(
//	    []*autodiff.Node{w, b},
//	    optim.AdamConfig{
//	        LR:    0.001,
//	        Betas: [2]float64{0.9, 0.999},
//	    },
//	)
func NewAdam(params []*autodiff.Node, config AdamConfig) *Adam {
	return optim.NewAdam(params, config)
}

// Minimize runs gradient descent on objective for config.Rounds rounds.
func Minimize(opt Optimizer, objective *autodiff.Node, config RunConfig) error {
	return optim.Minimize(opt, objective, config)
}

// Maximize runs gradient ascent on objective for config.Rounds rounds.
func Maximize(opt Optimizer, objective *autodiff.Node, config RunConfig) error {
	return optim.Maximize(opt, objective, config)
}
