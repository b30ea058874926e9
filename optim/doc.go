// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides gradient-based optimizers for graph variables.
//
// # Overview
//
// This package contains:
//   - SGD: gradient descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//   - Minimize and Maximize, which run an optimizer for a number of rounds
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/tensorjo/autodiff"
//	    "github.com/born-ml/tensorjo/optim"
//	)
//
//	func main() {
//	    g := autodiff.New(autodiff.Config{})
//	    x, _ := g.Constant([][]float64{{0, 1, 2, 3}})
//	    y, _ := g.Constant([][]float64{{5, 6, 7, 8}})
//	    a, _ := g.Var([][]float64{{0}})
//	    b, _ := g.Var([][]float64{{0}})
//
//	    ax, _ := g.Mul(a, x)
//	    pred, _ := g.Add(ax, b)
//	    loss, _ := g.MSE(pred, y)
//
//	    sgd := optim.NewSGD([]*autodiff.Node{a, b}, optim.SGDConfig{LR: 1e-2})
//	    err := optim.Minimize(sgd, loss, optim.RunConfig{Rounds: 1200})
//	}
//
// # Training Loop Pattern
//
// Minimize is equivalent to:
//
//	for round := range rounds {
//	    grads, err := g.Gradients(loss, params...)
//	    if err != nil {
//	        return err
//	    }
//	    if err := optimizer.Step(grads); err != nil {
//	        return err
//	    }
//	}
package optim
