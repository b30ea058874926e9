// Package optim implements gradient-based optimizers over graph variables.
//
// This package provides:
//   - Optimizer interface: one update step from a list of gradients
//   - SGD: gradient descent with optional momentum
//   - Adam: Adaptive Moment Estimation
//   - Minimize / Maximize: drive an optimizer for a number of rounds
//
// Example usage:
//
//	sgd := optim.NewSGD([]*autodiff.Node{a, b}, optim.SGDConfig{LR: 1e-2})
//	err := optim.Minimize(sgd, loss, optim.RunConfig{Rounds: 1200})
package optim

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/tensorjo/internal/autodiff"
	"github.com/born-ml/tensorjo/internal/tensor"
)

// Optimizer updates a fixed list of primitive nodes from their gradients.
type Optimizer interface {
	// Params returns the nodes being optimized.
	Params() []*autodiff.Node

	// Step applies one descent update. grads[i] is the gradient of the
	// objective with respect to Params()[i]; nil entries are skipped.
	Step(grads []*tensor.Tensor) error

	// GetLR returns the current learning rate.
	GetLR() float64
}

// RoundFunc observes training progress. It is called after every round with
// the 1-based round number and the mean objective value before the update.
type RoundFunc func(round int, objective float64)

// RunConfig configures Minimize and Maximize.
type RunConfig struct {
	Rounds  int       // Number of gradient steps (default: 100)
	OnRound RoundFunc // Optional progress callback
}

// Minimize runs gradient descent on objective.
func Minimize(opt Optimizer, objective *autodiff.Node, config RunConfig) error {
	return run(opt, objective, config, false)
}

// Maximize runs gradient ascent on objective.
func Maximize(opt Optimizer, objective *autodiff.Node, config RunConfig) error {
	return run(opt, objective, config, true)
}

func run(opt Optimizer, objective *autodiff.Node, config RunConfig, ascend bool) error {
	if config.Rounds == 0 {
		config.Rounds = 100
	}
	g := objective.Graph()
	if g == nil {
		return errors.Wrapf(autodiff.ErrNotFound, "objective %q is not attached to a graph", objective.Name())
	}
	params := opt.Params()
	klog.V(1).Infof("optimizing %q over %d params for %d rounds (ascend=%t, lr=%g)",
		objective.Name(), len(params), config.Rounds, ascend, opt.GetLR())

	for round := 1; round <= config.Rounds; round++ {
		grads, err := g.Gradients(objective, params...)
		if err != nil {
			return errors.WithMessagef(err, "round %d", round)
		}
		if ascend {
			for i, grad := range grads {
				grads[i] = tensor.Neg(grad)
			}
		}

		if config.OnRound != nil || klog.V(2).Enabled() {
			out, err := objective.Output()
			if err != nil {
				return errors.WithMessagef(err, "round %d", round)
			}
			value := tensor.Mean(out)
			klog.V(2).Infof("round %d: %q = %g", round, objective.Name(), value)
			if config.OnRound != nil {
				config.OnRound(round, value)
			}
		}

		if err := opt.Step(grads); err != nil {
			return errors.WithMessagef(err, "round %d", round)
		}
	}
	return nil
}

// checkGrads validates that grads lines up with params.
func checkGrads(params []*autodiff.Node, grads []*tensor.Tensor) error {
	if len(grads) != len(params) {
		return errors.Wrapf(tensor.ErrValidation, "got %d gradients for %d params", len(grads), len(params))
	}
	for i, grad := range grads {
		if grad == nil {
			continue
		}
		if !grad.Shape().Equal(params[i].Shape()) {
			return errors.Wrapf(tensor.ErrValidation, "gradient shape %v does not match param %q shape %v",
				grad.Shape(), params[i].Name(), params[i].Shape())
		}
	}
	return nil
}
