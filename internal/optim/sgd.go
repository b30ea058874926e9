package optim

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/tensorjo/internal/autodiff"
	"github.com/born-ml/tensorjo/internal/tensor"
)

// SGD implements gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []*autodiff.Node
	lr         float64
	momentum   float64
	velocities map[*autodiff.Node]*tensor.Tensor
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer over params.
func NewSGD(params []*autodiff.Node, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*autodiff.Node]*tensor.Tensor),
	}
}

// Params returns the nodes being optimized.
func (s *SGD) Params() []*autodiff.Node {
	return s.params
}

// Step performs a single optimization step. Params with a nil gradient are skipped.
func (s *SGD) Step(grads []*tensor.Tensor) error {
	if err := checkGrads(s.params, grads); err != nil {
		return err
	}
	for i, param := range s.params {
		grad := grads[i]
		if grad == nil {
			continue
		}

		update := grad
		if s.momentum != 0 {
			velocity, ok := s.velocities[param]
			if !ok {
				velocity = tensor.ZerosLike(grad)
			}
			var err error
			if velocity, err = tensor.Add(tensor.Scale(velocity, s.momentum), grad); err != nil {
				return err
			}
			s.velocities[param] = velocity
			update = velocity
		}

		next, err := tensor.Sub(param.Value(), tensor.Scale(update, s.lr))
		if err != nil {
			return err
		}
		if err := param.Update(next); err != nil {
			return errors.WithMessagef(err, "sgd step on %q", param.Name())
		}
	}
	return nil
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// StateDict returns the velocity buffers keyed "velocity.{param_index}".
// Without momentum it is empty.
func (s *SGD) StateDict() map[string]*tensor.Tensor {
	state := make(map[string]*tensor.Tensor)
	if s.momentum == 0 {
		return state
	}
	for i, param := range s.params {
		if velocity, ok := s.velocities[param]; ok {
			state[fmt.Sprintf("velocity.%d", i)] = velocity
		}
	}
	return state
}

// LoadStateDict restores velocity buffers saved by StateDict.
func (s *SGD) LoadStateDict(state map[string]*tensor.Tensor) error {
	if s.momentum == 0 {
		return nil
	}
	velocities := make(map[*autodiff.Node]*tensor.Tensor)
	for i, param := range s.params {
		velocity, ok := state[fmt.Sprintf("velocity.%d", i)]
		if !ok {
			continue
		}
		if !velocity.Shape().Equal(param.Shape()) {
			return errors.Wrapf(tensor.ErrValidation, "velocity shape mismatch for parameter %d: expected %v, got %v",
				i, param.Shape(), velocity.Shape())
		}
		velocities[param] = velocity
	}
	s.velocities = velocities
	return nil
}
