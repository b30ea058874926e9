package optim

import (
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/tensorjo/internal/autodiff"
	"github.com/born-ml/tensorjo/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	params []*autodiff.Node
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	t      int                          // timestep for bias correction
	m      map[*autodiff.Node][]float64 // first moment estimates
	v      map[*autodiff.Node][]float64 // second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer over params. Zero config fields take
// their defaults.
func NewAdam(params []*autodiff.Node, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[*autodiff.Node][]float64),
		v:      make(map[*autodiff.Node][]float64),
	}
}

// Params returns the nodes being optimized.
func (a *Adam) Params() []*autodiff.Node {
	return a.params
}

// Step performs a single optimization step. Params with a nil gradient are skipped.
func (a *Adam) Step(grads []*tensor.Tensor) error {
	if err := checkGrads(a.params, grads); err != nil {
		return err
	}
	a.t++
	biasCorrection1 := 1 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1 - math.Pow(a.beta2, float64(a.t))

	for i, param := range a.params {
		if grads[i] == nil {
			continue
		}
		g := grads[i].Data()
		m, ok := a.m[param]
		if !ok {
			m = make([]float64, len(g))
			a.m[param] = m
		}
		v, ok := a.v[param]
		if !ok {
			v = make([]float64, len(g))
			a.v[param] = v
		}

		data := param.Value().Data()
		for j := range data {
			m[j] = a.beta1*m[j] + (1-a.beta1)*g[j]
			v[j] = a.beta2*v[j] + (1-a.beta2)*g[j]*g[j]
			mHat := m[j] / biasCorrection1
			vHat := v[j] / biasCorrection2
			data[j] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
		}

		next, err := tensor.New(data, param.Shape())
		if err != nil {
			return errors.WithMessagef(err, "adam step on %q", param.Name())
		}
		if err := param.Update(next); err != nil {
			return errors.WithMessagef(err, "adam step on %q", param.Name())
		}
	}
	return nil
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// GetTimestep returns the number of steps taken.
func (a *Adam) GetTimestep() int {
	return a.t
}
