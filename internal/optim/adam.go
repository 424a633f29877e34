package optim

import (
	"fmt"
	"math"

	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	params []*autodiff.Handle
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	t      int                  // Timestep for bias correction
	m      map[uint64][]float64 // First moment estimates
	v      map[uint64][]float64 // Second moment estimates
}

var _ Optimizer = (*Adam)(nil)

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer with default hyperparameters where unset.
func NewAdam(params []*autodiff.Handle, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas == [2]float64{} {
		config.Betas = [2]float64{0.9, 0.999}
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
		m:      make(map[uint64][]float64),
		v:      make(map[uint64][]float64),
	}
}

// Step performs a single optimization step.
func (a *Adam) Step() error {
	grads, err := gradients(a.params)
	if err != nil {
		return fmt.Errorf("adam step: %w", err)
	}

	a.t++
	c1 := 1 - math.Pow(a.beta1, float64(a.t))
	c2 := 1 - math.Pow(a.beta2, float64(a.t))

	for i, param := range a.params {
		g := grads[i].Data()
		m, ok := a.m[param.ID()]
		if !ok {
			m = make([]float64, len(g))
			a.m[param.ID()] = m
		}
		v, ok := a.v[param.ID()]
		if !ok {
			v = make([]float64, len(g))
			a.v[param.ID()] = v
		}

		data := param.Data().Data()
		next := make([]float64, len(data))
		for j, gj := range g {
			m[j] = a.beta1*m[j] + (1-a.beta1)*gj
			v[j] = a.beta2*v[j] + (1-a.beta2)*gj*gj
			next[j] = data[j] - a.lr*(m[j]/c1)/(math.Sqrt(v[j]/c2)+a.eps)
		}

		t, err := tensor.FromSlice(next, param.Data().Shape())
		if err != nil {
			return fmt.Errorf("adam step: param %d: %w", i, err)
		}
		if err := param.SetData(t); err != nil {
			return fmt.Errorf("adam step: param %d: %w", i, err)
		}
	}
	return nil
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	clearGrads(a.params)
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
