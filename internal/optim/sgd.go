package optim

import (
	"fmt"

	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Example:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
type SGD struct {
	params     []*autodiff.Handle
	lr         float64
	momentum   float64
	velocities map[uint64]*tensor.Tensor // keyed by parameter node id
}

var _ Optimizer = (*SGD)(nil)

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
//
// The parameter handles stay owned by the caller (usually a layer); the optimizer
// only borrows them.
func NewSGD(params []*autodiff.Handle, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[uint64]*tensor.Tensor),
	}
}

// Step performs a single optimization step.
func (s *SGD) Step() error {
	grads, err := gradients(s.params)
	if err != nil {
		return fmt.Errorf("sgd step: %w", err)
	}

	for i, param := range s.params {
		update := grads[i]
		if s.momentum != 0 {
			update = s.velocity(param, grads[i])
		}

		next, err := tensor.Sub(param.Data(), tensor.Scale(update, s.lr))
		if err != nil {
			return fmt.Errorf("sgd step: param %d: %w", i, err)
		}
		if err := param.SetData(next); err != nil {
			return fmt.Errorf("sgd step: param %d: %w", i, err)
		}
	}
	return nil
}

// velocity updates and returns momentum * velocity + grad for param.
func (s *SGD) velocity(param *autodiff.Handle, grad *tensor.Tensor) *tensor.Tensor {
	v, ok := s.velocities[param.ID()]
	if !ok {
		v = grad.Clone()
	} else {
		// Shapes are fixed per parameter, so Add cannot fail here.
		v, _ = tensor.Add(tensor.Scale(v, s.momentum), grad)
	}
	s.velocities[param.ID()] = v
	return v
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	clearGrads(s.params)
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// StateDict returns the velocity buffers keyed "velocity.{param_index}".
// Without momentum, returns an empty map.
func (s *SGD) StateDict() map[string]*tensor.Tensor {
	state := make(map[string]*tensor.Tensor)
	if s.momentum == 0 {
		return state
	}
	for i, param := range s.params {
		if v, ok := s.velocities[param.ID()]; ok {
			state[fmt.Sprintf("velocity.%d", i)] = v.Clone()
		}
	}
	return state
}

// LoadStateDict restores velocity buffers saved by StateDict.
//
// Returns an error if a velocity shape doesn't match its parameter.
func (s *SGD) LoadStateDict(state map[string]*tensor.Tensor) error {
	if s.momentum == 0 {
		return nil
	}

	velocities := make(map[uint64]*tensor.Tensor)
	for i, param := range s.params {
		v, ok := state[fmt.Sprintf("velocity.%d", i)]
		if !ok {
			continue
		}
		if !v.Shape().Equal(param.Data().Shape()) {
			return fmt.Errorf("velocity shape mismatch for parameter %d: %w: expected %v, got %v",
				i, tensor.ErrShapeMismatch, param.Data().Shape(), v.Shape())
		}
		velocities[param.ID()] = v.Clone()
	}
	s.velocities = velocities
	return nil
}
