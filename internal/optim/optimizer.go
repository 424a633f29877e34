// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Optimizers read the gradients that Graph.Backward accumulated on the parameter
// nodes and replace the parameters' data in place.
//
// Example usage:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})
//
//	for epoch := range epochs {
//	    optimizer.ZeroGrad()
//	    pred, _ := model.Call(x)
//	    loss, _ := mse.Forward(pred, y)
//	    _ = g.Backward(loss)
//	    _ = optimizer.Step()
//	}
package optim

import (
	"fmt"

	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
//
// All optimizers must implement:
//   - Step: Apply gradient updates to parameters
//   - ZeroGrad: Clear gradients before next iteration
//   - GetLR: Get current learning rate (for monitoring/scheduling)
type Optimizer interface {
	// Step applies gradient updates to all parameters.
	//
	// Every parameter must carry a gradient; otherwise autodiff.ErrNoGradient is
	// returned and no parameter is modified.
	Step() error

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// gradients collects the gradient of every parameter, failing on the first one
// that has none.
func gradients(params []*autodiff.Handle) ([]*tensor.Tensor, error) {
	grads := make([]*tensor.Tensor, len(params))
	for i, p := range params {
		g, err := p.GradData()
		if err != nil {
			return nil, fmt.Errorf("param %d (%s): %w", i, p.Name(), err)
		}
		grads[i] = g
	}
	return grads, nil
}

func clearGrads(params []*autodiff.Handle) {
	for _, p := range params {
		p.ClearGrad()
	}
}
