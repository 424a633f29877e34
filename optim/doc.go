// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural networks.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// # Training Loop Pattern
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})
//
//	for epoch := range numEpochs {
//	    // 1. Zero gradients
//	    optimizer.ZeroGrad()
//
//	    // 2. Forward pass
//	    pred, _ := model.Call(x)
//	    loss, _ := mse.Forward(pred, y)
//
//	    // 3. Backward pass
//	    _ = g.Backward(loss)
//
//	    // 4. Update parameters
//	    _ = optimizer.Step()
//
//	    pred.Release()
//	    loss.Release()
//	}
//
// Layers that infer their input size create their weight on the first call, so
// build the optimizer after it.
package optim
