// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides trainable layers on top of the autodiff graph.
//
// # Overview
//
// This package contains:
//   - Layer: the lifecycle every layer shares (call, parameters, update)
//   - Linear: fully connected layer, optionally inferring its input size
//   - Sequential: container chaining layers
//   - MSELoss: mean squared error
//   - ParamSet: ordered parameter registry
//
// # Basic Usage
//
//	g := autodiff.NewGraph()
//	layer, _ := nn.NewLinear(g, 3, nn.LinearConfig{Bias: true})
//
//	x := g.NewLeaf("x", tensor.Ones(tensor.Shape{2, 4}))
//	y, _ := layer.Call(x) // W is created here with shape [4, 3]
//	loss, _ := autodiff.Sum(g, y)
//
//	_ = g.Backward(loss)
//	_ = layer.UpdateParams(0.1)
//	layer.ClearGrads()
//
// A layer keeps only weak references to its last input and output. Release the
// handles returned by Call when you are done with them.
package nn
