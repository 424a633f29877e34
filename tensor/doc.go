// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float64 tensors the autodiff engine computes on.
//
// # Overview
//
// Tensors are row-major float64 arrays with a shape. This package provides:
//   - Constructors (FromSlice, Zeros, Ones, Full, Randn)
//   - NumPy-style broadcasting for Add, Sub and Mul
//   - MatMul and Transpose backed by gonum
//   - SumTo, the reduction used to route gradients back through broadcasts
//
// # Basic Usage
//
//	x := tensor.MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	b := tensor.MustFromSlice([]float64{10, 20, 30}, tensor.Shape{3})
//	y, err := tensor.Add(x, b) // [[11 22 33] [14 25 36]]
//
// Shape errors wrap ErrShapeMismatch:
//
//	if errors.Is(err, tensor.ErrShapeMismatch) { ... }
package tensor
