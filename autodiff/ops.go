// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package autodiff

import (
	"github.com/born-ml/tracegrad/internal/autodiff/ops"
)

// Add records a + b.
func Add(g *Graph, a, b *Handle) (*Handle, error) {
	return ops.Add(g, a, b)
}

// Sub records a - b.
func Sub(g *Graph, a, b *Handle) (*Handle, error) {
	return ops.Sub(g, a, b)
}

// Mul records the elementwise product a * b.
func Mul(g *Graph, a, b *Handle) (*Handle, error) {
	return ops.Mul(g, a, b)
}

// Square records x².
func Square(g *Graph, x *Handle) (*Handle, error) {
	return ops.Square(g, x)
}

// MatMul records a @ b.
func MatMul(g *Graph, a, b *Handle) (*Handle, error) {
	return ops.MatMul(g, a, b)
}

// Linear records x @ w + b. b may be nil.
func Linear(g *Graph, x, w, b *Handle) (*Handle, error) {
	return ops.Linear(g, x, w, b)
}

// Sum records the sum of all elements as a 0-D value.
func Sum(g *Graph, x *Handle) (*Handle, error) {
	return ops.Sum(g, x)
}

// MeanSquaredError records mean((a - b)²).
func MeanSquaredError(g *Graph, a, b *Handle) (*Handle, error) {
	return ops.MeanSquaredError(g, a, b)
}
