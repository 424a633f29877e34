// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand/v2"

	"github.com/born-ml/tracegrad/internal/tensor"
)

// Tensor is a dense row-major float64 array.
type Tensor = tensor.Tensor

// Shape lists the size of each dimension.
type Shape = tensor.Shape

// ErrShapeMismatch is wrapped by every shape error.
var ErrShapeMismatch = tensor.ErrShapeMismatch

// FromSlice creates a tensor from a copy of data.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// MustFromSlice is like FromSlice but panics on error.
func MustFromSlice(data []float64, shape Shape) *Tensor {
	return tensor.MustFromSlice(data, shape)
}

// Scalar creates a 0-D tensor.
func Scalar(v float64) *Tensor {
	return tensor.Scalar(v)
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return tensor.Ones(shape)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64) *Tensor {
	return tensor.Full(shape, value)
}

// Randn samples a tensor from the standard normal distribution using rng.
func Randn(shape Shape, rng *rand.Rand) *Tensor {
	return tensor.Randn(shape, rng)
}

// Add returns a + b with broadcasting.
func Add(a, b *Tensor) (*Tensor, error) {
	return tensor.Add(a, b)
}

// Sub returns a - b with broadcasting.
func Sub(a, b *Tensor) (*Tensor, error) {
	return tensor.Sub(a, b)
}

// Mul returns the elementwise product with broadcasting.
func Mul(a, b *Tensor) (*Tensor, error) {
	return tensor.Mul(a, b)
}

// Scale returns a * s.
func Scale(a *Tensor, s float64) *Tensor {
	return tensor.Scale(a, s)
}

// MatMul multiplies two 2-D tensors.
func MatMul(a, b *Tensor) (*Tensor, error) {
	return tensor.MatMul(a, b)
}

// Transpose swaps the axes of a 2-D tensor.
func Transpose(a *Tensor) (*Tensor, error) {
	return tensor.Transpose(a)
}

// Sum reduces all elements to a 0-D tensor.
func Sum(a *Tensor) *Tensor {
	return tensor.Sum(a)
}

// SumTo sums a down to shape, undoing a broadcast.
func SumTo(a *Tensor, shape Shape) (*Tensor, error) {
	return tensor.SumTo(a, shape)
}

// BroadcastTo expands a to shape.
func BroadcastTo(a *Tensor, shape Shape) (*Tensor, error) {
	return tensor.BroadcastTo(a, shape)
}
