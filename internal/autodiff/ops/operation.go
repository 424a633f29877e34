// Package ops is the catalogue of differentiable primitives.
//
// Each primitive is an autodiff.Function plus a helper that applies it on a graph:
//   - AddOp: element-wise addition (d(a+b)/da = 1, d(a+b)/db = 1)
//   - SubOp: element-wise subtraction
//   - MulOp: element-wise multiplication (d(a*b)/da = b, d(a*b)/db = a)
//   - SquareOp: x² (d/dx = 2x)
//   - MatMulOp: matrix multiplication (d(A@B)/dA = grad@B^T, d(A@B)/dB = A^T@grad)
//   - LinearOp: x@W + b
//   - SumOp: sum of all elements
//   - MSEOp: mean squared error between two tensors
//
// Binary element-wise primitives broadcast in the forward pass, so their backward
// pass sums the gradient back to each input's shape.
package ops

import (
	"fmt"

	"github.com/born-ml/tracegrad/internal/tensor"
)

// single wraps a one-output forward result.
func single(t *tensor.Tensor, err error) ([]*tensor.Tensor, error) {
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{t}, nil
}

// arity checks the number of inputs a primitive received.
func arity(name string, inputs []*tensor.Tensor, want ...int) error {
	for _, n := range want {
		if len(inputs) == n {
			return nil
		}
	}
	return fmt.Errorf("%s: expected %v inputs, got %d", name, want, len(inputs))
}
