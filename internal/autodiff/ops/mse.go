package ops

import (
	"fmt"

	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// MSEOp is the mean squared error: mean((a - b)²) as a scalar.
type MSEOp struct{}

// Name implements autodiff.Function.
func (MSEOp) Name() string { return "MeanSquaredError" }

// Forward implements autodiff.Function.
func (op MSEOp) Forward(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := arity(op.Name(), inputs, 2); err != nil {
		return nil, err
	}
	a, b := inputs[0], inputs[1]
	if !a.Shape().Equal(b.Shape()) {
		return nil, fmt.Errorf("%w: predictions %v, targets %v", tensor.ErrShapeMismatch, a.Shape(), b.Shape())
	}

	diff, err := tensor.Sub(a, b)
	if err != nil {
		return nil, err
	}
	sq, err := tensor.Mul(diff, diff)
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{tensor.Scale(tensor.Sum(sq), 1/float64(diff.NumElements()))}, nil
}

// Backward returns 2(a-b)/N * grad for a and its negation for b.
func (MSEOp) Backward(inputs, outputGrads []*tensor.Tensor) ([]*tensor.Tensor, error) {
	a, b := inputs[0], inputs[1]

	diff, err := tensor.Sub(a, b)
	if err != nil {
		return nil, err
	}
	ga, err := tensor.Mul(tensor.Scale(diff, 2/float64(diff.NumElements())), outputGrads[0])
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{ga, tensor.Scale(ga, -1)}, nil
}

// MeanSquaredError records mean((a - b)²) on g.
func MeanSquaredError(g *autodiff.Graph, a, b *autodiff.Handle) (*autodiff.Handle, error) {
	return g.Apply1(MSEOp{}, a, b)
}
