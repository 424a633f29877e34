package ops

import (
	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// SquareOp computes x².
type SquareOp struct{}

// Name implements autodiff.Function.
func (SquareOp) Name() string { return "Square" }

// Forward implements autodiff.Function.
func (op SquareOp) Forward(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := arity(op.Name(), inputs, 1); err != nil {
		return nil, err
	}
	return single(tensor.Mul(inputs[0], inputs[0]))
}

// Backward returns 2x * grad.
func (SquareOp) Backward(inputs, outputGrads []*tensor.Tensor) ([]*tensor.Tensor, error) {
	gx, err := tensor.Mul(tensor.Scale(inputs[0], 2), outputGrads[0])
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{gx}, nil
}

// Square records x² on g.
func Square(g *autodiff.Graph, x *autodiff.Handle) (*autodiff.Handle, error) {
	return g.Apply1(SquareOp{}, x)
}
