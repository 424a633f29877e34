package ops

import (
	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// SumOp adds up every element into a scalar.
type SumOp struct{}

// Name implements autodiff.Function.
func (SumOp) Name() string { return "Sum" }

// Forward implements autodiff.Function.
func (op SumOp) Forward(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := arity(op.Name(), inputs, 1); err != nil {
		return nil, err
	}
	return []*tensor.Tensor{tensor.Sum(inputs[0])}, nil
}

// Backward broadcasts the scalar gradient back to the input's shape.
func (SumOp) Backward(inputs, outputGrads []*tensor.Tensor) ([]*tensor.Tensor, error) {
	return single(tensor.BroadcastTo(outputGrads[0], inputs[0].Shape()))
}

// Sum records the sum of all elements of x on g.
func Sum(g *autodiff.Graph, x *autodiff.Handle) (*autodiff.Handle, error) {
	return g.Apply1(SumOp{}, x)
}
