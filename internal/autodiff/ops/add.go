package ops

import (
	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// AddOp is element-wise addition: output = a + b.
type AddOp struct{}

// Name implements autodiff.Function.
func (AddOp) Name() string { return "Add" }

// Forward implements autodiff.Function.
func (op AddOp) Forward(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := arity(op.Name(), inputs, 2); err != nil {
		return nil, err
	}
	return single(tensor.Add(inputs[0], inputs[1]))
}

// Backward passes the gradient through unchanged, reduced to each input's shape.
func (AddOp) Backward(inputs, outputGrads []*tensor.Tensor) ([]*tensor.Tensor, error) {
	gy := outputGrads[0]
	ga, err := tensor.SumTo(gy, inputs[0].Shape())
	if err != nil {
		return nil, err
	}
	gb, err := tensor.SumTo(gy, inputs[1].Shape())
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{ga, gb}, nil
}

// Add records a + b on g.
func Add(g *autodiff.Graph, a, b *autodiff.Handle) (*autodiff.Handle, error) {
	return g.Apply1(AddOp{}, a, b)
}
