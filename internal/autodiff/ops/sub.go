package ops

import (
	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// SubOp is element-wise subtraction: output = a - b.
type SubOp struct{}

// Name implements autodiff.Function.
func (SubOp) Name() string { return "Sub" }

// Forward implements autodiff.Function.
func (op SubOp) Forward(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := arity(op.Name(), inputs, 2); err != nil {
		return nil, err
	}
	return single(tensor.Sub(inputs[0], inputs[1]))
}

// Backward returns grad for a and -grad for b.
func (SubOp) Backward(inputs, outputGrads []*tensor.Tensor) ([]*tensor.Tensor, error) {
	gy := outputGrads[0]
	ga, err := tensor.SumTo(gy, inputs[0].Shape())
	if err != nil {
		return nil, err
	}
	gb, err := tensor.SumTo(tensor.Scale(gy, -1), inputs[1].Shape())
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{ga, gb}, nil
}

// Sub records a - b on g.
func Sub(g *autodiff.Graph, a, b *autodiff.Handle) (*autodiff.Handle, error) {
	return g.Apply1(SubOp{}, a, b)
}
