package ops

import (
	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// MulOp is element-wise multiplication: output = a * b.
type MulOp struct{}

// Name implements autodiff.Function.
func (MulOp) Name() string { return "Mul" }

// Forward implements autodiff.Function.
func (op MulOp) Forward(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := arity(op.Name(), inputs, 2); err != nil {
		return nil, err
	}
	return single(tensor.Mul(inputs[0], inputs[1]))
}

// Backward returns grad*b for a and grad*a for b.
func (MulOp) Backward(inputs, outputGrads []*tensor.Tensor) ([]*tensor.Tensor, error) {
	a, b, gy := inputs[0], inputs[1], outputGrads[0]

	gaFull, err := tensor.Mul(gy, b)
	if err != nil {
		return nil, err
	}
	ga, err := tensor.SumTo(gaFull, a.Shape())
	if err != nil {
		return nil, err
	}

	gbFull, err := tensor.Mul(gy, a)
	if err != nil {
		return nil, err
	}
	gb, err := tensor.SumTo(gbFull, b.Shape())
	if err != nil {
		return nil, err
	}

	return []*tensor.Tensor{ga, gb}, nil
}

// Mul records a * b on g.
func Mul(g *autodiff.Graph, a, b *autodiff.Handle) (*autodiff.Handle, error) {
	return g.Apply1(MulOp{}, a, b)
}
