package ops

import (
	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// LinearOp is the affine transform y = x @ W (+ b).
//
// Inputs are [x, W] or [x, W, b] where x is [batch, in], W is [in, out] and b is
// [out], broadcast over the batch.
type LinearOp struct{}

// Name implements autodiff.Function.
func (LinearOp) Name() string { return "Linear" }

// Forward implements autodiff.Function.
func (op LinearOp) Forward(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := arity(op.Name(), inputs, 2, 3); err != nil {
		return nil, err
	}

	y, err := tensor.MatMul(inputs[0], inputs[1])
	if err != nil {
		return nil, err
	}
	if len(inputs) == 3 {
		if y, err = tensor.Add(y, inputs[2]); err != nil {
			return nil, err
		}
	}
	return []*tensor.Tensor{y}, nil
}

// Backward returns grad@W^T for x, x^T@grad for W and grad summed over the batch for b.
func (LinearOp) Backward(inputs, outputGrads []*tensor.Tensor) ([]*tensor.Tensor, error) {
	gy := outputGrads[0]
	gx, gw, err := matmulGrads(inputs[0], inputs[1], gy)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 2 {
		return []*tensor.Tensor{gx, gw}, nil
	}

	gb, err := tensor.SumTo(gy, inputs[2].Shape())
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{gx, gw, gb}, nil
}

// Linear records x @ w + b on g. b may be nil.
func Linear(g *autodiff.Graph, x, w, b *autodiff.Handle) (*autodiff.Handle, error) {
	if b == nil {
		return g.Apply1(LinearOp{}, x, w)
	}
	return g.Apply1(LinearOp{}, x, w, b)
}
