package ops

import (
	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// MatMulOp is matrix multiplication: output = a @ b.
//
// Backward pass:
//   - d(A@B)/dA = outputGrad @ B^T
//   - d(A@B)/dB = A^T @ outputGrad
type MatMulOp struct{}

// Name implements autodiff.Function.
func (MatMulOp) Name() string { return "MatMul" }

// Forward implements autodiff.Function.
func (op MatMulOp) Forward(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := arity(op.Name(), inputs, 2); err != nil {
		return nil, err
	}
	return single(tensor.MatMul(inputs[0], inputs[1]))
}

// Backward implements autodiff.Function.
func (MatMulOp) Backward(inputs, outputGrads []*tensor.Tensor) ([]*tensor.Tensor, error) {
	ga, gb, err := matmulGrads(inputs[0], inputs[1], outputGrads[0])
	if err != nil {
		return nil, err
	}
	return []*tensor.Tensor{ga, gb}, nil
}

func matmulGrads(a, b, gy *tensor.Tensor) (ga, gb *tensor.Tensor, err error) {
	bT, err := tensor.Transpose(b)
	if err != nil {
		return nil, nil, err
	}
	if ga, err = tensor.MatMul(gy, bT); err != nil {
		return nil, nil, err
	}

	aT, err := tensor.Transpose(a)
	if err != nil {
		return nil, nil, err
	}
	if gb, err = tensor.MatMul(aT, gy); err != nil {
		return nil, nil, err
	}

	return ga, gb, nil
}

// MatMul records a @ b on g.
func MatMul(g *autodiff.Graph, a, b *autodiff.Handle) (*autodiff.Handle, error) {
	return g.Apply1(MatMulOp{}, a, b)
}
