package tensor

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/tracegrad/internal/parallel"
)

// workers splits the broadcasting loops of large tensors across goroutines.
var workers = parallel.DefaultConfig()

// ErrShapeMismatch is returned when operand shapes are incompatible.
var ErrShapeMismatch = errors.New("shape mismatch")

// Add performs element-wise addition with broadcasting.
func Add(a, b *Tensor) (*Tensor, error) {
	return binary("add", a, b, floats.AddTo, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func Sub(a, b *Tensor) (*Tensor, error) {
	return binary("sub", a, b, floats.SubTo, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func Mul(a, b *Tensor) (*Tensor, error) {
	return binary("mul", a, b, floats.MulTo, func(x, y float64) float64 { return x * y })
}

// binary runs same-shape operands through the gonum kernel and everything else
// through the broadcasting path.
func binary(
	name string,
	a, b *Tensor,
	kernel func(dst, s, t []float64) []float64,
	scalar func(x, y float64) float64,
) (*Tensor, error) {
	if a.shape.Equal(b.shape) {
		out := &Tensor{shape: a.shape.Clone(), data: make([]float64, len(a.data))}
		kernel(out.data, a.data, b.data)
		return out, nil
	}

	shape, err := BroadcastShapes(a.shape, b.shape)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	ia := sourceIndices(shape, a.shape)
	ib := sourceIndices(shape, b.shape)
	out := &Tensor{shape: shape, data: make([]float64, shape.NumElements())}
	parallel.Range(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = scalar(a.data[ia[i]], b.data[ib[i]])
		}
	}, workers)
	return out, nil
}

// Scale multiplies every element by s.
func Scale(a *Tensor, s float64) *Tensor {
	out := &Tensor{shape: a.shape.Clone(), data: make([]float64, len(a.data))}
	floats.ScaleTo(out.data, s, a.data)
	return out
}

// Sum adds up every element into a 0-D tensor.
func Sum(a *Tensor) *Tensor {
	return Scalar(floats.Sum(a.data))
}

// MatMul multiplies two 2-D tensors: (M, K) @ (K, N) → (M, N).
func MatMul(a, b *Tensor) (*Tensor, error) {
	if len(a.shape) != 2 || len(b.shape) != 2 {
		return nil, fmt.Errorf("matmul: %w: expected 2-D operands, got %v and %v", ErrShapeMismatch, a.shape, b.shape)
	}
	if a.shape[1] != b.shape[0] {
		return nil, fmt.Errorf("matmul: %w: inner dimensions differ, %v @ %v", ErrShapeMismatch, a.shape, b.shape)
	}

	m, n := a.shape[0], b.shape[1]
	dst := mat.NewDense(m, n, nil)
	dst.Mul(a.dense(), b.dense())
	return fromDense(dst), nil
}

// Transpose swaps the two axes of a 2-D tensor.
func Transpose(a *Tensor) (*Tensor, error) {
	if len(a.shape) != 2 {
		return nil, fmt.Errorf("transpose: %w: expected 2-D operand, got %v", ErrShapeMismatch, a.shape)
	}
	return fromDense(mat.DenseCopyOf(a.dense().T())), nil
}

// BroadcastTo expands a to shape following broadcasting rules.
func BroadcastTo(a *Tensor, shape Shape) (*Tensor, error) {
	if a.shape.Equal(shape) {
		return a.Clone(), nil
	}

	target, err := BroadcastShapes(a.shape, shape)
	if err != nil || !target.Equal(shape) {
		return nil, fmt.Errorf("broadcast: %w: cannot expand %v to %v", ErrShapeMismatch, a.shape, shape)
	}

	idx := sourceIndices(shape, a.shape)
	out := &Tensor{shape: shape.Clone(), data: make([]float64, len(idx))}
	parallel.Range(len(idx), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = a.data[idx[i]]
		}
	}, workers)
	return out, nil
}

// SumTo reduces a to shape by summing over the dimensions broadcasting expanded.
// It is the adjoint of BroadcastTo.
func SumTo(a *Tensor, shape Shape) (*Tensor, error) {
	if a.shape.Equal(shape) {
		return a.Clone(), nil
	}

	source, err := BroadcastShapes(shape, a.shape)
	if err != nil || !source.Equal(a.shape) {
		return nil, fmt.Errorf("sum_to: %w: cannot reduce %v to %v", ErrShapeMismatch, a.shape, shape)
	}

	idx := sourceIndices(a.shape, shape)
	out := &Tensor{shape: shape.Clone(), data: make([]float64, shape.NumElements())}
	for i, dst := range idx {
		out.data[dst] += a.data[i]
	}
	return out, nil
}

func (t *Tensor) dense() *mat.Dense {
	return mat.NewDense(t.shape[0], t.shape[1], t.data)
}

func fromDense(d *mat.Dense) *Tensor {
	r, c := d.Dims()
	raw := d.RawMatrix()
	out := &Tensor{shape: Shape{r, c}, data: make([]float64, r*c)}
	for i := 0; i < r; i++ {
		copy(out.data[i*c:(i+1)*c], raw.Data[i*raw.Stride:i*raw.Stride+c])
	}
	return out
}
