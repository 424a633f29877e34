package nn

import (
	"math"
	"math/rand/v2"

	"github.com/born-ml/tracegrad/internal/tensor"
)

// LeCunNormal samples a weight tensor from N(0, 1) scaled by 1/sqrt(fanIn).
//
// The scaling keeps the variance of a layer's outputs close to the variance of its
// inputs.
func LeCunNormal(shape tensor.Shape, fanIn int, rng *rand.Rand) *tensor.Tensor {
	return tensor.Scale(tensor.Randn(shape, rng), 1/math.Sqrt(float64(fanIn)))
}

// Zeros creates a tensor filled with zeros.
//
// This is commonly used for bias initialization.
func Zeros(shape tensor.Shape) *tensor.Tensor {
	return tensor.Zeros(shape)
}

// newRand returns rng, or a randomly seeded generator when rng is nil.
func newRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	//nolint:gosec // weight initialization is not security-sensitive
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
