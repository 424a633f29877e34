package nn

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/autodiff/ops"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// LinearConfig configures a Linear layer.
type LinearConfig struct {
	InSize int        // Input features; 0 infers them from the first input
	Bias   bool       // Add a zero-initialized bias of shape [out]
	Rand   *rand.Rand // Weight sampling source (default: randomly seeded)
}

// Linear implements a fully connected layer: y = x @ W + b.
//
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [in_features, out_features]
//   - b is the optional bias vector with shape [out_features]
//
// When the input size is unknown at construction, W is created on the first call
// from the width of the actual input and reused by every later call. An input of a
// different width afterwards fails with tensor.ErrShapeMismatch; the weight is never
// re-initialized.
//
// Example:
//
//	g := autodiff.NewGraph()
//	layer, _ := nn.NewLinear(g, 3, nn.LinearConfig{Bias: true})
//	y, err := layer.Call(x) // x: [batch, 4] → W: [4, 3], y: [batch, 3]
type Linear struct {
	graph   *autodiff.Graph
	id      uint64
	outSize int
	inSize  int
	rng     *rand.Rand

	weightID  uint64
	hasWeight bool
	biasID    uint64
	hasBias   bool

	params   *ParamSet
	released bool
	lastCall
}

var _ Layer = (*Linear)(nil)

// NewLinear creates a Linear layer producing outSize features.
//
// The weight is sampled with LeCunNormal right away when cfg.InSize is set, and on
// the first call otherwise.
func NewLinear(g *autodiff.Graph, outSize int, cfg LinearConfig) (*Linear, error) {
	if outSize <= 0 {
		return nil, fmt.Errorf("linear: output size must be positive, got %d", outSize)
	}
	if cfg.InSize < 0 {
		return nil, fmt.Errorf("linear: input size must not be negative, got %d", cfg.InSize)
	}

	l := &Linear{
		graph:   g,
		id:      g.NextID(),
		outSize: outSize,
		inSize:  cfg.InSize,
		rng:     newRand(cfg.Rand),
		params:  NewParamSet(),
	}

	if cfg.InSize > 0 {
		l.initWeight(cfg.InSize)
	}

	if cfg.Bias {
		b := g.NewLeaf("b", Zeros(tensor.Shape{outSize}))
		l.biasID, l.hasBias = b.ID(), true
		l.params.adopt(b)
	}

	return l, nil
}

func (l *Linear) initWeight(in int) {
	w := l.graph.NewLeaf("W", LeCunNormal(tensor.Shape{in, l.outSize}, in, l.rng))
	l.inSize = in
	l.weightID, l.hasWeight = w.ID(), true
	l.params.adopt(w)

	l.graph.Logger().Debug("linear weight initialized", "layer", l.id, "param", w.ID(), "in", in, "out", l.outSize)
}

// Call computes x @ W + b and remembers x and the result without owning them.
//
// x must have shape [batch_size, in_features].
func (l *Linear) Call(x *autodiff.Handle) (*autodiff.Handle, error) {
	if l.released {
		return nil, fmt.Errorf("linear %d: %w", l.id, ErrLayerReleased)
	}
	if !l.hasWeight {
		shape := x.Data().Shape()
		if len(shape) != 2 {
			return nil, fmt.Errorf("linear: %w: expected 2-D input [batch, features], got %v",
				tensor.ErrShapeMismatch, shape)
		}
		l.initWeight(shape[1])
	}

	y, err := ops.Linear(l.graph, x, l.Weight(), l.Bias())
	if err != nil {
		return nil, fmt.Errorf("linear %d: %w", l.id, err)
	}

	l.remember(x, y)
	return y, nil
}

// SetParams implements Layer.
func (l *Linear) SetParams(p *autodiff.Handle) {
	l.params.Set(p)
}

// ID implements Layer.
func (l *Linear) ID() uint64 {
	return l.id
}

// Params implements Layer.
func (l *Linear) Params(w io.Writer) {
	l.params.WriteTable(w)
}

// Parameters implements Layer.
func (l *Linear) Parameters() []*autodiff.Handle {
	return l.params.Handles()
}

// ClearGrads implements Layer.
func (l *Linear) ClearGrads() {
	l.params.ClearGrads()
}

// UpdateParams implements Layer.
func (l *Linear) UpdateParams(lr float64) error {
	return l.params.UpdateParams(lr)
}

// Weight returns the weight parameter, or nil before lazy initialization.
func (l *Linear) Weight() *autodiff.Handle {
	if !l.hasWeight {
		return nil
	}
	w, _ := l.params.Get(l.weightID)
	return w
}

// Bias returns the bias parameter, or nil when the layer has none.
func (l *Linear) Bias() *autodiff.Handle {
	if !l.hasBias {
		return nil
	}
	b, _ := l.params.Get(l.biasID)
	return b
}

// InSize returns the number of input features, 0 until known.
func (l *Linear) InSize() int {
	return l.inSize
}

// OutSize returns the number of output features.
func (l *Linear) OutSize() int {
	return l.outSize
}

// Release drops the layer's ownership of its parameters. The layer is unusable
// afterwards: Call returns ErrLayerReleased and Weight and Bias return nil.
func (l *Linear) Release() {
	l.params.Release()
	l.hasWeight, l.hasBias = false, false
	l.released = true
}
