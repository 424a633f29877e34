package nn

import (
	"fmt"
	"io"

	"github.com/born-ml/tracegrad/internal/autodiff"
)

// Sequential is a container layer that chains multiple layers together.
//
// Each layer's output becomes the next layer's input:
//
//	model := nn.NewSequential(g, hidden, output)
//	y, err := model.Call(x)
//
// is equivalent to
//
//	h, err := hidden.Call(x)
//	y, err := output.Call(h)
//
// Intermediate handles are released as soon as the next layer has consumed them;
// the graph keeps them alive until backward.
type Sequential struct {
	id     uint64
	layers []Layer
	params *ParamSet // Parameters registered on the container itself
	lastCall
}

var _ Layer = (*Sequential)(nil)

// NewSequential creates a container running layers in order.
func NewSequential(g *autodiff.Graph, layers ...Layer) *Sequential {
	return &Sequential{
		id:     g.NextID(),
		layers: layers,
		params: NewParamSet(),
	}
}

// Call applies all layers in sequence.
func (s *Sequential) Call(x *autodiff.Handle) (*autodiff.Handle, error) {
	h := x
	for i, layer := range s.layers {
		next, err := layer.Call(h)
		if h != x {
			h.Release()
		}
		if err != nil {
			return nil, fmt.Errorf("sequential layer %d: %w", i, err)
		}
		h = next
	}
	if h == x {
		h = x.Clone()
	}

	s.remember(x, h)
	return h, nil
}

// Add appends a layer to the sequence.
func (s *Sequential) Add(layer Layer) {
	s.layers = append(s.layers, layer)
}

// Len returns the number of layers in the sequence.
func (s *Sequential) Len() int {
	return len(s.layers)
}

// Layer returns the layer at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential) Layer(index int) Layer {
	if index < 0 || index >= len(s.layers) {
		panic(fmt.Sprintf("Sequential.Layer: index %d out of bounds (len %d)", index, len(s.layers)))
	}
	return s.layers[index]
}

// SetParams implements Layer.
func (s *Sequential) SetParams(p *autodiff.Handle) {
	s.params.Set(p)
}

// ID implements Layer.
func (s *Sequential) ID() uint64 {
	return s.id
}

// Params writes one table per layer, prefixed by the layer index.
func (s *Sequential) Params(w io.Writer) {
	if s.params.Len() > 0 {
		fmt.Fprintf(w, "sequential %d\n", s.id)
		s.params.WriteTable(w)
	}
	for i, layer := range s.layers {
		fmt.Fprintf(w, "%d: layer %d\n", i, layer.ID())
		layer.Params(w)
	}
}

// Parameters returns the container's own parameters followed by every layer's.
func (s *Sequential) Parameters() []*autodiff.Handle {
	params := s.params.Handles()
	for _, layer := range s.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// ClearGrads implements Layer.
func (s *Sequential) ClearGrads() {
	s.params.ClearGrads()
	for _, layer := range s.layers {
		layer.ClearGrads()
	}
}

// UpdateParams implements Layer.
func (s *Sequential) UpdateParams(lr float64) error {
	if err := s.params.UpdateParams(lr); err != nil {
		return err
	}
	for i, layer := range s.layers {
		if err := layer.UpdateParams(lr); err != nil {
			return fmt.Errorf("sequential layer %d: %w", i, err)
		}
	}
	return nil
}
