package autodiff

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/born-ml/tracegrad/internal/tensor"
)

// Graph is the construction context of a computation graph.
//
// It allocates identifiers, decides whether Function calls are recorded and carries
// the logger used by the backward pass. A Graph is not safe for concurrent use.
type Graph struct {
	id        uuid.UUID
	ids       IDAllocator
	log       *slog.Logger
	recording bool
	visit     func(*Record)
}

// Option configures a Graph.
type Option func(*Graph)

// WithIDAllocator makes the graph draw identifiers from ids.
// Tests use it to get deterministic id sequences.
func WithIDAllocator(ids IDAllocator) Option {
	return func(g *Graph) {
		g.ids = ids
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(g *Graph) {
		g.log = log
	}
}

// WithVisitHook registers a function called for every record Backward processes, in
// processing order.
func WithVisitHook(fn func(*Record)) Option {
	return func(g *Graph) {
		g.visit = fn
	}
}

// NewGraph creates a recording graph.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		id:        uuid.New(),
		ids:       NewSequence(1),
		log:       slog.New(slog.DiscardHandler),
		recording: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With("graph", g.id.String())
	return g
}

// ID returns the graph's identity, attached to every log line it emits.
func (g *Graph) ID() uuid.UUID {
	return g.id
}

// NextID draws an identifier from the graph's allocator. Layers use it so they share
// one namespace with nodes.
func (g *Graph) NextID() uint64 {
	return g.ids.Next()
}

// Logger returns the graph's logger.
func (g *Graph) Logger() *slog.Logger {
	return g.log
}

// StartRecording enables recording of Function calls.
func (g *Graph) StartRecording() {
	g.recording = true
}

// StopRecording disables recording: Apply then returns leaf outputs without records.
func (g *Graph) StopRecording() {
	g.recording = false
}

// IsRecording reports whether Function calls are recorded.
func (g *Graph) IsRecording() bool {
	return g.recording
}

// NoGrad runs fn with recording disabled and restores the previous state.
func (g *Graph) NoGrad(fn func() error) error {
	was := g.recording
	g.recording = false
	defer func() {
		g.recording = was
	}()
	return fn()
}

// NewLeaf creates a leaf node owning t. The caller owns the returned handle.
func (g *Graph) NewLeaf(name string, t *tensor.Tensor) *Handle {
	return g.newLeaf(name, t)
}

func (g *Graph) newLeaf(name string, t *tensor.Tensor) *Handle {
	return newHandle(&Node{graph: g, id: g.ids.Next(), name: name, data: t})
}

// Apply invokes fn on the inputs' values.
//
// While recording, it creates one Record owning clones of the inputs, and every output
// gets that record as creator and generation max(input generations) + 1. The caller
// owns the returned handles.
func (g *Graph) Apply(fn Function, inputs ...*Handle) ([]*Handle, error) {
	xs := make([]*tensor.Tensor, len(inputs))
	gen := 0
	for i, in := range inputs {
		if in == nil || in.released || !in.node.alive() {
			return nil, fmt.Errorf("%s: input %d: %w", fn.Name(), i, ErrReleased)
		}
		xs[i] = in.node.data
		gen = max(gen, in.node.generation)
	}

	ys, err := fn.Forward(xs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	if len(ys) == 0 {
		return nil, fmt.Errorf("%s: forward produced no outputs", fn.Name())
	}

	outputs := make([]*Handle, len(ys))
	if !g.recording {
		for i, y := range ys {
			outputs[i] = g.newLeaf("", y)
		}
		return outputs, nil
	}

	rec := &Record{
		id:         g.ids.Next(),
		fn:         fn,
		inputs:     make([]*Handle, len(inputs)),
		outputs:    make([]Weak, len(ys)),
		shapes:     make([]tensor.Shape, len(ys)),
		generation: gen,
		live:       len(ys),
	}
	for i, in := range inputs {
		rec.inputs[i] = in.Clone()
	}
	for i, y := range ys {
		h := newHandle(&Node{
			graph:      g,
			id:         g.ids.Next(),
			data:       y,
			creator:    rec,
			generation: gen + 1,
		})
		rec.outputs[i] = h.Downgrade()
		rec.shapes[i] = y.Shape()
		outputs[i] = h
	}

	return outputs, nil
}

// Apply1 is Apply for single-output functions.
func (g *Graph) Apply1(fn Function, inputs ...*Handle) (*Handle, error) {
	outputs, err := g.Apply(fn, inputs...)
	if err != nil {
		return nil, err
	}
	if len(outputs) != 1 {
		for _, out := range outputs {
			out.Release()
		}
		return nil, fmt.Errorf("%s: expected a single output, got %d", fn.Name(), len(outputs))
	}
	return outputs[0], nil
}
