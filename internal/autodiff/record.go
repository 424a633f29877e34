package autodiff

import "github.com/born-ml/tracegrad/internal/tensor"

// Function is a differentiable primitive.
//
// Forward computes outputs from input values. Backward maps the output gradients to
// one gradient per input; a nil entry means no gradient flows to that input. Both are
// pure functions of their arguments, so one Function value may serve many calls.
type Function interface {
	// Name identifies the primitive in errors and logs.
	Name() string

	// Forward computes the outputs of the primitive.
	Forward(inputs []*tensor.Tensor) ([]*tensor.Tensor, error)

	// Backward returns len(inputs) gradients given one gradient per output.
	Backward(inputs, outputGrads []*tensor.Tensor) ([]*tensor.Tensor, error)
}

// Record is one forward invocation of a Function captured in the graph.
type Record struct {
	id         uint64
	fn         Function
	inputs     []*Handle      // Owned by the record
	outputs    []Weak         // Observed only
	shapes     []tensor.Shape // Output shapes, for zero-filling gradients of freed outputs
	generation int
	live       int // Outputs not yet freed
}

// ID returns the record's identifier.
func (r *Record) ID() uint64 {
	return r.id
}

// Function returns the primitive this record invoked.
func (r *Record) Function() Function {
	return r.fn
}

// Generation returns max(generation of inputs).
func (r *Record) Generation() int {
	return r.generation
}

// Inputs returns weak references to the inputs. The record keeps owning them until
// its last output is freed; upgrade a reference to hold an input beyond that.
func (r *Record) Inputs() []Weak {
	inputs := make([]Weak, len(r.inputs))
	for i, in := range r.inputs {
		inputs[i] = Weak{node: in.node}
	}
	return inputs
}

// Outputs returns weak references to the outputs.
func (r *Record) Outputs() []Weak {
	return r.outputs
}

// releaseOutput is called when one of the outputs is freed. The inputs are released
// together with the last output.
func (r *Record) releaseOutput() {
	r.live--
	if r.live > 0 {
		return
	}
	for _, in := range r.inputs {
		in.Release()
	}
	r.inputs = nil
}
