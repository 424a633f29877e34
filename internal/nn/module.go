// Package nn implements trainable layers on top of the autodiff graph.
//
// This package provides:
//   - Layer interface: the lifecycle every layer kind shares
//   - ParamSet: the parameter registry layers compose
//   - Linear: fully connected layer with lazy weight initialization
//   - Sequential: container chaining layers
//   - MSELoss: mean squared error
//   - StateDict, Save, Load: parameter checkpoints
//
// A layer owns its parameters for its whole lifetime but only observes the input and
// output of its last call, so calling a layer never pins the forward graph in memory.
package nn

import (
	"fmt"
	"io"

	"github.com/born-ml/tracegrad/internal/autodiff"
)

// ErrNotCalled is returned when a layer's last input or output is requested before
// its first call.
var ErrNotCalled = fmt.Errorf("%w: layer has not been called", autodiff.ErrContract)

// ErrLayerReleased is returned by Call on a layer whose parameters were released.
var ErrLayerReleased = fmt.Errorf("%w: layer has been released", autodiff.ErrContract)

// Layer is the lifecycle shared by every layer kind.
//
// Layers differ in their forward computation and parameter shapes; the parameter
// bookkeeping is shared through ParamSet.
type Layer interface {
	// Call runs one forward invocation. The caller owns the returned handle.
	Call(x *autodiff.Handle) (*autodiff.Handle, error)

	// SetParams registers p as a parameter under its id.
	SetParams(p *autodiff.Handle)

	// Input returns a new owner of the last call's input, ErrNotCalled before the
	// first call, or ErrReleased once nothing else owns it.
	Input() (*autodiff.Handle, error)

	// Output is Input for the last call's output.
	Output() (*autodiff.Handle, error)

	// Generation returns the generation of the last call's input.
	Generation() int

	// ID returns the layer's identifier, drawn from the graph's allocator.
	ID() uint64

	// Params writes a diagnostic table of the parameters to w.
	Params(w io.Writer)

	// Parameters returns the parameter handles. They remain owned by the layer.
	Parameters() []*autodiff.Handle

	// ClearGrads resets every parameter gradient to absent.
	ClearGrads()

	// UpdateParams applies data = data - lr*grad to every parameter.
	UpdateParams(lr float64) error
}

// lastCall observes the input and output of a layer's most recent call.
type lastCall struct {
	called     bool
	input      autodiff.Weak
	output     autodiff.Weak
	generation int
}

func (c *lastCall) remember(in, out *autodiff.Handle) {
	c.called = true
	c.input = in.Downgrade()
	c.output = out.Downgrade()
	c.generation = in.Generation()
}

func (c *lastCall) upgrade(which string, w autodiff.Weak) (*autodiff.Handle, error) {
	if !c.called {
		return nil, fmt.Errorf("%s: %w", which, ErrNotCalled)
	}
	h, err := w.Upgrade()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", which, err)
	}
	return h, nil
}

// Input implements Layer.
func (c *lastCall) Input() (*autodiff.Handle, error) {
	return c.upgrade("input", c.input)
}

// Output implements Layer.
func (c *lastCall) Output() (*autodiff.Handle, error) {
	return c.upgrade("output", c.output)
}

// Generation implements Layer.
func (c *lastCall) Generation() int {
	return c.generation
}
