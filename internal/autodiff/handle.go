package autodiff

import (
	"fmt"

	"github.com/born-ml/tracegrad/internal/tensor"
)

// Handle is one owner of a Node. Many handles may alias the same node.
//
// Every Handle returned by this package is owned by the caller and must eventually be
// released. Clone adds an owner; Release drops this one. Using a handle after Release
// panics: it is a programming error, not a runtime condition.
type Handle struct {
	node     *Node
	released bool
}

func newHandle(n *Node) *Handle {
	n.retain()
	return &Handle{node: n}
}

// live returns the node or panics if this handle was released.
func (h *Handle) live(op string) *Node {
	if h.released {
		panic(fmt.Sprintf("autodiff: %s on released handle to node %d", op, h.node.id))
	}
	return h.node
}

// Clone returns a new owner of the same node.
func (h *Handle) Clone() *Handle {
	return newHandle(h.live("Clone"))
}

// Release drops this owner. Releasing twice is a no-op.
func (h *Handle) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	h.node.release()
}

// Released reports whether Release was called on this handle.
func (h *Handle) Released() bool {
	return h.released
}

// Downgrade returns a non-owning reference to the node.
func (h *Handle) Downgrade() Weak {
	return Weak{node: h.live("Downgrade")}
}

// ID returns the node's process-unique identifier.
func (h *Handle) ID() uint64 {
	return h.node.id
}

// Name returns the node's label, empty when unnamed.
func (h *Handle) Name() string {
	return h.node.name
}

// Data returns the node's value.
func (h *Handle) Data() *tensor.Tensor {
	return h.live("Data").data
}

// SetData replaces the node's value. The new value must keep the node's shape.
func (h *Handle) SetData(t *tensor.Tensor) error {
	n := h.live("SetData")
	if !t.Shape().Equal(n.data.Shape()) {
		return fmt.Errorf("set data on node %d: %w: have %v, got %v",
			n.id, tensor.ErrShapeMismatch, n.data.Shape(), t.Shape())
	}
	n.data = t
	return nil
}

// Generation returns the node's depth: 0 for leaves, creator generation + 1 otherwise.
func (h *Handle) Generation() int {
	return h.live("Generation").generation
}

// Creator returns the record that produced the node, or nil for a leaf.
func (h *Handle) Creator() *Record {
	return h.live("Creator").creator
}

// Grad returns the accumulated gradient, or nil before backward has reached the node.
//
// The returned handle is owned by the node; Clone it to keep the gradient past the
// next ClearGrad.
func (h *Handle) Grad() *Handle {
	return h.live("Grad").grad
}

// GradData returns the gradient value or ErrNoGradient.
func (h *Handle) GradData() (*tensor.Tensor, error) {
	n := h.live("GradData")
	if n.grad == nil {
		return nil, fmt.Errorf("node %d: %w", n.id, ErrNoGradient)
	}
	return n.grad.Data(), nil
}

// AccumulateGrad adds g to the node's gradient, initializing it when absent.
func (h *Handle) AccumulateGrad(g *tensor.Tensor) error {
	n := h.live("AccumulateGrad")
	if !g.Shape().Equal(n.data.Shape()) {
		return fmt.Errorf("accumulate grad on node %d: %w: data %v, grad %v",
			n.id, tensor.ErrShapeMismatch, n.data.Shape(), g.Shape())
	}

	if n.grad == nil {
		n.grad = n.graph.newLeaf("", g.Clone())
		return nil
	}

	sum, err := tensor.Add(n.grad.node.data, g)
	if err != nil {
		return err
	}
	n.grad.node.data = sum
	return nil
}

// ClearGrad resets the gradient to absent.
func (h *Handle) ClearGrad() {
	n := h.live("ClearGrad")
	if n.grad != nil {
		n.grad.Release()
		n.grad = nil
	}
}

// String implements fmt.Stringer.
func (h *Handle) String() string {
	if h.released {
		return fmt.Sprintf("Handle(%d, released)", h.node.id)
	}
	if h.node.name != "" {
		return fmt.Sprintf("Handle(%d %q gen=%d %v)", h.node.id, h.node.name, h.node.generation, h.node.data)
	}
	return fmt.Sprintf("Handle(%d gen=%d %v)", h.node.id, h.node.generation, h.node.data)
}

// Weak observes a node without keeping it alive.
// The zero Weak refers to nothing and never upgrades.
type Weak struct {
	node *Node
}

// Upgrade returns a new owning handle if the node still has an owner elsewhere,
// otherwise ErrReleased. The caller owns the returned handle.
func (w Weak) Upgrade() (*Handle, error) {
	if w.node == nil || !w.node.alive() {
		return nil, ErrReleased
	}
	return newHandle(w.node), nil
}

// MustUpgrade is like Upgrade but panics when the node is gone.
func (w Weak) MustUpgrade() *Handle {
	h, err := w.Upgrade()
	if err != nil {
		panic(err)
	}
	return h
}

// Alive reports whether the node still has an owner.
func (w Weak) Alive() bool {
	return w.node != nil && w.node.alive()
}
