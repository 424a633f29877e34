// Package autodiff implements define-by-run reverse-mode automatic differentiation.
//
// Architecture:
//   - Node: one value in the computation graph (data, gradient, creator, generation)
//   - Handle: a reference-counted owner of a Node; Weak observes without owning
//   - Record: one executed Function, owning its input handles
//   - Graph: the construction context (id allocation, recording, logging)
//   - Graph.Backward: walks Records in strictly decreasing generation order
//
// Ownership flows from an output node to its creator Record and from the Record to
// its inputs. Records observe their outputs through Weak references, so a graph is
// freed as soon as the caller releases the handles it holds on its outputs.
//
// Usage:
//
//	g := autodiff.NewGraph()
//	x := g.NewLeaf("x", tensor.MustFromSlice([]float64{3}, tensor.Shape{1}))
//	y, _ := ops.Square(g, x)
//	_ = g.Backward(y)
//	fmt.Println(x.Grad().Data()) // dy/dx = 2x = [6]
package autodiff

import (
	"sync/atomic"

	"github.com/born-ml/tracegrad/internal/tensor"
)

// Node is a single value in the computation graph.
//
// Nodes are never handled directly; they are reached through a Handle (owning) or a
// Weak (observing). The node is freed when its last owning Handle is released.
type Node struct {
	graph      *Graph
	id         uint64
	name       string
	data       *tensor.Tensor
	grad       *Handle // Accumulated gradient, itself a leaf node
	creator    *Record // nil for leaves
	generation int
	refs       atomic.Int32
}

func (n *Node) retain() {
	n.refs.Add(1)
}

// release drops one owner and frees the node when none remain.
func (n *Node) release() {
	if n.refs.Add(-1) == 0 {
		n.free()
	}
}

func (n *Node) alive() bool {
	return n.refs.Load() > 0
}

// free drops the node's payload. Releasing the creator lets the upstream part of the
// graph go as well once no other output of that record is alive.
func (n *Node) free() {
	if n.grad != nil {
		n.grad.Release()
		n.grad = nil
	}
	if n.creator != nil {
		n.creator.releaseOutput()
		n.creator = nil
	}
	n.data = nil
}
