// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides define-by-run reverse-mode automatic differentiation.
//
// Every operation applied through a Graph records the function and its inputs, and
// Backward walks those records from an output back to the leaves in decreasing
// generation order, accumulating gradients on every node it reaches.
//
// Example:
//
//	import (
//	    "github.com/born-ml/tracegrad/autodiff"
//	    "github.com/born-ml/tracegrad/tensor"
//	)
//
//	func main() {
//	    g := autodiff.NewGraph()
//	    x := g.NewLeaf("x", tensor.MustFromSlice([]float64{3}, tensor.Shape{1}))
//	    defer x.Release()
//
//	    y, _ := autodiff.Square(g, x)
//	    defer y.Release()
//
//	    _ = g.Backward(y)
//	    fmt.Println(x.Grad().Data()) // [6]
//	}
//
// Handles are reference-counted owners of graph nodes. Release every handle you
// receive; the graph behind an output is freed once its last handle is released.
package autodiff

import (
	"github.com/born-ml/tracegrad/internal/autodiff"
)

// Graph is the construction context of a computation graph.
type Graph = autodiff.Graph

// Option configures a Graph.
type Option = autodiff.Option

// Handle is one owner of a graph node.
type Handle = autodiff.Handle

// Weak observes a node without keeping it alive.
type Weak = autodiff.Weak

// Record is one recorded function application.
type Record = autodiff.Record

// Function is a differentiable operation.
type Function = autodiff.Function

// IDAllocator hands out identifiers for nodes, records and layers.
type IDAllocator = autodiff.IDAllocator

// Sequence is the default IDAllocator.
type Sequence = autodiff.Sequence

// Contract errors.
var (
	ErrContract   = autodiff.ErrContract
	ErrReleased   = autodiff.ErrReleased
	ErrNoGradient = autodiff.ErrNoGradient
)

// NewGraph creates a recording graph.
func NewGraph(opts ...Option) *Graph {
	return autodiff.NewGraph(opts...)
}

// NewSequence creates an allocator whose first identifier is start.
func NewSequence(start uint64) *Sequence {
	return autodiff.NewSequence(start)
}

// WithIDAllocator makes the graph draw identifiers from ids.
var WithIDAllocator = autodiff.WithIDAllocator

// WithLogger sets the graph's logger.
var WithLogger = autodiff.WithLogger

// WithVisitHook registers a function called for every record Backward processes.
var WithVisitHook = autodiff.WithVisitHook
