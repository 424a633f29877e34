// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"io"

	"github.com/born-ml/tracegrad/autodiff"
	"github.com/born-ml/tracegrad/internal/nn"
	"github.com/born-ml/tracegrad/tensor"
)

// Layer is the interface shared by all layers.
type Layer = nn.Layer

// Linear is a fully connected layer y = x @ W + b.
type Linear = nn.Linear

// LinearConfig configures a Linear layer.
type LinearConfig = nn.LinearConfig

// Sequential chains layers.
type Sequential = nn.Sequential

// MSELoss computes mean squared error.
type MSELoss = nn.MSELoss

// ParamSet is an ordered parameter registry.
type ParamSet = nn.ParamSet

// ErrNotCalled is returned by Input and Output before a layer's first call.
var ErrNotCalled = nn.ErrNotCalled

// ErrLayerReleased is returned by Call on a layer after Release.
var ErrLayerReleased = nn.ErrLayerReleased

// NewLinear creates a Linear layer producing outSize features.
//
// Example:
//
//	layer, err := nn.NewLinear(g, 10, nn.LinearConfig{InSize: 784, Bias: true})
func NewLinear(g *autodiff.Graph, outSize int, cfg LinearConfig) (*Linear, error) {
	return nn.NewLinear(g, outSize, cfg)
}

// NewSequential creates a container running layers in order.
func NewSequential(g *autodiff.Graph, layers ...Layer) *Sequential {
	return nn.NewSequential(g, layers...)
}

// NewMSELoss creates a mean squared error loss.
func NewMSELoss(g *autodiff.Graph) *MSELoss {
	return nn.NewMSELoss(g)
}

// NewParamSet creates an empty parameter registry.
func NewParamSet() *ParamSet {
	return nn.NewParamSet()
}

// Zeros creates a zero-filled tensor, for bias initialization.
func Zeros(shape tensor.Shape) *tensor.Tensor {
	return nn.Zeros(shape)
}

// StateDict copies a layer's parameter values keyed "{index}.{name}".
func StateDict(l Layer) map[string]*tensor.Tensor {
	return nn.StateDict(l)
}

// LoadStateDict replaces a layer's parameter values with those in state.
func LoadStateDict(l Layer, state map[string]*tensor.Tensor) error {
	return nn.LoadStateDict(l, state)
}

// Save writes a layer's parameters to w in SafeTensors format.
func Save(w io.Writer, l Layer, metadata map[string]string) error {
	return nn.Save(w, l, metadata)
}

// Load reads parameters written by Save into l.
func Load(r io.Reader, l Layer) (map[string]string, error) {
	return nn.Load(r, l)
}
