package nn

import (
	"fmt"
	"io"

	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/serialization"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// StateDict copies a layer's parameter values keyed by parameter name. Parameters of
// a Sequential's layers are prefixed with the layer index ("0.W", "1.b"); the
// container's own parameters carry no prefix.
//
// Unnamed parameters are keyed "param". A repeated name within one layer gets a
// "_{n}" suffix in registration order.
//
// A lazily initialized layer has no weight entry until its first call.
func StateDict(l Layer) map[string]*tensor.Tensor {
	entries := stateEntries(l, "")
	state := make(map[string]*tensor.Tensor, len(entries))
	for _, e := range entries {
		state[e.key] = e.param.Data().Clone()
	}
	return state
}

// LoadStateDict replaces a layer's parameter values with those in state.
//
// state must hold exactly one tensor per parameter with the parameter's shape.
// Nothing is modified when it does not.
func LoadStateDict(l Layer, state map[string]*tensor.Tensor) error {
	entries := stateEntries(l, "")
	if len(state) != len(entries) {
		return fmt.Errorf("load state: have %d tensors, layer %d has %d parameters", len(state), l.ID(), len(entries))
	}

	values := make([]*tensor.Tensor, len(entries))
	for i, e := range entries {
		t, ok := state[e.key]
		if !ok {
			return fmt.Errorf("load state: missing %q", e.key)
		}
		if !t.Shape().Equal(e.param.Data().Shape()) {
			return fmt.Errorf("load state: %q: %w: parameter %v, state %v",
				e.key, tensor.ErrShapeMismatch, e.param.Data().Shape(), t.Shape())
		}
		values[i] = t.Clone()
	}

	for i, e := range entries {
		if err := e.param.SetData(values[i]); err != nil {
			return err
		}
	}
	return nil
}

// Save writes a layer's parameters to w in SafeTensors format.
func Save(w io.Writer, l Layer, metadata map[string]string) error {
	return serialization.WriteSafeTensors(w, StateDict(l), metadata)
}

// Load reads parameters written by Save into l and returns the file's metadata.
func Load(r io.Reader, l Layer) (map[string]string, error) {
	state, metadata, err := serialization.ReadSafeTensors(r)
	if err != nil {
		return nil, err
	}
	if err := LoadStateDict(l, state); err != nil {
		return nil, err
	}
	return metadata, nil
}

type stateEntry struct {
	key   string
	param *autodiff.Handle
}

func stateEntries(l Layer, prefix string) []stateEntry {
	s, ok := l.(*Sequential)
	if !ok {
		return namedEntries(l.Parameters(), prefix)
	}
	entries := namedEntries(s.params.Handles(), prefix)
	for i, layer := range s.layers {
		entries = append(entries, stateEntries(layer, fmt.Sprintf("%s%d.", prefix, i))...)
	}
	return entries
}

func namedEntries(params []*autodiff.Handle, prefix string) []stateEntry {
	seen := make(map[string]int, len(params))
	entries := make([]stateEntry, 0, len(params))
	for _, p := range params {
		name := p.Name()
		if name == "" {
			name = "param"
		}
		key := name
		if n := seen[name]; n > 0 {
			key = fmt.Sprintf("%s_%d", name, n)
		}
		seen[name]++
		entries = append(entries, stateEntry{key: prefix + key, param: p})
	}
	return entries
}
