package nn

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// ParamSet is a registry of trainable parameters keyed by node id.
//
// The set owns one handle per parameter, so parameters live as long as the set.
// Enumeration follows registration order.
//
// Example:
//
//	params := nn.NewParamSet()
//	params.Set(weight)
//	// ... forward, backward ...
//	err := params.UpdateParams(0.1)
//	params.ClearGrads()
type ParamSet struct {
	m *orderedmap.OrderedMap[uint64, *autodiff.Handle]
}

// NewParamSet creates an empty registry.
func NewParamSet() *ParamSet {
	return &ParamSet{m: orderedmap.New[uint64, *autodiff.Handle]()}
}

// Set registers p under its id, taking a new owner on it. Registering the same node
// twice is a no-op.
func (s *ParamSet) Set(p *autodiff.Handle) {
	if _, ok := s.m.Get(p.ID()); ok {
		return
	}
	s.m.Set(p.ID(), p.Clone())
}

// adopt registers p and takes over the caller's ownership of it.
func (s *ParamSet) adopt(p *autodiff.Handle) {
	if _, ok := s.m.Get(p.ID()); ok {
		p.Release()
		return
	}
	s.m.Set(p.ID(), p)
}

// Get returns the parameter registered under id.
func (s *ParamSet) Get(id uint64) (*autodiff.Handle, bool) {
	return s.m.Get(id)
}

// Len returns the number of parameters.
func (s *ParamSet) Len() int {
	return s.m.Len()
}

// Handles returns the parameters in registration order. They remain owned by the set.
func (s *ParamSet) Handles() []*autodiff.Handle {
	handles := make([]*autodiff.Handle, 0, s.m.Len())
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		handles = append(handles, pair.Value)
	}
	return handles
}

// ClearGrads resets every parameter gradient to absent.
//
// This should be called before each backward pass to avoid accumulating gradients
// from previous iterations.
func (s *ParamSet) ClearGrads() {
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.ClearGrad()
	}
}

// UpdateParams replaces every parameter's data with data - lr*grad.
//
// Every parameter must have a gradient; otherwise ErrNoGradient is returned and no
// parameter is modified. Gradients are left in place.
func (s *ParamSet) UpdateParams(lr float64) error {
	grads := make([]*tensor.Tensor, 0, s.m.Len())
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		g, err := pair.Value.GradData()
		if err != nil {
			return fmt.Errorf("update param %q: %w", label(pair.Value), err)
		}
		grads = append(grads, g)
	}

	i := 0
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		p := pair.Value
		next, err := tensor.Sub(p.Data(), tensor.Scale(grads[i], lr))
		if err != nil {
			return fmt.Errorf("update param %q: %w", label(p), err)
		}
		if err := p.SetData(next); err != nil {
			return fmt.Errorf("update param %q: %w", label(p), err)
		}
		i++
	}
	return nil
}

// WriteTable renders the parameters as a table: id, name, shape and gradient state.
func (s *ParamSet) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "NAME", "SHAPE", "GRAD"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		p := pair.Value
		grad := "-"
		if g := p.Grad(); g != nil {
			grad = fmt.Sprint(g.Data())
		}
		table.Append([]string{
			strconv.FormatUint(p.ID(), 10),
			p.Name(),
			fmt.Sprint([]int(p.Data().Shape())),
			grad,
		})
	}

	table.Render()
}

// Release drops the set's ownership of every parameter and empties it.
func (s *ParamSet) Release() {
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.Release()
	}
	s.m = orderedmap.New[uint64, *autodiff.Handle]()
}

func label(p *autodiff.Handle) string {
	if p.Name() != "" {
		return p.Name()
	}
	return strconv.FormatUint(p.ID(), 10)
}
