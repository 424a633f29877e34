package autodiff

import (
	"cmp"
	"fmt"

	"github.com/emirpasic/gods/v2/queues/priorityqueue"

	"github.com/born-ml/tracegrad/internal/tensor"
)

// Backward computes the gradient of out with respect to every node it depends on.
//
// Algorithm:
//  1. Seed out's gradient with ones when it has none yet
//  2. Schedule out's creator record
//  3. Pop the scheduled record with the highest generation, hand its output gradients
//     to the Function's backward rule and accumulate the results into its inputs
//  4. Schedule the creator of every input that has one and is not yet scheduled
//
// A node's gradient is complete only once every consumer has contributed, and every
// consumer sits at a higher generation, so records are processed in strictly
// decreasing generation order. Each record is processed once even when reachable
// through several paths; contributions from different paths are summed.
//
// Errors from a Function abort the pass. Gradients accumulated up to that point are
// kept; call ClearGrad before retrying.
func (g *Graph) Backward(out *Handle) error {
	if out == nil || out.released || !out.node.alive() {
		return fmt.Errorf("backward: %w", ErrReleased)
	}

	n := out.node
	if n.grad == nil {
		n.grad = g.newLeaf("", tensor.OnesLike(n.data))
	}
	if n.creator == nil {
		return nil
	}

	queue := priorityqueue.NewWith[*Record](byGenerationDesc)
	scheduled := make(map[uint64]struct{})
	schedule := func(r *Record) {
		if _, ok := scheduled[r.id]; ok {
			return
		}
		scheduled[r.id] = struct{}{}
		queue.Enqueue(r)
	}

	g.log.Debug("backward started", "node", n.id, "generation", n.generation)
	schedule(n.creator)

	visited := 0
	for !queue.Empty() {
		rec, _ := queue.Dequeue()
		if err := g.backwardRecord(rec, schedule); err != nil {
			return err
		}
		visited++
	}

	g.log.Debug("backward finished", "node", n.id, "records", visited)
	return nil
}

// byGenerationDesc orders records by decreasing generation, newest record first
// within a generation. The queue pops the smallest element, hence the reversal.
func byGenerationDesc(a, b *Record) int {
	if c := cmp.Compare(b.generation, a.generation); c != 0 {
		return c
	}
	return cmp.Compare(b.id, a.id)
}

// backwardRecord runs one record's backward rule and propagates the result.
func (g *Graph) backwardRecord(rec *Record, schedule func(*Record)) error {
	if g.visit != nil {
		g.visit(rec)
	}
	fn := rec.Function()
	g.log.Debug("backward record", "op", fn.Name(), "record", rec.id, "generation", rec.generation)

	outputs := rec.Outputs()
	grads := make([]*tensor.Tensor, len(outputs))
	for i, w := range outputs {
		if w.Alive() && w.node.grad != nil {
			grads[i] = w.node.grad.node.data
			continue
		}
		// Outputs nobody differentiated (or already freed) contribute nothing.
		grads[i] = tensor.Zeros(rec.shapes[i])
	}

	xs := make([]*tensor.Tensor, len(rec.inputs))
	for i, in := range rec.inputs {
		xs[i] = in.node.data
	}

	gxs, err := fn.Backward(xs, grads)
	if err != nil {
		return fmt.Errorf("backward %s (record %d): %w", fn.Name(), rec.id, err)
	}
	if len(gxs) != len(rec.inputs) {
		return fmt.Errorf("backward %s (record %d): got %d gradients for %d inputs",
			fn.Name(), rec.id, len(gxs), len(rec.inputs))
	}

	for i, gx := range gxs {
		if gx == nil {
			continue
		}
		in := rec.inputs[i]
		if err := in.AccumulateGrad(gx); err != nil {
			return fmt.Errorf("backward %s (record %d): input %d: %w", fn.Name(), rec.id, i, err)
		}
		if c := in.node.creator; c != nil {
			schedule(c)
		}
	}

	return nil
}
