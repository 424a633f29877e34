package autodiff

import "sync/atomic"

// IDAllocator hands out identifiers for nodes, records and layers.
// Identifiers only need to be unique among the entities of one allocator.
type IDAllocator interface {
	Next() uint64
}

// Sequence is an IDAllocator that counts up from a start value.
type Sequence struct {
	next atomic.Uint64
}

// NewSequence creates a Sequence whose first identifier is start.
func NewSequence(start uint64) *Sequence {
	s := &Sequence{}
	s.next.Store(start)
	return s
}

// Next returns the next identifier.
func (s *Sequence) Next() uint64 {
	return s.next.Add(1) - 1
}
