package retry

import "sync/atomic"

// Sequence hands out increasing diagnostic ids to the operations of one
// owner. The zero value is ready to use.
type Sequence struct {
	last atomic.Uint64
}

// Next returns the next id, starting at 1.
func (s *Sequence) Next() uint64 {
	return s.last.Add(1)
}
