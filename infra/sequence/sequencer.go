// Package sequence provides the monotonic counters behind arrival sequencing
// and execution report numbering.
package sequence

import "sync/atomic"

// Sequencer hands out strictly increasing ids. Safe for concurrent use.
type Sequencer struct {
	next atomic.Uint64
}

func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next id, starting at start+1.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued id.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}
