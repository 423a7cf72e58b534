package engine

import "sync"

// resultSlot is the single-slot cell an evaluation reports through. The
// guest writes it via the registered callback; the owning Context begins
// a generation before every run and reads the slot exactly once
// afterwards. Writers present the generation token their harness was
// built with, so a continuation left behind by an interrupted drain
// cannot write into a later evaluation's slot.
type resultSlot struct {
	mu  sync.Mutex
	gen int64
	val string
	set bool
}

func newResultSlot() *resultSlot {
	return &resultSlot{}
}

// Begin clears the slot, invalidates any outstanding writers, and
// returns the token the next run's writes must carry.
func (s *resultSlot) Begin() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.val = ""
	s.set = false
	return s.gen
}

// Store records a serialized result. A write carrying a superseded
// generation token is discarded; among current-generation writes the
// last one wins.
func (s *resultSlot) Store(gen int64, v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.val = v
	s.set = true
}

// Take returns the stored value and clears the slot. The second return
// reports whether a value was present.
func (s *resultSlot) Take() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return "", false
	}
	v := s.val
	s.val = ""
	s.set = false
	return v, true
}
