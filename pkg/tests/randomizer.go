package tests

import "sync"

// SequenceRandomizer replays fixed values so egress decisions (proxy or
// direct, which proxy) are deterministic in tests. Both sequences wrap around;
// empty sequences yield zero.
type SequenceRandomizer struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
	fi, ii int
}

func NewSequenceRandomizer(floats []float64, ints []int) *SequenceRandomizer {
	return &SequenceRandomizer{floats: floats, ints: ints}
}

func (s *SequenceRandomizer) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.floats) == 0 {
		return 0
	}

	v := s.floats[s.fi%len(s.floats)]
	s.fi++

	return v
}

// IntN returns the next value reduced modulo n.
func (s *SequenceRandomizer) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.ints) == 0 || n <= 0 {
		return 0
	}

	v := s.ints[s.ii%len(s.ints)]
	s.ii++

	return v % n
}
