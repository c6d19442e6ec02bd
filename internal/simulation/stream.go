package simulation

const streamIncrement uint32 = 0x6D2B79F5

// Stream is a seeded pseudo-random sequence of floats in [0, 1) (mulberry32).
// A Stream is not safe for concurrent use; build one per computation.
type Stream struct {
	seed  uint32
	state uint32
}

// NewStream returns a stream positioned at the start of the sequence for seed.
func NewStream(seed uint32) *Stream {
	return &Stream{seed: seed, state: seed}
}

// StreamFor returns a stream seeded from the hash of key.
func StreamFor(key string) *Stream {
	return NewStream(HashKey(key))
}

// Float64 advances the stream and returns the next value.
func (s *Stream) Float64() float64 {
	s.state += streamIncrement
	t := s.state
	t = (t ^ (t >> 15)) * (t | 1)
	t = (t + (t^(t>>7))*(t|61)) ^ t
	return float64(t^(t>>14)) / 4294967296
}

// Skip discards the next n values.
func (s *Stream) Skip(n int) {
	for i := 0; i < n; i++ {
		s.Float64()
	}
}

// Restart rewinds the stream to its seed.
func (s *Stream) Restart() {
	s.state = s.seed
}

// Seed returns the seed the stream was created with.
func (s *Stream) Seed() uint32 {
	return s.seed
}
