package noise

// Mulberry32 is a small 32-bit pseudo-random generator.
// The same seed always yields the same sequence.
type Mulberry32 struct {
	state uint32
}

func NewMulberry32(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

// Uint32 returns the next raw 32-bit output.
func (m *Mulberry32) Uint32() uint32 {
	m.state += 0x6D2B79F5
	t := m.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return t ^ t>>14
}

// Float64 returns the next value in [0,1).
func (m *Mulberry32) Float64() float64 {
	return float64(m.Uint32()) / 4294967296
}

// Uint64 lets the generator act as a math/rand/v2 Source.
func (m *Mulberry32) Uint64() uint64 {
	return uint64(m.Uint32())<<32 | uint64(m.Uint32())
}
