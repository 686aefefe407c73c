package rng

const (
	mtN = 624
	mtM = 397

	upperMask = 0x80000000
	lowerMask = 0x7fffffff

	temperingB = 0x9d2c5680
	temperingC = 0xefc60000
)

var mag01 = [2]uint32{0, 0x9908b0df}

// MT19937State is a 32-bit Mersenne Twister.
// It is not safe for concurrent use; callers sharing one across goroutines must serialize every draw.
type MT19937State struct {
	State [mtN]uint32
	Index int
}

func NewMT19937(seed uint32) *MT19937State {
	state := &MT19937State{}
	state.Seed(seed)

	return state
}

// Seed resets the vector from s. The cursor is left at the end of the vector so that the
// first draw after seeding twists the whole state.
func (state *MT19937State) Seed(s uint32) {
	state.State[0] = s
	for i := 1; i < mtN; i++ {
		prev := state.State[i-1]
		state.State[i] = 1812433253*(prev^(prev>>30)) + uint32(i)
	}

	state.Index = mtN
}

func (state *MT19937State) twist() {
	mt := state.State[:]

	var y uint32
	kk := 0

	for ; kk < mtN-mtM; kk++ {
		y = (mt[kk] & upperMask) | (mt[kk+1] & lowerMask)
		mt[kk] = mt[kk+mtM] ^ (y >> 1) ^ mag01[y&1]
	}

	for ; kk < mtN-1; kk++ {
		y = (mt[kk] & upperMask) | (mt[kk+1] & lowerMask)
		mt[kk] = mt[kk+(mtM-mtN)] ^ (y >> 1) ^ mag01[y&1]
	}

	y = (mt[mtN-1] & upperMask) | (mt[0] & lowerMask)
	mt[mtN-1] = mt[mtM-1] ^ (y >> 1) ^ mag01[y&1]

	state.Index = 0
}

// Next returns the next tempered word of the stream.
func (state *MT19937State) Next() uint32 {
	if state.Index >= mtN {
		state.twist()
	}

	y := state.State[state.Index]
	state.Index++

	y ^= y >> 11
	y ^= (y << 7) & temperingB
	y ^= (y << 15) & temperingC
	y ^= y >> 18

	return y
}

// Uint32 makes the twister usable as a Source.
func (state *MT19937State) Uint32() uint32 {
	return state.Next()
}

func (state *MT19937State) Float53() float64 {
	return Float53(state)
}
