package rng

// Source is anything that yields a stream of 32-bit words.
type Source interface {
	Uint32() uint32
}

// Snapshotter is a Source whose position in the stream can be saved and restored.
type Snapshotter interface {
	Source
	Export() Snapshot
	Import(Snapshot) error
}

// Float53 combines two draws into a float in [0, 1) with 53 bits of precision.
// The draw order (high part first) is part of the output contract.
func Float53(src Source) float64 {
	a := src.Uint32() >> 5
	b := src.Uint32() >> 6

	return (float64(a)*67108864.0 + float64(b)) / 9007199254740992.0
}
