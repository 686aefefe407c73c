// Package random implements the sampling primitives every generator draws from.
//
// A Random wraps a seeded Mersenne Twister. Given the same seed and the same sequence of
// calls, every operation returns the same values on every platform; generated cases can be
// reproduced from the seed alone. A Random is not safe for concurrent use.
package random

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/xor-shift/octorand/util/rng"
)

// ErrInvalidArgument is returned (wrapped) whenever an operation is handed a value it cannot act on.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNotSnapshottable is returned by state export/import when the source cannot be saved.
var ErrNotSnapshottable = errors.New("source does not support snapshots")

const fullRange = uint64(1) << 32

type Random struct {
	seed uint32
	src  rng.Source
}

// New returns a Random driven by a Mersenne Twister seeded with seed.
func New(seed uint32) *Random {
	return &Random{
		seed: seed,
		src:  rng.NewMT19937(seed),
	}
}

// ClockSeed is the low 32 bits of the wall clock in milliseconds.
func ClockSeed() uint32 {
	return uint32(time.Now().UnixMilli())
}

// NewFromClock seeds from ClockSeed. Callers should record Seed() next to whatever they generate.
func NewFromClock() *Random {
	return New(ClockSeed())
}

// NewWithSource uses src as-is. Seed reports 0 and Reseed is unavailable unless src is a twister.
func NewWithSource(src rng.Source) *Random {
	return &Random{src: src}
}

func (r *Random) Seed() uint32 {
	return r.seed
}

// Reseed restarts the stream from seed, replacing the source with a fresh twister.
func (r *Random) Reseed(seed uint32) {
	r.seed = seed
	if mt, ok := r.src.(*rng.MT19937State); ok {
		mt.Seed(seed)
		return
	}

	r.src = rng.NewMT19937(seed)
}

func (r *Random) ExportState() (rng.Snapshot, error) {
	s, ok := r.src.(rng.Snapshotter)
	if !ok {
		return rng.Snapshot{}, ErrNotSnapshottable
	}

	return s.Export(), nil
}

// ImportState fully replaces the position in the stream.
func (r *Random) ImportState(snapshot rng.Snapshot) error {
	s, ok := r.src.(rng.Snapshotter)
	if !ok {
		return ErrNotSnapshottable
	}

	if err := s.Import(snapshot); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}

	return nil
}

// Digest fingerprints the current position in the stream.
func (r *Random) Digest() (uint64, error) {
	snapshot, err := r.ExportState()
	if err != nil {
		return 0, err
	}

	return snapshot.Digest(), nil
}

// Raw returns a single unfiltered draw from the source.
func (r *Random) Raw() uint32 {
	return r.src.Uint32()
}

// number returns an integer in [0, limit) without modulo bias.
//
// Draws at or above the largest multiple of x = 2^32/limit are rejected. When that
// multiple wraps to zero (limit divides 2^32) every draw is accepted. A limit above 2^32
// truncates x to zero and yields 0 after one draw.
func (r *Random) number(limit uint64) uint64 {
	if limit == 0 {
		return 0
	}

	x := uint32(fullRange / limit)
	y := uint32(uint64(x) * limit)

	var draw uint32
	for {
		draw = r.src.Uint32()
		if y == 0 || draw < y {
			break
		}
	}

	if x == 0 {
		return 0
	}

	return uint64(draw / x)
}

// Number returns a uniformly distributed integer in [0, limit). Number(0) is 0 and draws nothing.
func (r *Random) Number(limit uint32) uint32 {
	return uint32(r.number(uint64(limit)))
}

// Uint32 is Number with no limit given, which samples [0, 0xffffffff).
func (r *Random) Uint32() uint32 {
	return r.Number(math.MaxUint32)
}

// Float returns a float in [0, 1) with 53 bits of precision.
func (r *Random) Float() float64 {
	return rng.Float53(r.src)
}

// Range returns an integer in [start, limit], both ends inclusive.
func (r *Random) Range(start, limit int64) (int64, error) {
	if limit < start {
		return 0, fmt.Errorf("%w: range [%d, %d] is inverted", ErrInvalidArgument, start, limit)
	}

	span := uint64(limit-start) + 1
	if span > fullRange || span == 0 {
		return 0, fmt.Errorf("%w: range [%d, %d] is wider than 2^32", ErrInvalidArgument, start, limit)
	}

	return start + int64(r.number(span)), nil
}

// LogUniform returns a float in [1, limit] whose logarithm is uniformly distributed, so small
// magnitudes come up far more often than they would on a linear scale.
func (r *Random) LogUniform(limit float64) (float64, error) {
	if math.IsNaN(limit) || math.IsInf(limit, 0) || limit <= 0 {
		return 0, fmt.Errorf("%w: log-uniform limit %v", ErrInvalidArgument, limit)
	}

	return math.Exp(r.Float() * math.Log(limit)), nil
}

func (r *Random) Bool() bool {
	v, _ := Item(r, []bool{true, false})
	return v
}

// Chance is true when Number(limit) comes out as exactly 1, i.e. roughly once in limit calls.
// The comparison against 1 rather than 0 is part of the reproducible stream and must not change.
// There is no default limit; Coin is Chance(2).
func (r *Random) Chance(limit uint32) bool {
	return r.Number(limit) == 1
}

// Coin is Chance(2). It draws differently from Bool, which picks from a two-element list.
func (r *Random) Coin() bool {
	return r.Chance(2)
}

// Hex returns Number(16^digits) in lowercase hex without zero padding.
func (r *Random) Hex(digits int) (string, error) {
	if digits < 0 || digits > 8 {
		return "", fmt.Errorf("%w: %d hex digits do not fit in a 32-bit draw", ErrInvalidArgument, digits)
	}

	return strconv.FormatUint(r.number(uint64(1)<<(4*uint(digits))), 16), nil
}
