package generate

import (
	"math"

	"github.com/xor-shift/octorand/random"
)

// must unwraps samples drawn from fixed, non-empty tables. Those cannot fail; an error
// here means the table itself is broken.
func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}

	return v
}

// Tiny returns a power of two in [1, 2048].
func Tiny(r *random.Random) float64 {
	return math.Pow(2, float64(r.Number(12)))
}

// Range returns one of a few common small sizes, or a Tiny value.
func Range(r *random.Random) float64 {
	choices := append(
		random.Literals[float64](1, 2, 3, 4, 6, 8, 16, 32, 64),
		random.Thunk(func() float64 { return Tiny(r) }),
	)

	return must(random.Pick(r, random.List(choices...)))
}

// Float is usually a plain [0, 1) float; one time in 32 it is an extreme magnitude instead.
func Float(r *random.Random) float64 {
	if r.Chance(32) {
		switch r.Number(4) {
		case 0:
			// The whole double range does not fit the 32-bit sampler: one draw is spent
			// and the range collapses onto its lower bound.
			r.Raw()
			return math.SmallestNonzeroFloat64
		case 1:
			// Pow10 is correctly rounded; Pow(10, n) can be an ulp off for large n.
			return 10 / math.Pow10(int(r.Number(307)))
		case 2:
			return math.Pow(2, r.Float()*r.Float()*64)
		case 3:
			num := must(r.Range(1, 9))
			den := must(r.Range(1, 9))
			return math.Pow10(int(num)) / math.Pow10(int(den))
		}
	}

	r.Number(6)
	return r.Float()
}

// Unsigned is either the magnitude of Any or a power of two nudged by -1, 0 or +1.
func Unsigned(r *random.Random) float64 {
	if r.Chance(2) {
		return math.Abs(Any(r))
	}

	exp := r.Number(r.Number(65))
	return math.Pow(2, float64(exp)) + float64(r.Number(3)) - 1
}

// Even rounds odd integers up to the next even one.
func Even(n float64) float64 {
	if math.Mod(n, 2) == 1 {
		return n + 1
	}

	return n
}

// Any mixes floats, small sizes and unsigned values, negated one time in 10.
func Any(r *random.Random) float64 {
	value := must(random.Choose(r, []random.Entry[random.Variant[float64]]{
		{Weight: 10, Value: random.Thunk(func() float64 { return Float(r) })},
		{Weight: 10, Value: random.List(
			random.Thunk(func() float64 { return Range(r) }),
			random.Thunk(func() float64 { return Tiny(r) }),
		)},
		{Weight: 1, Value: random.Thunk(func() float64 { return Unsigned(r) })},
	}))

	if r.Chance(10) {
		return -value
	}

	return value
}
