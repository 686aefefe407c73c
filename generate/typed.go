package generate

import (
	"math"

	"github.com/xor-shift/octorand/random"
)

// Typed generators render a JavaScript expression that coerces a sampled value through a
// typed array, so the host sees the wrap-around behaviour of each integer width.

func typedArray(kind, value string) string {
	return "new " + kind + "([" + value + "])[0]"
}

func signedInt(r *random.Random, limit uint32) int64 {
	v := int64(r.Number(limit))
	if r.Chance(10) {
		return -v
	}

	return v
}

func Byte(r *random.Random) string {
	return typedArray("Uint8Array", formatInt(signedInt(r, 129)))
}

func Octet(r *random.Random) string {
	return typedArray("Int8Array", formatInt(int64(r.Number(256))))
}

func Short(r *random.Random) string {
	return typedArray("Int16Array", formatInt(signedInt(r, 32769)))
}

func UnsignedShort(r *random.Random) string {
	return typedArray("Uint16Array", formatInt(int64(r.Number(65535))))
}

func Long(r *random.Random) string {
	return typedArray("Int32Array", formatInt(signedInt(r, 2147483649)))
}

func UnsignedLong(r *random.Random) string {
	return typedArray("Uint32Array", formatInt(must(r.Range(0, math.MaxUint32))))
}

// signedReal is an unbounded integer part plus a [0, 1) fraction, negated one time in 10.
func signedReal(r *random.Random) float64 {
	base := float64(r.Uint32())
	if r.Chance(10) {
		return -(base + r.Float())
	}

	return base + r.Float()
}

func special(r *random.Random) string {
	return must(random.Item(r, []string{"NaN", "Infinity", "-Infinity"}))
}

func TypedFloat(r *random.Random) string {
	return typedArray("Float32Array", formatNumber(signedReal(r)))
}

func UnrestrictedFloat(r *random.Random) string {
	if r.Chance(100) {
		return special(r)
	}

	base := float64(r.Uint32())
	return typedArray("Float32Array", formatNumber(base+r.Float()))
}

func Double(r *random.Random) string {
	return typedArray("Float64Array", formatNumber(signedReal(r)))
}

func UnrestrictedDouble(r *random.Random) string {
	if r.Chance(100) {
		return special(r)
	}

	return typedArray("Float64Array", formatNumber(signedReal(r)))
}

// TypedAny picks one of the typed renderings (or a plain small size) and prefixes a minus
// sign one time in 10.
func TypedAny(r *random.Random) string {
	pair := func(a, b func(*random.Random) string) random.Variant[string] {
		return random.List(
			random.Thunk(func() string { return a(r) }),
			random.Thunk(func() string { return b(r) }),
		)
	}

	value := must(random.Choose(r, []random.Entry[random.Variant[string]]{
		{Weight: 1, Value: pair(Byte, Octet)},
		{Weight: 1, Value: pair(Short, UnsignedShort)},
		{Weight: 1, Value: pair(Long, UnsignedLong)},
		{Weight: 1, Value: pair(TypedFloat, UnrestrictedFloat)},
		{Weight: 1, Value: pair(Double, UnrestrictedDouble)},
		{Weight: 1, Value: pair(
			func(r *random.Random) string { return formatNumber(Range(r)) },
			func(r *random.Random) string { return formatNumber(Tiny(r)) },
		)},
	}))

	if r.Chance(10) {
		return "-" + value
	}

	return value
}
