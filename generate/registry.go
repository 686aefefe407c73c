// Package generate turns the sampling primitives into rendered test values and assembles
// them into reproducible cases.
package generate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xor-shift/octorand/random"
)

var ErrUnknownGenerator = errors.New("unknown generator")

// Generator renders one value.
type Generator func(r *random.Random) (string, error)

func infallible(fn func(*random.Random) string) Generator {
	return func(r *random.Random) (string, error) {
		return fn(r), nil
	}
}

func numeric(fn func(*random.Random) float64) Generator {
	return func(r *random.Random) (string, error) {
		return formatNumber(fn(r)), nil
	}
}

var eventFlags = []string{"NONE", "CAPTURING_PHASE", "AT_TARGET", "BUBBLING_PHASE"}

var registry = map[string]Generator{
	"bool": infallible(func(r *random.Random) string {
		if r.Bool() {
			return "true"
		}
		return "false"
	}),
	"hex": func(r *random.Random) (string, error) {
		return r.Hex(8)
	},

	"number.any":      numeric(Any),
	"number.float":    numeric(Float),
	"number.range":    numeric(Range),
	"number.tiny":     numeric(Tiny),
	"number.unsigned": numeric(Unsigned),
	"number.even": numeric(func(r *random.Random) float64 {
		return Even(Unsigned(r))
	}),

	"typed.byte":               infallible(Byte),
	"typed.octet":              infallible(Octet),
	"typed.short":              infallible(Short),
	"typed.unsignedShort":      infallible(UnsignedShort),
	"typed.long":               infallible(Long),
	"typed.unsignedLong":       infallible(UnsignedLong),
	"typed.float":              infallible(TypedFloat),
	"typed.unrestrictedFloat":  infallible(UnrestrictedFloat),
	"typed.double":             infallible(Double),
	"typed.unrestrictedDouble": infallible(UnrestrictedDouble),
	"typed.any":                infallible(TypedAny),

	"colors.rgb": infallible(RGB),
	"colors.hsl": infallible(HSL),

	"unit.length":  infallible(Length),
	"unit.percent": infallible(Percent),
	"time.any":     infallible(Duration),

	"bitmask": func(r *random.Random) (string, error) {
		return Bitmask(r, eventFlags)
	},
	"arrays.filled": func(r *random.Random) (string, error) {
		values, err := Filled(r, numeric(Any), 0)
		if err != nil {
			return "", err
		}
		return "[" + strings.Join(values, ",") + "]", nil
	},
}

// Lookup returns the generator registered under name.
func Lookup(name string) (Generator, error) {
	gen, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, name)
	}

	return gen, nil
}

// Names lists every registered generator in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
