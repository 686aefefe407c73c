package generate

import (
	"strings"

	"github.com/xor-shift/octorand/random"
)

var lengthUnits = []string{"px", "em", "ex", "ch", "rem", "mm", "cm", "in", "pt", "pc", "%"}

func Length(r *random.Random) string {
	n := formatNumber(Any(r))
	return n + must(random.Item(r, lengthUnits))
}

func Percent(r *random.Random) string {
	return formatNumber(Any(r)) + "%"
}

func Duration(r *random.Random) string {
	n := formatNumber(Any(r))
	return n + must(random.Item(r, []string{"s", "ms"}))
}

// Bitmask ORs together between 2 and len(flags) picks from flags, repeats allowed.
func Bitmask(r *random.Random, flags []string) (string, error) {
	if len(flags) <= 1 {
		return strings.Join(flags, ""), nil
	}

	count, err := r.Range(2, int64(len(flags)))
	if err != nil {
		return "", err
	}

	mask, err := random.Item(r, flags)
	if err != nil {
		return "", err
	}

	for i := int64(1); i < count; i++ {
		flag, err := random.Item(r, flags)
		if err != nil {
			return "", err
		}
		mask += "|" + flag
	}

	return mask, nil
}

// Filled calls gen size times. A size of 0 draws one in [1, Tiny].
func Filled(r *random.Random, gen Generator, size int) ([]string, error) {
	if size == 0 {
		size = int(r.Number(uint32(Tiny(r)))) + 1
	}

	ret := make([]string, 0, size)
	for i := 0; i < size; i++ {
		v, err := gen(r)
		if err != nil {
			return nil, err
		}
		ret = append(ret, v)
	}

	return ret, nil
}
