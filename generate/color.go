package generate

import (
	"strconv"
	"strings"

	"github.com/xor-shift/octorand/random"
)

func channel(r *random.Random) string {
	return strconv.FormatUint(uint64(r.Number(255)), 10)
}

func percent(r *random.Random) string {
	return "%" + channel(r)
}

func join(prefix string, values ...string) string {
	return prefix + "(" + strings.Join(values, ",") + ")"
}

// RGB returns a color in functional or hex notation. The functional forms deliberately put the
// percent sign in front of the number.
func RGB(r *random.Random) string {
	switch r.Number(4) {
	case 0:
		if r.Bool() {
			return join("rgba", channel(r), channel(r), channel(r))
		}
		return join("rgba", percent(r), percent(r), percent(r))
	case 1:
		return join("rgba", channel(r), channel(r), channel(r), formatNumber(r.Float()))
	case 2:
		return "#" + must(r.Hex(4))
	default:
		return "#" + must(r.Hex(8))
	}
}

func HSL(r *random.Random) string {
	switch r.Number(4) {
	case 0:
		return join("hsl", channel(r), percent(r), percent(r))
	case 1:
		return join("hsl", channel(r), percent(r), percent(r), percent(r))
	case 2:
		unit := must(random.Item(r, []string{"deg", "rad", "grad", "turn"}))
		return join("hsl", channel(r)+unit, percent(r), percent(r), percent(r))
	default:
		return join("hsl", channel(r), percent(r), percent(r), formatNumber(r.Float()))
	}
}
