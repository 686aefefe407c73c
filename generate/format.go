package generate

import (
	"math"
	"strconv"
	"strings"
)

// formatNumber renders f the way a JavaScript engine prints a Number: shortest round-trip
// digits, plain notation for magnitudes in [1e-6, 1e21) and compact exponents elsewhere.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exponent, _ := strings.Cut(s, "e")

	sign := exponent[0]
	digits := strings.TrimLeft(exponent[1:], "0")
	if digits == "" {
		digits = "0"
	}

	return mantissa + "e" + string(sign) + digits
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
