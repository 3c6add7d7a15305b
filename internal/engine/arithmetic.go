package engine

import (
	"math"
	"strconv"
	"strings"
)

// ErrorDisplay is what the display shows for any non-finite value.
const ErrorDisplay = "Error"

const (
	fracDigits = 12
	expDigits  = 10
)

// Apply computes x op y. Division by zero yields +Inf and an unrecognised
// operator yields y.
func Apply(x, y float64, op Operator) float64 {
	switch op {
	case Add:
		return x + y
	case Subtract:
		return x - y
	case Multiply:
		return x * y
	case Divide:
		if y == 0 {
			return math.Inf(1)
		}
		return x / y
	default:
		return y
	}
}

// Format projects n onto the display: "Error" when non-finite, otherwise
// rounded to 12 fractional digits without trailing zeros, switching to
// exponential notation when the plain form would not fit the display.
func Format(n float64) string {
	if !finite(n) {
		return ErrorDisplay
	}

	out := trimFraction(strconv.FormatFloat(n, 'f', fracDigits, 64))
	if out == "-0" {
		out = "0"
	}
	if len(out) > MaxDisplayLen {
		out = trimExponent(strconv.FormatFloat(n, 'e', expDigits, 64))
	}
	return out
}

// ParseDisplay reads a display buffer back as a number. It accepts every form
// Format and the editing events produce; an empty buffer is zero and anything
// unreadable, such as "Error", is NaN.
func ParseDisplay(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// out of range values come back as ±Inf with an error
		if math.IsInf(v, 0) {
			return v
		}
		return math.NaN()
	}
	return v
}

func finite(n float64) bool {
	return !math.IsInf(n, 0) && !math.IsNaN(n)
}

// trimFraction drops trailing zeros, and a bare point, from a fixed-point number.
func trimFraction(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	return strings.TrimRight(strings.TrimRight(s, "0"), ".")
}

// trimExponent rewrites "1.5e+08" as "1.5e+8".
func trimExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 >= len(s) {
		return s
	}
	mantissa, sign, exp := s[:i], s[i+1], strings.TrimLeft(s[i+2:], "0")
	if exp == "" {
		exp = "0"
	}
	return mantissa + "e" + string(sign) + exp
}
