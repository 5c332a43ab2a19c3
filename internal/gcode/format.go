package gcode

import (
	"math"
	"strconv"
	"strings"
)

// formatNumber writes v with prec decimals. Negative zero prints without
// its sign; NaN and infinities fall back to their shortest text form
// instead of failing the program.
func formatNumber(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if prec < 0 {
		prec = 0
	}
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.HasPrefix(s, "-") && strings.Trim(s[1:], "0.") == "" {
		s = s[1:]
	}
	return s
}
