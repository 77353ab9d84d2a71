package engine

import (
	"math"
	"strconv"
	"strings"

	"energymix/internal/models"
)

// Presentation precisions. Rounding happens once, after reduction.
const (
	PrecisionDefault = 2 // percentages and absolute quantities
	PrecisionFine    = 3 // per-source contribution shares
)

// Round rounds half away from zero to places decimals. It works on the
// shortest decimal form of v, so 1.005 rounds to 1.01 as it reads.
func Round(v float64, places int) float64 {
	if places < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 || len(s)-dot-1 <= places {
		return v
	}

	digits := []byte(s[:dot] + s[dot+1:dot+1+places])
	if s[dot+1+places] >= '5' {
		i := len(digits) - 1
		for ; i >= 0 && digits[i] == '9'; i-- {
			digits[i] = '0'
		}
		if i < 0 {
			digits = append([]byte{'1'}, digits...)
		} else {
			digits[i]++
		}
	}

	whole := len(digits) - places
	out := string(digits[:whole])
	if places > 0 {
		out += "." + string(digits[whole:])
	}
	r, err := strconv.ParseFloat(out, 64)
	if err != nil || r == 0 {
		return 0
	}
	return math.Copysign(r, v)
}

// RoundNull rounds a present value and leaves an absent one absent.
func RoundNull(v models.NullFloat, places int) models.NullFloat {
	if !v.Valid {
		return v
	}
	return models.Float(Round(v.Float64, places))
}
