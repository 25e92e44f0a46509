package results

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultCriticalMultiplier marks a value critical when it lies at least
// this fraction beyond the violated bound (0.5 = 50% past the bound).
const DefaultCriticalMultiplier = 0.5

var (
	numRe     = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	betweenRe = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*[-–]\s*(-?\d+(?:\.\d+)?)`)
	belowRe   = regexp.MustCompile(`<\s*=?\s*(-?\d+(?:\.\d+)?)`)
	aboveRe   = regexp.MustCompile(`>\s*=?\s*(-?\d+(?:\.\d+)?)`)
)

// Classify derives the severity status of a measured value against a
// free-text reference range. Recognized range forms are "low-high", "<x"
// and ">x"; anything else is not authoritative and yields normal along
// with ok=false. Bounds are inclusive: a value sitting exactly on a bound
// is normal. A value beyond a bound by at least multiplier*bound is
// critical, overriding high/low.
func Classify(value, refRange string, multiplier float64) (Status, bool) {
	if multiplier <= 0 {
		multiplier = DefaultCriticalMultiplier
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(numRe.FindString(value)), 64)
	if err != nil {
		return StatusNormal, false
	}

	if m := betweenRe.FindStringSubmatch(refRange); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		if lo > hi {
			lo, hi = hi, lo
		}
		switch {
		case v < lo:
			if lo > 0 && v <= lo*(1-multiplier) {
				return StatusCritical, true
			}
			return StatusLow, true
		case v > hi:
			if v >= hi*(1+multiplier) {
				return StatusCritical, true
			}
			return StatusHigh, true
		default:
			return StatusNormal, true
		}
	}

	if m := belowRe.FindStringSubmatch(refRange); m != nil {
		hi, _ := strconv.ParseFloat(m[1], 64)
		if v > hi {
			if v >= hi*(1+multiplier) {
				return StatusCritical, true
			}
			return StatusHigh, true
		}
		return StatusNormal, true
	}

	if m := aboveRe.FindStringSubmatch(refRange); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		if v < lo {
			if lo > 0 && v <= lo*(1-multiplier) {
				return StatusCritical, true
			}
			return StatusLow, true
		}
		return StatusNormal, true
	}

	return StatusNormal, false
}
