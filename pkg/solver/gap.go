package solver

import (
	"regexp"
	"strconv"
)

// Sentinel encodings for an unbounded ("inf") gap (spec §4.7 step 4, P7).
const (
	InfAbsGap = 9_999_999.0
	InfRelGap = 9_999.0
)

var (
	absGapPattern = regexp.MustCompile(`absmipgap=([0-9.]+|inf)`)
	relGapPattern = regexp.MustCompile(`relmipgap=([0-9.]+|inf)`)
)

// ParseGap extracts (abs_gap, gap_percent) from a solver log message, per
// spec §4.7 step 4 / P7: "absmipgap=<float|inf>" and "relmipgap=<float|inf>",
// with relmipgap a ratio that is multiplied by 100 for a percent. "inf" is
// sentinel-encoded as (InfAbsGap, InfRelGap). ok is false when neither
// pattern is present, in which case the caller should fall back to (0,0)
// when the solver proved optimality (spec's no-gap-present rule).
func ParseGap(message string) (abs, gapPercent float64, ok bool) {
	var haveAbs, haveRel bool

	if m := absGapPattern.FindStringSubmatch(message); m != nil {
		haveAbs = true
		if m[1] == "inf" {
			abs = InfAbsGap
		} else {
			abs, _ = strconv.ParseFloat(m[1], 64)
		}
	}
	if m := relGapPattern.FindStringSubmatch(message); m != nil {
		haveRel = true
		if m[1] == "inf" {
			gapPercent = InfRelGap
		} else {
			rel, _ := strconv.ParseFloat(m[1], 64)
			gapPercent = rel * 100
		}
	}
	return abs, gapPercent, haveAbs || haveRel
}
