// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"strconv"
	"strings"

	"github.com/fitsolutions/edgar-engine/internal/xbrl"
	"github.com/fitsolutions/edgar-engine/pkg/types"
)

// suppressedValue replaces text-block values carrying font/style markup,
// which would otherwise flood the output.
const suppressedValue = "Suppressed"

// formatValue renders a fact's raw value for output. Numeric values pass
// through unchanged (decimals is rounding metadata, never a scale
// factor), ISO-8601 durations become fractional years, and styled text
// blocks are suppressed with a warning.
func (a *assembly) formatValue(f xbrl.Fact) string {
	v := f.Value

	if containsFontMarkup(v) {
		if !a.suppressed[f.Concept] {
			a.suppressed[f.Concept] = true
			a.warn(types.WarnSuppressedValue, "suppressed styled text block for %s", f.Concept)
		}
		return suppressedValue
	}

	if isDuration(v) {
		return strconv.FormatFloat(durationToYears(v), 'g', -1, 64)
	}

	return v
}

func containsFontMarkup(v string) bool {
	lower := strings.ToLower(v)
	return strings.Contains(lower, "font-") || strings.Contains(lower, "font:")
}

// isDuration reports whether the value looks like an ISO-8601 duration
// (P5Y6M15D and friends) rather than, say, a concept name starting with P.
func isDuration(v string) bool {
	if len(v) < 2 || v[0] != 'P' || v[1] < '0' || v[1] > '9' {
		return false
	}
	return strings.ContainsAny(v, "YMD")
}

// durationToYears converts P##Y##M##D durations to fractional years:
// whole years plus months/12 plus days/360.
func durationToYears(v string) float64 {
	years := numberBefore(v, 'Y')
	months := numberBefore(v, 'M')
	days := numberBefore(v, 'D')
	return years + months/12 + days/360
}

// numberBefore returns the digit run immediately preceding the first
// occurrence of marker, or 0 when the marker is absent.
func numberBefore(v string, marker byte) float64 {
	end := strings.IndexByte(v, marker)
	if end <= 0 {
		return 0
	}
	start := end
	for start > 1 && v[start-1] >= '0' && v[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0
	}
	n, err := strconv.ParseFloat(v[start:end], 64)
	if err != nil {
		return 0
	}
	return n
}
