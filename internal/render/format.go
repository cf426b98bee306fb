package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"consumer-flex-app/internal/dfs"
)

// energySteps orders the display units used when pretty-printing a
// watt-hour amount, largest first.
var energySteps = []struct {
	unit      string
	wattHours float64
}{
	{"GWh", 1e9},
	{"MWh", 1e6},
	{"kWh", 1e3},
	{"Wh", 1},
}

// FormatEnergy renders a watt-hour amount with the largest unit that keeps
// the magnitude at or above one, trimmed to at most two decimal places.
func FormatEnergy(wattHours float64) string {
	if math.IsNaN(wattHours) {
		return "n/a"
	}
	step := energySteps[len(energySteps)-1]
	for _, candidate := range energySteps {
		if math.Abs(wattHours) >= candidate.wattHours {
			step = candidate
			break
		}
	}
	s := strconv.FormatFloat(wattHours/step.wattHours, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s + step.unit
}

// formatFloat renders a value to the given number of decimal places, with
// undefined values shown as "n/a".
func formatFloat(v dfs.Float, places int) string {
	if v.IsNaN() {
		return "n/a"
	}
	return strconv.FormatFloat(v.Float64(), 'f', places, 64)
}

// formatPercent renders a ratio as a percentage with one decimal place.
func formatPercent(v dfs.Float) string {
	if v.IsNaN() {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", 100*v.Float64())
}

// formatDelta renders the signed difference between two values, or "n/a"
// when either side is undefined.
func formatDelta(current, previous dfs.Float, places int) string {
	if current.IsNaN() || previous.IsNaN() {
		return "n/a"
	}
	return fmt.Sprintf("%+.*f", places, current.Float64()-previous.Float64())
}

// formatPercentDelta renders the signed difference between two ratios in
// percentage points.
func formatPercentDelta(current, previous dfs.Float) string {
	if current.IsNaN() || previous.IsNaN() {
		return "n/a"
	}
	return fmt.Sprintf("%+.1fpt", 100*(current.Float64()-previous.Float64()))
}

// groupThousands inserts comma separators into a non-negative integer.
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
