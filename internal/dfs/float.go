package dfs

import (
	"math"
	"strconv"
)

// Float is a float64 whose JSON form tolerates the undefined-value
// sentinel: NaN and infinities encode as null, and null decodes back to
// NaN. encoding/json rejects raw NaN, but computed tables have to
// round-trip through the result cache with undefined ratios intact.
type Float float64

// NaN returns the undefined-value sentinel.
func NaN() Float { return Float(math.NaN()) }

// IsNaN reports whether the value is undefined.
func (f Float) IsNaN() bool { return math.IsNaN(float64(f)) }

// Float64 unwraps the value for arithmetic.
func (f Float) Float64() float64 { return float64(f) }

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = NaN()
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}
