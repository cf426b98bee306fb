package dfs

import (
	"encoding/json"
	"math"
	"testing"
)

func TestFloatJSONRoundTrip(t *testing.T) {
	in := []Float{0, 1.5, -42, Float(math.Inf(1)), NaN()}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out []Float
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d values, got %d", len(in), len(out))
	}
	for i, v := range out[:3] {
		if v != in[i] {
			t.Fatalf("value %d: expected %v, got %v", i, in[i], v)
		}
	}
	// Infinities collapse to the undefined sentinel alongside NaN.
	if !out[3].IsNaN() || !out[4].IsNaN() {
		t.Fatalf("expected undefined sentinels, got %v and %v", out[3], out[4])
	}
}

func TestFloatMarshalsUndefinedAsNull(t *testing.T) {
	data, err := json.Marshal(NaN())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "null" {
		t.Fatalf("expected null, got %s", data)
	}
}

func TestForecastColumnLookups(t *testing.T) {
	if !IsForecastColumn("D0 Total") {
		t.Fatal("D0 Total should be a forecast column")
	}
	if IsForecastColumn("DFS Volume (MW)") {
		t.Fatal("DFS Volume (MW) is not a forecast column")
	}
	for name := range RegionCodeByName {
		if !IsForecastColumn(name) {
			t.Fatalf("mapped region %q missing from forecast columns", name)
		}
	}
}
