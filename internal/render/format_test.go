package render

import (
	"testing"

	"consumer-flex-app/internal/dfs"
)

func TestFormatEnergy(t *testing.T) {
	cases := []struct {
		wattHours float64
		want      string
	}{
		{500, "500Wh"},
		{1_500, "1.5kWh"},
		{1_500_000, "1.5MWh"},
		{210_250_000, "210.25MWh"},
		{2_340_000_000, "2.34GWh"},
		{0, "0Wh"},
		{-1_500_000, "-1.5MWh"},
	}
	for _, tc := range cases {
		if got := FormatEnergy(tc.wattHours); got != tc.want {
			t.Fatalf("FormatEnergy(%v) = %q, want %q", tc.wattHours, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := formatPercent(dfs.Float(0.882)); got != "88.2%" {
		t.Fatalf("formatPercent = %q", got)
	}
	if got := formatPercent(dfs.NaN()); got != "n/a" {
		t.Fatalf("undefined ratio should be n/a, got %q", got)
	}
}

func TestFormatDelta(t *testing.T) {
	if got := formatDelta(dfs.Float(2), dfs.Float(3.5), 1); got != "-1.5" {
		t.Fatalf("formatDelta = %q", got)
	}
	if got := formatDelta(dfs.Float(2), dfs.NaN(), 1); got != "n/a" {
		t.Fatalf("delta against undefined should be n/a, got %q", got)
	}
}

func TestGroupThousands(t *testing.T) {
	cases := map[int]string{
		0:         "0",
		999:       "999",
		1_000:     "1,000",
		423_871:   "423,871",
		1_234_567: "1,234,567",
	}
	for n, want := range cases {
		if got := groupThousands(n); got != want {
			t.Fatalf("groupThousands(%d) = %q, want %q", n, got, want)
		}
	}
}
