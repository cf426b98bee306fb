package transform

import (
	"errors"
	"testing"

	"consumer-flex-app/internal/dfs"
)

func TestNormalizeBidsLocalisesToLondon(t *testing.T) {
	bids := []dfs.BidRow{
		testBid("2023-01-23", "Octopus", "17:00", "17:30", nil),
		testBid("2023-06-14", "Octopus", "17:00", "17:30", nil),
	}
	rows, err := NormalizeBids(bids)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	_, winterOffset := rows[0].PeriodStart.Zone()
	if winterOffset != 0 {
		t.Fatalf("January is GMT, expected offset 0, got %d", winterOffset)
	}
	_, summerOffset := rows[1].PeriodStart.Zone()
	if summerOffset != 3600 {
		t.Fatalf("June is BST, expected offset 3600, got %d", summerOffset)
	}
	if rows[0].PeriodStart.Hour() != 17 || rows[0].PeriodEnd.Minute() != 30 {
		t.Fatalf("unexpected window: %v -> %v", rows[0].PeriodStart, rows[0].PeriodEnd)
	}
}

func TestNormalizeEndNotBeforeStart(t *testing.T) {
	bids := []dfs.BidRow{
		testBid("2023-01-23", "A", "17:00", "17:30", nil),
		testBid("2023-01-23", "A", "17:30", "18:00", nil),
		testBid("2023-03-26", "A", "18:00", "18:30", nil), // clocks change day
	}
	rows, err := NormalizeBids(bids)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	for _, r := range rows {
		if r.PeriodEnd.Before(r.PeriodStart) {
			t.Fatalf("period end %v before start %v", r.PeriodEnd, r.PeriodStart)
		}
	}
}

func TestNormalizeAcceptsSecondsInClockLabel(t *testing.T) {
	rows, err := NormalizeSummaries([]dfs.SummaryRow{testSummary("2023-01-23", "17:00:00", "17:30:00", 100, 300, 90)})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if rows[0].PeriodStart.Hour() != 17 {
		t.Fatalf("unexpected start %v", rows[0].PeriodStart)
	}
}

func TestNormalizeMalformedFailsWithParseError(t *testing.T) {
	_, err := NormalizeRequirements([]dfs.RequirementRow{testRequirement("13/02/2022", "17:00", "17:30", 300, 280)})
	if err == nil {
		t.Fatal("expected a parse error for a non-ISO date")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Table != "requirements" || parseErr.Date != "13/02/2022" {
		t.Fatalf("unexpected error context: %+v", parseErr)
	}
}

func TestNormalizeLeavesInputAndOtherFieldsAlone(t *testing.T) {
	in := []dfs.BidRow{testBid("2023-01-23", "Octopus", "17:00", "17:30", map[string]float64{"London": 12})}
	out, err := NormalizeBids(in)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !in[0].PeriodStart.IsZero() {
		t.Fatal("input slice was mutated")
	}
	if out[0].Provider != "Octopus" || out[0].Forecasts["London"] != 12 {
		t.Fatalf("other columns changed: %+v", out[0])
	}
}
