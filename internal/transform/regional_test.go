package transform

import (
	"math"
	"testing"

	"consumer-flex-app/internal/dfs"
)

func TestClassifyForecast(t *testing.T) {
	if ft, ok := ClassifyForecast("London"); !ok || ft != ForecastDayAhead {
		t.Fatalf("London should classify as day ahead, got %q %v", ft, ok)
	}
	if ft, ok := ClassifyForecast("D0 London"); !ok || ft != ForecastSameDay {
		t.Fatalf("D0 London should classify as same day, got %q %v", ft, ok)
	}
	if _, ok := ClassifyForecast("DFS Volume (MW)"); ok {
		t.Fatal("a measure column must not classify")
	}
}

func TestRegionCodeFor(t *testing.T) {
	if code := RegionCodeFor("D0 East England"); code != "_A" {
		t.Fatalf("expected _A, got %q", code)
	}
	if code := RegionCodeFor("North Wales, Merseyside and Cheshire"); code != "_D" {
		t.Fatalf("expected _D, got %q", code)
	}
	// The same-day label drops the commas, so it resolves to nothing. That
	// matches the published data.
	if code := RegionCodeFor("D0 North Wales Merseyside and Cheshire"); code != "" {
		t.Fatalf("expected no code for the comma-less label, got %q", code)
	}
	if code := RegionCodeFor("Total"); code != "" {
		t.Fatalf("Total has no licence area, got %q", code)
	}
}

func TestMeltForecastsSumsThenAverages(t *testing.T) {
	bids := []dfs.BidRow{
		// Window 17:00: two providers sum to 150 for London, 60 East England.
		testBid("2023-01-23", "A", "17:00", "17:30", map[string]float64{"London": 100, "East England": 60}),
		testBid("2023-01-23", "B", "17:00", "17:30", map[string]float64{"London": 50}),
		// Window 17:30: 200 for London, nothing for East England.
		testBid("2023-01-23", "A", "17:30", "18:00", map[string]float64{"London": 200}),
	}
	melted := MeltForecasts(bids)
	byColumn := make(map[string]ForecastValue, len(melted))
	for _, fv := range melted {
		if fv.Date == "2023-01-23" {
			byColumn[fv.Column] = fv
		}
	}
	if got := byColumn["London"].ValueMW; got != 175 { // (150+200)/2
		t.Fatalf("expected London average 175, got %v", got)
	}
	if got := byColumn["East England"].ValueMW; got != 30 { // (60+0)/2
		t.Fatalf("expected East England average 30, got %v", got)
	}
	if byColumn["London"].ForecastType != ForecastDayAhead || byColumn["London"].RegionCode != "_C" {
		t.Fatalf("London row misclassified: %+v", byColumn["London"])
	}
	if len(melted) != len(dfs.ForecastColumns) {
		t.Fatalf("expected one row per published column, got %d", len(melted))
	}
}

func TestRegionalFlexJoinsBoundariesAndDuration(t *testing.T) {
	bids := []dfs.BidRow{
		testBid("2023-01-23", "A", "17:00", "17:30", map[string]float64{"London": 100, "Total": 160, "D0 London": 90}),
		testBid("2023-01-23", "A", "17:30", "18:00", map[string]float64{"London": 200, "Total": 260, "D0 London": 180}),
	}
	summary := eventFixture(t, "2023-01-23", 2,
		[]float64{300, 300}, []float64{280, 280},
		[]float64{100, 100}, []float64{1000, 1000}, []float64{90, 90})
	metrics := MetricsByEvent(bids, summary)

	byEvent, cumulative := RegionalFlex(testRegions(), bids, metrics, nopLogger())
	// Every mapped day-ahead column joins against the two fixture
	// boundaries; regions nobody bid for carry zero.
	if len(byEvent) != 2 {
		t.Fatalf("expected rows for the 2 boundary regions, got %d", len(byEvent))
	}
	var london RegionalFlexRow
	for _, row := range byEvent {
		if row.RegionCode == "_C" {
			london = row
		} else if row.MeanMW != 0 {
			t.Fatalf("unbid region should read zero: %+v", row)
		}
	}
	if london.RegionName != "London" {
		t.Fatalf("London row missing: %+v", byEvent)
	}
	if london.MeanMW != 150 {
		t.Fatalf("expected mean 150 MW, got %v", london.MeanMW)
	}
	if london.EnergyMWh != 150 { // 150 MW over a 1h event
		t.Fatalf("expected 150 MWh, got %v", london.EnergyMWh)
	}
	if london.Geometry == nil {
		t.Fatal("boundary geometry missing from joined row")
	}
	if len(cumulative) != 2 {
		t.Fatalf("unexpected cumulative rows: %+v", cumulative)
	}
}

func TestRegionalFlexSameDayRowsNeverJoin(t *testing.T) {
	bids := []dfs.BidRow{
		testBid("2023-01-23", "A", "17:00", "17:30", map[string]float64{"D0 London": 120}),
	}
	summary := eventFixture(t, "2023-01-23", 1,
		[]float64{300}, []float64{280}, []float64{100}, []float64{1000}, []float64{90})
	byEvent, _ := RegionalFlex(testRegions(), bids, MetricsByEvent(bids, summary), nopLogger())
	for _, row := range byEvent {
		if row.MeanMW != 0 {
			t.Fatalf("same-day forecasts must not reach the regional join: %+v", row)
		}
	}
}

func TestRegionalFlexDropsDatesWithoutDuration(t *testing.T) {
	bids := []dfs.BidRow{
		testBid("2023-01-23", "A", "17:00", "17:30", map[string]float64{"London": 100}),
	}
	byEvent, _ := RegionalFlex(testRegions(), bids, nil, nopLogger())
	if len(byEvent) != 0 {
		t.Fatalf("no event duration known, expected no rows, got %d", len(byEvent))
	}
}

func TestRegionalCumulativeMedianPowerSummedEnergy(t *testing.T) {
	bids := []dfs.BidRow{
		testBid("2023-01-23", "A", "17:00", "17:30", map[string]float64{"London": 100}),
		testBid("2023-01-24", "A", "17:00", "17:30", map[string]float64{"London": 300}),
		testBid("2023-01-25", "A", "17:00", "17:30", map[string]float64{"London": 200}),
	}
	var summary []EventSummaryRow
	for _, date := range []string{"2023-01-23", "2023-01-24", "2023-01-25"} {
		summary = append(summary, eventFixture(t, date, 2,
			[]float64{300, 300}, []float64{280, 280},
			[]float64{100, 100}, []float64{1000, 1000}, []float64{90, 90})...)
	}
	metrics := MetricsByEvent(bids, summary)
	byEvent, cumulative := RegionalFlex(testRegions(), bids, metrics, nopLogger())

	var c RegionalCumulativeRow
	for _, row := range cumulative {
		if row.RegionCode == "_C" {
			c = row
		}
	}
	if c.MedianMW != 200 {
		// One bid window per date, so the per-event means are 100/300/200.
		t.Fatalf("expected median power 200, got %v", c.MedianMW)
	}
	var energySum float64
	for _, row := range byEvent {
		if row.RegionCode == "_C" {
			energySum += row.EnergyMWh.Float64()
		}
	}
	if math.Abs(c.EnergyMWh.Float64()-energySum) > 1e-9 {
		t.Fatalf("cumulative energy %v != sum of per-event energy %v", c.EnergyMWh, energySum)
	}
	if c.Geometry == nil || c.RegionName != "London" {
		t.Fatalf("cumulative row lost its boundary: %+v", c)
	}
}
