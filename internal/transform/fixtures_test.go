package transform

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"consumer-flex-app/internal/dfs"
	"consumer-flex-app/internal/geo"
)

func nopLogger() zerolog.Logger { return zerolog.Nop() }

func testBid(date, provider, from, to string, forecasts map[string]float64) dfs.BidRow {
	return dfs.BidRow{
		Date:           date,
		Provider:       provider,
		From:           from,
		To:             to,
		EventType:      dfs.EventLive,
		Forecasts:      forecasts,
		VolumeMW:       1,
		PriceGBPPerMWh: decimal.NewFromInt(3000),
	}
}

func testRequirement(date, from, to string, required, dayAhead float64) dfs.RequirementRow {
	return dfs.RequirementRow{
		Date:               date,
		From:               from,
		To:                 to,
		EventType:          dfs.EventLive,
		RequiredMW:         dfs.Float(required),
		ProcuredDayAheadMW: dfs.Float(dayAhead),
	}
}

func testSummary(date, from, to string, volume, cost, sameDay float64) dfs.SummaryRow {
	return dfs.SummaryRow{
		Date:              date,
		From:              from,
		To:                to,
		EventType:         dfs.EventLive,
		SettledVolumeMW:   dfs.Float(volume),
		SettledCostGBP:    dfs.Float(cost),
		ProcuredSameDayMW: dfs.Float(sameDay),
	}
}

const testBoundaries = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"Name": "_A", "LongName": "East England"},
      "geometry": {"type": "Polygon", "coordinates": [[[0,52],[1.5,52],[1.5,53],[0,53],[0,52]]]}
    },
    {
      "type": "Feature",
      "properties": {"Name": "_C", "LongName": "London"},
      "geometry": {"type": "Polygon", "coordinates": [[[-0.5,51.3],[0.3,51.3],[0.3,51.7],[-0.5,51.7],[-0.5,51.3]]]}
    }
  ]
}`

func testRegions() []geo.Region {
	regions, err := geo.ParseRegions([]byte(testBoundaries))
	if err != nil {
		panic(err)
	}
	return regions
}
