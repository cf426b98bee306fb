package render

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"consumer-flex-app/internal/dfs"
	"consumer-flex-app/internal/transform"
)

// osgbSquare builds a closed square boundary in British National Grid
// coordinates around the given centre.
func osgbSquare(easting, northing, half float64) *geojson.Geometry {
	ring := orb.Ring{
		{easting - half, northing - half},
		{easting + half, northing - half},
		{easting + half, northing + half},
		{easting - half, northing + half},
		{easting - half, northing - half},
	}
	return geojson.NewGeometry(orb.Polygon{ring})
}

// testResult carries two events. Settlement for the later one has not been
// published yet, so its settled figures are undefined.
func testResult() *transform.Result {
	londonGeom := osgbSquare(530_000, 180_000, 5_000)
	northEastGeom := osgbSquare(420_000, 560_000, 5_000)

	return &transform.Result{
		EventMetrics: []transform.EventMetricsRow{
			{
				Date:                     "2023-01-23",
				Providers:                25,
				ProvidersCumulative:      25,
				PeriodStart:              time.Date(2023, 1, 23, 17, 0, 0, 0, time.UTC),
				PeriodEnd:                time.Date(2023, 1, 23, 18, 0, 0, 0, time.UTC),
				EventType:                dfs.EventLive,
				DurationHours:            1,
				SettledMWh:               180.5,
				ProcuredMWh:              210.25,
				RequiredMWMedian:         250,
				ProcuredDayAheadMWMedian: 200,
				ProcuredSameDayMWMedian:  220.5,
				DurationHoursCumulative:  1,
				SettledMWhCumulative:     180.5,
				ProcuredMWhCumulative:    210.25,
			},
			{
				Date:                     "2023-01-24",
				Providers:                27,
				ProvidersCumulative:      28,
				PeriodStart:              time.Date(2023, 1, 24, 17, 30, 0, 0, time.UTC),
				PeriodEnd:                time.Date(2023, 1, 24, 18, 30, 0, 0, time.UTC),
				EventType:                dfs.EventTest,
				DurationHours:            1,
				SettledMWh:               dfs.NaN(),
				ProcuredMWh:              150,
				RequiredMWMedian:         200,
				ProcuredDayAheadMWMedian: 140,
				ProcuredSameDayMWMedian:  160,
				DurationHoursCumulative:  2,
				SettledMWhCumulative:     180.5,
				ProcuredMWhCumulative:    360.25,
			},
		},
		ProviderTotals: []transform.ProviderDateRow{
			{Date: "2023-01-23", Provider: "Octopus Energy", SameDayTotalMW: 120},
			{Date: "2023-01-23", Provider: "British Gas", SameDayTotalMW: 80.5},
			{Date: "2023-01-24", Provider: "Octopus Energy", SameDayTotalMW: 60},
			{Date: "2023-01-24", Provider: "E.ON Next", SameDayTotalMW: dfs.NaN()},
		},
		RegionalByEvent: []transform.RegionalFlexRow{
			{Date: "2023-01-23", RegionCode: "_C", RegionName: "London", MeanMW: 120, EnergyMWh: 120, Geometry: londonGeom},
			{Date: "2023-01-23", RegionCode: "_F", RegionName: "North East England", MeanMW: 45.5, EnergyMWh: 45.5, Geometry: northEastGeom},
		},
		RegionalCumulative: []transform.RegionalCumulativeRow{
			{RegionCode: "_C", RegionName: "London", MedianMW: 120, EnergyMWh: 240, Geometry: londonGeom},
			{RegionCode: "_F", RegionName: "North East England", MedianMW: 45.5, EnergyMWh: 91, Geometry: northEastGeom},
		},
	}
}
