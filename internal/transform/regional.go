package transform

import (
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"consumer-flex-app/internal/dfs"
	"consumer-flex-app/internal/geo"
)

// ForecastType names the vintage of a forecast column.
type ForecastType string

const (
	ForecastDayAhead ForecastType = "Day Ahead"
	ForecastSameDay  ForecastType = "Same Day"
)

// ForecastValue is one cell of the long-form forecast table: one published
// column on one event date, summed across providers and averaged across the
// event's settlement periods.
type ForecastValue struct {
	Date         string       `json:"date"`
	Column       string       `json:"column"`
	ValueMW      dfs.Float    `json:"value_mw"`
	ForecastType ForecastType `json:"forecast_type,omitempty"`
	RegionCode   string       `json:"region_code,omitempty"`
}

// RegionalFlexRow is the day-ahead forecast flexibility of one region on
// one event date, attached to its licence-area boundary.
type RegionalFlexRow struct {
	Date       string            `json:"date"`
	RegionCode string            `json:"region_code"`
	RegionName string            `json:"region_name"`
	MeanMW     dfs.Float         `json:"mean_mw"`
	EnergyMWh  dfs.Float         `json:"energy_mwh"`
	Geometry   *geojson.Geometry `json:"geometry"`
}

// RegionalCumulativeRow rolls one region up across every event date: median
// power, because MW from distinct events does not add, and summed energy,
// because MWh does.
type RegionalCumulativeRow struct {
	RegionCode string            `json:"region_code"`
	RegionName string            `json:"region_name"`
	MedianMW   dfs.Float         `json:"median_mw"`
	EnergyMWh  dfs.Float         `json:"energy_mwh"`
	Geometry   *geojson.Geometry `json:"geometry"`
}

// ClassifyForecast names the vintage of a published forecast column.
// Columns outside the published set get no classification.
func ClassifyForecast(column string) (ForecastType, bool) {
	if !dfs.IsForecastColumn(column) {
		return "", false
	}
	if strings.HasPrefix(column, dfs.SameDayPrefix) {
		return ForecastSameDay, true
	}
	return ForecastDayAhead, true
}

// RegionCodeFor strips the same-day prefix and resolves the DNO licence
// code; empty when the label has no licence area.
func RegionCodeFor(column string) string {
	return dfs.RegionCodeByName[strings.TrimPrefix(column, dfs.SameDayPrefix)]
}

// MeltForecasts reshapes the bid table into long form: per (date, column),
// the forecast MW summed across providers within each settlement window and
// averaged across the event's windows. Output order is ascending date, then
// published column order.
func MeltForecasts(bids []dfs.BidRow) []ForecastValue {
	type windowKey struct{ date, from string }
	perWindow := make(map[windowKey]map[string]float64)
	for _, b := range bids {
		key := windowKey{b.Date, b.From}
		sums, ok := perWindow[key]
		if !ok {
			sums = make(map[string]float64)
			perWindow[key] = sums
		}
		for _, col := range dfs.ForecastColumns {
			if v, ok := b.Forecasts[col]; ok && !math.IsNaN(v) {
				sums[col] += v
			}
		}
	}
	windowsByDate := make(map[string][]windowKey)
	for key := range perWindow {
		windowsByDate[key.date] = append(windowsByDate[key.date], key)
	}
	out := make([]ForecastValue, 0, len(windowsByDate)*len(dfs.ForecastColumns))
	for _, date := range slices.Sorted(maps.Keys(windowsByDate)) {
		windows := windowsByDate[date]
		for _, col := range dfs.ForecastColumns {
			vals := make([]float64, 0, len(windows))
			for _, w := range windows {
				vals = append(vals, perWindow[w][col])
			}
			forecastType, _ := ClassifyForecast(col)
			out = append(out, ForecastValue{
				Date:         date,
				Column:       col,
				ValueMW:      dfs.Float(stat.Mean(vals, nil)),
				ForecastType: forecastType,
				RegionCode:   RegionCodeFor(col),
			})
		}
	}
	return out
}

// RegionalFlex builds both regional tables: the day-ahead melted forecasts
// joined to boundaries and event durations, and the cumulative roll-up per
// region. Day-ahead labels that resolve to no boundary are excluded but
// logged, never silently lost.
func RegionalFlex(regions []geo.Region, bids []dfs.BidRow, metrics []EventMetricsRow, logger zerolog.Logger) ([]RegionalFlexRow, []RegionalCumulativeRow) {
	regionByCode := make(map[string]geo.Region, len(regions))
	for _, r := range regions {
		regionByCode[r.Code] = r
	}
	durationByDate := make(map[string]dfs.Float, len(metrics))
	for _, m := range metrics {
		durationByDate[m.Date] = m.DurationHours
	}

	var byEvent []RegionalFlexRow
	for _, fv := range MeltForecasts(bids) {
		if fv.ForecastType != ForecastDayAhead {
			continue
		}
		if fv.RegionCode == "" {
			// Other/Total are aggregate columns, not regions.
			if fv.Column != dfs.ColumnOther && fv.Column != dfs.ColumnTotal {
				logger.Warn().Str("column", fv.Column).Msg("forecast column has no licence-area mapping")
			}
			continue
		}
		region, ok := regionByCode[fv.RegionCode]
		if !ok {
			logger.Warn().Str("column", fv.Column).Str("code", fv.RegionCode).Msg("no boundary for forecast region")
			continue
		}
		duration, ok := durationByDate[fv.Date]
		if !ok {
			continue
		}
		byEvent = append(byEvent, RegionalFlexRow{
			Date:       fv.Date,
			RegionCode: fv.RegionCode,
			RegionName: region.Name,
			MeanMW:     fv.ValueMW,
			EnergyMWh:  dfs.Float(fv.ValueMW.Float64() * duration.Float64()),
			Geometry:   region.Geometry,
		})
	}

	byRegion := make(map[string][]RegionalFlexRow)
	for _, row := range byEvent {
		byRegion[row.RegionCode] = append(byRegion[row.RegionCode], row)
	}
	cumulative := make([]RegionalCumulativeRow, 0, len(byRegion))
	for _, code := range slices.Sorted(maps.Keys(byRegion)) {
		rows := byRegion[code]
		power := make([]float64, 0, len(rows))
		var energy float64
		for _, r := range rows {
			if !r.MeanMW.IsNaN() {
				power = append(power, r.MeanMW.Float64())
			}
			if !r.EnergyMWh.IsNaN() {
				energy += r.EnergyMWh.Float64()
			}
		}
		region := regionByCode[code]
		cumulative = append(cumulative, RegionalCumulativeRow{
			RegionCode: code,
			RegionName: region.Name,
			MedianMW:   dfs.Float(median(power)),
			EnergyMWh:  dfs.Float(energy),
			Geometry:   region.Geometry,
		})
	}
	return byEvent, cumulative
}
