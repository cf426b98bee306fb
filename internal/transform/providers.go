package transform

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"consumer-flex-app/internal/dfs"
)

// ProviderPeriodRow is one provider's bids for one settlement period,
// summed across duplicate submissions. Duplicates sum rather than
// deduplicate: volumes are additive across supplier units.
type ProviderPeriodRow struct {
	Date           string             `json:"date"`
	Provider       string             `json:"provider"`
	PeriodStart    time.Time          `json:"period_start"`
	PeriodEnd      time.Time          `json:"period_end"`
	Forecasts      map[string]float64 `json:"forecasts,omitempty"`
	VolumeMW       dfs.Float          `json:"volume_mw"`
	PriceGBPPerMWh decimal.Decimal    `json:"price_gbp_per_mwh"`
}

// ProviderDateRow is one provider's same-day total forecast summed across
// an event date's settlement periods.
type ProviderDateRow struct {
	Date           string    `json:"date"`
	Provider       string    `json:"provider"`
	SameDayTotalMW dfs.Float `json:"same_day_total_mw"`
}

// BidsByProviderPeriod groups bids by (date, provider, period) and sums the
// forecast columns, the offered volume and the bid price. Missing forecast
// cells contribute nothing; prices accumulate exactly.
func BidsByProviderPeriod(bids []dfs.BidRow) ([]ProviderPeriodRow, error) {
	rows, err := NormalizeBids(bids)
	if err != nil {
		return nil, err
	}
	type groupKey struct {
		date     string
		provider string
		start    int64
		end      int64
	}
	groups := make(map[groupKey]*ProviderPeriodRow, len(rows))
	for _, row := range rows {
		key := groupKey{row.Date, row.Provider, row.PeriodStart.Unix(), row.PeriodEnd.Unix()}
		agg, ok := groups[key]
		if !ok {
			agg = &ProviderPeriodRow{
				Date:        row.Date,
				Provider:    row.Provider,
				PeriodStart: row.PeriodStart,
				PeriodEnd:   row.PeriodEnd,
				Forecasts:   make(map[string]float64, len(row.Forecasts)),
			}
			groups[key] = agg
		}
		for _, col := range dfs.ForecastColumns {
			if v, ok := row.Forecasts[col]; ok && !math.IsNaN(v) {
				agg.Forecasts[col] += v
			}
		}
		if !row.VolumeMW.IsNaN() {
			agg.VolumeMW += row.VolumeMW
		}
		agg.PriceGBPPerMWh = agg.PriceGBPPerMWh.Add(row.PriceGBPPerMWh)
	}
	out := make([]ProviderPeriodRow, 0, len(groups))
	for _, agg := range groups {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].PeriodStart.Before(out[j].PeriodStart)
	})
	return out, nil
}

// BidsByProviderDate folds the per-period rows down to one same-day total
// per provider per event date.
func BidsByProviderDate(rows []ProviderPeriodRow) []ProviderDateRow {
	type groupKey struct{ date, provider string }
	totals := make(map[groupKey]float64, len(rows))
	for _, row := range rows {
		key := groupKey{row.Date, row.Provider}
		if _, ok := totals[key]; !ok {
			totals[key] = 0
		}
		if v, ok := row.Forecasts[dfs.ColumnSameDayTotal]; ok && !math.IsNaN(v) {
			totals[key] += v
		}
	}
	out := make([]ProviderDateRow, 0, len(totals))
	for key, total := range totals {
		out = append(out, ProviderDateRow{Date: key.date, Provider: key.provider, SameDayTotalMW: dfs.Float(total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Provider < out[j].Provider
	})
	return out
}
