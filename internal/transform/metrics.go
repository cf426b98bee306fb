package transform

import (
	"maps"
	"math"
	"slices"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"consumer-flex-app/internal/dfs"
)

// EventMetricsRow is the per-event-date roll-up behind the dashboard
// headline figures. Cumulative fields run across event dates in ascending
// order.
type EventMetricsRow struct {
	Date                     string        `json:"date"`
	Providers                int           `json:"providers"`
	ProvidersCumulative      int           `json:"providers_cumulative"`
	PeriodStart              time.Time     `json:"period_start"`
	PeriodEnd                time.Time     `json:"period_end"`
	EventType                dfs.EventType `json:"event_type"`
	DurationHours            dfs.Float     `json:"duration_hours"`
	SettledMWh               dfs.Float     `json:"settled_mwh"`
	ProcuredMWh              dfs.Float     `json:"procured_mwh"`
	RequiredMWMedian         dfs.Float     `json:"required_mw_median"`
	ProcuredDayAheadMWMedian dfs.Float     `json:"procured_day_ahead_mw_median"`
	ProcuredSameDayMWMedian  dfs.Float     `json:"procured_same_day_mw_median"`
	DurationHoursCumulative  dfs.Float     `json:"duration_hours_cumulative"`
	SettledMWhCumulative     dfs.Float     `json:"settled_mwh_cumulative"`
	ProcuredMWhCumulative    dfs.Float     `json:"procured_mwh_cumulative"`
}

// ProcuredMWBest prefers the same-day procured median and falls back to the
// day-ahead one when the same-day figure is undefined.
func (m EventMetricsRow) ProcuredMWBest() dfs.Float {
	if m.ProcuredSameDayMWMedian.IsNaN() {
		return m.ProcuredDayAheadMWMedian
	}
	return m.ProcuredSameDayMWMedian
}

// RequirementMet is the procured/required ratio. A zero or undefined
// requirement makes the ratio undefined.
func (m EventMetricsRow) RequirementMet() dfs.Float {
	required := m.RequiredMWMedian.Float64()
	if required == 0 {
		return dfs.NaN()
	}
	return dfs.Float(m.ProcuredMWBest().Float64() / required)
}

// MetricsByEvent combines the provider participation series with the
// per-event aggregates, keyed by event date. The sides are aligned on the
// union of their date sets; a date missing from one side leaves that side's
// fields zero (counts) or NaN (floats). The pipeline does not validate
// date-set equality, callers guard against it.
func MetricsByEvent(bids []dfs.BidRow, eventSummary []EventSummaryRow) []EventMetricsRow {
	// (a) provider participation: an explicit fold over ascending dates
	// carrying the running union of providers seen so far.
	providersByDate := make(map[string]map[string]struct{})
	for _, b := range bids {
		set, ok := providersByDate[b.Date]
		if !ok {
			set = make(map[string]struct{})
			providersByDate[b.Date] = set
		}
		set[b.Provider] = struct{}{}
	}
	type providerCounts struct{ day, cumulative int }
	counts := make(map[string]providerCounts, len(providersByDate))
	union := make(map[string]struct{})
	for _, date := range slices.Sorted(maps.Keys(providersByDate)) {
		for p := range providersByDate[date] {
			union[p] = struct{}{}
		}
		counts[date] = providerCounts{day: len(providersByDate[date]), cumulative: len(union)}
	}

	// (b) per-event aggregates over the joined summary, plus running
	// cumulative sums in the same ascending date order.
	groups := make(map[string][]EventSummaryRow)
	for _, row := range eventSummary {
		groups[row.Date] = append(groups[row.Date], row)
	}
	aggregates := make(map[string]EventMetricsRow, len(groups))
	var cumDuration, cumSettled, cumProcured float64
	for _, date := range slices.Sorted(maps.Keys(groups)) {
		rows := append([]EventSummaryRow(nil), groups[date]...)
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].PeriodStart.Before(rows[j].PeriodStart) })
		duration := float64(len(rows)) / periodsPerHour
		settled := sumDefined(rows, func(r EventSummaryRow) dfs.Float { return r.SettledMWh })
		procured := sumDefined(rows, func(r EventSummaryRow) dfs.Float { return r.ProcuredMWh })
		cumDuration += duration
		cumSettled += settled
		cumProcured += procured
		aggregates[date] = EventMetricsRow{
			Date:                     date,
			PeriodStart:              rows[0].PeriodStart,
			PeriodEnd:                rows[len(rows)-1].PeriodEnd,
			EventType:                rows[0].EventType,
			DurationHours:            dfs.Float(duration),
			SettledMWh:               dfs.Float(settled),
			ProcuredMWh:              dfs.Float(procured),
			RequiredMWMedian:         dfs.Float(median(defined(rows, func(r EventSummaryRow) dfs.Float { return r.RequiredMW }))),
			ProcuredDayAheadMWMedian: dfs.Float(median(defined(rows, func(r EventSummaryRow) dfs.Float { return r.ProcuredDayAheadMW }))),
			ProcuredSameDayMWMedian:  dfs.Float(median(defined(rows, func(r EventSummaryRow) dfs.Float { return r.ProcuredSameDayMW }))),
			DurationHoursCumulative:  dfs.Float(cumDuration),
			SettledMWhCumulative:     dfs.Float(cumSettled),
			ProcuredMWhCumulative:    dfs.Float(cumProcured),
		}
	}

	dates := make(map[string]struct{}, len(counts)+len(aggregates))
	for d := range counts {
		dates[d] = struct{}{}
	}
	for d := range aggregates {
		dates[d] = struct{}{}
	}
	out := make([]EventMetricsRow, 0, len(dates))
	for _, date := range slices.Sorted(maps.Keys(dates)) {
		row, ok := aggregates[date]
		if !ok {
			row = EventMetricsRow{
				Date:                     date,
				DurationHours:            dfs.NaN(),
				SettledMWh:               dfs.NaN(),
				ProcuredMWh:              dfs.NaN(),
				RequiredMWMedian:         dfs.NaN(),
				ProcuredDayAheadMWMedian: dfs.NaN(),
				ProcuredSameDayMWMedian:  dfs.NaN(),
				DurationHoursCumulative:  dfs.NaN(),
				SettledMWhCumulative:     dfs.NaN(),
				ProcuredMWhCumulative:    dfs.NaN(),
			}
		}
		if c, ok := counts[date]; ok {
			row.Providers, row.ProvidersCumulative = c.day, c.cumulative
		}
		out = append(out, row)
	}
	return out
}

// defined extracts the non-NaN values of one column.
func defined(rows []EventSummaryRow, pick func(EventSummaryRow) dfs.Float) []float64 {
	vals := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v := pick(r); !v.IsNaN() {
			vals = append(vals, v.Float64())
		}
	}
	return vals
}

func sumDefined(rows []EventSummaryRow, pick func(EventSummaryRow) dfs.Float) float64 {
	return floats.Sum(defined(rows, pick))
}

// median is the mean-of-middle-two convention over the defined values; an
// empty column stays undefined.
func median(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return stat.Mean(sorted[mid-1:mid+1], nil)
}
