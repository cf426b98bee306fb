package transform

import (
	"sort"
	"time"

	"consumer-flex-app/internal/dfs"
)

// EventSummaryRow joins one half-hour requirement window with its
// settlement summary and carries the derived per-period energy figures.
type EventSummaryRow struct {
	Date                 string        `json:"date"`
	From                 string        `json:"from"`
	To                   string        `json:"to"`
	EventType            dfs.EventType `json:"event_type"`
	PeriodStart          time.Time     `json:"period_start"`
	PeriodEnd            time.Time     `json:"period_end"`
	RequiredMW           dfs.Float     `json:"required_mw"`
	ProcuredDayAheadMW   dfs.Float     `json:"procured_day_ahead_mw"`
	SettledVolumeMW      dfs.Float     `json:"settled_volume_mw"`
	SettledCostGBP       dfs.Float     `json:"settled_cost_gbp"`
	ProcuredSameDayMW    dfs.Float     `json:"procured_same_day_mw"`
	SettledPriceGBPPerMW dfs.Float     `json:"settled_price_gbp_per_mw"`
	SettledMWh           dfs.Float     `json:"settled_mwh"`
	ProcuredMWh          dfs.Float     `json:"procured_mwh"`
}

// periodKey is the full six-part settlement-period identity; all six parts
// must agree for a requirement row and a summary row to join.
type periodKey struct {
	date      string
	from      string
	to        string
	start     int64
	end       int64
	eventType dfs.EventType
}

// EventSummary inner-joins requirement windows against settlement
// summaries. Rows without a partner on either side drop silently; callers
// that need to detect upstream gaps compare row counts. Settled price is a
// plain IEEE division, so a zero settled volume propagates as Inf or NaN
// rather than failing the run.
func EventSummary(requirements []dfs.RequirementRow, summaries []dfs.SummaryRow) ([]EventSummaryRow, error) {
	reqs, err := NormalizeRequirements(requirements)
	if err != nil {
		return nil, err
	}
	sums, err := NormalizeSummaries(summaries)
	if err != nil {
		return nil, err
	}
	summaryByKey := make(map[periodKey]dfs.SummaryRow, len(sums))
	for _, s := range sums {
		summaryByKey[periodKey{s.Date, s.From, s.To, s.PeriodStart.Unix(), s.PeriodEnd.Unix(), s.EventType}] = s
	}
	out := make([]EventSummaryRow, 0, len(reqs))
	for _, r := range reqs {
		s, ok := summaryByKey[periodKey{r.Date, r.From, r.To, r.PeriodStart.Unix(), r.PeriodEnd.Unix(), r.EventType}]
		if !ok {
			continue
		}
		out = append(out, EventSummaryRow{
			Date:                 r.Date,
			From:                 r.From,
			To:                   r.To,
			EventType:            r.EventType,
			PeriodStart:          r.PeriodStart,
			PeriodEnd:            r.PeriodEnd,
			RequiredMW:           r.RequiredMW,
			ProcuredDayAheadMW:   r.ProcuredDayAheadMW,
			SettledVolumeMW:      s.SettledVolumeMW,
			SettledCostGBP:       s.SettledCostGBP,
			ProcuredSameDayMW:    s.ProcuredSameDayMW,
			SettledPriceGBPPerMW: dfs.Float(s.SettledCostGBP.Float64() / s.SettledVolumeMW.Float64()),
			SettledMWh:           dfs.Float(s.SettledVolumeMW.Float64() / periodsPerHour),
			ProcuredMWh:          dfs.Float(s.ProcuredSameDayMW.Float64() / periodsPerHour),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if !out[i].PeriodStart.Equal(out[j].PeriodStart) {
			return out[i].PeriodStart.Before(out[j].PeriodStart)
		}
		return out[i].EventType < out[j].EventType
	})
	return out, nil
}
