package transform

import (
	"github.com/rs/zerolog"

	"consumer-flex-app/internal/dfs"
	"consumer-flex-app/internal/geo"
)

// Inputs is everything one full dashboard build consumes.
type Inputs struct {
	Regions      []geo.Region
	Bids         []dfs.BidRow
	Requirements []dfs.RequirementRow
	Summaries    []dfs.SummaryRow
}

// Result carries every derived table the presentation layer reads. It
// round-trips through JSON for the result cache.
type Result struct {
	EventSummary       []EventSummaryRow       `json:"event_summary"`
	EventMetrics       []EventMetricsRow       `json:"event_metrics"`
	ProviderPeriods    []ProviderPeriodRow     `json:"provider_periods"`
	ProviderTotals     []ProviderDateRow       `json:"provider_totals"`
	RegionalByEvent    []RegionalFlexRow       `json:"regional_by_event"`
	RegionalCumulative []RegionalCumulativeRow `json:"regional_cumulative"`
}

// Run executes the whole transform in one deterministic pass: event
// summary, event metrics, provider aggregation and the regional tables.
func Run(in Inputs, logger zerolog.Logger) (*Result, error) {
	summary, err := EventSummary(in.Requirements, in.Summaries)
	if err != nil {
		return nil, err
	}
	metrics := MetricsByEvent(in.Bids, summary)
	periods, err := BidsByProviderPeriod(in.Bids)
	if err != nil {
		return nil, err
	}
	totals := BidsByProviderDate(periods)
	byEvent, cumulative := RegionalFlex(in.Regions, in.Bids, metrics, logger)
	return &Result{
		EventSummary:       summary,
		EventMetrics:       metrics,
		ProviderPeriods:    periods,
		ProviderTotals:     totals,
		RegionalByEvent:    byEvent,
		RegionalCumulative: cumulative,
	}, nil
}

// EventDates lists the distinct event dates in ascending order.
func (r *Result) EventDates() []string {
	dates := make([]string, 0, len(r.EventMetrics))
	for _, m := range r.EventMetrics {
		dates = append(dates, m.Date)
	}
	return dates
}

// LatestEventDate returns the most recent event date, or "" when no events
// are known yet.
func (r *Result) LatestEventDate() string {
	if len(r.EventMetrics) == 0 {
		return ""
	}
	return r.EventMetrics[len(r.EventMetrics)-1].Date
}

// MetricsFor returns the metrics row for one event date.
func (r *Result) MetricsFor(date string) (EventMetricsRow, bool) {
	for _, m := range r.EventMetrics {
		if m.Date == date {
			return m, true
		}
	}
	return EventMetricsRow{}, false
}

// EventCounts tallies live and test events.
func (r *Result) EventCounts() (live, test int) {
	for _, m := range r.EventMetrics {
		switch m.EventType {
		case dfs.EventLive:
			live++
		case dfs.EventTest:
			test++
		}
	}
	return live, test
}
