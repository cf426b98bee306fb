package render

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"consumer-flex-app/internal/dfs"
	"consumer-flex-app/internal/transform"
)

// WriteMetricsCSV writes the per-event metrics table. Undefined values stay
// empty cells so spreadsheets do not read "NaN" as text.
func WriteMetricsCSV(w io.Writer, metrics []transform.EventMetricsRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{
		"date", "event_type", "providers", "providers_cumulative",
		"period_start", "period_end", "duration_hours",
		"settled_mwh", "procured_mwh",
		"required_mw_median", "procured_day_ahead_mw_median", "procured_same_day_mw_median",
		"duration_hours_cumulative", "settled_mwh_cumulative", "procured_mwh_cumulative",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, row := range metrics {
		record := []string{
			row.Date,
			string(row.EventType),
			strconv.Itoa(row.Providers),
			strconv.Itoa(row.ProvidersCumulative),
			row.PeriodStart.Format(time.RFC3339),
			row.PeriodEnd.Format(time.RFC3339),
			csvFloat(row.DurationHours),
			csvFloat(row.SettledMWh),
			csvFloat(row.ProcuredMWh),
			csvFloat(row.RequiredMWMedian),
			csvFloat(row.ProcuredDayAheadMWMedian),
			csvFloat(row.ProcuredSameDayMWMedian),
			csvFloat(row.DurationHoursCumulative),
			csvFloat(row.SettledMWhCumulative),
			csvFloat(row.ProcuredMWhCumulative),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

// WriteProvidersCSV writes the per-date provider totals.
func WriteProvidersCSV(w io.Writer, totals []transform.ProviderDateRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"date", "provider", "same_day_total_mw"}); err != nil {
		return err
	}
	for _, row := range totals {
		record := []string{row.Date, row.Provider, csvFloat(row.SameDayTotalMW)}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func csvFloat(v dfs.Float) string {
	if v.IsNaN() {
		return ""
	}
	return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
}
