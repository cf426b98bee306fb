package weather

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"consumer-flex-app/internal/dfs"
	"consumer-flex-app/internal/geo"
	"consumer-flex-app/internal/transform"
)

// EventWindow is the UTC span to fetch weather for around one event: the
// earliest settlement-period start floored to the hour through the latest
// end ceiled to it.
type EventWindow struct {
	Date  string
	Start time.Time
	End   time.Time
}

// Sample is one temperature reading on the fetch or resample grid.
type Sample struct {
	Time         time.Time
	TemperatureC float64
}

// Observation is one region's temperature at one settlement-period step of
// an event window.
type Observation struct {
	Date         string    `json:"date"`
	Region       string    `json:"region"`
	Time         time.Time `json:"time"`
	TemperatureC dfs.Float `json:"temperature_c"`
}

// HourlyFetcher is the slice of the archive API the enrichment needs.
type HourlyFetcher interface {
	FetchHourly(ctx context.Context, lat, lon float64, start, end time.Time) ([]Sample, error)
}

// WindowsFromSummary derives one window per event date, in ascending date
// order.
func WindowsFromSummary(rows []transform.EventSummaryRow) []EventWindow {
	type span struct{ start, end time.Time }
	spans := make(map[string]span)
	for _, row := range rows {
		s, ok := spans[row.Date]
		if !ok {
			spans[row.Date] = span{start: row.PeriodStart, end: row.PeriodEnd}
			continue
		}
		if row.PeriodStart.Before(s.start) {
			s.start = row.PeriodStart
		}
		if row.PeriodEnd.After(s.end) {
			s.end = row.PeriodEnd
		}
		spans[row.Date] = s
	}

	out := make([]EventWindow, 0, len(spans))
	for date, s := range spans {
		out = append(out, EventWindow{
			Date:  date,
			Start: s.start.UTC().Truncate(time.Hour),
			End:   ceilHour(s.end.UTC()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// ceilHour rounds up to the next whole hour; whole hours stay put.
func ceilHour(t time.Time) time.Time {
	truncated := t.Truncate(time.Hour)
	if truncated.Equal(t) {
		return t
	}
	return truncated.Add(time.Hour)
}

// ForwardFill30Min resamples hourly readings onto a 30-minute grid between
// start and end inclusive, carrying the last known value forward. Grid
// points before the first reading stay undefined.
func ForwardFill30Min(samples []Sample, start, end time.Time) []Sample {
	sorted := append([]Sample(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := make([]Sample, 0, int(end.Sub(start)/(30*time.Minute))+1)
	idx := -1
	for stamp := start; !stamp.After(end); stamp = stamp.Add(30 * time.Minute) {
		for idx+1 < len(sorted) && !sorted[idx+1].Time.After(stamp) {
			idx++
		}
		value := math.NaN()
		if idx >= 0 {
			value = sorted[idx].TemperatureC
		}
		out = append(out, Sample{Time: stamp, TemperatureC: value})
	}
	return out
}

// ObservationsForEvents fetches each region's centroid weather for every
// event window and forward-fills it to settlement-period resolution.
// Regions the archive has no readings for are skipped.
func ObservationsForEvents(ctx context.Context, f HourlyFetcher, windows []EventWindow, regions []geo.Region) ([]Observation, error) {
	var out []Observation
	for _, w := range windows {
		for _, region := range regions {
			centroid := geo.ToWGS84(geo.Centroid(region))
			samples, err := f.FetchHourly(ctx, centroid[1], centroid[0], w.Start, w.End)
			if err != nil {
				return nil, fmt.Errorf("fetch weather for %s on %s: %w", region.Name, w.Date, err)
			}
			if len(samples) == 0 {
				continue
			}
			for _, s := range ForwardFill30Min(samples, w.Start, w.End) {
				out = append(out, Observation{
					Date:         w.Date,
					Region:       region.Name,
					Time:         s.Time,
					TemperatureC: dfs.Float(s.TemperatureC),
				})
			}
		}
	}
	return out, nil
}
