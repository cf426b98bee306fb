package render

import (
	"errors"
	"io"
	"sort"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"consumer-flex-app/internal/dfs"
	"consumer-flex-app/internal/transform"
)

// RenderFlexChart plots settled and procured energy per event date, with
// the cumulative procured series on the secondary axis.
func RenderFlexChart(w io.Writer, metrics []transform.EventMetricsRow) error {
	settled := timeSeries("Settled MWh", metrics, func(m transform.EventMetricsRow) dfs.Float { return m.SettledMWh })
	procured := timeSeries("Procured MWh", metrics, func(m transform.EventMetricsRow) dfs.Float { return m.ProcuredMWh })
	cumulative := timeSeries("Cumulative procured MWh", metrics, func(m transform.EventMetricsRow) dfs.Float { return m.ProcuredMWhCumulative })
	cumulative.YAxis = chart.YAxisSecondary

	series := make([]chart.Series, 0, 3)
	for _, s := range []chart.TimeSeries{settled, procured, cumulative} {
		if len(s.XValues) > 0 {
			series = append(series, s)
		}
	}
	if len(series) == 0 {
		return errors.New("no defined metric values to plot")
	}

	energyFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.1f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Energy (MWh)",
			ValueFormatter: energyFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Cumulative (MWh)",
			ValueFormatter: energyFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

// timeSeries builds one series over the event dates, skipping undefined
// values so gaps do not draw as zeros.
func timeSeries(name string, metrics []transform.EventMetricsRow, pick func(transform.EventMetricsRow) dfs.Float) chart.TimeSeries {
	s := chart.TimeSeries{Name: name}
	for _, m := range metrics {
		v := pick(m)
		if v.IsNaN() {
			continue
		}
		ts, err := time.Parse("2006-01-02", m.Date)
		if err != nil {
			continue
		}
		s.XValues = append(s.XValues, ts)
		s.YValues = append(s.YValues, v.Float64())
	}
	return s
}

// ProviderTotal is one provider's same-day forecast volume summed over
// every event date it bid into.
type ProviderTotal struct {
	Provider string
	TotalMW  float64
}

// RankProviders sums provider volumes across dates and orders them largest
// first, ties broken by name. A positive n keeps only the top n.
func RankProviders(totals []transform.ProviderDateRow, n int) []ProviderTotal {
	sums := make(map[string]float64)
	for _, row := range totals {
		if row.SameDayTotalMW.IsNaN() {
			continue
		}
		sums[row.Provider] += row.SameDayTotalMW.Float64()
	}
	out := make([]ProviderTotal, 0, len(sums))
	for provider, total := range sums {
		out = append(out, ProviderTotal{Provider: provider, TotalMW: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalMW != out[j].TotalMW {
			return out[i].TotalMW > out[j].TotalMW
		}
		return out[i].Provider < out[j].Provider
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// RenderProviderChart draws each provider's total same-day forecast volume
// as a bar, largest first.
func RenderProviderChart(w io.Writer, totals []transform.ProviderDateRow) error {
	ranked := RankProviders(totals, 0)
	if len(ranked) == 0 {
		return errors.New("no provider totals to plot")
	}

	bars := make([]chart.Value, 0, len(ranked))
	for _, p := range ranked {
		bars = append(bars, chart.Value{Label: p.Provider, Value: p.TotalMW})
	}

	graph := chart.BarChart{
		Width:    1280,
		Height:   720,
		BarWidth: 40,
		YAxis: chart.YAxis{
			Name: "Same-day forecast (MW)",
		},
		Bars: bars,
	}

	return graph.Render(chart.PNG, w)
}
