package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"consumer-flex-app/internal/transform"
)

// WriteMetricsTable prints the event overview, one row per event date, and
// compares the latest event against the one before it.
func WriteMetricsTable(w io.Writer, result *transform.Result) error {
	if len(result.EventMetrics) == 0 {
		fmt.Fprintln(w, "no events found")
		return nil
	}

	live, test := result.EventCounts()
	fmt.Fprintf(w, "Events: %d total (%d live, %d test)\n\n", live+test, live, test)

	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Date\tType\tProviders\tDuration (h)\tSettled (MWh)\tProcured (MWh)\tRequired (MW)\tMet")
	for _, m := range result.EventMetrics {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			m.Date,
			m.EventType,
			m.Providers,
			formatFloat(m.DurationHours, 1),
			formatFloat(m.SettledMWh, 2),
			formatFloat(m.ProcuredMWh, 2),
			formatFloat(m.RequiredMWMedian, 2),
			formatPercent(m.RequirementMet()),
		)
	}
	writer.Flush()

	latest := result.LatestEventDate()
	previousDate := PreviousEventDate(result.EventDates(), latest)
	if previousDate == latest {
		return nil
	}
	current, _ := result.MetricsFor(latest)
	previous, _ := result.MetricsFor(previousDate)

	fmt.Fprintf(w, "\nLatest event %s vs %s:\n", latest, previousDate)
	fmt.Fprintf(w, "  Providers: %d (%+d)\n", current.Providers, current.Providers-previous.Providers)
	fmt.Fprintf(w, "  Duration: %s h (%s)\n", formatFloat(current.DurationHours, 1), formatDelta(current.DurationHours, previous.DurationHours, 1))
	fmt.Fprintf(w, "  Procured: %s MWh (%s)\n", formatFloat(current.ProcuredMWh, 2), formatDelta(current.ProcuredMWh, previous.ProcuredMWh, 2))
	fmt.Fprintf(w, "  Settled: %s MWh (%s)\n", formatFloat(current.SettledMWh, 2), formatDelta(current.SettledMWh, previous.SettledMWh, 2))
	fmt.Fprintf(w, "  Requirement met: %s (%s)\n", formatPercent(current.RequirementMet()), formatPercentDelta(current.RequirementMet(), previous.RequirementMet()))

	return nil
}

// WriteTopProviders prints the highest-volume providers across all events.
func WriteTopProviders(w io.Writer, totals []transform.ProviderDateRow, n int) error {
	ranked := RankProviders(totals, n)
	if len(ranked) == 0 {
		fmt.Fprintln(w, "no provider bids found")
		return nil
	}

	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Provider\tSame-day forecast (MW)")
	for _, p := range ranked {
		fmt.Fprintf(writer, "%s\t%.0f\n", p.Provider, p.TotalMW)
	}
	writer.Flush()
	return nil
}
