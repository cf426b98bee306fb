package render

import (
	"fmt"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"

	"consumer-flex-app/internal/transform"
	"consumer-flex-app/internal/units"
)

// gbHouseholds is the stock of GB homes used to put procured energy in
// context.
const gbHouseholds = 29_000_000

// PreviousEventDate returns the event date immediately before date in the
// ascending date list. The first date, or an unknown one, returns itself.
func PreviousEventDate(dates []string, date string) string {
	for i, d := range dates {
		if d == date {
			if i == 0 {
				return d
			}
			return dates[i-1]
		}
	}
	return date
}

// WriteEventReport renders a one-page PDF summary of a single event date,
// with deltas against the event before it.
func WriteEventReport(w io.Writer, result *transform.Result, date string) error {
	metrics, ok := result.MetricsFor(date)
	if !ok {
		return fmt.Errorf("no event metrics for %s", date)
	}
	previousDate := PreviousEventDate(result.EventDates(), date)
	previous, _ := result.MetricsFor(previousDate)
	showDelta := previousDate != date

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, fmt.Sprintf("DFS Event Report: %s", date), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Event type: %s", metrics.EventType), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Window: %s to %s UTC", metrics.PeriodStart.UTC().Format("15:04"), metrics.PeriodEnd.UTC().Format("15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Key figures", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)

	procuredWh := metrics.ProcuredMWh.Float64() * 1e6
	lines := []string{
		fmt.Sprintf("Flexibility providers: %d", metrics.Providers),
		fmt.Sprintf("Duration: %s hours", formatFloat(metrics.DurationHours, 1)),
		fmt.Sprintf("Total flexibility procured: %s", FormatEnergy(procuredWh)),
		fmt.Sprintf("Requirement: %s MW (median)", formatFloat(metrics.RequiredMWMedian, 2)),
		fmt.Sprintf("Procured: %s MW (median)", formatFloat(metrics.ProcuredMWBest(), 2)),
		fmt.Sprintf("Requirement met: %s", formatPercent(metrics.RequirementMet())),
		fmt.Sprintf("Settled volume: %s MWh", formatFloat(metrics.SettledMWh, 2)),
	}
	if showDelta {
		lines[0] += fmt.Sprintf(" (%+d vs %s)", metrics.Providers-previous.Providers, previousDate)
		lines[1] += fmt.Sprintf(" (%s)", formatDelta(metrics.DurationHours, previous.DurationHours, 1))
		lines[2] += fmt.Sprintf(" (%s)", formatDelta(metrics.ProcuredMWh, previous.ProcuredMWh, 2))
		lines[5] += fmt.Sprintf(" (%s)", formatPercentDelta(metrics.RequirementMet(), previous.RequirementMet()))
	}
	for _, line := range lines {
		pdf.CellFormat(0, 7, line, "", 1, "L", false, 0, "")
	}

	if !metrics.ProcuredMWh.IsNaN() && procuredWh > 0 {
		homes, err := units.Convert(procuredWh, "Wh", "Home per hour")
		if err != nil {
			return err
		}
		evs, err := units.Convert(procuredWh, "Wh", "EV Charge")
		if err != nil {
			return err
		}
		teas, err := units.Convert(procuredWh, "Wh", "Cup of Tea")
		if err != nil {
			return err
		}
		homesCeil := math.Ceil(homes)
		share := 100 * homesCeil / gbHouseholds

		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, "What that means", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		comparisons := []string{
			fmt.Sprintf("Powers %s homes for one hour, %.2f%% of GB homes", groupThousands(int(homesCeil)), share),
			fmt.Sprintf("Charges %.1f EVs from empty (40 kWh battery)", evs),
			fmt.Sprintf("Boils %.1f large cups of tea (3 kW kettle, 52 seconds)", teas),
		}
		for _, line := range comparisons {
			pdf.CellFormat(0, 7, line, "", 1, "L", false, 0, "")
		}
	}

	return pdf.Output(w)
}
