package render

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"consumer-flex-app/internal/dfs"
	"consumer-flex-app/internal/transform"
)

const (
	sheetMetrics            = "Event Metrics"
	sheetProviders          = "Providers"
	sheetRegional           = "Regional"
	sheetRegionalCumulative = "Regional Cumulative"
)

// WriteWorkbook renders the derived tables into one spreadsheet, a sheet
// per table. Geometries stay out; the choropleth export carries those.
func WriteWorkbook(w io.Writer, result *transform.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeMetricsSheet(f, result.EventMetrics); err != nil {
		return err
	}
	if err := writeProvidersSheet(f, result.ProviderTotals); err != nil {
		return err
	}
	if err := writeRegionalSheet(f, result.RegionalByEvent); err != nil {
		return err
	}
	if err := writeRegionalCumulativeSheet(f, result.RegionalCumulative); err != nil {
		return err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	idx, err := f.GetSheetIndex(sheetMetrics)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	return f.Write(w)
}

func writeMetricsSheet(f *excelize.File, rows []transform.EventMetricsRow) error {
	if _, err := f.NewSheet(sheetMetrics); err != nil {
		return err
	}
	header := []interface{}{
		"Date", "Event Type", "Providers", "Providers (cumulative)",
		"Start", "End", "Duration (h)",
		"Settled (MWh)", "Procured (MWh)",
		"Required (MW, median)", "Day-ahead procured (MW, median)", "Same-day procured (MW, median)",
		"Duration (h, cumulative)", "Settled (MWh, cumulative)", "Procured (MWh, cumulative)",
	}
	if err := f.SetSheetRow(sheetMetrics, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		values := []interface{}{
			row.Date,
			string(row.EventType),
			row.Providers,
			row.ProvidersCumulative,
			row.PeriodStart.Format(time.RFC3339),
			row.PeriodEnd.Format(time.RFC3339),
			cellFloat(row.DurationHours),
			cellFloat(row.SettledMWh),
			cellFloat(row.ProcuredMWh),
			cellFloat(row.RequiredMWMedian),
			cellFloat(row.ProcuredDayAheadMWMedian),
			cellFloat(row.ProcuredSameDayMWMedian),
			cellFloat(row.DurationHoursCumulative),
			cellFloat(row.SettledMWhCumulative),
			cellFloat(row.ProcuredMWhCumulative),
		}
		if err := f.SetSheetRow(sheetMetrics, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return err
		}
	}
	return nil
}

func writeProvidersSheet(f *excelize.File, rows []transform.ProviderDateRow) error {
	if _, err := f.NewSheet(sheetProviders); err != nil {
		return err
	}
	header := []interface{}{"Date", "Provider", "Same-day total (MW)"}
	if err := f.SetSheetRow(sheetProviders, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		values := []interface{}{row.Date, row.Provider, cellFloat(row.SameDayTotalMW)}
		if err := f.SetSheetRow(sheetProviders, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return err
		}
	}
	return nil
}

func writeRegionalSheet(f *excelize.File, rows []transform.RegionalFlexRow) error {
	if _, err := f.NewSheet(sheetRegional); err != nil {
		return err
	}
	header := []interface{}{"Date", "Region Code", "Region Name", "Mean (MW)", "Energy (MWh)"}
	if err := f.SetSheetRow(sheetRegional, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		values := []interface{}{row.Date, row.RegionCode, row.RegionName, cellFloat(row.MeanMW), cellFloat(row.EnergyMWh)}
		if err := f.SetSheetRow(sheetRegional, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return err
		}
	}
	return nil
}

func writeRegionalCumulativeSheet(f *excelize.File, rows []transform.RegionalCumulativeRow) error {
	if _, err := f.NewSheet(sheetRegionalCumulative); err != nil {
		return err
	}
	header := []interface{}{"Region Code", "Region Name", "Median (MW)", "Energy (MWh)"}
	if err := f.SetSheetRow(sheetRegionalCumulative, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		values := []interface{}{row.RegionCode, row.RegionName, cellFloat(row.MedianMW), cellFloat(row.EnergyMWh)}
		if err := f.SetSheetRow(sheetRegionalCumulative, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return err
		}
	}
	return nil
}

// cellFloat keeps undefined values out of numeric cells.
func cellFloat(v dfs.Float) interface{} {
	if v.IsNaN() {
		return nil
	}
	return v.Float64()
}
