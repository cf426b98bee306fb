package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"consumer-flex-app/internal/app"
)

var (
	exportDate           string
	exportCSVPath        string
	exportProvidersCSV   string
	exportChartPath      string
	exportProvidersChart string
	exportWorkbookPath   string
	exportReportPath     string
	exportGeoJSONPath    string
	exportCumulative     bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export dashboard artifacts as CSV, PNG, XLSX, PDF, or GeoJSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportDate != "" {
			if _, err := time.Parse("2006-01-02", exportDate); err != nil {
				return fmt.Errorf("invalid --date value: %w", err)
			}
		}

		opts := app.ExportOptions{
			Date:               exportDate,
			CSVPath:            exportCSVPath,
			ProvidersCSVPath:   exportProvidersCSV,
			ChartPath:          exportChartPath,
			ProvidersChartPath: exportProvidersChart,
			WorkbookPath:       exportWorkbookPath,
			ReportPath:         exportReportPath,
			GeoJSONPath:        exportGeoJSONPath,
			Cumulative:         exportCumulative,
		}

		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDate, "date", "", "Event date (YYYY-MM-DD, defaults to the latest event)")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write per-event metrics CSV")
	exportCmd.Flags().StringVar(&exportProvidersCSV, "providers-csv", "", "Path to write provider totals CSV")
	exportCmd.Flags().StringVar(&exportChartPath, "chart", "", "Path to write procured energy PNG chart")
	exportCmd.Flags().StringVar(&exportProvidersChart, "providers-chart", "", "Path to write provider totals PNG chart")
	exportCmd.Flags().StringVar(&exportWorkbookPath, "workbook", "", "Path to write XLSX workbook")
	exportCmd.Flags().StringVar(&exportReportPath, "report", "", "Path to write event report PDF")
	exportCmd.Flags().StringVar(&exportGeoJSONPath, "geojson", "", "Path to write regional choropleth GeoJSON")
	exportCmd.Flags().BoolVar(&exportCumulative, "cumulative", false, "Use cumulative regional values for GeoJSON output")
}
