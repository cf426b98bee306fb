package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"consumer-flex-app/internal/render"
	"consumer-flex-app/internal/transform"
)

// Export renders the computed tables as files: CSV, PNG charts, an XLSX
// workbook, a PDF event report and choropleth GeoJSON.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.ProvidersCSVPath == "" && opts.ChartPath == "" &&
		opts.ProvidersChartPath == "" && opts.WorkbookPath == "" && opts.ReportPath == "" &&
		opts.GeoJSONPath == "" {
		return errors.New("at least one output path must be provided")
	}

	svc, closeSvc, err := a.buildService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	result, err := svc.Result(ctx)
	if err != nil {
		return err
	}
	if len(result.EventMetrics) == 0 {
		a.Logger.Info().Msg("no events found for export")
		return nil
	}

	date := opts.Date
	if date == "" {
		date = result.LatestEventDate()
	}
	if _, ok := result.MetricsFor(date); !ok && (opts.ReportPath != "" || (opts.GeoJSONPath != "" && !opts.Cumulative)) {
		return errors.New("no event on " + date)
	}

	live, test := result.EventCounts()
	a.Logger.Info().Int("events", live+test).Str("date", date).Msg("exporting dashboard artifacts")

	if opts.CSVPath != "" {
		if err := writeArtifact(opts.CSVPath, func(w io.Writer) error {
			return render.WriteMetricsCSV(w, result.EventMetrics)
		}); err != nil {
			return err
		}
	}
	if opts.ProvidersCSVPath != "" {
		if err := writeArtifact(opts.ProvidersCSVPath, func(w io.Writer) error {
			return render.WriteProvidersCSV(w, result.ProviderTotals)
		}); err != nil {
			return err
		}
	}
	if opts.ChartPath != "" {
		if err := writeArtifact(opts.ChartPath, func(w io.Writer) error {
			return render.RenderFlexChart(w, result.EventMetrics)
		}); err != nil {
			return err
		}
	}
	if opts.ProvidersChartPath != "" {
		if err := writeArtifact(opts.ProvidersChartPath, func(w io.Writer) error {
			return render.RenderProviderChart(w, result.ProviderTotals)
		}); err != nil {
			return err
		}
	}
	if opts.WorkbookPath != "" {
		if err := writeArtifact(opts.WorkbookPath, func(w io.Writer) error {
			return render.WriteWorkbook(w, result)
		}); err != nil {
			return err
		}
	}
	if opts.ReportPath != "" {
		if err := writeArtifact(opts.ReportPath, func(w io.Writer) error {
			return render.WriteEventReport(w, result, date)
		}); err != nil {
			return err
		}
	}
	if opts.GeoJSONPath != "" {
		if err := writeArtifact(opts.GeoJSONPath, func(w io.Writer) error {
			return writeChoropleth(w, result, date, opts.Cumulative)
		}); err != nil {
			return err
		}
	}

	a.Logger.Info().Msg("export complete")
	return nil
}

func writeChoropleth(w io.Writer, result *transform.Result, date string, cumulative bool) error {
	if cumulative {
		return render.WriteCumulativeGeoJSON(w, result.RegionalCumulative)
	}
	return render.WriteRegionalGeoJSON(w, result.RegionalByEvent, date)
}

func writeArtifact(path string, write func(io.Writer) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return write(file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
