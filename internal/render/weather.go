package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"consumer-flex-app/internal/weather"
)

// WriteWeatherTable prints per-region temperatures for each event window.
func WriteWeatherTable(w io.Writer, observations []weather.Observation) error {
	if len(observations) == 0 {
		fmt.Fprintln(w, "no weather observations found")
		return nil
	}

	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Date\tRegion\tTime (UTC)\tTemperature (C)")
	for _, obs := range observations {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\n",
			obs.Date,
			obs.Region,
			obs.Time.UTC().Format("15:04"),
			formatFloat(obs.TemperatureC, 1),
		)
	}
	writer.Flush()
	return nil
}
