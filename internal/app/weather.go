package app

import (
	"context"
	"errors"
	"os"

	"consumer-flex-app/internal/render"
	"consumer-flex-app/internal/weather"
)

// Weather prints per-region temperatures over each event window.
func (a *App) Weather(ctx context.Context, opts WeatherOptions) error {
	svc, closeSvc, err := a.buildService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	result, err := svc.Result(ctx)
	if err != nil {
		return err
	}
	if len(result.EventSummary) == 0 {
		a.Logger.Info().Msg("no events found for weather lookup")
		return nil
	}

	windows := weather.WindowsFromSummary(result.EventSummary)
	if opts.Date != "" {
		filtered := windows[:0]
		for _, w := range windows {
			if w.Date == opts.Date {
				filtered = append(filtered, w)
			}
		}
		if len(filtered) == 0 {
			return errors.New("no event on " + opts.Date)
		}
		windows = filtered
	}

	regions, err := a.newPortal().FetchBoundaries(ctx)
	if err != nil {
		return err
	}

	client := weather.NewClient(a.Logger, weather.ClientOptions{
		BaseURL:   a.Config.Weather.BaseURL,
		Timeout:   a.Config.Weather.RequestTimeout,
		UserAgent: a.Config.Sources.UserAgent,
	})

	observations, err := weather.ObservationsForEvents(ctx, client, windows, regions)
	if err != nil {
		return err
	}

	return render.WriteWeatherTable(os.Stdout, observations)
}
