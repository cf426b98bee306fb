package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"consumer-flex-app/internal/app"
)

var weatherDate string

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Show regional temperatures around each event window",
	RunE: func(cmd *cobra.Command, args []string) error {
		if weatherDate != "" {
			if _, err := time.Parse("2006-01-02", weatherDate); err != nil {
				return fmt.Errorf("invalid --date value: %w", err)
			}
		}

		opts := app.WeatherOptions{
			Date: weatherDate,
		}

		return getApp().Weather(cmd.Context(), opts)
	},
}

func init() {
	weatherCmd.Flags().StringVar(&weatherDate, "date", "", "Limit lookup to one event date (YYYY-MM-DD)")
}
