package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"consumer-flex-app/internal/app"
)

var (
	showTopProviders int
	showSnapshots    int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the event metrics table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showTopProviders < 0 {
			return fmt.Errorf("--top-providers cannot be negative")
		}
		if showSnapshots < 0 {
			return fmt.Errorf("--snapshots cannot be negative")
		}

		opts := app.ShowOptions{
			TopProviders: showTopProviders,
			Snapshots:    showSnapshots,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showTopProviders, "top-providers", 0, "Number of providers to rank (defaults to config)")
	showCmd.Flags().IntVar(&showSnapshots, "snapshots", 0, "List the most recent archived snapshots instead")
}
