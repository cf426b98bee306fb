package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var (
	simulateDate      string
	simulateEventType string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "模拟一次新事件并触发告警",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateDate == "" {
			return errors.New("--date 必须提供")
		}

		return getApp().SimulateAlert(cmd.Context(), simulateDate, simulateEventType)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateDate, "date", "", "虚构事件日期 (YYYY-MM-DD)")
	simulateCmd.Flags().StringVar(&simulateEventType, "event-type", "LIVE", "事件类型 (LIVE 或 TEST)")
}
