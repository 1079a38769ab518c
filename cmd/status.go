package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/mousemux/internal/ipc"
	"github.com/bnema/mousemux/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-device activity status",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := ipc.NewClient()
		if err != nil {
			return err
		}
		statuses, err := client.InspectStatus()
		if err != nil {
			if errors.Is(err, ipc.ErrNotRunning) {
				fmt.Println(ui.WarningStyle.Render("mousemux is not running") +
					ui.SubtleStyle.Render("  (start it with: mousemux run)"))
				return nil
			}
			return err
		}
		if len(statuses) == 0 {
			fmt.Println(ui.SubtleStyle.Render("No devices tracked yet"))
			return nil
		}
		fmt.Println(ui.HeaderStyle.Render("Device status"))
		fmt.Println(ui.StatusTable(statuses))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
