package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/mousemux/internal/ipc"
	"github.com/bnema/mousemux/internal/ui"
)

var devicesCmd = &cobra.Command{
	Use:     "devices",
	Aliases: []string{"scan"},
	Short:   "Scan and list pointing devices",
	Long:    `Force a device rescan on the running daemon and list the discovered pointing devices.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := ipc.NewClient()
		if err != nil {
			return err
		}
		devices, err := client.ScanDevices()
		if err != nil {
			if errors.Is(err, ipc.ErrNotRunning) {
				fmt.Println(ui.WarningStyle.Render("mousemux is not running") +
					ui.SubtleStyle.Render("  (start it with: mousemux run)"))
				return nil
			}
			return err
		}
		if len(devices) == 0 {
			fmt.Println(ui.SubtleStyle.Render("No pointing devices found"))
			return nil
		}
		fmt.Println(ui.HeaderStyle.Render("Pointing devices"))
		fmt.Println(ui.DevicesTable(devices))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
