package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/mousemux/internal/config"
	"github.com/bnema/mousemux/internal/ipc"
	"github.com/bnema/mousemux/internal/ui"
)

var (
	setLock     bool
	setRemember bool
)

var setCmd = &cobra.Command{
	Use:   "set <device-id>",
	Short: "Change a device's policy",
	Long: `Change the per-device policy. Device ids come from 'mousemux devices'.

  --lock      clamp the cursor to the monitor the device is currently in
  --remember  restore the device's last cursor position when it becomes active`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		item := config.DeviceSettingItem{ID: args[0]}
		if cmd.Flags().Changed("lock") {
			item.LockedInMonitor = &setLock
		}
		if cmd.Flags().Changed("remember") {
			item.RememberPos = &setRemember
		}
		if item.LockedInMonitor == nil && item.RememberPos == nil {
			return fmt.Errorf("nothing to change: pass --lock and/or --remember")
		}

		// A running daemon applies and persists the change; otherwise it
		// goes straight to the config file for the next start.
		if ipc.IsRunning() {
			client, err := ipc.NewClient()
			if err != nil {
				return err
			}
			if err := client.ApplySetting(item); err != nil {
				return err
			}
		} else {
			merged := config.Get().DeviceFor(item.ID).Merged(item)
			if err := config.UpdateDevice(item.ID, merged); err != nil {
				return err
			}
		}

		settings := config.Get().DeviceFor(item.ID).Merged(item)
		fmt.Println(ui.SuccessStyle.Render(ui.IconSuccess)+" "+args[0],
			ui.SubtleStyle.Render(fmt.Sprintf("locked_in_monitor=%t remember_pos=%t",
				settings.LockedInMonitor, settings.RememberPos)))
		return nil
	},
}

func init() {
	setCmd.Flags().BoolVar(&setLock, "lock", false, "Lock the cursor to the device's current monitor")
	setCmd.Flags().BoolVar(&setRemember, "remember", false, "Remember and restore the device's cursor position")
	rootCmd.AddCommand(setCmd)
}
