package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/mousemux/internal/ipc"
	"github.com/bnema/mousemux/internal/ui"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running mousemux daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := ipc.NewClient()
		if err != nil {
			return err
		}
		if err := client.Stop(); err != nil {
			if errors.Is(err, ipc.ErrNotRunning) {
				fmt.Println(ui.WarningStyle.Render("mousemux is not running"))
				return nil
			}
			return err
		}
		fmt.Println(ui.SuccessStyle.Render(ui.IconSuccess) + " mousemux daemon stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
