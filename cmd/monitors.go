package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/mousemux/internal/host"
	"github.com/bnema/mousemux/internal/ui"
)

var monitorsJSON bool

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "Show monitor configuration",
	Long:  `Display the monitor topology as the compositor reports it. Works without a running daemon.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		monitors, err := host.DetectMonitors()
		if err != nil {
			return fmt.Errorf("failed to query monitors: %w", err)
		}

		if monitorsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(monitors)
		}

		fmt.Println(ui.HeaderStyle.Render("Monitors"))
		fmt.Println(ui.MonitorsTable(monitors))
		return nil
	},
}

func init() {
	monitorsCmd.Flags().BoolVar(&monitorsJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(monitorsCmd)
}
