package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bnema/mousemux/internal/config"
	"github.com/bnema/mousemux/internal/logger"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	flagConfig string
	flagDebug  bool

	rootCmd = &cobra.Command{
		Use:   "mousemux",
		Short: "Mousemux - per-device cursor policies for multi-monitor setups",
		Long: `Mousemux tracks every pointing device attached to the machine and
relocates the cursor according to per-device policies: a drawing tablet can
stay locked inside one monitor while a mouse roams freely, and each device
can remember where its cursor was when it was last active.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagConfig != "" {
				config.SetConfigPath(flagConfig)
			}
			if err := config.Init(); err != nil {
				return err
			}
			if flagDebug {
				logger.SetDebug()
			}
			return nil
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}
