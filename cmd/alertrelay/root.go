package main

import (
	"github.com/spf13/cobra"
)

var cfgPath string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "alertrelay",
		Short:        "Relay panel alerts to an overlay, one at a time",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default is $XDG_CONFIG_HOME/alertrelay/config.yaml)")

	cmd.AddCommand(
		newRunCmd(),
		newSchemaCmd(),
	)

	return cmd
}
