package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "moodle-analyzer",
		Short:         "Moodle course analyzer",
		Long:          "Finds Moodle courses without enrolled users and exports them per top-level category.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default ./config.yaml)")
	rootCmd.AddCommand(newScanCmd())

	return rootCmd
}
