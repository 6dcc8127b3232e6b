package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mhtmlpack",
		Short:         "Package HTML export archives into single-file MHTML documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newBatchCommand())

	return rootCmd
}
