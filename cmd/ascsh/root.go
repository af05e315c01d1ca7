package main

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var colorFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag, &colorFlag)

	rootCmd := &cobra.Command{
		Use:   "ascsh [socket]",
		Short: "Interactive shell for the ASC daemon",
		Long: "ascsh connects to a running ascd over its Unix socket and lets you\n" +
			"shut the daemon down or look up learning data for a program.",
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, ctx, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&colorFlag, "color", "", "Colorize status output (auto, always, never)")

	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
