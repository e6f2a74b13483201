package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var envFlag string
	var logLevelFlag string

	ctx := newCommandContext(&envFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:           "vocab-miner",
		Short:         "Mine Japanese vocabulary from anime subtitles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFlag, "env-file", "", "Load environment variables from this file (default ./.env when present)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override MINER_LOG_LEVEL")

	rootCmd.AddCommand(newMineCommand(ctx))
	rootCmd.AddCommand(newMineFolderCommand(ctx))
	rootCmd.AddCommand(newPairsCommand())
	rootCmd.AddCommand(newSubtitleCommand())
	rootCmd.AddCommand(newQueueCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))
	rootCmd.AddCommand(newKnownCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))

	return rootCmd
}

// shouldSkipConfig lists commands that only read files given on the
// command line.
func shouldSkipConfig(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "pairs", "subtitle", "completion":
		return true
	}
	return false
}
