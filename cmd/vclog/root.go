package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "vclog",
	Short: "vclog - voice channel presence tracker",
	Long: `vclog records Discord voice channel joins and leaves into an append-only
log and answers usage statistics (today, weekly, total, ranking, monthly)
through slash commands and an HTTP query API.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
