package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL  string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "flickstream",
	Short: "CLI client for the flickstream watchlist server",
	Long: `flickstream - CLI client for the flickstream watchlist server

Browse your TMDB watchlist by where it is streaming, inspect and clear
the local cache, and manage configuration.

Run 'flickstreamd' to start the server daemon.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:5000", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("flickstream {{.Version}}\n")
}
