package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print client and server versions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "flickstream %s\n", version)
		status, err := NewClient(serverURL).Status()
		if err != nil {
			fmt.Fprintf(out, "server     unreachable (%s)\n", serverURL)
			return
		}
		fmt.Fprintf(out, "server     %s (%s, up %s)\n", status.Version, status.Status, status.Uptime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
