package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/vmunix/flickstream/internal/watchlist"
)

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List streaming services seen in the cache",
	Args:  cobra.NoArgs,
	RunE:  runServicesCmd,
}

func init() {
	rootCmd.AddCommand(servicesCmd)
	servicesCmd.Flags().StringP("region", "r", "", "Region code (default: server setting)")
}

func runServicesCmd(cmd *cobra.Command, _ []string) error {
	region, _ := cmd.Flags().GetString("region")

	svc, err := NewClient(serverURL).Services(region)
	if err != nil {
		return fmt.Errorf("services fetch failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		printJSON(out, svc)
		return nil
	}
	printServices(out, svc)
	return nil
}

func printServices(w io.Writer, s *watchlist.Services) {
	fmt.Fprintf(w, "Streaming services in %s (%s):\n", s.Region, s.Source)
	if len(s.Services) == 0 {
		fmt.Fprintln(w, "  none yet; browse the watchlist to populate the cache")
		return
	}
	for _, name := range s.Services {
		marker := " "
		if slices.Contains(s.Preferred, name) {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %s\n", marker, name)
	}
	if len(s.Preferred) > 0 {
		fmt.Fprintln(w, "\n* subscribed")
	}
}
