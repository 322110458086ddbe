package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/flickstream/internal/tmdb"
)

var providersCmd = &cobra.Command{
	Use:   "providers <movie-id>...",
	Short: "Show watch providers for movies",
	Long: `Show where movies can be streamed, rented or bought.

Examples:
  flickstream providers 278
  flickstream providers 238 240 --region GB`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProvidersCmd,
}

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.Flags().StringP("region", "r", "US", "Region code to display")
}

func runProvidersCmd(cmd *cobra.Command, args []string) error {
	ids, err := parseMovieIDs(args)
	if err != nil {
		return err
	}
	region, _ := cmd.Flags().GetString("region")

	resp, err := NewClient(serverURL).Providers(ids)
	if err != nil {
		return fmt.Errorf("providers fetch failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		printJSON(out, resp)
		return nil
	}
	printProviders(out, ids, strings.ToUpper(region), resp)
	return nil
}

func parseMovieIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("invalid movie ID: %s", part)
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no movie IDs given")
	}
	return ids, nil
}

func printProviders(w io.Writer, ids []int64, region string, resp *ProvidersResponse) {
	for _, id := range ids {
		entry, ok := resp.Providers[id]
		if !ok {
			if slices.Contains(resp.Unavailable, id) {
				fmt.Fprintf(w, "%d: unavailable (TMDB unreachable, nothing cached)\n", id)
			}
			continue
		}

		header := fmt.Sprintf("%d (%s)", id, region)
		if entry.Stale {
			header += " [stale]"
		}
		fmt.Fprintln(w, header)

		rp := entry.Results.Region(region)
		if rp == nil {
			fmt.Fprintln(w, "  not available in this region")
			continue
		}
		for _, row := range []struct {
			label string
			names []string
		}{
			{"Stream", providerNames(rp.Flatrate)},
			{"Free", providerNames(rp.Free)},
			{"Ads", providerNames(rp.Ads)},
			{"Rent", providerNames(rp.Rent)},
			{"Buy", providerNames(rp.Buy)},
		} {
			if len(row.names) > 0 {
				fmt.Fprintf(w, "  %-7s %s\n", row.label+":", strings.Join(row.names, ", "))
			}
		}
	}
}

func providerNames(ps []tmdb.Provider) []string {
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.ProviderName)
	}
	return names
}
